package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		want string
		size int64
	}{
		{"0 B", 0},
		{"1023 B", 1023},
		{"1.0 KB", 1024},
		{"1.5 KB", 1536},
		{"2.0 MB", 2 * 1024 * 1024},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatFileSize(tt.size))
	}
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		t    time.Time
		want string
	}{
		{now.Add(-30 * time.Second), "just now"},
		{now.Add(-time.Minute), "1 minute ago"},
		{now.Add(-5 * time.Minute), "5 minutes ago"},
		{now.Add(-3 * time.Hour), "3 hours ago"},
		{now.Add(-30 * time.Hour), "yesterday"},
		{now.Add(-72 * time.Hour), "3 days ago"},
		{now.Add(-30 * 24 * time.Hour), "2024-05-11 12:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatRelativeTime(tt.t, now))
	}
}

func TestFormatBalance(t *testing.T) {
	assert.Contains(t, FormatBalance(decimal.RequireFromString("25.5")), "25.50")
	assert.Contains(t, FormatBalance(decimal.RequireFromString("-3")), "-3.00")
	assert.Contains(t, FormatBalance(decimal.Zero), "0.00")
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, 3, "Seeding")
	p.Step()
	p.Step()
	p.Finish()
	assert.Contains(t, buf.String(), "Seeding")
}

func TestMessageLines(t *testing.T) {
	assert.Contains(t, FormatSuccess("saved"), SuccessIcon+" saved")
	assert.Contains(t, FormatWarning("careful"), WarningIcon+" careful")
	assert.Contains(t, FormatError("boom"), errorIcon+" boom")
	assert.Contains(t, FormatInfo("nothing here"), infoIcon+" nothing here")
	assert.Contains(t, FormatTitle("Customers"), ledgerIcon+" Customers")

	box := RenderBox("Status", "all good")
	assert.Contains(t, box, ledgerIcon+" Status")
	assert.Contains(t, box, "all good")
}
