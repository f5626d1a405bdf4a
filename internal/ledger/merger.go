package ledger

import (
	"sort"

	"github.com/Veraticus/tally/internal/model"
)

// MergeMovements combines debits and payments into one history ordered by
// date descending. Ties fall back to created_at descending, then payments
// before debits, then id descending, so the order is fully deterministic.
func MergeMovements(debits []model.Debit, payments []model.Payment) []model.Movement {
	movements := make([]model.Movement, 0, len(debits)+len(payments))
	for _, d := range debits {
		movements = append(movements, model.DebitMovement(d))
	}
	for _, p := range payments {
		movements = append(movements, model.PaymentMovement(p))
	}

	sort.SliceStable(movements, func(i, j int) bool {
		return movementBefore(movements[i], movements[j])
	})
	return movements
}

func movementBefore(a, b model.Movement) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.After(b.Date)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	if a.Kind != b.Kind {
		return a.Kind == model.KindPayment
	}
	return a.ID > b.ID
}
