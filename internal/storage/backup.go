package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Backup errors.
var (
	ErrBackupNotFound  = errors.New("backup not found")
	ErrBackupCorrupted = errors.New("backup integrity check failed")
	ErrBackupExists    = errors.New("backup already exists")
	ErrInvalidBackupID = errors.New("invalid backup ID")
)

// BackupManager writes and restores point-in-time copies of the database.
type BackupManager struct {
	db        *sql.DB
	dbPath    string
	backupDir string
}

// BackupInfo describes a stored backup.
type BackupInfo struct {
	CreatedAt     time.Time      `json:"created_at"`
	RowCounts     map[string]int `json:"row_counts"`
	ID            string         `json:"id"`
	Description   string         `json:"description"`
	FileSize      int64          `json:"file_size"`
	SchemaVersion int            `json:"schema_version"`
}

// backedUpTables are counted into every backup's metadata.
var backedUpTables = []string{"customers", "debits", "payments", "admins"}

// NewBackupManager creates a backup manager that keeps its files next to dbPath.
func NewBackupManager(db *sql.DB, dbPath string) (*BackupManager, error) {
	if dbPath == ":memory:" {
		return nil, errors.New("in-memory databases cannot be backed up")
	}
	absPath, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}

	backupDir := filepath.Join(filepath.Dir(absPath), "backups")
	if err := os.MkdirAll(backupDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create backups directory: %w", err)
	}

	return &BackupManager{
		db:        db,
		dbPath:    absPath,
		backupDir: backupDir,
	}, nil
}

func validateBackupID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\'";`) || strings.Contains(id, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidBackupID, id)
	}
	return nil
}

func (bm *BackupManager) dataPath(id string) string {
	return filepath.Join(bm.backupDir, id+".db")
}

func (bm *BackupManager) metaPath(id string) string {
	return filepath.Join(bm.backupDir, id+".meta.json")
}

// Create writes a consistent copy of the database. An empty id is generated from the clock.
func (bm *BackupManager) Create(ctx context.Context, id, description string) (*BackupInfo, error) {
	if id == "" {
		id = "backup-" + time.Now().Format("2006-01-02-150405")
	}
	if err := validateBackupID(id); err != nil {
		return nil, err
	}

	dest := bm.dataPath(id)
	if _, err := os.Stat(dest); err == nil {
		return nil, ErrBackupExists
	}

	var schemaVersion int
	if err := bm.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&schemaVersion); err != nil {
		return nil, fmt.Errorf("failed to get schema version: %w", err)
	}

	counts := bm.rowCounts(ctx)

	if _, err := bm.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return nil, fmt.Errorf("failed to checkpoint WAL: %w", err)
	}
	// #nosec G201 - id is validated to contain no quotes or separators
	if _, err := bm.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", dest)); err != nil {
		return nil, fmt.Errorf("failed to write backup: %w", err)
	}

	stat, err := os.Stat(dest)
	if err != nil {
		return nil, fmt.Errorf("failed to stat backup: %w", err)
	}

	info := BackupInfo{
		ID:            id,
		CreatedAt:     time.Now().UTC(),
		Description:   description,
		FileSize:      stat.Size(),
		RowCounts:     counts,
		SchemaVersion: schemaVersion,
	}
	if err := writeJSONAtomic(bm.metaPath(id), info); err != nil {
		if rmErr := os.Remove(dest); rmErr != nil {
			slog.Error("failed to remove backup after metadata failure", "error", rmErr)
		}
		return nil, fmt.Errorf("failed to save backup metadata: %w", err)
	}

	if err := bm.recordInDB(ctx, info); err != nil {
		// The files on disk are authoritative.
		slog.Warn("failed to record backup metadata in database", "error", err)
	}

	slog.Info("created backup", "id", id, "size", info.FileSize)
	return &info, nil
}

// List returns all backups, newest first. A backup whose .meta.json file is
// missing or unreadable is described from the backup_metadata table instead.
func (bm *BackupManager) List(ctx context.Context) ([]BackupInfo, error) {
	entries, err := os.ReadDir(bm.backupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backups directory: %w", err)
	}

	backups := make([]BackupInfo, 0, len(entries))
	for _, entry := range entries {
		id, ok := strings.CutSuffix(entry.Name(), ".db")
		if entry.IsDir() || !ok {
			continue
		}

		info, err := readBackupInfo(bm.metaPath(id))
		if err != nil {
			slog.Debug("backup metadata file unusable, trying database", "id", id, "error", err)
			info, err = bm.recordedInfo(ctx, id)
		}
		if err != nil {
			slog.Debug("skipping backup without metadata", "id", id, "error", err)
			continue
		}
		backups = append(backups, *info)
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// Restore replaces the database file with a backup. The database handle the
// manager was created with is closed and must not be used afterwards.
func (bm *BackupManager) Restore(_ context.Context, id string) error {
	if err := validateBackupID(id); err != nil {
		return err
	}

	src := bm.dataPath(id)
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return ErrBackupNotFound
		}
		return fmt.Errorf("failed to access backup: %w", err)
	}
	if err := verifyIntegrity(src); err != nil {
		return fmt.Errorf("%w: %v", ErrBackupCorrupted, err)
	}

	if err := bm.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	safety := bm.dbPath + ".restore-backup"
	if err := copyFile(bm.dbPath, safety); err != nil {
		return fmt.Errorf("failed to save current database: %w", err)
	}
	if err := copyFile(src, bm.dbPath); err != nil {
		if restoreErr := copyFile(safety, bm.dbPath); restoreErr != nil {
			slog.Error("failed to put current database back after restore failure", "error", restoreErr)
		}
		return fmt.Errorf("failed to restore backup: %w", err)
	}
	// Stale WAL files would be replayed over the restored database.
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(bm.dbPath + suffix); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove stale WAL file", "file", bm.dbPath+suffix, "error", err)
		}
	}
	if err := os.Remove(safety); err != nil {
		slog.Warn("failed to remove restore safety copy", "error", err)
	}

	slog.Info("restored backup", "id", id)
	return nil
}

// Delete removes a backup and its metadata.
func (bm *BackupManager) Delete(ctx context.Context, id string) error {
	if err := validateBackupID(id); err != nil {
		return err
	}
	if err := os.Remove(bm.dataPath(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrBackupNotFound
		}
		return fmt.Errorf("failed to remove backup: %w", err)
	}
	if err := os.Remove(bm.metaPath(id)); err != nil && !os.IsNotExist(err) {
		slog.Debug("failed to remove backup metadata", "id", id, "error", err)
	}
	if _, err := bm.db.ExecContext(ctx, "DELETE FROM backup_metadata WHERE id = ?", id); err != nil {
		slog.Debug("failed to remove backup metadata row", "id", id, "error", err)
	}
	return nil
}

func (bm *BackupManager) rowCounts(ctx context.Context) map[string]int {
	counts := make(map[string]int, len(backedUpTables))
	for _, table := range backedUpTables {
		var n int
		// #nosec G202 - table names come from a fixed list
		if err := bm.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			slog.Debug("failed to count rows", "table", table, "error", err)
		}
		counts[table] = n
	}
	return counts
}

func (bm *BackupManager) recordInDB(ctx context.Context, info BackupInfo) error {
	counts, err := json.Marshal(info.RowCounts)
	if err != nil {
		return err
	}
	_, err = bm.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO backup_metadata (id, created_at, description, file_size, row_counts, schema_version)
		VALUES (?, ?, ?, ?, ?, ?)`,
		info.ID, info.CreatedAt, info.Description, info.FileSize, string(counts), info.SchemaVersion,
	)
	return err
}

func readBackupInfo(path string) (*BackupInfo, error) {
	// #nosec G304 - path is built from the backups directory listing
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var info BackupInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// recordedInfo reads a backup's metadata from the backup_metadata table.
func (bm *BackupManager) recordedInfo(ctx context.Context, id string) (*BackupInfo, error) {
	var (
		info        BackupInfo
		description sql.NullString
		counts      sql.NullString
		fileSize    sql.NullInt64
		version     sql.NullInt64
	)
	err := bm.db.QueryRowContext(ctx, `
		SELECT id, created_at, description, file_size, row_counts, schema_version
		FROM backup_metadata WHERE id = ?`, id,
	).Scan(&info.ID, &info.CreatedAt, &description, &fileSize, &counts, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBackupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query backup metadata: %w", err)
	}

	info.Description = description.String
	info.FileSize = fileSize.Int64
	info.SchemaVersion = int(version.Int64)
	if counts.Valid {
		if err := json.Unmarshal([]byte(counts.String), &info.RowCounts); err != nil {
			slog.Debug("ignoring malformed backup row counts", "id", id, "error", err)
		}
	}
	return &info, nil
}

func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func verifyIntegrity(path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return err
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}

func copyFile(src, dst string) error {
	// #nosec G304 - paths are derived from the configured database location
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	tmp := dst + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}
