package repo

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLite provides access to a local SQLite database.
type SQLite struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLite opens a connection to the SQLite database file.
func NewSQLite(ctx context.Context, databasePath string, logger *slog.Logger) (*SQLite, error) {
	path := strings.TrimSpace(databasePath)
	if path == "" {
		return nil, fmt.Errorf("sqlite database path is empty")
	}
	// Busy timeout and WAL mode are recommended for SQLite concurrency.
	dsn := path
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	dsn = fmt.Sprintf("%s%s_pragma=busy_timeout=10000&_pragma=journal_mode=WAL&_pragma=foreign_keys=ON", dsn, sep)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLite{
		db:     db,
		logger: logger.With("component", "repo_sqlite"),
	}, nil
}

// Close releases the database connection.
func (r *SQLite) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

// Ping ensures the database is reachable.
func (r *SQLite) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// RunMigrations applies the SQLite schema.
func (r *SQLite) RunMigrations(ctx context.Context, filesystem fs.FS) error {
	sqlContent, err := fs.ReadFile(filesystem, "sqlite/001_init.sql")
	if err != nil {
		return fmt.Errorf("read migration: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, string(sqlContent)); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}

// UpsertMerchant stores or updates a merchant keyed by its channel ID.
// SQLite has no gen_random_uuid() so IDs are generated client-side.
func (r *SQLite) UpsertMerchant(ctx context.Context, profile MerchantProfile) (*Merchant, error) {
	const q = `
INSERT INTO merchants (id, external_id, display_name, language_preference, updated_at)
VALUES (?, ?, ?, COALESCE(?, 'english'), CURRENT_TIMESTAMP)
ON CONFLICT (external_id) DO UPDATE SET
    display_name = COALESCE(excluded.display_name, merchants.display_name),
    language_preference = COALESCE(excluded.language_preference, merchants.language_preference),
    updated_at = CURRENT_TIMESTAMP
RETURNING id, external_id, display_name, language_preference, created_at, updated_at;
`
	row := r.db.QueryRowContext(ctx, q,
		uuid.NewString(),
		profile.ExternalID,
		profile.DisplayName,
		profile.LanguagePreference,
	)

	var m Merchant
	if err := row.Scan(&m.ID, &m.ExternalID, &m.DisplayName, &m.LanguagePreference, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, fmt.Errorf("upsert merchant: %w", err)
	}
	return &m, nil
}

// GetMerchantByID fetches a merchant row by primary key.
func (r *SQLite) GetMerchantByID(ctx context.Context, id string) (*Merchant, error) {
	const q = `
SELECT id, external_id, display_name, language_preference, created_at, updated_at
FROM merchants
WHERE id = ?
LIMIT 1;
`
	row := r.db.QueryRowContext(ctx, q, id)
	var m Merchant
	if err := row.Scan(&m.ID, &m.ExternalID, &m.DisplayName, &m.LanguagePreference, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, fmt.Errorf("get merchant by id: %w", err)
	}
	return &m, nil
}

// InsertMessage stores a conversation turn.
func (r *SQLite) InsertMessage(ctx context.Context, msg MessageRecord) error {
	const q = `
INSERT INTO messages (id, merchant_id, direction, channel, intent, language, widget_type, content)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);
`
	_, err := r.db.ExecContext(ctx, q,
		uuid.NewString(),
		msg.MerchantID,
		msg.Direction,
		msg.Channel,
		msg.Intent,
		msg.Language,
		msg.WidgetType,
		msg.Content,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ListRecentMessages returns the latest turns exchanged with the merchant.
func (r *SQLite) ListRecentMessages(ctx context.Context, merchantID string, limit int) ([]MessageRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `
SELECT id, direction, channel, intent, language, widget_type, content, created_at
FROM messages
WHERE merchant_id = ?
ORDER BY created_at DESC
LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, merchantID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent messages: %w", err)
	}
	defer rows.Close()

	var records []MessageRecord
	for rows.Next() {
		var msg MessageRecord
		if err := rows.Scan(&msg.ID, &msg.Direction, &msg.Channel, &msg.Intent, &msg.Language, &msg.WidgetType, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recent message: %w", err)
		}
		msg.MerchantID = merchantID
		records = append(records, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent messages: %w", err)
	}
	return records, nil
}
