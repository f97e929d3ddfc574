package repo

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres provides typed access to a Postgres database.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
	schema string
}

// NewPostgres opens a connection pool with the desired search_path.
func NewPostgres(ctx context.Context, databaseURL, schema string, logger *slog.Logger) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	if cfg.ConnConfig.RuntimeParams == nil {
		cfg.ConnConfig.RuntimeParams = map[string]string{}
	}
	if schema != "" {
		cfg.ConnConfig.RuntimeParams["search_path"] = schema
	}
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	r := &Postgres{
		pool:   pool,
		logger: logger.With("component", "repo"),
		schema: schema,
	}

	if err := r.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return r, nil
}

// Close releases the connection pool.
func (r *Postgres) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

// Ping ensures the database is reachable.
func (r *Postgres) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// RunMigrations applies schema migrations on the connected database.
func (r *Postgres) RunMigrations(ctx context.Context, filesystem fs.FS) error {
	return ApplyMigrations(ctx, r.pool, filesystem)
}

// UpsertMerchant stores or updates a merchant keyed by its channel ID.
func (r *Postgres) UpsertMerchant(ctx context.Context, profile MerchantProfile) (*Merchant, error) {
	const q = `
INSERT INTO merchants (external_id, display_name, language_preference, updated_at)
VALUES ($1, $2, COALESCE($3, 'english'), NOW())
ON CONFLICT (external_id) DO UPDATE SET
    display_name = COALESCE(EXCLUDED.display_name, merchants.display_name),
    language_preference = COALESCE(EXCLUDED.language_preference, merchants.language_preference),
    updated_at = NOW()
RETURNING id, external_id, display_name, language_preference, created_at, updated_at;
`
	row := r.pool.QueryRow(ctx, q,
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
func (r *Postgres) GetMerchantByID(ctx context.Context, id string) (*Merchant, error) {
	const q = `
SELECT id, external_id, display_name, language_preference, created_at, updated_at
FROM merchants
WHERE id = $1
LIMIT 1;
`
	row := r.pool.QueryRow(ctx, q, id)
	var m Merchant
	if err := row.Scan(&m.ID, &m.ExternalID, &m.DisplayName, &m.LanguagePreference, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, fmt.Errorf("get merchant by id: %w", err)
	}
	return &m, nil
}

// InsertMessage stores a conversation turn for auditing and history.
func (r *Postgres) InsertMessage(ctx context.Context, msg MessageRecord) error {
	const q = `
INSERT INTO messages (merchant_id, direction, channel, intent, language, widget_type, content)
VALUES ($1, $2, $3, $4, $5, $6, $7);
`
	_, err := r.pool.Exec(ctx, q,
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
func (r *Postgres) ListRecentMessages(ctx context.Context, merchantID string, limit int) ([]MessageRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `
SELECT id, direction, channel, intent, language, widget_type, content, created_at
FROM messages
WHERE merchant_id = $1
ORDER BY created_at DESC
LIMIT $2;
`
	rows, err := r.pool.Query(ctx, q, merchantID, limit)
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
