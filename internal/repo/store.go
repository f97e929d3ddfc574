// Package repo persists merchants and conversation history. Two
// implementations exist: Postgres via pgx for deployments, and an
// embedded SQLite store for local development.
package repo

import (
	"context"
	"io/fs"
)

// Store defines the interface for data persistence.
type Store interface {
	Close()
	Ping(ctx context.Context) error
	RunMigrations(ctx context.Context, filesystem fs.FS) error

	UpsertMerchant(ctx context.Context, profile MerchantProfile) (*Merchant, error)
	GetMerchantByID(ctx context.Context, id string) (*Merchant, error)

	InsertMessage(ctx context.Context, msg MessageRecord) error
	ListRecentMessages(ctx context.Context, merchantID string, limit int) ([]MessageRecord, error)
}
