package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"

	"restaurant-offer-service/internal/domain/model"
)

// Tx is an opaque transaction handle. Postgres implementations receive a
// pgx.Tx; passing nil runs the statement directly on the pool.
type Tx any

// TransactionManager runs a callback inside a database transaction,
// committing on nil and rolling back on error.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}

// OfferEntryRepository persists issued offer codes.
type OfferEntryRepository interface {
	// Create inserts the entry and assigns its ID. Returns
	// domain.ErrDuplicateCode when the generated code collides and
	// domain.ErrAlreadyRegistered when a unique constraint on the phone
	// number is violated.
	Create(ctx context.Context, tx Tx, entry *model.OfferEntry) error

	// FindByCode looks up an entry by its exact (upper-cased) code.
	// Returns domain.ErrNotFound when absent.
	FindByCode(ctx context.Context, tx Tx, code string) (*model.OfferEntry, error)

	// FindActiveByPhone returns the unused, unexpired entry for a phone
	// number, or domain.ErrNotFound.
	FindActiveByPhone(ctx context.Context, tx Tx, phone string, now time.Time) (*model.OfferEntry, error)

	// MarkUsed flips an unused entry to used with the given timestamp.
	// The update is conditional on used = FALSE; the bool reports whether
	// a row was actually transitioned.
	MarkUsed(ctx context.Context, tx Tx, code string, usedAt time.Time) (bool, error)

	ListAll(ctx context.Context, tx Tx) ([]*model.OfferEntry, error)
	Stats(ctx context.Context, tx Tx, now time.Time) (*model.EntryStats, error)
	ListUniquePhones(ctx context.Context, tx Tx) ([]string, error)

	// DeleteByPhone removes every entry for a phone number regardless of
	// state and returns how many were removed.
	DeleteByPhone(ctx context.Context, tx Tx, phone string) (int64, error)

	// PurgeExpiredBefore deletes entries whose expiry passed before cutoff.
	PurgeExpiredBefore(ctx context.Context, tx Tx, cutoff time.Time) (int64, error)
}
