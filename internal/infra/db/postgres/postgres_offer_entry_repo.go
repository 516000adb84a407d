package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"restaurant-offer-service/internal/domain"
	"restaurant-offer-service/internal/domain/model"
	"restaurant-offer-service/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.OfferEntryRepository = (*offerEntryRepo)(nil)

type offerEntryRepo struct {
	pool *pgxpool.Pool
}

func NewOfferEntryRepo(pool *pgxpool.Pool) repository.OfferEntryRepository {
	return &offerEntryRepo{pool: pool}
}

const entryColumns = `id, phone_number, code, created_at, expires_at, used, used_at`

// Create inserts a fresh entry and assigns the serial ID. Unique violations
// are translated to domain errors by index: code collisions trigger
// regeneration upstream, phone conflicts surface as already-registered.
func (r *offerEntryRepo) Create(ctx context.Context, tx repository.Tx, entry *model.OfferEntry) error {
	const q = `
INSERT INTO offer_entries (phone_number, code, created_at, expires_at, used)
VALUES ($1, $2, $3, $4, FALSE)
RETURNING id;
`
	row, err := pickRow(ctx, r.pool, tx, q,
		entry.PhoneNumber, entry.Code, entry.CreatedAt, entry.ExpiresAt,
	)
	if err != nil {
		return err
	}
	if err := row.Scan(&entry.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "code") {
				return domain.ErrDuplicateCode
			}
			return domain.ErrAlreadyRegistered
		}
		return err
	}
	return nil
}

func (r *offerEntryRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.OfferEntry, error) {
	const q = `
SELECT ` + entryColumns + `
  FROM offer_entries
 WHERE code = $1;
`
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return nil, err
	}
	return scanEntry(row)
}

func (r *offerEntryRepo) FindActiveByPhone(ctx context.Context, tx repository.Tx, phone string, now time.Time) (*model.OfferEntry, error) {
	const q = `
SELECT ` + entryColumns + `
  FROM offer_entries
 WHERE phone_number = $1 AND used = FALSE AND expires_at > $2
 ORDER BY created_at DESC
 LIMIT 1;
`
	row, err := pickRow(ctx, r.pool, tx, q, phone, now)
	if err != nil {
		return nil, err
	}
	return scanEntry(row)
}

// MarkUsed is the single-use guard: the WHERE clause conditions on
// used = FALSE so concurrent redeemers cannot both transition the row.
func (r *offerEntryRepo) MarkUsed(ctx context.Context, tx repository.Tx, code string, usedAt time.Time) (bool, error) {
	const q = `
UPDATE offer_entries
   SET used = TRUE, used_at = $2
 WHERE code = $1 AND used = FALSE;
`
	tag, err := execSQL(ctx, r.pool, tx, q, code, usedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *offerEntryRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.OfferEntry, error) {
	const q = `
SELECT ` + entryColumns + `
  FROM offer_entries
 ORDER BY created_at DESC;
`
	rows, err := pickRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.OfferEntry
	for rows.Next() {
		var e model.OfferEntry
		if err := rows.Scan(&e.ID, &e.PhoneNumber, &e.Code, &e.CreatedAt, &e.ExpiresAt, &e.Used, &e.UsedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (r *offerEntryRepo) Stats(ctx context.Context, tx repository.Tx, now time.Time) (*model.EntryStats, error) {
	const q = `
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE used = FALSE AND expires_at > $1),
       COUNT(*) FILTER (WHERE used = TRUE),
       COUNT(*) FILTER (WHERE used = FALSE AND expires_at <= $1)
  FROM offer_entries;
`
	row, err := pickRow(ctx, r.pool, tx, q, now)
	if err != nil {
		return nil, err
	}
	var s model.EntryStats
	if err := row.Scan(&s.Total, &s.Active, &s.Used, &s.Expired); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return &s, nil
}

func (r *offerEntryRepo) ListUniquePhones(ctx context.Context, tx repository.Tx) ([]string, error) {
	const q = `
SELECT DISTINCT phone_number
  FROM offer_entries
 ORDER BY phone_number;
`
	rows, err := pickRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var phones []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		phones = append(phones, p)
	}
	return phones, rows.Err()
}

func (r *offerEntryRepo) DeleteByPhone(ctx context.Context, tx repository.Tx, phone string) (int64, error) {
	const q = `DELETE FROM offer_entries WHERE phone_number = $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, phone)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *offerEntryRepo) PurgeExpiredBefore(ctx context.Context, tx repository.Tx, cutoff time.Time) (int64, error) {
	const q = `DELETE FROM offer_entries WHERE expires_at < $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanEntry(row pgx.Row) (*model.OfferEntry, error) {
	var e model.OfferEntry
	err := row.Scan(&e.ID, &e.PhoneNumber, &e.Code, &e.CreatedAt, &e.ExpiresAt, &e.Used, &e.UsedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}
