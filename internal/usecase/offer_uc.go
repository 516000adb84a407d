package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"restaurant-offer-service/internal/domain"
	"restaurant-offer-service/internal/domain/model"
	"restaurant-offer-service/internal/domain/ports/repository"
	"restaurant-offer-service/internal/infra/logging"
)

// maxCodeAttempts bounds regeneration when a generated code collides with an
// existing one (unique index on code). With 4 random bytes a collision is
// ~1/4e9 per pair, so hitting the bound means something else is wrong.
const maxCodeAttempts = 3

// StatusNotFound extends the entry statuses for verification of codes that
// do not exist at all.
const StatusNotFound model.EntryStatus = "not_found"

// VerificationResult is the read-only classification of a code. PhoneNumber,
// CreatedAt and ExpiresAt are populated whenever an entry was found; UsedAt
// only for already-used entries.
type VerificationResult struct {
	Status      model.EntryStatus
	PhoneNumber string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	UsedAt      *time.Time
}

// Compile-time check
var _ OfferUseCase = (*offerUC)(nil)

// OfferUseCase covers the public code lifecycle: issue, classify, redeem.
type OfferUseCase interface {
	Register(ctx context.Context, phoneNumber string) (*model.OfferEntry, error)
	Verify(ctx context.Context, code string) (*VerificationResult, error)
	Redeem(ctx context.Context, code string) (time.Time, error)
}

type offerUC struct {
	entries repository.OfferEntryRepository
	tm      repository.TransactionManager
	log     *zerolog.Logger
	now     func() time.Time
}

func NewOfferUseCase(entries repository.OfferEntryRepository, tm repository.TransactionManager, logger *zerolog.Logger) *offerUC {
	return &offerUC{
		entries: entries,
		tm:      tm,
		log:     logger,
		now:     time.Now,
	}
}

// Register validates the phone number, enforces the one-active-entry rule and
// issues a fresh code valid for 30 days. The duplicate check and the insert
// run inside one serializable transaction so two concurrent registrations for
// the same number cannot both win.
func (u *offerUC) Register(ctx context.Context, phoneNumber string) (*model.OfferEntry, error) {
	defer logging.TraceDuration(u.log, "OfferUC.Register")()

	if strings.TrimSpace(phoneNumber) == "" {
		return nil, domain.ErrInvalidArgument
	}
	phone := model.NormalizePhone(phoneNumber)
	if err := model.ValidatePhone(phone); err != nil {
		return nil, err
	}

	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		var entry *model.OfferEntry
		err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
			now := u.now()
			_, err := u.entries.FindActiveByPhone(ctx, tx, phone, now)
			if err == nil {
				return domain.ErrAlreadyRegistered
			}
			if !errors.Is(err, domain.ErrNotFound) {
				return err
			}

			code, err := generateOfferCode()
			if err != nil {
				return fmt.Errorf("generate code: %w", err)
			}
			e := model.NewOfferEntry(phone, code, now)
			if err := u.entries.Create(ctx, tx, e); err != nil {
				return err
			}
			entry = e
			return nil
		})
		switch {
		case err == nil:
			u.log.Info().Int64("entry_id", entry.ID).Str("code", entry.Code).
				Str("phone", logging.Redact(phone)).
				Time("expires_at", entry.ExpiresAt).Msg("offer code issued")
			return entry, nil
		case errors.Is(err, domain.ErrDuplicateCode):
			u.log.Warn().Int("attempt", attempt+1).Msg("offer code collision, regenerating")
			continue
		case isSerializationFailure(err):
			// A concurrent registration for the same number committed first.
			return nil, domain.ErrAlreadyRegistered
		default:
			return nil, err
		}
	}
	return nil, fmt.Errorf("could not allocate a unique code after %d attempts", maxCodeAttempts)
}

// Verify classifies a code without side effects. Unknown codes yield a
// not_found result, not an error; callers render both states.
func (u *offerUC) Verify(ctx context.Context, code string) (*VerificationResult, error) {
	defer logging.TraceDuration(u.log, "OfferUC.Verify")()

	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, domain.ErrInvalidArgument
	}
	entry, err := u.entries.FindByCode(ctx, nil, code)
	if errors.Is(err, domain.ErrNotFound) {
		return &VerificationResult{Status: StatusNotFound}, nil
	}
	if err != nil {
		return nil, err
	}
	return &VerificationResult{
		Status:      entry.StatusAt(u.now()),
		PhoneNumber: entry.PhoneNumber,
		CreatedAt:   entry.CreatedAt,
		ExpiresAt:   entry.ExpiresAt,
		UsedAt:      entry.UsedAt,
	}, nil
}

// Redeem transitions a valid code to used exactly once. The update is
// conditional on used = FALSE, so of two concurrent redeemers only one sees
// a row transition; the loser gets ErrCodeAlreadyUsed.
func (u *offerUC) Redeem(ctx context.Context, code string) (time.Time, error) {
	defer logging.TraceDuration(u.log, "OfferUC.Redeem")()

	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return time.Time{}, domain.ErrInvalidArgument
	}
	entry, err := u.entries.FindByCode(ctx, nil, code)
	if err != nil {
		return time.Time{}, err
	}

	now := u.now()
	switch entry.StatusAt(now) {
	case model.StatusUsed:
		return time.Time{}, domain.ErrCodeAlreadyUsed
	case model.StatusExpired:
		return time.Time{}, domain.ErrCodeExpired
	}

	ok, err := u.entries.MarkUsed(ctx, nil, code, now)
	if err != nil {
		return time.Time{}, err
	}
	if !ok {
		return time.Time{}, domain.ErrCodeAlreadyUsed
	}
	u.log.Info().Str("code", code).Time("used_at", now).Msg("offer code redeemed")
	return now, nil
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "40001"
}
