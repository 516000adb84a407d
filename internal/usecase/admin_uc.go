package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"restaurant-offer-service/internal/domain"
	"restaurant-offer-service/internal/domain/model"
	"restaurant-offer-service/internal/domain/ports/repository"
	"restaurant-offer-service/internal/infra/logging"
)

// Compile-time check
var _ AdminUseCase = (*adminUC)(nil)

// AdminUseCase exposes the staff dashboard operations: listing with stats,
// contact-list export, unsubscribe, and retention purging.
type AdminUseCase interface {
	ListAll(ctx context.Context) ([]*model.OfferEntry, *model.EntryStats, error)
	ExportUniquePhones(ctx context.Context) ([]string, error)
	Unsubscribe(ctx context.Context, phoneNumber string) (int64, error)
	PurgeOlderThan(ctx context.Context, retention time.Duration) (int64, error)
}

type adminUC struct {
	entries repository.OfferEntryRepository
	log     *zerolog.Logger
	now     func() time.Time
}

func NewAdminUseCase(entries repository.OfferEntryRepository, logger *zerolog.Logger) *adminUC {
	return &adminUC{
		entries: entries,
		log:     logger,
		now:     time.Now,
	}
}

func (u *adminUC) ListAll(ctx context.Context) ([]*model.OfferEntry, *model.EntryStats, error) {
	defer logging.TraceDuration(u.log, "AdminUC.ListAll")()

	entries, err := u.entries.ListAll(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	stats, err := u.entries.Stats(ctx, nil, u.now())
	if err != nil {
		return nil, nil, err
	}
	return entries, stats, nil
}

func (u *adminUC) ExportUniquePhones(ctx context.Context) ([]string, error) {
	defer logging.TraceDuration(u.log, "AdminUC.ExportUniquePhones")()

	return u.entries.ListUniquePhones(ctx, nil)
}

// Unsubscribe deletes every entry for the number, used and expired ones
// included. Returns domain.ErrNotFound when nothing existed.
func (u *adminUC) Unsubscribe(ctx context.Context, phoneNumber string) (int64, error) {
	defer logging.TraceDuration(u.log, "AdminUC.Unsubscribe")()

	if strings.TrimSpace(phoneNumber) == "" {
		return 0, domain.ErrInvalidArgument
	}
	phone := model.NormalizePhone(phoneNumber)

	removed, err := u.entries.DeleteByPhone(ctx, nil, phone)
	if err != nil {
		return 0, err
	}
	if removed == 0 {
		return 0, domain.ErrNotFound
	}
	u.log.Info().Int64("removed", removed).Str("phone", logging.Redact(phone)).
		Msg("unsubscribed phone number")
	return removed, nil
}

// PurgeOlderThan removes entries whose expiry lies further back than the
// retention window. Used and unused entries alike: past retention there is
// no reason to keep either.
func (u *adminUC) PurgeOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := u.now().Add(-retention)
	return u.entries.PurgeExpiredBefore(ctx, nil, cutoff)
}
