package sched

import (
	"context"
	"time"

	"restaurant-offer-service/internal/infra/metrics"
	"restaurant-offer-service/internal/usecase"

	"github.com/rs/zerolog"
)

// PurgeWorker periodically removes entries whose expiry lies past the
// retention window, keeping the export list and stats bounded.
type PurgeWorker struct {
	interval  time.Duration
	retention time.Duration
	adminUC   usecase.AdminUseCase
	log       *zerolog.Logger
}

func NewPurgeWorker(interval, retention time.Duration, adminUC usecase.AdminUseCase, logger *zerolog.Logger) *PurgeWorker {
	purgeLog := logger.With().Str("component", "PurgeWorker").Logger()
	return &PurgeWorker{
		interval:  interval,
		retention: retention,
		adminUC:   adminUC,
		log:       &purgeLog,
	}
}

func (w *PurgeWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting purge worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping purge worker")
			return ctx.Err()
		case <-ticker.C:
			n, err := w.adminUC.PurgeOlderThan(ctx, w.retention)
			if err != nil {
				w.log.Error().Err(err).Msg("purge worker error")
			}
			if n > 0 {
				metrics.AddEntriesPurged(n)
				w.log.Info().Int64("count", n).Msg("expired entries purged")
			}
		}
	}
}
