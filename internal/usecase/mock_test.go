package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"restaurant-offer-service/internal/domain"
	"restaurant-offer-service/internal/domain/model"
	"restaurant-offer-service/internal/domain/ports/repository"
)

// --- In-memory repository for use case tests ---

type memEntryRepo struct {
	mu      sync.Mutex
	seq     int64
	entries []*model.OfferEntry

	// error hooks
	createErr      error
	codeCollisions int // next N Creates fail with ErrDuplicateCode
}

func newMemEntryRepo() *memEntryRepo {
	return &memEntryRepo{}
}

func (m *memEntryRepo) Create(ctx context.Context, tx repository.Tx, e *model.OfferEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if m.codeCollisions > 0 {
		m.codeCollisions--
		return domain.ErrDuplicateCode
	}
	for _, x := range m.entries {
		if x.Code == e.Code {
			return domain.ErrDuplicateCode
		}
	}
	m.seq++
	e.ID = m.seq
	cp := *e
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *memEntryRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.OfferEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.Code == code {
			cp := *e
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memEntryRepo) FindActiveByPhone(ctx context.Context, tx repository.Tx, phone string, now time.Time) (*model.OfferEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.PhoneNumber == phone && !e.Used && e.ExpiresAt.After(now) {
			cp := *e
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memEntryRepo) MarkUsed(ctx context.Context, tx repository.Tx, code string, usedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.Code == code && !e.Used {
			e.Used = true
			t := usedAt
			e.UsedAt = &t
			return true, nil
		}
	}
	return false, nil
}

func (m *memEntryRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.OfferEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.OfferEntry, 0, len(m.entries))
	for _, e := range m.entries {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memEntryRepo) Stats(ctx context.Context, tx repository.Tx, now time.Time) (*model.EntryStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &model.EntryStats{Total: len(m.entries)}
	for _, e := range m.entries {
		switch {
		case e.Used:
			s.Used++
		case e.ExpiresAt.After(now):
			s.Active++
		default:
			s.Expired++
		}
	}
	return s, nil
}

func (m *memEntryRepo) ListUniquePhones(ctx context.Context, tx repository.Tx) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]struct{}{}
	var out []string
	for _, e := range m.entries {
		if _, ok := seen[e.PhoneNumber]; !ok {
			seen[e.PhoneNumber] = struct{}{}
			out = append(out, e.PhoneNumber)
		}
	}
	return out, nil
}

func (m *memEntryRepo) DeleteByPhone(ctx context.Context, tx repository.Tx, phone string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*model.OfferEntry
	var removed int64
	for _, e := range m.entries {
		if e.PhoneNumber == phone {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	m.entries = kept
	return removed, nil
}

func (m *memEntryRepo) PurgeExpiredBefore(ctx context.Context, tx repository.Tx, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*model.OfferEntry
	var removed int64
	for _, e := range m.entries {
		if e.ExpiresAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	m.entries = kept
	return removed, nil
}

// --- TransactionManager passthrough ---

type mockTxManager struct{}

func (m *mockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}

func newLogger() *zerolog.Logger { l := zerolog.Nop(); return &l }
