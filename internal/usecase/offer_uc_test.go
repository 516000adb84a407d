package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"restaurant-offer-service/internal/domain"
	"restaurant-offer-service/internal/domain/model"
	"restaurant-offer-service/internal/domain/ports/repository"
)

func TestOfferUC_RegisterAndVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newMemEntryRepo()
	uc := NewOfferUseCase(repo, &mockTxManager{}, newLogger())

	entry, err := uc.Register(ctx, "070-123 45 67")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if len(entry.Code) != 8 {
		t.Fatalf("expected 8-character code, got %q", entry.Code)
	}
	if entry.Code != strings.ToUpper(entry.Code) {
		t.Fatalf("code must be uppercase, got %q", entry.Code)
	}
	if entry.PhoneNumber != "0701234567" {
		t.Fatalf("expected normalized phone 0701234567, got %q", entry.PhoneNumber)
	}

	res, err := uc.Verify(ctx, entry.Code)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if res.Status != model.StatusValid {
		t.Fatalf("expected valid, got %q", res.Status)
	}
	if res.PhoneNumber != "0701234567" {
		t.Fatalf("expected phone 0701234567, got %q", res.PhoneNumber)
	}
}

func TestOfferUC_RegisterRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uc := NewOfferUseCase(newMemEntryRepo(), &mockTxManager{}, newLogger())

	if _, err := uc.Register(ctx, ""); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("empty phone: got %v, want ErrInvalidArgument", err)
	}
	if _, err := uc.Register(ctx, "123"); !errors.Is(err, domain.ErrPhoneFormat) {
		t.Fatalf("short phone: got %v, want ErrPhoneFormat", err)
	}
	if _, err := uc.Register(ctx, "0711111111"); !errors.Is(err, domain.ErrPhoneRepeated) {
		t.Fatalf("repeated digits: got %v, want ErrPhoneRepeated", err)
	}
}

func TestOfferUC_SingleActiveRegistrationPerNumber(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newMemEntryRepo()
	uc := NewOfferUseCase(repo, &mockTxManager{}, newLogger())

	if _, err := uc.Register(ctx, "0701234567"); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, err := uc.Register(ctx, "0701234567")
	if !errors.Is(err, domain.ErrAlreadyRegistered) {
		t.Fatalf("second Register: got %v, want ErrAlreadyRegistered", err)
	}

	// International form of the same number counts as the same number.
	_, err = uc.Register(ctx, "+46701234567")
	if !errors.Is(err, domain.ErrAlreadyRegistered) {
		t.Fatalf("international form: got %v, want ErrAlreadyRegistered", err)
	}
}

func TestOfferUC_RegisterAllowedAfterExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newMemEntryRepo()
	uc := NewOfferUseCase(repo, &mockTxManager{}, newLogger())

	now := time.Now()
	old := model.NewOfferEntry("0701234567", "AAAA1111", now.Add(-31*24*time.Hour))
	if err := repo.Create(ctx, nil, old); err != nil {
		t.Fatalf("seed entry: %v", err)
	}

	if _, err := uc.Register(ctx, "0701234567"); err != nil {
		t.Fatalf("Register after expiry: %v", err)
	}
}

func TestOfferUC_RegisterRetriesOnCodeCollision(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newMemEntryRepo()
	repo.codeCollisions = 2
	uc := NewOfferUseCase(repo, &mockTxManager{}, newLogger())

	if _, err := uc.Register(ctx, "0701234567"); err != nil {
		t.Fatalf("Register with collisions: %v", err)
	}

	repo2 := newMemEntryRepo()
	repo2.codeCollisions = 3
	uc2 := NewOfferUseCase(repo2, &mockTxManager{}, newLogger())
	if _, err := uc2.Register(ctx, "0701234567"); err == nil {
		t.Fatal("expected error when all attempts collide")
	}
}

func TestOfferUC_VerifyUnknownCode(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uc := NewOfferUseCase(newMemEntryRepo(), &mockTxManager{}, newLogger())

	res, err := uc.Verify(ctx, "ZZZZZZZZ")
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if res.Status != StatusNotFound {
		t.Fatalf("expected not_found, got %q", res.Status)
	}
}

func TestOfferUC_VerifyIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newMemEntryRepo()
	uc := NewOfferUseCase(repo, &mockTxManager{}, newLogger())

	entry, err := uc.Register(ctx, "0701234567")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	res, err := uc.Verify(ctx, strings.ToLower(entry.Code))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if res.Status != model.StatusValid {
		t.Fatalf("expected valid for lower-cased code, got %q", res.Status)
	}
}

func TestOfferUC_VerifyExpiryBoundary(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newMemEntryRepo()
	uc := NewOfferUseCase(repo, &mockTxManager{}, newLogger())

	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	entry := model.NewOfferEntry("0701234567", "BBBB2222", fixed.Add(-30*24*time.Hour))
	if err := repo.Create(ctx, nil, entry); err != nil {
		t.Fatalf("seed entry: %v", err)
	}
	// entry.ExpiresAt == fixed exactly
	uc.now = func() time.Time { return fixed }

	res, err := uc.Verify(ctx, "BBBB2222")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if res.Status != model.StatusExpired {
		t.Fatalf("expiry boundary: got %q, want expired", res.Status)
	}
}

func TestOfferUC_RedeemIsSingleUse(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newMemEntryRepo()
	uc := NewOfferUseCase(repo, &mockTxManager{}, newLogger())

	entry, err := uc.Register(ctx, "0701234567")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	usedAt, err := uc.Redeem(ctx, entry.Code)
	if err != nil {
		t.Fatalf("first Redeem: %v", err)
	}
	if usedAt.IsZero() {
		t.Fatal("expected non-zero usedAt")
	}

	if _, err := uc.Redeem(ctx, entry.Code); !errors.Is(err, domain.ErrCodeAlreadyUsed) {
		t.Fatalf("second Redeem: got %v, want ErrCodeAlreadyUsed", err)
	}

	// Verification after redemption reports already used, not expired.
	res, err := uc.Verify(ctx, entry.Code)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if res.Status != model.StatusUsed {
		t.Fatalf("expected already_used, got %q", res.Status)
	}
	if res.UsedAt == nil {
		t.Fatal("expected UsedAt to be set")
	}
}

func TestOfferUC_RedeemErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newMemEntryRepo()
	uc := NewOfferUseCase(repo, &mockTxManager{}, newLogger())

	if _, err := uc.Redeem(ctx, "NOPENOPE"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown code: got %v, want ErrNotFound", err)
	}
	if _, err := uc.Redeem(ctx, "  "); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("blank code: got %v, want ErrInvalidArgument", err)
	}

	expired := model.NewOfferEntry("0701234567", "CCCC3333", time.Now().Add(-31*24*time.Hour))
	if err := repo.Create(ctx, nil, expired); err != nil {
		t.Fatalf("seed entry: %v", err)
	}
	if _, err := uc.Redeem(ctx, "CCCC3333"); !errors.Is(err, domain.ErrCodeExpired) {
		t.Fatalf("expired code: got %v, want ErrCodeExpired", err)
	}
}

// staleReadRepo serves lookups that always look unused, so the conditional
// MarkUsed is the only thing standing between two concurrent redeemers.
type staleReadRepo struct {
	*memEntryRepo
}

func (s *staleReadRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.OfferEntry, error) {
	e, err := s.memEntryRepo.FindByCode(ctx, tx, code)
	if err != nil {
		return nil, err
	}
	e.Used = false
	e.UsedAt = nil
	return e, nil
}

func TestOfferUC_RedeemLostRaceMapsToAlreadyUsed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	inner := newMemEntryRepo()
	repo := &staleReadRepo{memEntryRepo: inner}
	uc := NewOfferUseCase(repo, &mockTxManager{}, newLogger())

	entry, err := uc.Register(ctx, "0701234567")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	// A concurrent redeemer wins between our lookup and our update.
	if ok, _ := inner.MarkUsed(ctx, nil, entry.Code, time.Now()); !ok {
		t.Fatal("seed MarkUsed failed")
	}

	if _, err := uc.Redeem(ctx, entry.Code); !errors.Is(err, domain.ErrCodeAlreadyUsed) {
		t.Fatalf("got %v, want ErrCodeAlreadyUsed", err)
	}
}
