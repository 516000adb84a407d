package web

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"restaurant-offer-service/internal/domain/model"
	"restaurant-offer-service/internal/usecase"
)

// --- Use case mocks for handler tests ---

type mockOfferUC struct {
	RegisterFunc func(ctx context.Context, phoneNumber string) (*model.OfferEntry, error)
	VerifyFunc   func(ctx context.Context, code string) (*usecase.VerificationResult, error)
	RedeemFunc   func(ctx context.Context, code string) (time.Time, error)
}

func (m *mockOfferUC) Register(ctx context.Context, phoneNumber string) (*model.OfferEntry, error) {
	return m.RegisterFunc(ctx, phoneNumber)
}

func (m *mockOfferUC) Verify(ctx context.Context, code string) (*usecase.VerificationResult, error) {
	return m.VerifyFunc(ctx, code)
}

func (m *mockOfferUC) Redeem(ctx context.Context, code string) (time.Time, error) {
	return m.RedeemFunc(ctx, code)
}

type mockAdminUC struct {
	ListAllFunc            func(ctx context.Context) ([]*model.OfferEntry, *model.EntryStats, error)
	ExportUniquePhonesFunc func(ctx context.Context) ([]string, error)
	UnsubscribeFunc        func(ctx context.Context, phoneNumber string) (int64, error)
	PurgeOlderThanFunc     func(ctx context.Context, retention time.Duration) (int64, error)
}

func (m *mockAdminUC) ListAll(ctx context.Context) ([]*model.OfferEntry, *model.EntryStats, error) {
	return m.ListAllFunc(ctx)
}

func (m *mockAdminUC) ExportUniquePhones(ctx context.Context) ([]string, error) {
	return m.ExportUniquePhonesFunc(ctx)
}

func (m *mockAdminUC) Unsubscribe(ctx context.Context, phoneNumber string) (int64, error) {
	return m.UnsubscribeFunc(ctx, phoneNumber)
}

func (m *mockAdminUC) PurgeOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	return m.PurgeOlderThanFunc(ctx, retention)
}

func newLogger() *zerolog.Logger { l := zerolog.Nop(); return &l }
