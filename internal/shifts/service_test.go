package shifts

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tillpoint/pos-backend/internal/sales"
	"github.com/tillpoint/pos-backend/internal/settings"
	"github.com/tillpoint/pos-backend/pkg/db/models"
	"github.com/tillpoint/pos-backend/pkg/enums"
	pkgerrors "github.com/tillpoint/pos-backend/pkg/errors"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	err = conn.AutoMigrate(&models.Sale{}, &models.SaleLineItem{}, &models.WriteOff{}, &models.Setting{})
	if err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return conn
}

type fixture struct {
	svc   Service
	store settings.Repository
	db    *gorm.DB
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := openTestDB(t)
	store := settings.NewRepository(conn)

	svc, err := NewService(NewWriteOffRepository(conn), sales.NewRepository(conn), store, nil)
	require.NoError(t, err)

	return &fixture{svc: svc, store: store, db: conn}
}

func (f *fixture) seedSale(t *testing.T, cashier string, method enums.PaymentMethod, total string, soldAt time.Time, returned bool, quantities ...int) {
	t.Helper()
	sale := &models.Sale{
		ID:            uuid.New(),
		CashierName:   cashier,
		PaymentMethod: method,
		Total:         decimal.RequireFromString(total),
		Returned:      returned,
		SoldAt:        soldAt,
	}
	for _, qty := range quantities {
		sale.Items = append(sale.Items, models.SaleLineItem{
			ID:        uuid.New(),
			SaleID:    sale.ID,
			ProductID: uuid.New(),
			Name:      "Latte",
			Quantity:  qty,
			UnitPrice: decimal.RequireFromString("1"),
			LineTotal: decimal.NewFromInt(int64(qty)),
		})
	}
	require.NoError(t, f.db.Create(sale).Error)
}

func TestRecordWriteOffValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RecordWriteOff(ctx, decimal.Zero, nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.RecordWriteOff(ctx, decimal.RequireFromString("-5"), nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	note := "spoiled milk"
	writeOff, err := f.svc.RecordWriteOff(ctx, decimal.RequireFromString("30"), &note)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, writeOff.ID)
}

func TestBuildReportRevenueBreakdown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	since := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	now := since.Add(8 * time.Hour)

	// 200 sold, 50 returned, 30 written off: revenue keeps the return, the
	// write-off comes out.
	f.seedSale(t, "dana", enums.PaymentMethodCash, "200", since.Add(time.Hour), false, 2)
	f.seedSale(t, "dana", enums.PaymentMethodCard, "50", since.Add(2*time.Hour), true, 1)
	_, err := f.svc.RecordWriteOff(ctx, decimal.RequireFromString("30"), nil)
	require.NoError(t, err)

	report, err := f.svc.BuildReport(ctx, "dana", since, now)
	require.NoError(t, err)
	require.True(t, report.TotalRevenue.Equal(decimal.RequireFromString("200")), "got %s", report.TotalRevenue)
	require.True(t, report.ReturnsTotal.Equal(decimal.RequireFromString("50")))
	require.True(t, report.WriteOffsTotal.Equal(decimal.RequireFromString("30")))
	require.True(t, report.SessionRevenue.Equal(decimal.RequireFromString("170")), "got %s", report.SessionRevenue)
	require.Equal(t, 2, report.SaleCount)
}

func TestBuildReportPaymentPartitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	since := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	f.seedSale(t, "dana", enums.PaymentMethodCash, "100", since.Add(time.Hour), false, 1)
	f.seedSale(t, "dana", enums.PaymentMethodCard, "80", since.Add(2*time.Hour), false, 2)
	f.seedSale(t, "dana", enums.PaymentMethodCash, "40", since.Add(3*time.Hour), true, 1)
	f.seedSale(t, "dana", enums.PaymentMethodCard, "25", since.Add(4*time.Hour), true, 1)

	report, err := f.svc.BuildReport(ctx, "dana", since, since.Add(8*time.Hour))
	require.NoError(t, err)
	require.True(t, report.CashRevenue.Equal(decimal.RequireFromString("100")))
	require.True(t, report.CardRevenue.Equal(decimal.RequireFromString("80")))
	require.True(t, report.CashReturns.Equal(decimal.RequireFromString("40")))
	require.True(t, report.CardReturns.Equal(decimal.RequireFromString("25")))
	// Item counts ignore returned sales.
	require.Equal(t, 3, report.TotalItems)
}

func TestBuildReportWindowAndCashierFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	since := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	f.seedSale(t, "dana", enums.PaymentMethodCash, "100", since.Add(-time.Hour), false, 1)
	f.seedSale(t, "dana", enums.PaymentMethodCash, "60", since.Add(time.Hour), false, 1)
	f.seedSale(t, "alex", enums.PaymentMethodCard, "70", since.Add(2*time.Hour), false, 1)

	mine, err := f.svc.BuildReport(ctx, "dana", since, since.Add(8*time.Hour))
	require.NoError(t, err)
	require.Equal(t, 1, mine.SaleCount)
	require.True(t, mine.TotalRevenue.Equal(decimal.RequireFromString("60")))

	everyone, err := f.svc.BuildReport(ctx, "", since, since.Add(8*time.Hour))
	require.NoError(t, err)
	require.Equal(t, 2, everyone.SaleCount)
	require.True(t, everyone.TotalRevenue.Equal(decimal.RequireFromString("130")))
}

func TestBuildReportIsPure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	since := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	now := since.Add(8 * time.Hour)

	f.seedSale(t, "dana", enums.PaymentMethodCash, "200", since.Add(time.Hour), false, 2)
	_, err := f.svc.RecordWriteOff(ctx, decimal.RequireFromString("30"), nil)
	require.NoError(t, err)

	first, err := f.svc.BuildReport(ctx, "dana", since, now)
	require.NoError(t, err)
	second, err := f.svc.BuildReport(ctx, "dana", since, now)
	require.NoError(t, err)

	require.True(t, first.SessionRevenue.Equal(second.SessionRevenue))
	require.Equal(t, first.SaleCount, second.SaleCount)
	require.Equal(t, first.TotalItems, second.TotalItems)
}

func TestShiftLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := SessionUser{Username: "dana", DisplayName: "Dana", Role: enums.RoleCashier}

	current, err := f.svc.CurrentShift(ctx)
	require.NoError(t, err)
	require.False(t, current.Active)

	opened, err := f.svc.OpenShift(ctx, user)
	require.NoError(t, err)
	require.True(t, opened.Active)
	require.False(t, opened.StartedAt.IsZero())

	_, err = f.svc.OpenShift(ctx, user)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)

	current, err = f.svc.CurrentShift(ctx)
	require.NoError(t, err)
	require.True(t, current.Active)
	require.Equal(t, "dana", current.User.Username)
	require.Equal(t, enums.RoleCashier, current.User.Role)

	require.NoError(t, f.svc.CloseShift(ctx))
	err = f.svc.CloseShift(ctx)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	current, err = f.svc.CurrentShift(ctx)
	require.NoError(t, err)
	require.False(t, current.Active)
}

func TestCurrentShiftToleratesMalformedState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A corrupted active flag degrades to "no open shift".
	require.NoError(t, f.store.Put(ctx, settings.KeySessionActive, json.RawMessage(`{broken`)))
	current, err := f.svc.CurrentShift(ctx)
	require.NoError(t, err)
	require.False(t, current.Active)

	// A corrupted timestamp or user blob does not poison an active session.
	require.NoError(t, settings.PutJSON(ctx, f.store, settings.KeySessionActive, true))
	require.NoError(t, f.store.Put(ctx, settings.KeySessionStartedAt, json.RawMessage(`42`)))
	require.NoError(t, f.store.Put(ctx, settings.KeySessionUser, json.RawMessage(`"not an object"`)))

	current, err = f.svc.CurrentShift(ctx)
	require.NoError(t, err)
	require.True(t, current.Active)
	require.True(t, current.StartedAt.IsZero())
	require.Empty(t, current.User.Username)
}
