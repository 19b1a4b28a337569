package sales

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tillpoint/pos-backend/internal/catalog"
	"github.com/tillpoint/pos-backend/internal/registers"
	"github.com/tillpoint/pos-backend/pkg/db/models"
	"github.com/tillpoint/pos-backend/pkg/enums"
	pkgerrors "github.com/tillpoint/pos-backend/pkg/errors"
	"github.com/tillpoint/pos-backend/pkg/metrics"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	err = conn.AutoMigrate(&models.Category{}, &models.Product{}, &models.Sale{}, &models.SaleLineItem{})
	if err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return conn
}

type testTxRunner struct {
	db *gorm.DB
}

func (r *testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(r.db)
}

type fixture struct {
	svc      Service
	repo     Repository
	carts    *registers.Manager
	products catalog.ProductRepository
	db       *gorm.DB
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := openTestDB(t)
	carts := registers.NewManager()
	products := catalog.NewProductRepository(conn)
	repo := NewRepository(conn)

	svc, err := NewService(repo, carts, products, &testTxRunner{db: conn}, nil, metrics.NewTerminalMetrics(nil))
	require.NoError(t, err)

	return &fixture{svc: svc, repo: repo, carts: carts, products: products, db: conn}
}

func (f *fixture) seedProduct(t *testing.T, name, price string) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:         uuid.New(),
		Name:       name,
		CategoryID: "coffee",
		BasePrice:  decimal.RequireFromString(price),
	}
	require.NoError(t, f.db.Create(product).Error)
	return product
}

func snapshotOf(product *models.Product, sized bool) registers.ProductSnapshot {
	return registers.ProductSnapshot{
		ID:        product.ID,
		Name:      product.Name,
		BasePrice: product.BasePrice,
		Sized:     sized,
	}
}

func TestFinalizeSaleEmptyCart(t *testing.T) {
	f := newFixture(t)
	cartID := f.carts.ActiveCartID()

	_, err := f.svc.FinalizeSale(context.Background(), cartID, enums.PaymentMethodCash, "dana")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)

	ledger, err := f.repo.ListSince(context.Background(), time.Time{}, "")
	require.NoError(t, err)
	require.Empty(t, ledger, "empty-cart failure must never append to the ledger")
}

func TestFinalizeSaleValidation(t *testing.T) {
	f := newFixture(t)
	cartID := f.carts.ActiveCartID()

	_, err := f.svc.FinalizeSale(context.Background(), cartID, enums.PaymentMethod("crypto"), "dana")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.FinalizeSale(context.Background(), cartID, enums.PaymentMethodCash, "")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.FinalizeSale(context.Background(), uuid.New(), enums.PaymentMethodCash, "dana")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestFinalizeSaleRecordsLedgerEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cartID := f.carts.ActiveCartID()
	latte := f.seedProduct(t, "Latte", "100")

	require.NoError(t, f.carts.AddItem(cartID, snapshotOf(latte, true)))
	require.NoError(t, f.carts.AddItem(cartID, snapshotOf(latte, true)))
	require.NoError(t, f.carts.SetVariant(cartID, latte.ID, enums.VariantSizeMedium))

	sale, err := f.svc.FinalizeSale(ctx, cartID, enums.PaymentMethodCard, "dana")
	require.NoError(t, err)
	require.True(t, sale.Total.Equal(decimal.RequireFromString("260")), "got %s", sale.Total)
	require.Equal(t, enums.PaymentMethodCard, sale.PaymentMethod)
	require.Equal(t, "dana", sale.CashierName)
	require.False(t, sale.Returned)

	stored, err := f.repo.GetByID(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	require.Equal(t, 2, stored.Items[0].Quantity)
	require.True(t, stored.Items[0].UnitPrice.Equal(decimal.RequireFromString("130")))

	// Cart is reused as a fresh receptacle.
	view, err := f.carts.Snapshot(cartID)
	require.NoError(t, err)
	require.Empty(t, view.Items)
}

func TestFinalizeSalePriceAtSaleTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cartID := f.carts.ActiveCartID()
	latte := f.seedProduct(t, "Latte", "100")

	require.NoError(t, f.carts.AddItem(cartID, snapshotOf(latte, false)))
	sale, err := f.svc.FinalizeSale(ctx, cartID, enums.PaymentMethodCash, "dana")
	require.NoError(t, err)

	// A later catalog edit must not reprice the recorded sale.
	require.NoError(t, f.db.Model(&models.Product{}).
		Where("id = ?", latte.ID).
		Update("base_price", decimal.RequireFromString("999")).Error)

	stored, err := f.repo.GetByID(ctx, sale.ID)
	require.NoError(t, err)
	require.True(t, stored.Total.Equal(decimal.RequireFromString("100")))
}

func TestFinalizeSaleAccumulatesSalesCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cartID := f.carts.ActiveCartID()
	latte := f.seedProduct(t, "Latte", "100")

	quantities := []int{2, 1, 3}
	for _, qty := range quantities {
		for i := 0; i < qty; i++ {
			require.NoError(t, f.carts.AddItem(cartID, snapshotOf(latte, false)))
		}
		_, err := f.svc.FinalizeSale(ctx, cartID, enums.PaymentMethodCash, "dana")
		require.NoError(t, err)
	}

	stored, err := f.products.GetByID(ctx, latte.ID)
	require.NoError(t, err)
	require.Equal(t, 6, stored.SalesCount)
}

func TestFinalizeSaleSkipsDeletedProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cartID := f.carts.ActiveCartID()
	latte := f.seedProduct(t, "Latte", "100")

	require.NoError(t, f.carts.AddItem(cartID, snapshotOf(latte, false)))
	require.NoError(t, f.db.Delete(&models.Product{}, "id = ?", latte.ID).Error)

	sale, err := f.svc.FinalizeSale(ctx, cartID, enums.PaymentMethodCash, "dana")
	require.NoError(t, err, "missing product must not block the sale")
	require.True(t, sale.Total.Equal(decimal.RequireFromString("100")))
}

func TestMarkReturned(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cartID := f.carts.ActiveCartID()
	latte := f.seedProduct(t, "Latte", "100")

	require.NoError(t, f.carts.AddItem(cartID, snapshotOf(latte, false)))
	sale, err := f.svc.FinalizeSale(ctx, cartID, enums.PaymentMethodCash, "dana")
	require.NoError(t, err)

	returned, err := f.svc.MarkReturned(ctx, sale.ID)
	require.NoError(t, err)
	require.True(t, returned.Returned)

	_, err = f.svc.MarkReturned(ctx, sale.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)

	_, err = f.svc.MarkReturned(ctx, uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListFiltersByCashier(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	latte := f.seedProduct(t, "Latte", "100")

	cartID := f.carts.ActiveCartID()
	require.NoError(t, f.carts.AddItem(cartID, snapshotOf(latte, false)))
	_, err := f.svc.FinalizeSale(ctx, cartID, enums.PaymentMethodCash, "dana")
	require.NoError(t, err)

	require.NoError(t, f.carts.AddItem(cartID, snapshotOf(latte, false)))
	_, err = f.svc.FinalizeSale(ctx, cartID, enums.PaymentMethodCard, "alex")
	require.NoError(t, err)

	all, err := f.svc.List(ctx, time.Time{}, "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	mine, err := f.svc.List(ctx, time.Time{}, "dana")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, "dana", mine[0].CashierName)
}
