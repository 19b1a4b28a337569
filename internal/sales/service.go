package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/tillpoint/pos-backend/internal/catalog"
	"github.com/tillpoint/pos-backend/internal/registers"
	"github.com/tillpoint/pos-backend/pkg/db/models"
	"github.com/tillpoint/pos-backend/pkg/enums"
	pkgerrors "github.com/tillpoint/pos-backend/pkg/errors"
	"github.com/tillpoint/pos-backend/pkg/logger"
	"github.com/tillpoint/pos-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartAccessor interface {
	Snapshot(cartID uuid.UUID) (registers.CartView, error)
	Clear(cartID uuid.UUID) error
}

// Service converts finalized carts into immutable ledger entries.
type Service interface {
	FinalizeSale(ctx context.Context, cartID uuid.UUID, method enums.PaymentMethod, cashierName string) (*models.Sale, error)
	MarkReturned(ctx context.Context, saleID uuid.UUID) (*models.Sale, error)
	List(ctx context.Context, since time.Time, cashier string) ([]models.Sale, error)
}

type service struct {
	repo     Repository
	carts    cartAccessor
	products catalog.ProductRepository
	tx       txRunner
	logg     *logger.Logger
	metrics  *metrics.TerminalMetrics
	now      func() time.Time
}

// NewService wires a sale recorder with the provided stack.
func NewService(repo Repository, carts cartAccessor, products catalog.ProductRepository, tx txRunner, logg *logger.Logger, m *metrics.TerminalMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart accessor required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:     repo,
		carts:    carts,
		products: products,
		tx:       tx,
		logg:     logg,
		metrics:  m,
		now:      time.Now,
	}, nil
}

// FinalizeSale prices the cart at this moment, appends the sale to the ledger
// and empties the cart for reuse. The recorded total is never recomputed from
// later catalog state.
func (s *service) FinalizeSale(ctx context.Context, cartID uuid.UUID, method enums.PaymentMethod, cashierName string) (*models.Sale, error) {
	start := s.now()

	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", method))
	}
	if cashierName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cashier name is required")
	}

	view, err := s.carts.Snapshot(cartID)
	if err != nil {
		return nil, err
	}
	if len(view.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	sale := &models.Sale{
		ID:            uuid.New(),
		CashierName:   cashierName,
		PaymentMethod: method,
		Total:         view.Total,
		SoldAt:        s.now(),
	}
	for _, line := range view.Items {
		sale.Items = append(sale.Items, models.SaleLineItem{
			ID:          uuid.New(),
			SaleID:      sale.ID,
			ProductID:   line.Product.ID,
			Name:        line.Product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			LineTotal:   line.LineTotal,
			VariantSize: line.VariantSize,
			ManualPrice: line.ManualPrice,
		})
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, sale)
	}); err != nil {
		return nil, err
	}

	s.bumpSalesCounters(ctx, view)

	if err := s.carts.Clear(cartID); err != nil {
		// The sale is committed; a vanished cart only costs the reset.
		if s.logg != nil {
			s.logg.Warn(s.logg.WithCartID(ctx, cartID.String()), "clear cart after checkout failed")
		}
	}

	s.metrics.IncSaleRecorded(string(method))
	s.metrics.ObserveSaleDuration(string(method), s.now().Sub(start))

	return sale, nil
}

// bumpSalesCounters increments product popularity counters by sold quantity.
// Products deleted from the catalog after being carted are skipped; other
// failures are aggregated and logged, never fatal to the committed sale.
func (s *service) bumpSalesCounters(ctx context.Context, view registers.CartView) {
	var errs error
	for _, line := range view.Items {
		err := s.products.IncrementSalesCount(ctx, line.Product.ID, line.Quantity)
		if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		errs = multierr.Append(errs, fmt.Errorf("product %s: %w", line.Product.ID, err))
	}
	if errs != nil && s.logg != nil {
		s.logg.Error(ctx, "sales count update failed", errs)
	}
}

// MarkReturned flags a recorded sale as returned. The row otherwise stays
// immutable.
func (s *service) MarkReturned(ctx context.Context, saleID uuid.UUID) (*models.Sale, error) {
	sale, err := s.repo.GetByID(ctx, saleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, err
	}
	if sale.Returned {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "sale already returned")
	}

	if err := s.repo.SetReturned(ctx, saleID, true); err != nil {
		return nil, err
	}
	sale.Returned = true
	return sale, nil
}

func (s *service) List(ctx context.Context, since time.Time, cashier string) ([]models.Sale, error) {
	return s.repo.ListSince(ctx, since, cashier)
}
