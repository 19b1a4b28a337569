package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillpoint/pos-backend/pkg/db/models"
)

// Repository manages persistence for the append-only sales ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, sale *models.Sale) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	// ListSince returns sales with sold_at >= since, oldest first. An empty
	// cashier matches every cashier.
	ListSince(ctx context.Context, since time.Time, cashier string) ([]models.Sale, error)
	SetReturned(ctx context.Context, id uuid.UUID, returned bool) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a sales repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&sale, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *repository) ListSince(ctx context.Context, since time.Time, cashier string) ([]models.Sale, error) {
	query := r.db.WithContext(ctx).
		Preload("Items").
		Where("sold_at >= ?", since)
	if cashier != "" {
		query = query.Where("cashier_name = ?", cashier)
	}

	var sales []models.Sale
	if err := query.Order("sold_at ASC").Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *repository) SetReturned(ctx context.Context, id uuid.UUID, returned bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("id = ?", id).
		Update("returned", returned).Error
}
