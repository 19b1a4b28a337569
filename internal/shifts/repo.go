package shifts

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tillpoint/pos-backend/pkg/db/models"
)

// WriteOffRepository manages persistence for loss events.
type WriteOffRepository interface {
	Create(ctx context.Context, writeOff *models.WriteOff) error
	// ListSince returns write-offs with created_at >= since, oldest first.
	ListSince(ctx context.Context, since time.Time) ([]models.WriteOff, error)
}

type writeOffRepository struct {
	db *gorm.DB
}

// NewWriteOffRepository returns a write-off repository bound to the provided
// database.
func NewWriteOffRepository(db *gorm.DB) WriteOffRepository {
	return &writeOffRepository{db: db}
}

func (r *writeOffRepository) Create(ctx context.Context, writeOff *models.WriteOff) error {
	return r.db.WithContext(ctx).Create(writeOff).Error
}

func (r *writeOffRepository) ListSince(ctx context.Context, since time.Time) ([]models.WriteOff, error) {
	var writeOffs []models.WriteOff
	err := r.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Order("created_at ASC").
		Find(&writeOffs).Error
	if err != nil {
		return nil, err
	}
	return writeOffs, nil
}
