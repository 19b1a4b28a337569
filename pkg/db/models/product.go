package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a sellable catalog entry. SalesCount is a popularity
// counter that only the sale recorder increments.
type Product struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name       string          `gorm:"column:name;not null"`
	CategoryID string          `gorm:"column:category_id;not null;index"`
	BasePrice  decimal.Decimal `gorm:"column:base_price;type:numeric;not null"`
	Image      string          `gorm:"column:image;not null;default:''"`
	SalesCount int             `gorm:"column:sales_count;not null;default:0"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
