package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WriteOff records a loss event (spoilage, breakage) with no backing sale.
type WriteOff struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric;not null"`
	Note      *string         `gorm:"column:note"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime;index"`
}
