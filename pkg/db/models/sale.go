package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillpoint/pos-backend/pkg/enums"
)

// Sale is the immutable record of a finalized cart. Rows are append-only; the
// only permitted mutation after creation is flipping Returned.
type Sale struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	CashierName   string              `gorm:"column:cashier_name;not null;index"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;not null"`
	Total         decimal.Decimal     `gorm:"column:total;type:numeric;not null"`
	Returned      bool                `gorm:"column:returned;not null;default:false"`
	SoldAt        time.Time           `gorm:"column:sold_at;not null;index"`
	Items         []SaleLineItem      `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
}

// SaleLineItem captures the per-item snapshot inside a sale. Prices are frozen
// at finalize time and never recomputed from the catalog.
type SaleLineItem struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	SaleID      uuid.UUID          `gorm:"column:sale_id;type:uuid;not null;index"`
	ProductID   uuid.UUID          `gorm:"column:product_id;type:uuid;not null"`
	Name        string             `gorm:"column:name;not null"`
	Quantity    int                `gorm:"column:quantity;not null"`
	UnitPrice   decimal.Decimal    `gorm:"column:unit_price;type:numeric;not null"`
	LineTotal   decimal.Decimal    `gorm:"column:line_total;type:numeric;not null"`
	VariantSize *enums.VariantSize `gorm:"column:variant_size"`
	ManualPrice *decimal.Decimal   `gorm:"column:manual_price;type:numeric"`
}
