package models

import "time"

// Category groups products on the selection grid. Sized categories apply the
// variant price multipliers; Position drives the display order.
type Category struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Label     string    `gorm:"column:label;not null"`
	Icon      string    `gorm:"column:icon;not null;default:''"`
	Sized     bool      `gorm:"column:sized;not null;default:false"`
	Position  int       `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
