package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tillpoint/pos-backend/pkg/enums"
)

// User is a terminal operator. Passwords are stored and compared as plain
// text; the terminal runs on a trusted device and hardening the login is an
// explicit non-goal.
type User struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Username    string     `gorm:"column:username;not null;uniqueIndex"`
	Password    string     `gorm:"column:password;not null" json:"-"`
	DisplayName string     `gorm:"column:display_name;not null"`
	Role        enums.Role `gorm:"column:role;not null"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
