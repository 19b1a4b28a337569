package models

import (
	"encoding/json"
	"time"
)

// Setting is an opaque key/JSON-blob pair: telegram credentials, the
// session-active flag, the session start timestamp and the current-user
// snapshot all live here. Malformed values are treated as absent on read.
type Setting struct {
	Key       string          `gorm:"column:key;primaryKey"`
	Value     json.RawMessage `gorm:"column:value;type:jsonb"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
