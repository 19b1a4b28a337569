package settings

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"github.com/tillpoint/pos-backend/pkg/db/models"
)

// Keys for the opaque settings table. Values are JSON blobs; readers treat
// malformed or missing blobs as absent.
const (
	KeyTelegramBotToken = "telegram.bot_token"
	KeyTelegramChatID   = "telegram.chat_id"
	KeySessionActive    = "session.active"
	KeySessionStartedAt = "session.started_at"
	KeySessionUser      = "session.user"
)

// Repository is a key/JSON-blob store backed by the settings table.
type Repository interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Put(ctx context.Context, key string, value json.RawMessage) error
	Delete(ctx context.Context, key string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a settings repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Get returns the raw blob for key, or nil when the key is absent.
func (r *repository) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var setting models.Setting
	err := r.db.WithContext(ctx).First(&setting, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return setting.Value, nil
}

func (r *repository) Put(ctx context.Context, key string, value json.RawMessage) error {
	setting := models.Setting{Key: key, Value: value}
	return r.db.WithContext(ctx).Save(&setting).Error
}

func (r *repository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Delete(&models.Setting{}, "key = ?", key).Error
}

// GetString decodes the blob at key as a JSON string. Absent or malformed
// blobs yield the empty string.
func GetString(ctx context.Context, repo Repository, key string) (string, error) {
	raw, err := repo.Get(ctx, key)
	if err != nil {
		return "", err
	}
	var value string
	if raw == nil || json.Unmarshal(raw, &value) != nil {
		return "", nil
	}
	return value, nil
}

// GetBool decodes the blob at key as a JSON bool. Absent or malformed blobs
// yield false.
func GetBool(ctx context.Context, repo Repository, key string) (bool, error) {
	raw, err := repo.Get(ctx, key)
	if err != nil {
		return false, err
	}
	var value bool
	if raw == nil || json.Unmarshal(raw, &value) != nil {
		return false, nil
	}
	return value, nil
}

// PutJSON marshals value and stores it at key.
func PutJSON(ctx context.Context, repo Repository, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return repo.Put(ctx, key, raw)
}
