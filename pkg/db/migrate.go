package db

import (
	"context"

	"github.com/tillpoint/pos-backend/pkg/db/models"
	"github.com/tillpoint/pos-backend/pkg/logger"
)

// AutoMigrate reconciles the schema with the model set. The terminal database
// is a single local file, so schema management stays inside the binary instead
// of a separate migration pipeline.
func (c *Client) AutoMigrate(ctx context.Context, logg *logger.Logger) error {
	err := c.conn.WithContext(ctx).AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.Sale{},
		&models.SaleLineItem{},
		&models.WriteOff{},
		&models.User{},
		&models.Setting{},
	)
	if err != nil {
		return err
	}
	if logg != nil {
		logg.Info(ctx, "schema migrated")
	}
	return nil
}
