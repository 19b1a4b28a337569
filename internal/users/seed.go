package users

import (
	"context"

	"github.com/tillpoint/pos-backend/pkg/enums"
	"github.com/tillpoint/pos-backend/pkg/logger"
)

// EnsureDefaultAdmin creates the bootstrap admin account when no users exist,
// so a fresh terminal can be logged into.
func EnsureDefaultAdmin(ctx context.Context, svc Service, logg *logger.Logger) error {
	existing, err := svc.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	_, err = svc.Create(ctx, Input{
		Username:    "admin",
		Password:    "admin",
		DisplayName: "Administrator",
		Role:        enums.RoleAdmin,
	})
	if err != nil {
		return err
	}
	if logg != nil {
		logg.Warn(ctx, "seeded default admin account, change its password")
	}
	return nil
}
