package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"hrpay/internal/domain/auth"
	"hrpay/internal/platform/config"
)

// BootstrapSuperAdmin creates the initial SuperAdmin account on first
// start. It is idempotent: an existing account with the configured
// username short-circuits, and unset credentials skip the step so the
// server can still come up in environments seeded another way.
func BootstrapSuperAdmin(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.BootstrapAdminPassword == "" || cfg.BootstrapAdminEmail == "" {
		slog.Warn("bootstrap superadmin skipped; credentials not configured")
		return nil
	}

	store := auth.NewStore(pool)
	count, err := store.CountByUsername(ctx, cfg.BootstrapAdminUsername)
	if err != nil {
		return fmt.Errorf("bootstrap superadmin lookup: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(cfg.BootstrapAdminPassword)
	if err != nil {
		return fmt.Errorf("bootstrap superadmin hash: %w", err)
	}

	user, err := store.Insert(ctx, auth.User{
		Username:    cfg.BootstrapAdminUsername,
		Email:       cfg.BootstrapAdminEmail,
		Role:        auth.RoleSuperAdmin,
		Permissions: auth.PermissionsForRole(auth.RoleSuperAdmin),
		IsActive:    true,
	}, hash)
	if err != nil {
		return fmt.Errorf("bootstrap superadmin insert: %w", err)
	}

	slog.Info("bootstrap superadmin created", "username", user.Username)
	return nil
}
