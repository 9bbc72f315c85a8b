// Package seed loads the reference data and the first administrator a fresh
// database needs. Every step is idempotent.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/frahmantamala/projecthub/internal/auth"
	authPostgres "github.com/frahmantamala/projecthub/internal/auth/postgres"
	orgDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/organization"
	rbacDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/rbac"
	userDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/user"
	"github.com/frahmantamala/projecthub/internal/core/store"
	"github.com/frahmantamala/projecthub/internal/rbac"
)

type Options struct {
	AdminName     string
	AdminEmail    string
	AdminPassword string
	BCryptCost    int
	// Clear wipes every seeded table first.
	Clear bool
}

type named struct {
	Name string
	Desc string
}

var permissions = []named{
	{rbac.PermManageRoles, "Create roles and permissions, assign and revoke them"},
	{rbac.PermManageUsers, "Activate and deactivate user accounts"},
	{rbac.PermManageOrganization, "Maintain positions and departments"},
}

var roles = []named{
	{rbac.RoleAdmin, "Full administrator"},
	{"manager", "Team manager"},
	{"member", "Project member"},
}

// role name -> permission names
var grants = map[string][]string{
	rbac.RoleAdmin: {rbac.PermManageRoles, rbac.PermManageUsers, rbac.PermManageOrganization},
	"manager":      {rbac.PermManageOrganization},
}

var positions = []named{
	{"Administrator", "System administrator"},
	{"Project Manager", "Plans and tracks projects"},
	{"Software Engineer", "Builds and maintains software"},
	{"Designer", "Product and interface design"},
}

var departments = []named{
	{"Engineering", "Software engineering"},
	{"Product", "Product management and design"},
	{"Operations", "Internal operations"},
}

// Run seeds db and returns the administrator's id.
func Run(ctx context.Context, db *gorm.DB, opts Options, lg *slog.Logger) (int64, error) {
	if opts.Clear {
		if err := clearAll(ctx, db); err != nil {
			return 0, err
		}
		lg.Info("cleared existing data")
	}

	permIDs := make(map[string]int64, len(permissions))
	for _, p := range permissions {
		perm := rbacDatamodel.Permission{Name: p.Name}
		if err := firstOrCreate(ctx, db, &perm, rbacDatamodel.Permission{Description: p.Desc}); err != nil {
			return 0, fmt.Errorf("seed permission %s: %w", p.Name, err)
		}
		permIDs[p.Name] = perm.ID
	}

	roleIDs := make(map[string]int64, len(roles))
	for _, r := range roles {
		role := rbacDatamodel.Role{Name: r.Name}
		if err := firstOrCreate(ctx, db, &role, rbacDatamodel.Role{Description: r.Desc}); err != nil {
			return 0, fmt.Errorf("seed role %s: %w", r.Name, err)
		}
		roleIDs[r.Name] = role.ID
	}

	for roleName, permNames := range grants {
		for _, permName := range permNames {
			rp := rbacDatamodel.RolePermission{RoleID: roleIDs[roleName], PermissionID: permIDs[permName]}
			if err := firstOrCreate(ctx, db, &rp, rbacDatamodel.RolePermission{}); err != nil {
				return 0, fmt.Errorf("grant %s to %s: %w", permName, roleName, err)
			}
		}
	}
	lg.Info("seeded roles and permissions", "roles", len(roles), "permissions", len(permissions))

	positionIDs := make(map[string]int64, len(positions))
	for _, p := range positions {
		pos := orgDatamodel.Position{Name: p.Name}
		if err := firstOrCreate(ctx, db, &pos, orgDatamodel.Position{Description: p.Desc}); err != nil {
			return 0, fmt.Errorf("seed position %s: %w", p.Name, err)
		}
		positionIDs[p.Name] = pos.ID
	}
	for _, d := range departments {
		dep := orgDatamodel.Department{Name: d.Name}
		if err := firstOrCreate(ctx, db, &dep, orgDatamodel.Department{Description: d.Desc}); err != nil {
			return 0, fmt.Errorf("seed department %s: %w", d.Name, err)
		}
	}
	lg.Info("seeded positions and departments", "positions", len(positions), "departments", len(departments))

	adminID, err := ensureAdmin(ctx, db, opts, positionIDs["Administrator"], lg)
	if err != nil {
		return 0, err
	}

	ur := rbacDatamodel.UserRole{UserID: adminID, RoleID: roleIDs[rbac.RoleAdmin]}
	if err := firstOrCreate(ctx, db, &ur, rbacDatamodel.UserRole{}); err != nil {
		return 0, fmt.Errorf("assign admin role: %w", err)
	}

	lg.Info("seeded administrator", "email", opts.AdminEmail, "user_id", adminID)
	return adminID, nil
}

// ensureAdmin registers the administrator through the auth flow unless the
// email is already taken.
func ensureAdmin(ctx context.Context, db *gorm.DB, opts Options, positionID int64, lg *slog.Logger) (int64, error) {
	email := strings.ToLower(strings.TrimSpace(opts.AdminEmail))
	existing, err := store.NewRepository[userDatamodel.User](db).FindOne(ctx, "email = ?", email)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return 0, fmt.Errorf("lookup admin: %w", err)
	}

	authService := auth.NewService(
		authPostgres.NewRepository(db),
		auth.NewBcryptHasher(opts.BCryptCost),
		auth.NewJWTTokenService("", 0),
		nil,
		lg,
	)
	admin, err := authService.Register(ctx, auth.RegisterDTO{
		Name:       opts.AdminName,
		Email:      email,
		Password:   opts.AdminPassword,
		PositionID: positionID,
	})
	if err != nil {
		return 0, fmt.Errorf("register admin: %w", err)
	}
	return admin.ID, nil
}

// firstOrCreate looks the row up by the non-zero fields of dest and inserts it
// with attrs when missing.
func firstOrCreate[T any](ctx context.Context, db *gorm.DB, dest *T, attrs T) error {
	return store.Translate(db.WithContext(ctx).Where(dest).Attrs(attrs).FirstOrCreate(dest).Error)
}

func clearAll(ctx context.Context, db *gorm.DB) error {
	return store.Transaction(ctx, db, func(tx *gorm.DB) error {
		for _, model := range []any{
			&rbacDatamodel.RolePermission{},
			&rbacDatamodel.UserRole{},
			&userDatamodel.User{},
			&rbacDatamodel.Role{},
			&rbacDatamodel.Permission{},
			&orgDatamodel.Department{},
			&orgDatamodel.Position{},
		} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		return nil
	})
}
