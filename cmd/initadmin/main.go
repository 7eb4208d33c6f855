// Command initadmin seeds the first admin account. Role assignment requires
// an existing admin, so the very first one has to be created out of band.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"

	"github.com/lettable/booking-admin/pkg/config"
	"github.com/lettable/booking-admin/pkg/db"
	"github.com/lettable/booking-admin/pkg/directory"
	"github.com/lettable/booking-admin/pkg/profile"
	"github.com/lettable/booking-admin/pkg/rbac"
)

func main() {
	email := flag.String("email", "", "admin email address")
	password := flag.String("password", "", "admin password")
	name := flag.String("name", "Administrator", "admin display name")
	flag.Parse()

	if *email == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if err := db.Migrate(cfg.Db.ToDatabaseURL()); err != nil {
		slog.Error("Failed to migrate database", "err", err)
		os.Exit(1)
	}
	pool, err := db.NewPool(ctx, cfg.Db.ToDatabaseURL())
	if err != nil {
		slog.Error("Failed to connect to database", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	directorySvc := directory.NewService(directory.NewPostgresRepository(pool))
	profileSvc := profile.NewService(profile.NewPostgresRepository(pool))

	ident, err := directorySvc.Register(ctx, *email, *password, *name)
	if err != nil {
		if errors.Is(err, directory.ErrEmailTaken) {
			// Already registered; promote instead.
			ident, err = directorySvc.GetByEmail(ctx, *email)
		}
		if err != nil {
			slog.Error("Failed to create admin identity", "err", err)
			os.Exit(1)
		}
	}

	if err := directorySvc.SetRole(ctx, ident.ID, rbac.RoleAdmin); err != nil {
		slog.Error("Failed to set admin claims", "err", err)
		os.Exit(1)
	}
	if _, err := profileSvc.SetRole(ctx, ident.ID, ident.Email, ident.DisplayName, rbac.RoleAdmin); err != nil {
		slog.Error("Failed to write admin profile", "err", err)
		os.Exit(1)
	}

	slog.Info("Admin account ready", "id", ident.ID, "email", ident.Email)
}
