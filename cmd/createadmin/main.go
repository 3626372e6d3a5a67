// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/nhpc-ltd/blog-api/internal/config"
	"github.com/nhpc-ltd/blog-api/internal/core"
	"github.com/nhpc-ltd/blog-api/internal/user"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	name := flag.String("name", "", "admin username")
	email := flag.String("email", "", "admin email")
	password := flag.String("password", "", "admin password, read from ADMIN_PASSWORD when empty")
	employeeID := flag.String("employee-id", "", "optional ERP employee id")
	flag.Parse()

	req := user.RegisterRequest{
		Username:   *name,
		Email:      *email,
		Type:       user.RoleAdmin,
		EmployeeID: *employeeID,
		Password:   *password,
	}
	if req.Password == "" {
		req.Password = os.Getenv("ADMIN_PASSWORD")
	}

	if err := run(*configPath, req); err != nil {
		slog.Error("create admin failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, req user.RegisterRequest) error {
	if err := user.NewValidator().Struct(req); err != nil {
		return errors.New(core.FormatValidationError(err))
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx := context.Background()

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	svc := user.NewService(user.NewRepository(db.DB))

	u, err := svc.Register(ctx, req, true)
	if err != nil {
		return fmt.Errorf("register %s: %w", req.Username, err)
	}

	slog.Info("admin created", "id", u.ID, "name", u.Name, "email", u.Email)
	return nil
}
