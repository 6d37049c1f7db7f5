package main

import (
	"errors"
	"fmt"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/n1fty/cms/internal/core/service"
	"github.com/n1fty/cms/internal/pkg/config"
	"github.com/n1fty/cms/internal/pkg/security"
	"github.com/n1fty/cms/pkg/logger"
)

const (
	emailFlag    = "email"
	passwordFlag = "password"
	nameFlag     = "name"
)

var adminFlags = map[string]cobraflags.Flag{
	emailFlag: &cobraflags.StringFlag{
		Name:  emailFlag,
		Value: "",
		Usage: "Admin email (required)",
	},
	passwordFlag: &cobraflags.StringFlag{
		Name:  passwordFlag,
		Value: "",
		Usage: "Admin password (required)",
	},
	nameFlag: &cobraflags.StringFlag{
		Name:  nameFlag,
		Value: "Administrator",
		Usage: "Display name, used only when the user is created",
	},
}

func newCreateAdminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin user, or promote an existing one",
		Long: `Create an admin user, or promote an existing one.

If a user with the given email exists, its password is replaced and its role
set to admin. Otherwise a new admin is created.`,
		Args: cobra.NoArgs,
		RunE: createAdminCommand,
	}
	cobraflags.RegisterMap(cmd, adminFlags)
	return cmd
}

func createAdminCommand(cmd *cobra.Command, _ []string) error {
	email := adminFlags[emailFlag].GetString()
	password := adminFlags[passwordFlag].GetString()
	name := adminFlags[nameFlag].GetString()
	if email == "" || password == "" {
		return errors.New("--email and --password are required")
	}

	ctx := cmd.Context()
	cfg, _, err := loadConfig(ctx, false)
	if err != nil {
		return err
	}
	if cfg.Store.Driver == config.DriverMemory {
		return errors.New("create-admin needs a persistent store, STORE_DRIVER is memory")
	}

	st, err := openStore(ctx, cfg, logger.Component("store"), true)
	if err != nil {
		return err
	}
	defer func() { _ = st.close(ctx) }()

	// Seeding never issues a token, so no signing secret is needed.
	auth := service.NewAuthService(st.users, security.NewBcryptHasher(cfg.Auth.BcryptCost), nil, logger.Component("auth"))
	user, created, err := auth.SeedAdmin(ctx, name, email, password)
	if err != nil {
		return err
	}

	verb := "updated"
	if created {
		verb = "created"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Admin user %s: %s (id %d)\n", verb, user.Email, user.ID)
	return nil
}
