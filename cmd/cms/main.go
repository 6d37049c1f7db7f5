// Command cms runs the Client Management System API and its maintenance tasks.
//
//	@title						Client Management System API
//	@version					1.0
//	@description				Multi-tenant client management: JWT authentication, users, clients and interactions.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "cms",
		Short: "Client Management System backend",
		Long: `Client Management System backend.

Configuration is read from the environment, optionally seeded from a .env
file in the working directory.

Examples:
  cms serve                                          # Start the HTTP API
  cms migrate                                        # Apply pending schema changes
  cms create-admin --email admin@cms.local --password s3cret`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCommand())
	root.AddCommand(newMigrateCommand())
	root.AddCommand(newCreateAdminCommand())
	return root
}
