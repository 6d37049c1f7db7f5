// Command cmsctl is a terminal client for the CMS API. The session token is
// kept in the user config directory between invocations.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/n1fty/cms/pkg/cmsclient"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		if errors.Is(err, cmsclient.ErrSessionExpired) || errors.Is(err, cmsclient.ErrNotLoggedIn) {
			fmt.Fprintln(os.Stderr, "error:", err, "(run: cmsctl login)")
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		stop()
		os.Exit(1)
	}
}

// app carries what every subcommand needs once flags are parsed.
type app struct {
	serverURL   string
	sessionPath string
}

func (a *app) client() (*cmsclient.Client, error) {
	path := a.sessionPath
	if path == "" {
		var err error
		if path, err = cmsclient.DefaultSessionPath(); err != nil {
			return nil, err
		}
	}
	return cmsclient.New(a.serverURL, cmsclient.WithTokenStore(cmsclient.NewFileStore(path))), nil
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "cmsctl",
		Short: "Command-line client for the Client Management System",
		Long: `Command-line client for the Client Management System.

Examples:
  cmsctl login --email admin@cms.local --password s3cret
  cmsctl clients list --search acme
  cmsctl clients create --name "Acme" --email sales@acme.test
  cmsctl clients delete 42`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serverDefault := os.Getenv("CMS_URL")
	if serverDefault == "" {
		serverDefault = cmsclient.DefaultBaseURL
	}
	root.PersistentFlags().StringVar(&a.serverURL, "server", serverDefault, "API base URL (env CMS_URL)")
	root.PersistentFlags().StringVar(&a.sessionPath, "session-file", "", "Session file (default <user config dir>/cms/session.json)")

	root.AddCommand(newLoginCommand(a))
	root.AddCommand(newRegisterCommand(a))
	root.AddCommand(newLogoutCommand(a))
	root.AddCommand(newWhoamiCommand(a))
	root.AddCommand(newClientsCommand(a))
	root.AddCommand(newStatsCommand(a))
	return root
}
