package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/n1fty/cms/pkg/cmsclient"
)

func registerClientFlags(cmd *cobra.Command, in *cmsclient.ClientInput) {
	cmd.Flags().StringVar(&in.Name, "name", "", "Client name (required)")
	cmd.Flags().StringVar(&in.Email, "email", "", "Client email")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "Client phone")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "Free-form notes")
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid client id %q", arg)
	}
	return id, nil
}

func newClientsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Manage clients",
	}
	cmd.AddCommand(newClientsListCommand(a))
	cmd.AddCommand(newClientsGetCommand(a))
	cmd.AddCommand(newClientsCreateCommand(a))
	cmd.AddCommand(newClientsUpdateCommand(a))
	cmd.AddCommand(newClientsDeleteCommand(a))
	return cmd
}

func newClientsListCommand(a *app) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active clients, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			clients, err := c.ListClients(cmd.Context(), search)
			if err != nil {
				return err
			}
			return printClients(cmd.OutOrStdout(), clients)
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "Filter by name or email")
	return cmd
}

func newClientsGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			client, err := c.GetClient(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printClients(cmd.OutOrStdout(), []cmsclient.ClientRecord{*client})
		},
	}
}

func newClientsCreateCommand(a *app) *cobra.Command {
	var (
		in  cmsclient.ClientInput
		key string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a client",
		Long: `Create a client. To retry a create safely, pass the same
--idempotency-key on every attempt; without a key each run creates a new client.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			client, replayed, err := c.CreateClient(cmd.Context(), in, key)
			if err != nil {
				return err
			}
			if replayed {
				fmt.Fprintf(cmd.OutOrStdout(), "Client already created with key %s\n", key)
			}
			return printClients(cmd.OutOrStdout(), []cmsclient.ClientRecord{*client})
		},
	}
	registerClientFlags(cmd, &in)
	cmd.Flags().StringVar(&key, "idempotency-key", "", "Reuse the same key when retrying so the client is created once")
	return cmd
}

func newClientsUpdateCommand(a *app) *cobra.Command {
	var in cmsclient.ClientInput
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a client's fields",
		Long: `Replace a client's fields. Omitted optional fields are cleared, so pass
every value you want to keep.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			client, err := c.UpdateClient(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			return printClients(cmd.OutOrStdout(), []cmsclient.ClientRecord{*client})
		},
	}
	registerClientFlags(cmd, &in)
	return cmd
}

func newClientsDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Soft-delete a client (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			if err := c.DeleteClient(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Client %d deleted\n", id)
			return nil
		},
	}
}

func newStatsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			stats, err := c.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Active clients: %d\n", stats.TotalClients)
			if stats.TotalUsers != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Users:          %d\n", *stats.TotalUsers)
			}
			return nil
		},
	}
}

func printClients(w io.Writer, clients []cmsclient.ClientRecord) error {
	if len(clients) == 0 {
		_, err := fmt.Fprintln(w, "No clients found")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPHONE\tCREATED")
	for _, c := range clients {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Email, c.Phone, c.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}
