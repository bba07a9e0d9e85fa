package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	facturio "github.com/facturio/facturio-go"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative views (admin role required)",
	}
	cmd.AddCommand(
		newAdminUsersCmd(),
		newAdminInvoicesCmd(),
		newAdminSetUserCmd(),
		newAdminStatsCmd(),
	)
	return cmd
}

func newAdminUsersCmd() *cobra.Command {
	var page, limit int
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List all registered users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			users, err := a.client.ListUsers(cmd.Context(), page, limit)
			if err != nil {
				return err
			}
			return outputJSON(users)
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "Page number")
	cmd.Flags().IntVar(&limit, "limit", 0, "Items per page")
	return cmd
}

func newAdminInvoicesCmd() *cobra.Command {
	var filters facturio.AdminInvoiceFilters
	cmd := &cobra.Command{
		Use:   "invoices",
		Short: "List invoices across all users, with filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			invoices, err := a.client.ListAllInvoices(cmd.Context(), filters)
			if err != nil {
				return err
			}
			return outputJSON(invoices)
		},
	}
	cmd.Flags().StringVar(&filters.UserID, "user", "", "Filter by owner user id")
	cmd.Flags().StringVar(&filters.Status, "status", "", "Filter by status: processing, processed or failed")
	cmd.Flags().StringVar(&filters.StartDate, "from", "", "Filter by upload date, inclusive (ISO date)")
	cmd.Flags().StringVar(&filters.EndDate, "to", "", "Filter by upload date, inclusive (ISO date)")
	cmd.Flags().IntVar(&filters.Page, "page", 0, "Page number")
	cmd.Flags().IntVar(&filters.Limit, "limit", 0, "Items per page")
	return cmd
}

func newAdminSetUserCmd() *cobra.Command {
	var (
		role   string
		active string
	)
	cmd := &cobra.Command{
		Use:   "set-user <user-id>",
		Short: "Change a user's role or active flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			var update facturio.UserUpdate
			if role != "" {
				update.Role = &role
			}
			if active != "" {
				parsed, err := strconv.ParseBool(active)
				if err != nil {
					return fmt.Errorf("invalid --active value %q", active)
				}
				update.IsActive = &parsed
			}

			if err := a.client.UpdateUser(cmd.Context(), args[0], update); err != nil {
				return err
			}
			fmt.Printf("user %s updated\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "New role: user or admin")
	cmd.Flags().StringVar(&active, "active", "", "New active flag: true or false")
	return cmd
}

func newAdminStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the platform-wide statistics snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.cache.RefreshStatistics(cmd.Context()); err != nil {
				return err
			}
			return outputJSON(a.cache.Statistics())
		},
	}
	return cmd
}
