// Command facturio is a terminal front-end for the invoice platform: upload
// PDFs, inspect extraction results, vote on extracted fields, and browse the
// admin views.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	facturio "github.com/facturio/facturio-go"
	"github.com/facturio/facturio-go/internal/cache"
	"github.com/facturio/facturio-go/internal/config"
	"github.com/facturio/facturio-go/internal/logging"
)

var (
	flagURL      string
	flagToken    string
	flagLogLevel string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "facturio: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "facturio",
		Short:        "Invoice platform client",
		Long:         "facturio uploads PDF invoices, tracks their extraction status, and records per-field feedback on the extracted data.",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&flagURL, "url", "", "Platform URL (default: $FACTURIO_API_URL)")
	cmd.PersistentFlags().StringVar(&flagToken, "token", "", "Bearer token (default: $FACTURIO_TOKEN)")
	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (default: $FACTURIO_LOG_LEVEL or info)")
	cmd.AddCommand(
		newListCmd(),
		newUploadCmd(),
		newShowCmd(),
		newDownloadCmd(),
		newFeedbackCmd(),
		newAdminCmd(),
	)
	return cmd
}

// app bundles the wired-up collaborators for one command invocation.
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	client *facturio.Client
	cache  *cache.Cache
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagURL != "" {
		cfg.BaseURL = flagURL
	}
	if flagToken != "" {
		cfg.Token = flagToken
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("platform URL is required (use --url or FACTURIO_API_URL)")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("API token is required (use --token or FACTURIO_TOKEN)")
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	client := facturio.NewClient(cfg.BaseURL,
		facturio.WithTokenSource(facturio.BearerJWT(cfg.Token)),
		facturio.WithTimeout(cfg.Timeout),
	)

	return &app{
		cfg:    cfg,
		log:    log,
		client: client,
		cache:  cache.New(client, log),
	}, nil
}

func (a *app) close() {
	_ = a.log.Sync()
}

func newListCmd() *cobra.Command {
	var (
		sortBy string
		order  string
		page   int
		limit  int
		counts bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your invoices, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			opts := &facturio.ListOptions{SortBy: sortBy, Order: order, Page: page, Limit: limit}
			if limit == 0 {
				opts.Limit = a.cfg.PageLimit
			}
			if err := a.cache.FetchList(cmd.Context(), opts); err != nil {
				return err
			}

			if counts {
				// Session-local tallies over the fetched page; not the
				// platform-wide statistics.
				return outputJSON(a.cache.StatusCounts())
			}
			return outputJSON(struct {
				Total    int                `json:"total"`
				Invoices []facturio.Invoice `json:"invoices"`
			}{
				Total:    a.cache.Total(),
				Invoices: a.cache.SortedList(),
			})
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort", "", "Server sort key: date, amount or vendor")
	cmd.Flags().StringVar(&order, "order", "", "Sort order: asc or desc")
	cmd.Flags().IntVar(&page, "page", 0, "Page number")
	cmd.Flags().IntVar(&limit, "limit", 0, "Items per page")
	cmd.Flags().BoolVar(&counts, "counts", false, "Print per-status counts for the fetched page instead of the list")
	return cmd
}

func newUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <file.pdf>",
		Short: "Upload a PDF invoice and refresh the list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			ack, err := a.cache.Upload(cmd.Context(), filepath.Base(args[0]), f)
			if err != nil {
				if ack == nil {
					return err
				}
				// Upload went through; only the follow-up list refresh failed.
				fmt.Fprintf(os.Stderr, "Warning: could not refresh invoice list: %v\n", err)
			}
			return outputJSON(ack)
		},
	}
	return cmd
}

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <invoice-id>",
		Short: "Show one invoice with its extracted data and feedback",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			inv, err := a.cache.FetchDetail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return outputJSON(inv)
		},
	}
	return cmd
}

func newDownloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download <invoice-id>",
		Short: "Print a short-lived download URL for the original PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			u, err := a.cache.DownloadURL(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return outputJSON(u)
		},
	}
	return cmd
}

// voteAliases maps CLI-friendly spellings to the wire votes.
var voteAliases = map[string]string{
	"up":     facturio.VoteUp,
	"down":   facturio.VoteDown,
	"remove": facturio.VoteRemove,
}

func newFeedbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback <invoice-id> <field> <up|down|remove>",
		Short: "Vote on one extracted field, or remove an earlier vote",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			vote, ok := voteAliases[args[2]]
			if !ok {
				vote = args[2] // allow the wire spelling too
			}

			// Load the invoice first so the field precondition can be
			// checked locally before the vote goes out.
			if _, err := a.cache.FetchDetail(cmd.Context(), args[0]); err != nil {
				return err
			}
			inv, err := a.cache.SubmitFeedback(cmd.Context(), args[0], args[1], vote)
			if err != nil {
				return err
			}
			return outputJSON(inv.FieldFeedback)
		},
	}
	return cmd
}

// outputJSON writes v to stdout as indented JSON.
func outputJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
