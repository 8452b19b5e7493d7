package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-bom/internal/app"
	"github.com/odyssey-erp/odyssey-bom/internal/auth"
	"github.com/odyssey-erp/odyssey-bom/internal/platform/db"
	"github.com/odyssey-erp/odyssey-bom/internal/platform/db/migrations"
	"github.com/odyssey-erp/odyssey-bom/internal/shared"
	"github.com/odyssey-erp/odyssey-bom/jobs"
)

// Options injects the collaborators commands need.
type Options struct {
	LoadConfig func() (*app.Config, error)
	// OpenJobs builds the queue helpers; defaults to NewJobsCLI.
	OpenJobs func(redisAddr string) *JobsCLI
	Now      func() time.Time
}

// NewRootCommand assembles the bomctl command tree.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.LoadConfig == nil {
		opts.LoadConfig = app.LoadConfig
	}
	if opts.OpenJobs == nil {
		opts.OpenJobs = NewJobsCLI
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	root := &cobra.Command{
		Use:           "bomctl",
		Short:         "Operational helpers for the BOM engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(jobsCommand(opts), tokenCommand(opts), migrateCommand(opts))
	return root
}

func jobsCommand(opts Options) *cobra.Command {
	cmd := &cobra.Command{Use: "jobs", Short: "Inspect and trigger background jobs"}

	var (
		root     string
		maxDepth int
	)
	scan := &cobra.Command{
		Use:   "scan",
		Short: "Enqueue a BOM integrity scan",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := jobs.BOMIntegrityScanPayload{MaxDepth: maxDepth}
			if root != "" {
				id, err := uuid.Parse(root)
				if err != nil {
					return fmt.Errorf("invalid --root: %w", err)
				}
				payload.RootItemID = &id
			}
			return withJobs(cmd, opts, func(c *JobsCLI) error {
				info, err := c.TriggerScan(cmd.Context(), payload)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]string{"task_id": info.ID, "queue": info.Queue})
			})
		},
	}
	scan.Flags().StringVar(&root, "root", "", "limit the scan to one item's BOM")
	scan.Flags().IntVar(&maxDepth, "max-depth", 0, "depth limit, defaults to the tree limit")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show default queue counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJobs(cmd, opts, func(c *JobsCLI) error {
				s, err := c.InspectQueue(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), s)
			})
		},
	}

	var size int
	scheduled := &cobra.Command{
		Use:   "scheduled",
		Short: "List scheduled tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJobs(cmd, opts, func(c *JobsCLI) error {
				tasks, err := c.ListScheduled(cmd.Context(), size)
				if err != nil {
					return err
				}
				for _, t := range tasks {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", t.ID, t.Type, t.NextProcessAt.Format(time.RFC3339))
				}
				return nil
			})
		},
	}
	scheduled.Flags().IntVar(&size, "size", 10, "page size")

	cmd.AddCommand(scan, stats, scheduled)
	return cmd
}

func withJobs(cmd *cobra.Command, opts Options, fn func(*JobsCLI) error) error {
	cfg, err := opts.LoadConfig()
	if err != nil {
		return err
	}
	c := opts.OpenJobs(cfg.RedisAddr)
	defer func() { _ = c.Close() }()
	return fn(c)
}

func tokenCommand(opts Options) *cobra.Command {
	var (
		subject string
		email   string
		roles   []string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			if subject == "" {
				return fmt.Errorf("--sub is required")
			}
			cfg, err := opts.LoadConfig()
			if err != nil {
				return err
			}
			verifier, err := auth.NewVerifier(auth.VerifierConfig{Secret: cfg.JWTSecret, Algorithm: cfg.JWTAlgorithm, Issuer: cfg.JWTIssuer})
			if err != nil {
				return err
			}
			token, err := verifier.Issue(shared.Principal{UserID: subject, Email: email, Roles: roles}, ttl, opts.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "sub", "", "token subject (user id)")
	cmd.Flags().StringVar(&email, "email", "", "optional email claim")
	cmd.Flags().StringSliceVar(&roles, "role", []string{"readonly"}, "role names")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}

func migrateCommand(opts Options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the schema to the latest embedded version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.LoadConfig()
			if err != nil {
				return err
			}
			pool, err := db.New(cmd.Context(), cfg.PGDSN, db.Options{MaxConns: 2})
			if err != nil {
				return err
			}
			defer pool.Close()
			version, err := migrations.Apply(cmd.Context(), db.SQL(pool))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
			return nil
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
