package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"scrapectl/pkg/actions"
	"scrapectl/pkg/cli/logger"
	"scrapectl/pkg/config"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the scrapectl command tree. With no subcommand it
// launches the interactive TUI. The returned cleanup closes the store and the
// log and must run after Execute even when it fails, because cobra skips
// post-run hooks for a failing RunE.
func NewRootCommand() (*cobra.Command, func()) {
	var app *App

	root := &cobra.Command{
		Use:           "scrapectl",
		Short:         "Run web extraction operations and browse their history",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := logger.Init(logger.Options{
				File:       cfg.Log.File,
				Level:      cfg.Log.Level,
				MaxSizeMB:  cfg.Log.MaxSizeMB,
				MaxBackups: cfg.Log.MaxBackups,
				MaxAgeDays: cfg.Log.MaxAgeDays,
			}); err != nil {
				return err
			}
			logger.Log("command %s started", cmd.CommandPath())
			app = NewApp(cfg)
			app.SetOutput(cmd.OutOrStdout())
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.cfg.Validate(); err != nil {
				return err
			}
			return app.Run(cmd.Context())
		},
	}

	appFn := func() *App { return app }
	root.AddCommand(
		newRunCommand(appFn),
		newKindsCommand(),
		newHistoryCommand(appFn),
		newConfigCommand(appFn),
		newHealthCommand(appFn),
	)
	cleanup := func() {
		if app != nil {
			app.Close()
		}
		logger.CloseLog()
	}
	return root, cleanup
}

func newRunCommand(app func() *App) *cobra.Command {
	var (
		form actions.Form
		view string
	)
	cmd := &cobra.Command{
		Use:       "run <kind>",
		Short:     "Run one operation and print the result",
		Args:      cobra.ExactArgs(1),
		ValidArgs: kindNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := actions.ParseKind(args[0])
			if err != nil {
				return err
			}
			mode, err := ParseMode(view)
			if err != nil {
				return err
			}
			if err := app().cfg.Validate(); err != nil {
				return err
			}
			form.Kind = kind
			return app().RunOperation(cmd.Context(), form, mode)
		},
	}
	cmd.Flags().StringVar(&form.URL, "url", "", "target URL")
	cmd.Flags().StringVar(&form.URLs, "urls", "", "comma-separated URLs for multi-URL operations")
	cmd.Flags().StringVar(&form.Whitelist, "whitelist", "", "comma-separated keywords links must contain")
	cmd.Flags().StringVar(&form.Blacklist, "blacklist", "", "comma-separated keywords links must not contain")
	cmd.Flags().IntVar(&form.LinkLimit, "limit", actions.DefaultLinkLimit, "maximum links to return (1-1000)")
	cmd.Flags().StringVar(&view, "view", "raw", "result view: raw, links, related or media")
	return cmd
}

func newKindsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the available operations",
		Args:  cobra.NoArgs,
		// Needs no config; override the root hook.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "Kind\tOperation\tInput")
			for _, kind := range actions.Kinds() {
				input := "--url"
				if kind.UsesURLList() {
					input = "--urls"
				}
				if kind.RequiresFilters() {
					input += " --whitelist --blacklist --limit"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", kind, kind.Label(), input)
			}
			return w.Flush()
		},
	}
}

func newHistoryCommand(app func() *App) *cobra.Command {
	var server string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse and manage the operation history",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Cobra runs only the nearest persistent hook, so chain to the root's.
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			if server != "" {
				app().UseRemoteHistory(server)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().ListHistory(cmd.Context())
		},
	}
	cmd.PersistentFlags().StringVar(&server, "server", "", "read history from a scrapectl-api server instead of the local store")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List history entries, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return app().ListHistory(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "show <index>",
			Short: "Show one entry and its data",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				index, err := parseIndex(args[0])
				if err != nil {
					return err
				}
				return app().ShowHistory(cmd.Context(), index)
			},
		},
		&cobra.Command{
			Use:   "delete <index>",
			Short: "Delete one entry",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				index, err := parseIndex(args[0])
				if err != nil {
					return err
				}
				return app().DeleteHistory(cmd.Context(), index)
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Delete every entry",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return app().ClearHistory(cmd.Context())
			},
		},
	)

	var copyOut bool
	export := &cobra.Command{
		Use:   "export <index>",
		Short: "Print an entry's data as a Markdown JSON block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			return app().ExportHistory(cmd.Context(), index, copyOut)
		},
	}
	export.Flags().BoolVar(&copyOut, "copy", false, "copy to the clipboard instead of printing")
	cmd.AddCommand(export)
	return cmd
}

func newConfigCommand(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show current configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return app().ShowConfig()
			},
		},
		&cobra.Command{
			Use:   "set <section.key=value>",
			Short: "Set a config value",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := app().SetConfig(args[0]); err != nil {
					return fmt.Errorf("failed to set config: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Configuration updated successfully")
				return nil
			},
		},
	)
	return cmd
}

func newHealthCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the scraper service is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().Health(cmd.Context())
		},
	}
}

func parseIndex(s string) (int, error) {
	index, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || index < 0 {
		return 0, fmt.Errorf("invalid index %q: expected a non-negative integer", s)
	}
	return index, nil
}

func kindNames() []string {
	kinds := actions.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return names
}
