// Package cli implements the estudio command line.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dgb173/Masivo/internal/app"
	"github.com/dgb173/Masivo/internal/pkg/health"
	"github.com/dgb173/Masivo/internal/pkg/health/handlers"
	"github.com/dgb173/Masivo/internal/render"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

const defaultConfigPath = "configs/production.yaml"

// Backend builds the running app from a config path.
type Backend func(configPath string) (*app.App, error)

func defaultBackend(configPath string) (*app.App, error) {
	if _, err := os.Stat(configPath); configPath == defaultConfigPath && os.IsNotExist(err) {
		configPath = ""
	}
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return app.New(cfg, "estudio"), nil
}

type options struct {
	configPath string
	format     string
	limit      int
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(defaultBackend, handlers.Studier(nil))
}

// newRootCmd builds the command tree. A non-nil studier replaces the one of the app, which is
// then never built.
func newRootCmd(backend Backend, studier handlers.Studier) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "estudio",
		Short: "Study football matches against their current Asian handicap and goal line",
		Long: `estudio reads a match's head-to-head page, finds the relevant precedents and
states whether the current handicap and goal line would have covered each of them.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfigPath, "Path to the YAML config")

	withStudier := func(cmd *cobra.Command, fn func(ctx context.Context, s handlers.Studier) error) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if studier != nil {
			return fn(ctx, studier)
		}
		a, err := backend(opts.configPath)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(ctx, a.Study)
	}

	studyCmd := &cobra.Command{
		Use:   "study <match id>",
		Short: "Run the coverage study of one match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(opts.format)
			if err != nil {
				return err
			}
			return withStudier(cmd, func(ctx context.Context, s handlers.Studier) error {
				r, err := s.Study(ctx, strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				if format == FormatJSON {
					return writeJSON(cmd.OutOrStdout(), r)
				}
				_, err = io.WriteString(cmd.OutOrStdout(), render.Report(r))
				return err
			})
		},
	}
	studyCmd.Flags().StringVar(&opts.format, "format", FormatText, "Output format: text or json")

	matchesCmd := &cobra.Command{
		Use:   "matches",
		Short: "List upcoming matches that have a handicap line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(opts.format)
			if err != nil {
				return err
			}
			return withStudier(cmd, func(ctx context.Context, s handlers.Studier) error {
				ms, err := s.Upcoming(ctx, opts.limit)
				if err != nil {
					return err
				}
				if format == FormatJSON {
					return writeJSON(cmd.OutOrStdout(), ms)
				}
				_, err = io.WriteString(cmd.OutOrStdout(), render.Upcoming(ms))
				return err
			})
		},
	}
	matchesCmd.Flags().StringVar(&opts.format, "format", FormatText, "Output format: text or json")
	matchesCmd.Flags().IntVar(&opts.limit, "limit", 0, "Maximum number of matches (0 uses the configured default)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the study API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			a, err := backend(opts.configPath)
			if err != nil {
				return err
			}
			defer a.Close()
			cfg := a.Config
			return health.Run(ctx, cfg.Server, handlers.NewHandler(a.Study, a.Tracker), cfg.Server.WriteTimeout)
		},
	}

	root.AddCommand(studyCmd, matchesCmd, serveCmd)
	return root
}

func parseFormat(f string) (string, error) {
	switch strings.ToLower(f) {
	case FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", f)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
