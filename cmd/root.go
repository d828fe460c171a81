// Package cmd defines and implements the CLI commands for the markerctl
// executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/datapipe-tools/markerstore/internal/config"
	"github.com/datapipe-tools/markerstore/internal/logging"
	"github.com/datapipe-tools/markerstore/internal/metrics"
	"github.com/datapipe-tools/markerstore/pkg/marker"
)

var (
	cfgFile      string
	tableFlag    string
	updateIDFlag string
)

// runtimeKeyType is the key for storing the runtime in the command context.
type runtimeKeyType string

const runtimeKey runtimeKeyType = "runtime"

// runtime bundles the loaded configuration and logger shared by all
// subcommands. Each invocation carries a correlation id so log lines from
// one pipeline step can be grouped.
type runtime struct {
	cfg    config.Config
	logger *zap.Logger
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "markerctl",
		Short: "Record and query completion markers for warehouse loads.",
		Long: `markerctl manages the completion-marker table used by data pipeline
tasks writing into the analytical database. A task checks 'exists' before
doing work for an update id, and records 'touch' after the work committed,
so re-runs after partial failure never write twice.`,

		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logging.New(cfg.Logging.Development)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			logger = logger.With(zap.String("invocation_id", uuid.NewString()))

			rt := &runtime{cfg: cfg, logger: logger}
			cmd.SetContext(withRuntime(cmd.Context(), rt))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if rt, err := resolveRuntime(cmd); err == nil {
				_ = rt.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is env/MARKER_* only)")

	cmd.AddCommand(newExistsCmd())
	cmd.AddCommand(newTouchCmd())
	cmd.AddCommand(newEnsureTableCmd())

	return cmd
}

// newTarget builds a marker target from the loaded configuration and the
// command's --table/--update-id flags.
func newTarget(rt *runtime, table, updateID string) (*marker.Target, error) {
	return marker.New(
		rt.cfg.MarkerSettings(),
		rt.cfg.DB.Host,
		rt.cfg.DB.Database,
		rt.cfg.DB.User,
		rt.cfg.DB.Password,
		table,
		updateID,
		marker.WithLogger(rt.logger),
		marker.WithObserver(metrics.NewObserver()),
	)
}

func addTargetFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&tableFlag, "table", "", "governed table (schema.table)")
	cmd.Flags().StringVar(&updateIDFlag, "update-id", "", "identifier of the unit of work")
	_ = cmd.MarkFlagRequired("table")
	_ = cmd.MarkFlagRequired("update-id")
}

func withRuntime(ctx context.Context, rt *runtime) context.Context {
	return context.WithValue(ctx, runtimeKey, rt)
}

func resolveRuntime(cmd *cobra.Command) (*runtime, error) {
	rt, ok := cmd.Context().Value(runtimeKey).(*runtime)
	if !ok || rt == nil {
		return nil, errors.New("configuration not initialized")
	}
	return rt, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
