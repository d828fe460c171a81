package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newEnsureTableCmd creates the 'ensure-table' subcommand, which creates the
// configured marker table if it does not exist. Touch does this implicitly;
// the explicit command exists for provisioning and permission checks.
func newEnsureTableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ensure-table",
		Short: "Create the marker table if it does not exist",
		RunE:  runEnsureTableCommand,
	}
}

func runEnsureTableCommand(cmd *cobra.Command, _ []string) error {
	rt, err := resolveRuntime(cmd)
	if err != nil {
		return err
	}

	target, err := newTarget(rt, "", "")
	if err != nil {
		return err
	}

	if err := target.EnsureMarkerTable(cmd.Context()); err != nil {
		return fmt.Errorf("ensure marker table: %w", err)
	}

	rt.logger.Info("marker table ensured", zap.String("marker_table", target.MarkerTable()))
	return nil
}
