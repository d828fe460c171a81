package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newTouchCmd creates the 'touch' subcommand. It records completion for the
// update id, creating the marker table first if it has never existed.
func newTouchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "touch",
		Short: "Record a unit of work as complete",
		RunE:  runTouchCommand,
	}
	addTargetFlags(cmd)
	return cmd
}

func runTouchCommand(cmd *cobra.Command, _ []string) error {
	rt, err := resolveRuntime(cmd)
	if err != nil {
		return err
	}

	target, err := newTarget(rt, tableFlag, updateIDFlag)
	if err != nil {
		return err
	}

	if err := target.Touch(cmd.Context()); err != nil {
		return fmt.Errorf("record marker: %w", err)
	}

	rt.logger.Info("marker recorded",
		zap.String("update_id", updateIDFlag),
		zap.String("table", tableFlag),
	)
	return nil
}
