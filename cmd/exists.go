package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newExistsCmd creates the 'exists' subcommand. It prints "true" when the
// update id has already been recorded against the marker table and "false"
// otherwise, including when the marker table itself does not exist yet.
func newExistsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exists",
		Short: "Check whether a unit of work has already completed",
		RunE:  runExistsCommand,
	}
	addTargetFlags(cmd)
	return cmd
}

func runExistsCommand(cmd *cobra.Command, _ []string) error {
	rt, err := resolveRuntime(cmd)
	if err != nil {
		return err
	}

	target, err := newTarget(rt, tableFlag, updateIDFlag)
	if err != nil {
		return err
	}

	found, err := target.Exists(cmd.Context())
	if err != nil {
		return fmt.Errorf("check marker: %w", err)
	}

	rt.logger.Info("marker checked",
		zap.String("update_id", updateIDFlag),
		zap.Bool("exists", found),
	)
	fmt.Fprintln(cmd.OutOrStdout(), found)
	return nil
}
