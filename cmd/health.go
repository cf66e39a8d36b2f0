package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the segmentation service is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := newServiceClient()
		status, err := svc.Health(commandContext(cmd))
		if err != nil {
			return fmt.Errorf("%s: %w", svc.Endpoint(), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %s\n", svc.Endpoint(), status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
