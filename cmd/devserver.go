package cmd

import (
	"fmt"

	"github.com/KaramelBytes/custinsights-cli/internal/devserver"
	"github.com/spf13/cobra"
)

var devAddr string

var serveDevCmd = &cobra.Command{
	Use:   "serve-dev",
	Short: "Run a local stand-in for the segmentation service",
	Long: `Run a local stand-in for the segmentation service. Header discovery reads real
.csv/.xlsx files; analysis returns a placeholder segmentation with a single test persona.
Point the CLI at it with --endpoint http://<addr>.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := devAddr
		if addr == "" {
			addr = currentConfig().DevAddr
		}
		ready := make(chan string, 1)
		go func() {
			if a, ok := <-ready; ok {
				fmt.Fprintf(cmd.ErrOrStderr(), "✓ Dev server listening on http://%s (Ctrl+C to stop)\n", a)
			}
		}()
		srv := devserver.New(devserver.Config{Address: addr, Logger: logger})
		err := srv.Start(commandContext(cmd), ready)
		close(ready)
		return err
	},
}

func init() {
	rootCmd.AddCommand(serveDevCmd)
	serveDevCmd.Flags().StringVar(&devAddr, "addr", "", "listen address (default from config dev_addr)")
}
