package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/custinsights-cli/internal/intake"
	"github.com/KaramelBytes/custinsights-cli/internal/segment"
	"github.com/KaramelBytes/custinsights-cli/internal/session"
	"github.com/KaramelBytes/custinsights-cli/internal/sheet"
	"github.com/spf13/cobra"
)

var headersLocal bool

var headersCmd = &cobra.Command{
	Use:   "headers <file>",
	Short: "List the column headers of a spreadsheet",
	Long: `List the column headers of a .csv or .xlsx file as the segmentation service sees them.
With --local the file is read on this machine and nothing is uploaded.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		var headers []string
		if headersLocal {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read file: %w", err)
			}
			headers, err = sheet.Headers(filepath.Base(path), data)
			if err != nil {
				return err
			}
		} else {
			sess := session.New()
			sess.SetMode(segment.ModeUploaded)
			in := intake.New(sess, newServiceClient(), logger)
			if err := in.SelectPath(commandContext(cmd), path); err != nil {
				printStatus(cmd.ErrOrStderr(), sess.Screen.Snapshot())
				return err
			}
			if sel := sess.Mapper.Selectors(); len(sel) > 0 {
				headers = sel[0].Options
			}
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ %d columns in %s\n", len(headers), filepath.Base(path))
		for i, h := range headers {
			fmt.Fprintf(out, "%3d  %s\n", i+1, h)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(headersCmd)
	headersCmd.Flags().BoolVar(&headersLocal, "local", false, "read headers locally instead of asking the service")
}
