package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/custinsights-cli/internal/segment"
	"github.com/spf13/cobra"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the columns an uploaded dataset must provide",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Uploaded files (.csv or .xlsx) need one row per invoice line with these columns:")
		for _, f := range segment.RequiredFields {
			fmt.Fprintf(out, "  %-13s %s\n", f.Key, strings.TrimSuffix(f.Label, ":"))
		}
		fmt.Fprintln(out, "Map them with: custinsights analyze --file <path> --map <field>=<column>")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fieldsCmd)
}
