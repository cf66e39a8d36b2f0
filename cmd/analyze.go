package cmd

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/custinsights-cli/internal/intake"
	"github.com/KaramelBytes/custinsights-cli/internal/mapper"
	"github.com/KaramelBytes/custinsights-cli/internal/orchestrator"
	"github.com/KaramelBytes/custinsights-cli/internal/render"
	"github.com/KaramelBytes/custinsights-cli/internal/segment"
	"github.com/KaramelBytes/custinsights-cli/internal/session"
	"github.com/KaramelBytes/custinsights-cli/internal/ui"
	"github.com/KaramelBytes/custinsights-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	anaDefault  bool
	anaFile     string
	anaClusters string
	anaMap      []string
	anaHTMLPath string
	anaPNGDir   string
	anaJSON     bool
	anaWidth    int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Segment customers from the sample dataset or an uploaded spreadsheet",
	Long: `Run one segmentation. With --default the service's built-in dataset is used;
with --file the spreadsheet is uploaded, its headers are discovered and each required
field is mapped to a column (first column unless overridden with --map field=column).`,
	Example: `  custinsights analyze --default --clusters 4
  custinsights analyze --file retail.xlsx --map invoice_id=Invoice --map price=Price --html report.html`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if anaDefault && anaFile != "" {
			return errors.New("use either --default or --file, not both")
		}
		c := currentConfig()
		ctx := commandContext(cmd)
		svc := newServiceClient()
		sess := session.New()
		out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

		if anaFile != "" {
			sess.SetMode(segment.ModeUploaded)
			in := intake.New(sess, svc, logger)
			if err := in.SelectPath(ctx, anaFile); err != nil {
				printStatus(errOut, sess.Screen.Snapshot())
				return err
			}
			if err := applyMappings(sess, anaMap); err != nil {
				return err
			}
			if !anaJSON {
				printMapping(out, sess.Screen.Snapshot().Mapping)
			}
		} else if len(anaMap) > 0 {
			return errors.New("--map requires --file")
		}

		clusters := anaClusters
		if !cmd.Flags().Changed("clusters") {
			clusters = strconv.Itoa(c.ClusterCount)
		}
		orch := orchestrator.New(sess, svc, logger)
		res, err := orch.RunAnalysis(ctx, clusters)
		view := sess.Screen.Snapshot()
		if err != nil {
			printStatus(errOut, view)
			return err
		}

		if anaJSON {
			b, err := utils.PrettyJSON(res.Result)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
		} else {
			fmt.Fprintf(out, "✓ %d customers in %d segments (run %s)\n", len(res.Result.PlotData.Data), len(view.Personas), res.RunID)
			if cards := render.TerminalCards(view.Personas, anaWidth); cards != "" {
				fmt.Fprintln(out, cards)
			}
		}

		if anaHTMLPath != "" {
			page, err := render.HTMLReport(*view.Plot, view.Personas, res.RunID, time.Now())
			if err != nil {
				return err
			}
			path := outputPath(c.OutputDir, anaHTMLPath)
			if err := utils.SafeWriteFile(path, page); err != nil {
				return err
			}
			fmt.Fprintf(errOut, "✓ Wrote HTML report to %s\n", path)
		}
		if anaPNGDir != "" {
			paths, err := render.WritePNGProjections(outputPath(c.OutputDir, anaPNGDir), res.Result.PlotData.Data)
			switch {
			case errors.Is(err, render.ErrNoPoints):
				fmt.Fprintln(errOut, "⚠ No customer points returned; skipped PNG projections")
			case err != nil:
				return err
			default:
				for _, p := range paths {
					fmt.Fprintf(errOut, "✓ Wrote %s\n", p)
				}
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&anaDefault, "default", false, "use the service's built-in sample dataset (default when --file is omitted)")
	analyzeCmd.Flags().StringVarP(&anaFile, "file", "f", "", "spreadsheet to upload (.csv or .xlsx)")
	analyzeCmd.Flags().StringVarP(&anaClusters, "clusters", "k", "", "number of customer segments (default from config cluster_count)")
	analyzeCmd.Flags().StringArrayVarP(&anaMap, "map", "m", nil, "map a required field to a column: field=column (repeatable)")
	analyzeCmd.Flags().StringVar(&anaHTMLPath, "html", "", "write an interactive HTML report to this path")
	analyzeCmd.Flags().StringVar(&anaPNGDir, "png", "", "write PNG projections into this directory")
	analyzeCmd.Flags().BoolVar(&anaJSON, "json", false, "print the raw analysis result as JSON")
	analyzeCmd.Flags().IntVar(&anaWidth, "card-width", 0, "persona card width in columns (0 = fit content)")
}

// applyMappings applies field=column overrides to the session's mapper and
// refreshes the on-screen mapping.
func applyMappings(sess *session.Session, pairs []string) error {
	for _, p := range pairs {
		field, column, ok := strings.Cut(p, "=")
		field, column = strings.TrimSpace(field), strings.TrimSpace(column)
		if !ok || field == "" || column == "" {
			return fmt.Errorf("invalid --map %q (want field=column)", p)
		}
		if err := sess.Mapper.Select(field, column); err != nil {
			return fmt.Errorf("--map %s: %w", field, err)
		}
	}
	sess.Screen.ShowMapping(sess.Mapper.Selectors())
	return nil
}

func printMapping(w io.Writer, sel []mapper.Selector) {
	if len(sel) == 0 {
		return
	}
	fmt.Fprintln(w, "Column mapping:")
	for _, s := range sel {
		fmt.Fprintf(w, "  %-15s %s\n", s.Label, s.Selected)
	}
}

func printStatus(w io.Writer, v ui.View) {
	if v.Status != "" {
		fmt.Fprintln(w, "⚠", v.Status)
	}
}

func outputPath(dir, p string) string {
	if filepath.IsAbs(p) || dir == "" || dir == "." {
		return p
	}
	return filepath.Join(dir, p)
}
