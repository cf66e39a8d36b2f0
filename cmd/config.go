package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/custinsights-cli/internal/config"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set Customer Insights configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "endpoint: %s\n", c.Endpoint)
		if c.HTTPTimeoutSec > 0 {
			fmt.Fprintf(out, "http_timeout_sec: %d\n", c.HTTPTimeoutSec)
		} else {
			fmt.Fprintln(out, "http_timeout_sec: 0 (no timeout)")
		}
		fmt.Fprintf(out, "cluster_count: %d\n", c.ClusterCount)
		fmt.Fprintf(out, "output_dir: %s\n", c.OutputDir)
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		fmt.Fprintf(out, "dev_addr: %s\n", c.DevAddr)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long:  "Set a config value and save to disk. Keys: " + strings.Join(cfgpkg.Keys, ", "),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		// Persist the file's values, not flag or env overrides
		c, err := cfgpkg.LoadFile(cfgFile)
		if err != nil {
			return err
		}
		switch key {
		case "endpoint":
			if !strings.HasPrefix(val, "http://") && !strings.HasPrefix(val, "https://") {
				return fmt.Errorf("invalid endpoint: %s (must start with http:// or https://)", val)
			}
			c.Endpoint = strings.TrimRight(val, "/")
		case "http_timeout_sec":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for http_timeout_sec: %v", val)
			}
			c.HTTPTimeoutSec = i
		case "cluster_count":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid positive int for cluster_count: %v", val)
			}
			c.ClusterCount = i
		case "output_dir":
			c.OutputDir = val
		case "log_level":
			if hclog.LevelFromString(val) == hclog.NoLevel {
				return fmt.Errorf("invalid log_level: %s (use trace, debug, info, warn or error)", val)
			}
			c.LogLevel = strings.ToLower(val)
		case "dev_addr":
			c.DevAddr = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		cfg = c
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
