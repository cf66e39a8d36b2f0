package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	cfgpkg "github.com/KaramelBytes/custinsights-cli/internal/config"
	"github.com/KaramelBytes/custinsights-cli/internal/logging"
	"github.com/KaramelBytes/custinsights-cli/internal/service"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile            string
	debug              bool
	flagEndpoint       string
	flagHTTPTimeoutSec int

	// Loaded configuration
	cfg    *cfgpkg.Global
	logger hclog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "custinsights",
	Short: "Customer Insights CLI: segment customers by recency, frequency and spend",
	Long: `Customer Insights sends a transactions spreadsheet (or the built-in sample dataset)
to the segmentation service and renders the resulting customer clusters as persona
cards, an interactive HTML report and static PNG projections.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.custinsights/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagEndpoint, "endpoint", "", "segmentation service URL (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds, 0 = none (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = defaultConfig()
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("endpoint") && flagEndpoint != "" {
		cfg.Endpoint = flagEndpoint
	}
	if f.Changed("http-timeout") && flagHTTPTimeoutSec >= 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	logger = logging.New(logging.Options{Level: cfg.LogLevel, Debug: debug})
	logger.Debug("config loaded", "endpoint", cfg.Endpoint, "http_timeout_sec", cfg.HTTPTimeoutSec)
}

func defaultConfig() *cfgpkg.Global {
	return &cfgpkg.Global{
		Endpoint:     service.DefaultEndpoint,
		ClusterCount: 4,
		OutputDir:    ".",
		LogLevel:     "warn",
		DevAddr:      "127.0.0.1:5000",
	}
}

func currentConfig() *cfgpkg.Global {
	if cfg == nil {
		cfg = defaultConfig()
	}
	return cfg
}

func newServiceClient() *service.Client {
	c := currentConfig()
	return service.NewClient(c.Endpoint, time.Duration(c.HTTPTimeoutSec)*time.Second)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
