package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/custinsights-cli/internal/service"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	// 0 disables the client-side timeout.
	HTTPTimeoutSec int    `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	ClusterCount   int    `mapstructure:"cluster_count" yaml:"cluster_count"`
	OutputDir      string `mapstructure:"output_dir" yaml:"output_dir"`
	LogLevel       string `mapstructure:"log_level" yaml:"log_level"`

	// Local stand-in service
	DevAddr string `mapstructure:"dev_addr" yaml:"dev_addr"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{"endpoint", "http_timeout_sec", "cluster_count", "output_dir", "log_level", "dev_addr"}

// Dir returns ~/.custinsights.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".custinsights"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.custinsights/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults; command flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	return load(cfgFile, true)
}

// LoadFile is Load without CUSTINSIGHTS_* overrides: the values a Save would
// round-trip.
func LoadFile(cfgFile string) (*Global, error) {
	return load(cfgFile, false)
}

func load(cfgFile string, withEnv bool) (*Global, error) {
	v := viper.New()
	if withEnv {
		v.SetEnvPrefix("CUSTINSIGHTS")
		v.AutomaticEnv()
	}

	v.SetDefault("endpoint", service.DefaultEndpoint)
	v.SetDefault("http_timeout_sec", 0)
	v.SetDefault("cluster_count", 4)
	v.SetDefault("output_dir", ".")
	v.SetDefault("log_level", "warn")
	v.SetDefault("dev_addr", "127.0.0.1:5000")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" && fileExists(cfgFile) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Endpoint == "" {
		c.Endpoint = service.DefaultEndpoint
	}
	if c.HTTPTimeoutSec < 0 {
		c.HTTPTimeoutSec = 0
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	return &c, nil
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
