// Package config loads tool configuration from defaults, an optional
// YAML file, CH_-prefixed environment variables, and command line
// flags, in rising order of precedence.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Connection and rendering defaults. The port is the native protocol
// port, not the HTTP one.
const (
	DefaultHost      = "localhost"
	DefaultPort      = 9000
	DefaultUser      = "default"
	DefaultDirection = "LR"
)

// Config is the fully resolved tool configuration.
type Config struct {
	Host          string `koanf:"host"`
	Port          int    `koanf:"port"`
	User          string `koanf:"user"`
	Password      string `koanf:"password"`
	Database      string `koanf:"database"`
	Secure        bool   `koanf:"secure"`
	IncludeSystem bool   `koanf:"include_system"`

	Direction       string `koanf:"direction"`
	IncludeIsolated bool   `koanf:"include_isolated"`

	Verbose bool `koanf:"verbose"`

	// FileUsed records which config file was loaded, if any.
	FileUsed string `koanf:"-"`
}

// findConfigFile returns the config file to use.
// Priority: explicit path > chlineage.yaml > chlineage.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"chlineage.yaml", "chlineage.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load resolves the configuration.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"host":             DefaultHost,
		"port":             DefaultPort,
		"user":             DefaultUser,
		"password":         "",
		"database":         "",
		"secure":           false,
		"include_system":   false,
		"direction":        DefaultDirection,
		"include_isolated": true,
		"verbose":          false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	fileUsed := findConfigFile(cfgFile)
	if fileUsed != "" {
		if err := k.Load(file.Provider(fileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", fileUsed, err)
		}
	}

	// 3. Environment variables (CH_ prefix)
	// Transform: CH_INCLUDE_SYSTEM -> include_system
	if err := k.Load(env.Provider("CH_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "CH_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.FileUsed = fileUsed
	return &cfg, nil
}
