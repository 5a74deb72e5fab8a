// Package cli provides the command-line interface for chlineage.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/chlineage/internal/catalog"
	"github.com/leapstack-labs/chlineage/internal/config"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  = slog.New(slog.DiscardHandler)
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// openCatalog connects to the configured server. Command tests swap
// this for a mock-backed client.
var openCatalog = func(cfg *config.Config) (*catalog.Client, error) {
	client, err := catalog.Open(catalog.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		Database: cfg.Database,
		Secure:   cfg.Secure,
	}, logger)
	if err != nil {
		return nil, err
	}
	client.IncludeSystem = cfg.IncludeSystem
	return client, nil
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "chlineage",
		Short: "ClickHouse view lineage extractor",
		Long: `chlineage reads view definitions from a ClickHouse server, extracts the
tables and views each one selects from, and reports the result as JSON or
as a Mermaid dependency diagram.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			var err error
			cfg, err = config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			level := slog.LevelWarn
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: level,
			}))

			if cfg.Verbose && cfg.FileUsed != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Using config file: %s\n", cfg.FileUsed)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
ClickHouse view lineage extractor
`)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./chlineage.yaml)")
	rootCmd.PersistentFlags().String("host", config.DefaultHost, "ClickHouse host")
	rootCmd.PersistentFlags().Int("port", config.DefaultPort, "ClickHouse native protocol port")
	rootCmd.PersistentFlags().String("user", config.DefaultUser, "ClickHouse user")
	rootCmd.PersistentFlags().String("password", "", "ClickHouse password")
	rootCmd.PersistentFlags().String("database", "", "Database to connect to (empty for server default)")
	rootCmd.PersistentFlags().Bool("secure", false, "Use TLS for the connection")
	rootCmd.PersistentFlags().Bool("include-system", false, "Include system databases in catalog queries")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(newDepsCommand())
	rootCmd.AddCommand(newGraphCommand())
	rootCmd.AddCommand(newRenderCommand())
	rootCmd.AddCommand(newListCommand())
	rootCmd.AddCommand(newVersionCommand(Version))

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
