package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/chlineage/internal/collect"
)

// newDepsCommand creates the deps command.
func newDepsCommand() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Extract view dependencies as JSON",
		Long: `Query the server for all views, parse each definition, and print a JSON
object with "view_dependencies" (view name to list of relations it reads
from) and "errors" (view name to failure description). Views that fail to
parse appear only under "errors"; the rest of the result is unaffected.`,
		Example: `  # Dependencies for all user views
  chlineage deps

  # Write to a file, including system databases
  chlineage deps --include-system -o deps.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := openCatalog(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			ctx := cmd.Context()
			views, err := client.Views(ctx)
			if err != nil {
				return fmt.Errorf("failed to list views: %w", err)
			}
			logger.Debug("collected views", "count", len(views))

			res := collect.Views(ctx, client, views, logger)

			raw, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode result: %w", err)
			}
			return writeOutput(cmd, outPath, append(raw, '\n'))
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Write to file instead of stdout")
	return cmd
}

// writeOutput sends data to a file or, with no path, to the command's
// stdout.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.Debug("wrote output", "path", path, "bytes", len(data))
	return nil
}
