package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/chlineage/pkg/mermaid"
)

// newRenderCommand creates the render command.
func newRenderCommand() *cobra.Command {
	var (
		outPath     string
		knownTables []string
	)

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a saved dependency JSON payload as a Mermaid diagram",
		Long: `Render a JSON payload previously produced by "chlineage deps" without
touching the server. Reads from the given file, or from stdin when no
file (or "-") is given. Names passed via --table are styled as base
tables; everything else renders as a view.`,
		Example: `  # Render from a file
  chlineage render deps.json

  # Pipe extraction straight into rendering
  chlineage deps | chlineage render --table analytics.events`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readPayload(cmd, args)
			if err != nil {
				return err
			}

			known := make(map[string]struct{}, len(knownTables))
			for _, t := range knownTables {
				known[t] = struct{}{}
			}

			out, err := mermaid.FromJSON(raw, known, renderOptions(cmd))
			if err != nil {
				return err
			}
			return writeOutput(cmd, outPath, []byte(out))
		},
	}

	addRenderFlags(cmd)
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Write to file instead of stdout")
	cmd.Flags().StringSliceVar(&knownTables, "table", nil, "Qualified name to style as a base table (repeatable)")
	return cmd
}

// readPayload loads the JSON input from the file argument or stdin.
func readPayload(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return raw, nil
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return raw, nil
}
