package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/chlineage/internal/catalog"
)

// newListCommand creates the list command.
func newListCommand() *cobra.Command {
	var (
		kind   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List views and tables known to the server",
		Long: `List the relations in the server catalog, ordered by database then name.
System databases are excluded unless --include-system is set.`,
		Example: `  # All user relations
  chlineage list

  # Only views, as JSON
  chlineage list --kind views --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if kind != "all" && kind != "views" && kind != "tables" {
				return fmt.Errorf("invalid --kind %q (expected all, views or tables)", kind)
			}

			client, err := openCatalog(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			ctx := cmd.Context()
			var relations []catalog.Relation
			if kind == "all" || kind == "tables" {
				tables, err := client.Tables(ctx)
				if err != nil {
					return fmt.Errorf("failed to list tables: %w", err)
				}
				relations = append(relations, tables...)
			}
			if kind == "all" || kind == "views" {
				views, err := client.Views(ctx)
				if err != nil {
					return fmt.Errorf("failed to list views: %w", err)
				}
				relations = append(relations, views...)
			}

			if asJSON {
				return listJSON(cmd.OutOrStdout(), relations)
			}
			return listTable(cmd.OutOrStdout(), relations)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "all", "Relation kind to list: all, views or tables")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func listTable(w io.Writer, relations []catalog.Relation) error {
	if len(relations) == 0 {
		_, err := fmt.Fprintln(w, "(0 relations)")
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"DATABASE", "NAME", "ENGINE"})
	for _, r := range relations {
		t.AppendRow(table.Row{r.Database, r.Name, r.Engine})
	}
	t.Render()
	return nil
}

func listJSON(w io.Writer, relations []catalog.Relation) error {
	type rel struct {
		Database string `json:"database"`
		Name     string `json:"name"`
		Engine   string `json:"engine"`
	}
	out := make([]rel, len(relations))
	for i, r := range relations {
		out[i] = rel{Database: r.Database, Name: r.Name, Engine: r.Engine}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
