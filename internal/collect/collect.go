// Package collect walks the catalog's views and resolves each one's
// table dependencies. Failures are isolated per view so one broken
// definition never hides the rest of the result.
package collect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/chlineage/internal/catalog"
	"github.com/leapstack-labs/chlineage/pkg/extract"
)

// DDLSource supplies CREATE statements for relations. *catalog.Client
// satisfies it; tests use in-memory fakes.
type DDLSource interface {
	ViewDDL(ctx context.Context, database, name string) (string, error)
}

// Result is the collector output. Both maps are always present, and a
// view appears in exactly one of them.
type Result struct {
	Dependencies map[string][]string `json:"view_dependencies"`
	Errors       map[string]string   `json:"errors"`
}

// Views resolves dependencies for each listed view. Per-view failures
// are recorded under the view's qualified name as "<kind>: <detail>"
// with kind one of ddl_fetch, no_entry_rule, parse.
func Views(ctx context.Context, src DDLSource, views []catalog.Relation, logger *slog.Logger) Result {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	res := Result{
		Dependencies: make(map[string][]string, len(views)),
		Errors:       make(map[string]string),
	}

	for _, v := range views {
		key := v.Qualified()

		ddl, err := src.ViewDDL(ctx, v.Database, v.Name)
		if err != nil {
			logger.Warn("failed to fetch view definition", "view", key, "error", err)
			res.Errors[key] = "ddl_fetch: " + err.Error()
			continue
		}

		// Unqualified names inside the definition resolve against the
		// view's own database.
		rels, err := relations(ddl, v.Database)
		if err != nil {
			kind := "parse"
			if errors.Is(err, extract.ErrNoEntryRule) {
				kind = "no_entry_rule"
			}
			logger.Warn("failed to extract dependencies", "view", key, "kind", kind, "error", err)
			res.Errors[key] = kind + ": " + err.Error()
			continue
		}

		if rels == nil {
			rels = []string{}
		}
		res.Dependencies[key] = rels
		logger.Debug("resolved view", "view", key, "dependencies", len(rels))
	}

	return res
}

// relations shields the caller from extraction panics; a statement odd
// enough to crash the walker is reported as a parse failure for that
// view only.
func relations(ddl, defaultDB string) (rels []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			rels, err = nil, fmt.Errorf("panic during extraction: %v", r)
		}
	}()
	return extract.StatementRelations(ddl, defaultDB)
}
