// Package mermaid renders view dependency mappings as Mermaid flowchart
// text. Node identifiers are emitted unquoted, so the package validates
// every name against a conservative character set before producing any
// output; structural problems in the input are fatal rather than patched
// over, since the mapping reaching this stage is supposed to be trusted.
package mermaid

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Node class tags and their style declarations. The styling strings are
// part of the output contract: diagrams must look identical across runs
// and tool versions.
const (
	TagTable = "chTable"
	TagView  = "chView"

	classDefTable = "classDef chTable fill:#f5f5f5,stroke:#616161,stroke-width:1px"
	classDefView  = "classDef chView fill:#e8f4fd,stroke:#1a73e8,stroke-width:1px"
)

// Directions accepted in the graph header.
var validDirections = map[string]struct{}{
	"LR": {},
	"TB": {},
	"RL": {},
	"BT": {},
}

// Allow-list for unquoted Mermaid node ids in flowcharts. Covers common
// database identifiers: schema.table, a_b, a-b, a:b.
var allowedNodeRe = regexp.MustCompile(`^[A-Za-z0-9_.:\-]+$`)

// Options configures graph generation.
type Options struct {
	Direction            string // LR, TB, RL, BT
	Indent               string // literal prefix for every body line
	DedupeEdges          bool
	IncludeIsolatedNodes bool // nodes with no edges still appear
}

// DefaultOptions returns the standard rendering options.
func DefaultOptions() Options {
	return Options{
		Direction:            "LR",
		Indent:               "  ",
		DedupeEdges:          true,
		IncludeIsolatedNodes: true,
	}
}

// GraphError reports malformed input to the renderer.
type GraphError struct {
	msg string
}

func (e *GraphError) Error() string { return e.msg }

func errf(format string, args ...any) *GraphError {
	return &GraphError{msg: fmt.Sprintf(format, args...)}
}

// FromJSON parses a JSON payload and renders it. The payload must be an
// object carrying a "view_dependencies" key; additional keys (such as the
// collector's "errors") are ignored.
func FromJSON(raw []byte, knownTables map[string]struct{}, opts Options) (string, error) {
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return "", errf("invalid JSON: %v", err)
	}
	obj, ok := data.(map[string]any)
	if !ok {
		return "", errf("top-level JSON must be an object")
	}
	return Generate(obj, knownTables, opts)
}

// Generate validates a decoded payload and renders it. The
// "view_dependencies" value must map view names to either null or a list
// of strings; any other shape is a fatal format error naming the
// offending key.
func Generate(data map[string]any, knownTables map[string]struct{}, opts Options) (string, error) {
	raw, ok := data["view_dependencies"]
	if !ok {
		return "", errf(`missing required key "view_dependencies"`)
	}

	deps := make(map[string][]string)
	switch m := raw.(type) {
	case map[string]any:
		for view, v := range m {
			list, err := toStringList(view, v)
			if err != nil {
				return "", err
			}
			deps[view] = list
		}
	case map[string][]string:
		deps = m
	default:
		return "", errf(`"view_dependencies" must be a map of view name to dependency list`)
	}

	return Render(deps, knownTables, opts)
}

// toStringList coerces one dependency value into a string slice.
func toStringList(view string, v any) ([]string, error) {
	switch deps := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return deps, nil
	case []any:
		out := make([]string, 0, len(deps))
		for _, d := range deps {
			s, ok := d.(string)
			if !ok {
				return nil, errf("dependencies for %q must be a list of strings", view)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, errf("dependencies for %q must be a list of strings (or null)", view)
	}
}

// edge is one dependency -> view arrow.
type edge struct {
	src, dst string
}

// Render converts a validated dependency mapping into Mermaid text.
//
// Layout is deterministic: node declarations appear in first-seen order
// over the sorted view keys (each view followed by its dependencies),
// edges likewise, and isolated nodes are listed alphabetically. The
// returned text ends with exactly one newline.
func Render(deps map[string][]string, knownTables map[string]struct{}, opts Options) (string, error) {
	direction := strings.ToUpper(strings.TrimSpace(opts.Direction))
	if _, ok := validDirections[direction]; !ok {
		return "", errf("direction must be one of LR, TB, RL, BT (got %q)", opts.Direction)
	}

	views := make([]string, 0, len(deps))
	for view := range deps {
		views = append(views, view)
	}
	sort.Strings(views)

	var nodeOrder []string
	seenNodes := make(map[string]struct{})
	addNode := func(name string) error {
		if !allowedNodeRe.MatchString(name) {
			return errf("invalid node name for unquoted Mermaid output: %q "+
				"(allowed: letters, digits, underscore, period, colon, hyphen)", name)
		}
		if _, ok := seenNodes[name]; !ok {
			seenNodes[name] = struct{}{}
			nodeOrder = append(nodeOrder, name)
		}
		return nil
	}

	var edges []edge
	for _, view := range views {
		if err := addNode(view); err != nil {
			return "", err
		}
		for _, dep := range deps[view] {
			if err := addNode(dep); err != nil {
				return "", err
			}
			edges = append(edges, edge{src: dep, dst: view})
		}
	}

	if opts.DedupeEdges {
		seen := make(map[edge]struct{})
		deduped := edges[:0]
		for _, e := range edges {
			if _, ok := seen[e]; !ok {
				seen[e] = struct{}{}
				deduped = append(deduped, e)
			}
		}
		edges = deduped
	}

	lines := []string{"graph " + direction}
	lines = append(lines,
		opts.Indent+classDefTable,
		opts.Indent+classDefView,
	)

	for _, name := range nodeOrder {
		lines = append(lines, opts.Indent+name+":::"+classTag(name, knownTables))
	}

	if len(edges) > 0 {
		lines = append(lines, "")
		for _, e := range edges {
			// Node names stay unquoted.
			lines = append(lines, opts.Indent+e.src+" -.-> "+e.dst)
		}

		if opts.IncludeIsolatedNodes {
			connected := make(map[string]struct{}, 2*len(edges))
			for _, e := range edges {
				connected[e.src] = struct{}{}
				connected[e.dst] = struct{}{}
			}
			var isolated []string
			for _, name := range nodeOrder {
				if _, ok := connected[name]; !ok {
					isolated = append(isolated, name)
				}
			}
			sort.Strings(isolated)
			for _, name := range isolated {
				lines = append(lines, opts.Indent+name)
			}
		}
	} else if opts.IncludeIsolatedNodes && len(nodeOrder) > 0 {
		lines = append(lines, "")
		sorted := append([]string(nil), nodeOrder...)
		sort.Strings(sorted)
		for _, name := range sorted {
			lines = append(lines, opts.Indent+name)
		}
	}

	return strings.Join(lines, "\n") + "\n", nil
}

// classTag classifies a node: known base relations render as tables,
// everything else as a view.
func classTag(name string, knownTables map[string]struct{}) string {
	if _, ok := knownTables[name]; ok {
		return TagTable
	}
	return TagView
}
