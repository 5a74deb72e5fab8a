package mermaid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "graph LR\n" +
	"  classDef chTable fill:#f5f5f5,stroke:#616161,stroke-width:1px\n" +
	"  classDef chView fill:#e8f4fd,stroke:#1a73e8,stroke-width:1px\n"

func TestRenderSingleEdge(t *testing.T) {
	out, err := Render(map[string][]string{"a": {"b"}}, nil, DefaultOptions())
	require.NoError(t, err)

	want := header +
		"  a:::chView\n" +
		"  b:::chView\n" +
		"\n" +
		"  b -.-> a\n"
	assert.Equal(t, want, out)
}

func TestRenderKnownTablesGetTableClass(t *testing.T) {
	known := map[string]struct{}{"b": {}}
	out, err := Render(map[string][]string{"a": {"b"}}, known, DefaultOptions())
	require.NoError(t, err)

	assert.Contains(t, out, "  a:::chView\n")
	assert.Contains(t, out, "  b:::chTable\n")
}

func TestRenderEmptyMapping(t *testing.T) {
	out, err := Render(map[string][]string{}, nil, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, header, out)
}

func TestRenderIsolatedNodesOnly(t *testing.T) {
	out, err := Render(map[string][]string{"b": nil, "a": nil}, nil, DefaultOptions())
	require.NoError(t, err)

	want := header +
		"  a:::chView\n" +
		"  b:::chView\n" +
		"\n" +
		"  a\n" +
		"  b\n"
	assert.Equal(t, want, out)
}

func TestRenderIsolatedNodesSuppressed(t *testing.T) {
	opts := DefaultOptions()
	opts.IncludeIsolatedNodes = false

	out, err := Render(map[string][]string{"a": nil}, nil, opts)
	require.NoError(t, err)
	assert.Equal(t, header+"  a:::chView\n", out)

	// With edges present, no bare node-only line appears either.
	out, err = Render(map[string][]string{"a": {"b"}, "orphan": nil}, nil, opts)
	require.NoError(t, err)
	assert.NotContains(t, out, "  orphan\n")
	assert.Contains(t, out, "  orphan:::chView\n")
}

func TestRenderIsolatedNodesAfterEdges(t *testing.T) {
	deps := map[string][]string{
		"a":      {"b"},
		"orphan": nil,
	}
	out, err := Render(deps, nil, DefaultOptions())
	require.NoError(t, err)

	want := header +
		"  a:::chView\n" +
		"  b:::chView\n" +
		"  orphan:::chView\n" +
		"\n" +
		"  b -.-> a\n" +
		"  orphan\n"
	assert.Equal(t, want, out)
}

func TestRenderDeterministicOrder(t *testing.T) {
	deps := map[string][]string{
		"z": {"m", "a"},
		"a": {"n"},
	}
	out, err := Render(deps, nil, DefaultOptions())
	require.NoError(t, err)

	// Views in sorted order, each followed by its dependencies in
	// declared order, first occurrence wins.
	want := header +
		"  a:::chView\n" +
		"  n:::chView\n" +
		"  z:::chView\n" +
		"  m:::chView\n" +
		"\n" +
		"  n -.-> a\n" +
		"  m -.-> z\n" +
		"  a -.-> z\n"
	assert.Equal(t, want, out)
}

func TestRenderDedupesEdges(t *testing.T) {
	out, err := Render(map[string][]string{"a": {"b", "b", "c", "b"}}, nil, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "b -.-> a"))
	assert.Equal(t, 1, strings.Count(out, "c -.-> a"))
}

func TestRenderKeepsDuplicateEdgesWhenDedupeOff(t *testing.T) {
	opts := DefaultOptions()
	opts.DedupeEdges = false

	out, err := Render(map[string][]string{"a": {"b", "b"}}, nil, opts)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "b -.-> a"))
}

func TestRenderDirections(t *testing.T) {
	for _, dir := range []string{"LR", "TB", "RL", "BT", "lr", " tb "} {
		opts := DefaultOptions()
		opts.Direction = dir

		out, err := Render(map[string][]string{"a": nil}, nil, opts)
		require.NoError(t, err, "direction %q", dir)
		assert.True(t, strings.HasPrefix(out, "graph "+strings.ToUpper(strings.TrimSpace(dir))+"\n"))
	}
}

func TestRenderRejectsInvalidDirection(t *testing.T) {
	for _, dir := range []string{"", "DOWN", "LRTB"} {
		opts := DefaultOptions()
		opts.Direction = dir

		_, err := Render(map[string][]string{"a": nil}, nil, opts)
		var gerr *GraphError
		require.ErrorAs(t, err, &gerr, "direction %q", dir)
		assert.Contains(t, err.Error(), "direction")
	}
}

func TestRenderRejectsInvalidNodeNames(t *testing.T) {
	bad := []string{"bad name", `a"b`, "semi;colon", "paren(", ""}
	for _, name := range bad {
		_, err := Render(map[string][]string{name: nil}, nil, DefaultOptions())
		var gerr *GraphError
		require.ErrorAs(t, err, &gerr, "view %q", name)

		_, err = Render(map[string][]string{"a": {name}}, nil, DefaultOptions())
		require.ErrorAs(t, err, &gerr, "dependency %q", name)
	}
}

func TestRenderAcceptsQualifiedAndPunctuatedNames(t *testing.T) {
	deps := map[string][]string{
		"db.view-1": {"db.base_table", "ns:events"},
	}
	out, err := Render(deps, nil, DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, out, "  db.base_table -.-> db.view-1\n")
	assert.Contains(t, out, "  ns:events -.-> db.view-1\n")
}

func TestRenderNeverEmitsDoubleQuotes(t *testing.T) {
	deps := map[string][]string{
		"analytics.daily": {"analytics.events", "dict:geo"},
		"plain":           nil,
	}
	out, err := Render(deps, map[string]struct{}{"analytics.events": {}}, DefaultOptions())
	require.NoError(t, err)
	assert.NotContains(t, out, `"`)
	assert.True(t, strings.HasSuffix(out, "\n"))
	assert.False(t, strings.HasSuffix(out, "\n\n"))
}

func TestRenderCustomIndent(t *testing.T) {
	opts := DefaultOptions()
	opts.Indent = "\t"

	out, err := Render(map[string][]string{"a": {"b"}}, nil, opts)
	require.NoError(t, err)
	assert.Contains(t, out, "\ta:::chView\n")
	assert.Contains(t, out, "\tb -.-> a\n")
}

func TestGenerateRequiresViewDependenciesKey(t *testing.T) {
	_, err := Generate(map[string]any{"other": 1}, nil, DefaultOptions())
	var gerr *GraphError
	require.ErrorAs(t, err, &gerr)
	assert.Contains(t, err.Error(), "view_dependencies")
}

func TestGenerateRejectsNonMapDependencies(t *testing.T) {
	_, err := Generate(map[string]any{"view_dependencies": []any{"a"}}, nil, DefaultOptions())
	var gerr *GraphError
	require.ErrorAs(t, err, &gerr)
}

func TestGenerateRejectsNonListValue(t *testing.T) {
	data := map[string]any{
		"view_dependencies": map[string]any{"v": "not-a-list"},
	}
	_, err := Generate(data, nil, DefaultOptions())
	var gerr *GraphError
	require.ErrorAs(t, err, &gerr)
	assert.Contains(t, err.Error(), `"v"`)
}

func TestGenerateRejectsNonStringElement(t *testing.T) {
	data := map[string]any{
		"view_dependencies": map[string]any{"v": []any{"ok", 7}},
	}
	_, err := Generate(data, nil, DefaultOptions())
	var gerr *GraphError
	require.ErrorAs(t, err, &gerr)
}

func TestGenerateAllowsNullValue(t *testing.T) {
	data := map[string]any{
		"view_dependencies": map[string]any{"v": nil},
	}
	out, err := Generate(data, nil, DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, out, "  v:::chView\n")
}

func TestGenerateIgnoresExtraKeys(t *testing.T) {
	data := map[string]any{
		"view_dependencies": map[string]any{"a": []any{"b"}},
		"errors":            map[string]any{"broken.view": "parse: boom"},
	}
	out, err := Generate(data, nil, DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, out, "  b -.-> a\n")
	assert.NotContains(t, out, "broken.view")
}

func TestFromJSONEndToEnd(t *testing.T) {
	raw := []byte(`{"view_dependencies": {"a": ["b"]}}`)
	out, err := FromJSON(raw, nil, DefaultOptions())
	require.NoError(t, err)

	want := header +
		"  a:::chView\n" +
		"  b:::chView\n" +
		"\n" +
		"  b -.-> a\n"
	assert.Equal(t, want, out)
}

func TestFromJSONRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"invalid syntax": `{"view_dependencies": `,
		"top-level list": `[1, 2]`,
		"missing key":    `{"deps": {}}`,
	}
	for label, raw := range cases {
		_, err := FromJSON([]byte(raw), nil, DefaultOptions())
		var gerr *GraphError
		require.ErrorAs(t, err, &gerr, label)
	}
}
