package ident

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "events", "events"},
		{"backticks", "`events`", "events"},
		{"double quotes", `"events"`, "events"},
		{"brackets", "[events]", "events"},
		{"surrounding whitespace", "  events  ", "events"},
		{"doubled backtick escape", "`my``table`", "my`table"},
		{"doubled quote escape", `"my""table"`, `my"table`},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.input))
		})
	}
}

func TestCleanIdempotent(t *testing.T) {
	for _, s := range []string{"events", "db.table", "a_b-c:d", "`quoted`"} {
		once := Clean(s)
		assert.Equal(t, once, Clean(once), "Clean must be idempotent for %q", s)
	}
}

func TestSplitQualified(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantDB    string
		wantTable string
	}{
		{"unqualified", "events", "", "events"},
		{"qualified", "analytics.events", "analytics", "events"},
		{"quoted parts", "`analytics`.`events`", "analytics", "events"},
		{"three-part stays unqualified", "cluster.analytics.events", "", "cluster.analytics.events"},
		{"trailing space", " analytics.events ", "analytics", "events"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, table := SplitQualified(tt.input)
			assert.Equal(t, tt.wantDB, db)
			assert.Equal(t, tt.wantTable, table)
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		defaultDB string
		want      string
	}{
		{"explicit db wins", "analytics.events", "other", "analytics.events"},
		{"default db applied", "events", "analytics", "analytics.events"},
		{"no db at all", "events", "", "events"},
		{"quoted qualified", "`analytics`.`events`", "", "analytics.events"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw, tt.defaultDB))
		})
	}
}

func TestNormalizePure(t *testing.T) {
	// Same inputs must always give the same output.
	a := Normalize("`db`.`t`", "x")
	b := Normalize("`db`.`t`", "x")
	assert.Equal(t, a, b)
}
