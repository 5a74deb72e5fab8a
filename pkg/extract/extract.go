// Package extract recovers the set of relations a SQL statement reads
// from. Extraction is best-effort: it walks the parse tree produced by
// sqltree, prefers structured table identifiers where the tree exposes
// them, and falls back to pattern matching over the node text. Ambiguous
// constructs (table functions, subquery aliases) are dropped rather than
// misreported.
package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/leapstack-labs/chlineage/pkg/ident"
	"github.com/leapstack-labs/chlineage/pkg/sqltree"
)

// tableLikeKinds are matched as substrings against lowercase node kinds,
// the same way the tree kinds themselves are versioned loosely: a grammar
// update that renames TableExpr to TableExpression keeps working.
var tableLikeKinds = []string{
	"tableidentifier",
	"tableexpr",
	"tableexpression",
	"join",
	"fromclause",
}

// cteAliasRe captures the leading identifier of a `name AS (` CTE
// declaration inside a WITH clause.
var cteAliasRe = regexp.MustCompile(`(?i)([A-Za-z_][A-Za-z0-9_]*)\s+AS\s*\(`)

// candidateRe captures a possibly quoted, possibly qualified identifier
// following FROM or JOIN.
var candidateRe = regexp.MustCompile("(?i)\\b(?:FROM|JOIN)\\b\\s*([`\"\\[]?[A-Za-z_][A-Za-z0-9_]*[`\"\\]]?(?:\\s*\\.\\s*[`\"\\[]?[A-Za-z_][A-Za-z0-9_]*[`\"\\]]?)?)")

var whitespaceRe = regexp.MustCompile(`\s+`)

// Collector accumulates referenced relation names from one statement's
// parse tree. Names are normalized against the default database and CTE
// aliases declared in the statement are excluded.
type Collector struct {
	defaultDB string
	tables    map[string]struct{}
	cteNames  map[string]struct{}
}

// NewCollector creates a Collector qualifying unqualified names with
// defaultDB (pass "" to leave them bare).
func NewCollector(defaultDB string) *Collector {
	return &Collector{
		defaultDB: defaultDB,
		tables:    make(map[string]struct{}),
		cteNames:  make(map[string]struct{}),
	}
}

// Collect walks the tree and records every table-like reference. It never
// fails: a tree node that misbehaves structurally is skipped and the walk
// continues with text heuristics.
func (c *Collector) Collect(root sqltree.Node) {
	c.scanCTEAliases(root)
	sqltree.Walk(root, c.visit)
}

// scanCTEAliases records CTE names declared in WITH clauses so they are
// not reported as persistent relations.
func (c *Collector) scanCTEAliases(root sqltree.Node) {
	sqltree.Walk(root, func(n sqltree.Node) {
		if !strings.Contains(strings.ToLower(n.Kind()), "withclause") {
			return
		}
		for _, m := range cteAliasRe.FindAllStringSubmatch(n.Text(), -1) {
			c.cteNames[ident.Clean(m[1])] = struct{}{}
		}
	})
}

func (c *Collector) visit(n sqltree.Node) {
	kind := strings.ToLower(n.Kind())
	for _, key := range tableLikeKinds {
		if strings.Contains(kind, key) {
			c.tryExtract(n)
			return
		}
	}
}

// tryExtract pulls relation names out of a single table-like node:
// structured accessor first, then the FROM/JOIN pattern over the node
// text. A panicking accessor implementation is swallowed so one bad node
// cannot sink the whole statement.
func (c *Collector) tryExtract(n sqltree.Node) {
	if p, ok := n.(sqltree.TableIdentifierProvider); ok {
		func() {
			defer func() { _ = recover() }()
			if ti := p.TableIdentifier(); ti != nil {
				c.addTableText(ti.Text())
			}
		}()
	}

	text := n.Text()
	for _, idx := range candidateRe.FindAllStringSubmatchIndex(text, -1) {
		candidate := text[idx[2]:idx[3]]
		// A candidate directly followed by an opening parenthesis is a
		// table function call (s3(...), numbers(...)), not a relation.
		if rest := strings.TrimLeft(text[idx[3]:], " \t\r\n"); strings.HasPrefix(rest, "(") {
			continue
		}
		c.addTableText(whitespaceRe.ReplaceAllString(candidate, ""))
	}
}

// addTableText normalizes and records one raw candidate.
func (c *Collector) addTableText(raw string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return
	}

	// Anything carrying parentheses is function-call-like; drop it.
	if strings.ContainsAny(raw, "()") {
		return
	}

	norm := ident.Normalize(raw, c.defaultDB)

	// CTE aliases are statement-local, compared on the unqualified part.
	_, local := ident.SplitQualified(norm)
	if _, isCTE := c.cteNames[local]; isCTE {
		return
	}

	c.tables[norm] = struct{}{}
}

// Relations returns the collected relation names as a sorted slice.
func (c *Collector) Relations() []string {
	out := make([]string, 0, len(c.tables))
	for name := range c.tables {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
