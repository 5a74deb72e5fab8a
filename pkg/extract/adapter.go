package extract

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/chlineage/pkg/sqltree"
)

// ErrNoEntryRule is returned when no grammar entry rule both exists and
// parses the statement.
var ErrNoEntryRule = errors.New("no usable grammar entry rule")

// entryRuleNames is the fixed preference order of entry rule names probed
// on the parser. Grammar versions name their top rule differently; only
// some of these exist on any given parser.
var entryRuleNames = []string{
	"Statement",
	"SQLStatement",
	"SQLStatements",
	"Query",
	"SelectStmt",
}

// StatementRelations parses one SQL statement and returns the sorted list
// of relation names it references, with unqualified names resolved
// against defaultDB. The statement is rejected with ErrNoEntryRule when
// every known entry rule is either absent or fails to parse it.
func StatementRelations(sqlText, defaultDB string) ([]string, error) {
	p := sqltree.NewParser(sqlText)

	var root sqltree.Node
	for _, name := range entryRuleNames {
		entry, ok := p.Entry(name)
		if !ok {
			continue
		}
		node, err := entry()
		if err != nil {
			continue
		}
		root = node
		break
	}
	if root == nil {
		return nil, fmt.Errorf("%w for this statement", ErrNoEntryRule)
	}

	c := NewCollector(defaultDB)
	c.Collect(root)
	return c.Relations(), nil
}
