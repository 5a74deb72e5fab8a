package sqltree

// Rule kinds carried by tree nodes. Consumers match on these by
// substring, the way visitors match ANTLR context class names, so the
// exact set may grow without breaking extraction.
const (
	KindStatement       = "Statement"
	KindQuery           = "Query"
	KindWithClause      = "WithClause"
	KindFromClause      = "FromClause"
	KindJoinExpr        = "JoinExpr"
	KindTableExpr       = "TableExpr"
	KindTableIdentifier = "TableIdentifier"
	KindParenGroup      = "ParenGroup"
	KindToken           = "Token"
)

// Node is one node of a parse tree. Text returns the node's source span
// verbatim, including quoting and whitespace.
type Node interface {
	Kind() string
	Children() []Node
	Text() string
}

// TableIdentifierProvider is implemented by nodes that can surface a
// structured table identifier. Callers must treat the accessor as
// optional: a nil result means the node has no structured identifier and
// text-level heuristics apply instead.
type TableIdentifierProvider interface {
	TableIdentifier() Node
}

// baseNode is the common implementation backing all tree nodes.
type baseNode struct {
	kind     string
	src      string
	start    int
	end      int
	children []Node
}

func (n *baseNode) Kind() string     { return n.kind }
func (n *baseNode) Children() []Node { return n.children }

func (n *baseNode) Text() string {
	if n.start < 0 || n.end > len(n.src) || n.start > n.end {
		return ""
	}
	return n.src[n.start:n.end]
}

// tableExprNode is a table expression inside FROM or JOIN. When the
// expression is a plain (possibly qualified) relation name, tableIdent
// holds the structured identifier; for subqueries and table functions it
// stays nil.
type tableExprNode struct {
	baseNode
	tableIdent Node
}

func (n *tableExprNode) TableIdentifier() Node { return n.tableIdent }

// Walk visits n and all its descendants in depth-first order. The visit
// function is called before descending into children.
func Walk(n Node, visit func(Node)) {
	if n == nil {
		return
	}
	visit(n)
	for _, c := range n.Children() {
		Walk(c, visit)
	}
}
