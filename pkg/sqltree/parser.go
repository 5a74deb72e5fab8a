package sqltree

// ParseError represents a statement that could not be parsed.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string {
	return "parse error: " + e.Message
}

// EntryFunc is a named grammar entry rule. Each invocation parses the
// full input from the beginning.
type EntryFunc func() (Node, error)

// Parser builds a parse tree from tokenized SQL. It is deliberately
// lenient: clause anchors (WITH, FROM, JOIN, parentheses) become
// structured nodes and everything else is kept as opaque token leaves.
type Parser struct {
	src    string
	tokens []Token
	pos    int
}

// NewParser creates a parser for the given SQL text.
func NewParser(src string) *Parser {
	return &Parser{
		src:    src,
		tokens: Tokenize(src),
	}
}

// Entry returns the entry rule registered under name, if any. Grammar
// versions differ in what they call their top rule, so callers probe a
// preference list of names rather than hard-coding one.
func (p *Parser) Entry(name string) (EntryFunc, bool) {
	switch name {
	case "Statement":
		return p.Statement, true
	case "Query":
		return p.Query, true
	default:
		return nil, false
	}
}

// Statement parses a full SQL statement, DDL included. It fails when the
// input is empty or contains no SELECT/FROM anchor to extract from.
func (p *Parser) Statement() (Node, error) {
	if p.empty() {
		return nil, &ParseError{Message: "empty statement"}
	}
	if !p.hasAnchor(TOKEN_SELECT, TOKEN_FROM) {
		return nil, &ParseError{Message: "no query clause found in statement"}
	}
	return p.parseRoot(KindStatement), nil
}

// Query parses a bare query. It fails when the input carries no SELECT.
func (p *Parser) Query() (Node, error) {
	if p.empty() {
		return nil, &ParseError{Message: "empty query"}
	}
	if !p.hasAnchor(TOKEN_SELECT) {
		return nil, &ParseError{Message: "no SELECT found in query"}
	}
	return p.parseRoot(KindQuery), nil
}

func (p *Parser) empty() bool {
	return len(p.tokens) == 0 || p.tokens[0].Type == TOKEN_EOF
}

func (p *Parser) hasAnchor(types ...TokenType) bool {
	for _, tok := range p.tokens {
		for _, t := range types {
			if tok.Type == t {
				return true
			}
		}
	}
	return false
}

func (p *Parser) parseRoot(kind string) Node {
	p.pos = 0
	children := p.parseNodes(false)
	start := p.tokens[0].Start
	end := start
	if n := len(p.tokens); n > 1 {
		end = p.tokens[n-2].End // last token before EOF
	}
	return p.newNode(kind, start, end, children)
}

func (p *Parser) cur() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TOKEN_EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) newNode(kind string, start, end int, children []Node) *baseNode {
	return &baseNode{kind: kind, src: p.src, start: start, end: end, children: children}
}

// leaf consumes the current token as an opaque leaf node.
func (p *Parser) leaf() Node {
	tok := p.cur()
	p.pos++
	return p.newNode(KindToken, tok.Start, tok.End, nil)
}

// parseNodes consumes tokens until EOF, or until an unconsumed closing
// parenthesis when inParen is set.
func (p *Parser) parseNodes(inParen bool) []Node {
	var nodes []Node
	for {
		node, stop := p.parseOne(inParen)
		if stop {
			return nodes
		}
		nodes = append(nodes, node)
	}
}

// parseOne consumes one construct. stop is true at EOF or at a closing
// parenthesis belonging to the enclosing group.
func (p *Parser) parseOne(inParen bool) (Node, bool) {
	switch p.cur().Type {
	case TOKEN_EOF:
		return nil, true
	case TOKEN_RPAREN:
		if inParen {
			return nil, true
		}
		return p.leaf(), false // stray closing paren, keep as leaf
	case TOKEN_LPAREN:
		return p.parseParenGroup(), false
	case TOKEN_WITH:
		return p.parseWithClause(inParen), false
	case TOKEN_FROM:
		return p.parseTableClause(KindFromClause), false
	case TOKEN_JOIN:
		return p.parseTableClause(KindJoinExpr), false
	default:
		return p.leaf(), false
	}
}

// parseParenGroup consumes a parenthesized group, recursing so nested
// queries grow their own FROM/JOIN structure.
func (p *Parser) parseParenGroup() Node {
	open := p.cur()
	p.pos++
	children := p.parseNodes(true)
	end := open.End
	if len(children) > 0 {
		end = p.nodeEnd(children[len(children)-1])
	}
	if p.cur().Type == TOKEN_RPAREN {
		end = p.cur().End
		p.pos++
	}
	return p.newNode(KindParenGroup, open.Start, end, children)
}

// parseWithClause consumes WITH and everything up to the statement's
// SELECT. CTE bodies are parenthesized and recurse normally, so their
// inner FROM clauses are still discovered.
func (p *Parser) parseWithClause(inParen bool) Node {
	start := p.cur().Start
	children := []Node{p.leaf()} // the WITH keyword
	end := start
	for {
		t := p.cur().Type
		if t == TOKEN_EOF || t == TOKEN_SELECT || (inParen && t == TOKEN_RPAREN) {
			break
		}
		node, stop := p.parseOne(inParen)
		if stop {
			break
		}
		children = append(children, node)
		end = p.nodeEnd(node)
	}
	if len(children) > 0 {
		end = p.nodeEnd(children[len(children)-1])
	}
	return p.newNode(KindWithClause, start, end, children)
}

// parseTableClause consumes FROM or JOIN together with the table
// expressions that follow it. Plain relation names become structured
// TableIdentifier nodes; subqueries and table functions keep their
// parentheses so downstream heuristics can reject them.
func (p *Parser) parseTableClause(kind string) Node {
	start := p.cur().Start
	children := []Node{p.leaf()} // the FROM/JOIN keyword

	for {
		switch p.cur().Type {
		case TOKEN_IDENT:
			children = append(children, p.parseTableExpr())
		case TOKEN_LPAREN:
			children = append(children, p.parseParenGroup())
		default:
			// No table expression follows (e.g. FROM numbers(...) already
			// consumed, or malformed input). Leave the rest to the caller.
			return p.newNode(kind, start, p.nodeEnd(children[len(children)-1]), children)
		}

		// Comma-separated table lists stay inside the clause.
		if p.cur().Type == TOKEN_COMMA {
			children = append(children, p.leaf())
			continue
		}
		break
	}

	return p.newNode(kind, start, p.nodeEnd(children[len(children)-1]), children)
}

// parseTableExpr consumes a (possibly qualified) identifier run. When the
// run is immediately followed by an opening parenthesis it is a table
// function call: the tokens are kept as opaque leaves with the argument
// group attached, and no structured identifier is produced.
func (p *Parser) parseTableExpr() Node {
	start := p.cur().Start
	identStart := p.pos

	// IDENT (DOT IDENT)*
	p.pos++
	for p.cur().Type == TOKEN_DOT && p.pos+1 < len(p.tokens) && p.tokens[p.pos+1].Type == TOKEN_IDENT {
		p.pos += 2
	}
	identEnd := p.tokens[p.pos-1].End

	if p.cur().Type == TOKEN_LPAREN {
		// Table function: FROM s3(...), numbers(...), remote(...).
		var children []Node
		for i := identStart; i < p.pos; i++ {
			children = append(children, p.newNode(KindToken, p.tokens[i].Start, p.tokens[i].End, nil))
		}
		args := p.parseParenGroup()
		children = append(children, args)
		node := &tableExprNode{}
		node.baseNode = *p.newNode(KindTableExpr, start, p.nodeEnd(args), children)
		return node
	}

	ti := p.newNode(KindTableIdentifier, start, identEnd, nil)
	node := &tableExprNode{tableIdent: ti}
	node.baseNode = *p.newNode(KindTableExpr, start, identEnd, []Node{ti})
	return node
}

// nodeEnd returns the end offset of a node built by this parser.
func (p *Parser) nodeEnd(n Node) int {
	switch v := n.(type) {
	case *baseNode:
		return v.end
	case *tableExprNode:
		return v.end
	default:
		return 0
	}
}
