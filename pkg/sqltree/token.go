package sqltree

import "fmt"

// TokenType represents the type of a lexical token.
type TokenType int

//nolint:revive // TOKEN_* names are intentionally ALL_CAPS for SQL token conventions
const (
	// TOKEN_EOF represents end of input.
	TOKEN_EOF TokenType = iota
	// TOKEN_SYMBOL represents any operator or punctuation character the
	// grammar does not treat specially. The statement walker keeps these
	// as opaque leaves.
	TOKEN_SYMBOL

	// TOKEN_IDENT represents an identifier, quoted or bare. Quoting is
	// preserved in the token literal; cleaning happens downstream.
	TOKEN_IDENT
	// TOKEN_NUMBER represents a numeric literal.
	TOKEN_NUMBER
	// TOKEN_STRING represents a single-quoted string literal.
	TOKEN_STRING

	TOKEN_DOT    // .
	TOKEN_COMMA  // ,
	TOKEN_LPAREN // (
	TOKEN_RPAREN // )

	// Keywords the structural pass cares about.
	TOKEN_AS
	TOKEN_FROM
	TOKEN_JOIN
	TOKEN_SELECT
	TOKEN_WITH
)

// Token represents a lexical token with its source span.
type Token struct {
	Type    TokenType
	Literal string
	Start   int // byte offset of the first character
	End     int // byte offset one past the last character
}

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", int(t))
}

var tokenNames = map[TokenType]string{
	TOKEN_EOF:    "EOF",
	TOKEN_SYMBOL: "SYMBOL",
	TOKEN_IDENT:  "IDENT",
	TOKEN_NUMBER: "NUMBER",
	TOKEN_STRING: "STRING",
	TOKEN_DOT:    ".",
	TOKEN_COMMA:  ",",
	TOKEN_LPAREN: "(",
	TOKEN_RPAREN: ")",
	TOKEN_AS:     "AS",
	TOKEN_FROM:   "FROM",
	TOKEN_JOIN:   "JOIN",
	TOKEN_SELECT: "SELECT",
	TOKEN_WITH:   "WITH",
}

// keywords maps lowercase keyword strings to their token types. Every
// other word stays TOKEN_IDENT; the walker only needs the clause anchors.
var keywords = map[string]TokenType{
	"as":     TOKEN_AS,
	"from":   TOKEN_FROM,
	"join":   TOKEN_JOIN,
	"select": TOKEN_SELECT,
	"with":   TOKEN_WITH,
}

// LookupIdent returns the token type for the given lowercase identifier.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return TOKEN_IDENT
}
