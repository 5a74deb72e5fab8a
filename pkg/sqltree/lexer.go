// Package sqltree provides a lenient ClickHouse-flavored SQL tokenizer and
// a structural parser producing a generic parse tree. The tree is built
// for dependency extraction, not validation: unrecognized input degrades
// to opaque token leaves instead of failing the parse.
package sqltree

import "unicode"

// Lexer tokenizes SQL input.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	l.skipWhitespaceAndComments()

	start := l.pos

	var tok Token
	switch l.ch {
	case 0:
		return Token{Type: TOKEN_EOF, Start: start, End: start}
	case '.':
		tok = Token{Type: TOKEN_DOT, Literal: "."}
	case ',':
		tok = Token{Type: TOKEN_COMMA, Literal: ","}
	case '(':
		tok = Token{Type: TOKEN_LPAREN, Literal: "("}
	case ')':
		tok = Token{Type: TOKEN_RPAREN, Literal: ")"}
	case '\'':
		lit := l.readString()
		return Token{Type: TOKEN_STRING, Literal: lit, Start: start, End: l.pos}
	case '`':
		lit := l.readQuoted('`')
		return Token{Type: TOKEN_IDENT, Literal: lit, Start: start, End: l.pos}
	case '"':
		lit := l.readQuoted('"')
		return Token{Type: TOKEN_IDENT, Literal: lit, Start: start, End: l.pos}
	default:
		if isLetter(l.ch) || l.ch == '_' {
			lit := l.readIdentifier()
			return Token{Type: LookupIdent(lower(lit)), Literal: lit, Start: start, End: l.pos}
		}
		if isDigit(l.ch) {
			lit := l.readNumber()
			return Token{Type: TOKEN_NUMBER, Literal: lit, Start: start, End: l.pos}
		}
		tok = Token{Type: TOKEN_SYMBOL, Literal: string(l.ch)}
	}

	tok.Start = start
	l.readChar()
	tok.End = l.pos
	return tok
}

// skipWhitespaceAndComments skips whitespace and comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			l.readChar()
		}

		// Line comment (-- ...)
		if l.ch == '-' && l.peekChar() == '-' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}

		// Block comment (/* ... */)
		if l.ch == '/' && l.peekChar() == '*' {
			l.readChar()
			l.readChar()
			for {
				if l.ch == 0 {
					return // unterminated block comment
				}
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar()
					l.readChar()
					break
				}
				l.readChar()
			}
			continue
		}

		break
	}
}

// readString reads a single-quoted string literal, including the quotes.
// Doubled single quotes and backslash escapes are consumed but not
// interpreted; the literal is never inspected for relation names.
func (l *Lexer) readString() string {
	start := l.pos
	l.readChar() // opening quote
	for {
		if l.ch == 0 {
			break // unterminated string
		}
		if l.ch == '\\' && l.peekChar() != 0 {
			l.readChar()
			l.readChar()
			continue
		}
		if l.ch == '\'' {
			if l.peekChar() == '\'' {
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar() // closing quote
			break
		}
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readQuoted reads a quoted identifier including its quote characters.
// Doubled quote characters escape themselves.
func (l *Lexer) readQuoted(quote byte) string {
	start := l.pos
	l.readChar() // opening quote
	for {
		if l.ch == 0 {
			break // unterminated identifier
		}
		if l.ch == quote {
			if l.peekChar() == quote {
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar() // closing quote
			break
		}
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readIdentifier reads an unquoted identifier.
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readNumber reads a numeric literal (integer, decimal, or scientific).
func (l *Lexer) readNumber() string {
	start := l.pos
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[start:l.pos]
}

// Tokenize returns all tokens from the input, ending with TOKEN_EOF.
func Tokenize(input string) []Token {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TOKEN_EOF {
			break
		}
	}
	return tokens
}

func isLetter(ch byte) bool {
	return unicode.IsLetter(rune(ch))
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
