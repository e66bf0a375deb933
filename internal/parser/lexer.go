package parser

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer splits CFDL source into tokens. Whitespace and comments
// (`// ...` and `/* ... */`) are skipped.
type Lexer struct {
	src      []byte
	filename string

	offset int // start of current rune
	line   int
	col    int

	err *SyntaxError
}

// NewLexer creates a lexer over src.
func NewLexer(filename string, src []byte) *Lexer {
	return &Lexer{src: src, filename: filename, line: 1, col: 1}
}

// Err returns the first lexical error, if any.
func (l *Lexer) Err() *SyntaxError {
	return l.err
}

func (l *Lexer) pos() Pos {
	return Pos{Filename: l.filename, Line: l.line, Column: l.col, Offset: l.offset}
}

func (l *Lexer) peek() rune {
	if l.offset >= len(l.src) {
		return -1
	}
	r, _ := utf8.DecodeRune(l.src[l.offset:])
	return r
}

func (l *Lexer) peekAt(n int) byte {
	if l.offset+n >= len(l.src) {
		return 0
	}
	return l.src[l.offset+n]
}

func (l *Lexer) advance() rune {
	if l.offset >= len(l.src) {
		return -1
	}
	r, size := utf8.DecodeRune(l.src[l.offset:])
	l.offset += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) fail(pos Pos, format string, args ...any) Token {
	if l.err == nil {
		l.err = newSyntaxError(pos, format, args...)
	}
	return Token{Type: ILLEGAL, Pos: pos}
}

// NextToken returns the next token. After an error every call returns
// ILLEGAL.
func (l *Lexer) NextToken() Token {
	if l.err != nil {
		return Token{Type: ILLEGAL, Pos: l.err.Pos}
	}
	if tok, ok := l.skipTrivia(); !ok {
		return tok
	}

	start := l.pos()
	r := l.peek()
	switch {
	case r == -1:
		return Token{Type: EOF, Pos: start}
	case r == '{':
		l.advance()
		return Token{Type: LBRACE, Literal: "{", Pos: start}
	case r == '}':
		l.advance()
		return Token{Type: RBRACE, Literal: "}", Pos: start}
	case r == '[':
		l.advance()
		return Token{Type: LBRACKET, Literal: "[", Pos: start}
	case r == ']':
		l.advance()
		return Token{Type: RBRACKET, Literal: "]", Pos: start}
	case r == ':':
		l.advance()
		return Token{Type: COLON, Literal: ":", Pos: start}
	case r == ';':
		l.advance()
		return Token{Type: SEMI, Literal: ";", Pos: start}
	case r == ',':
		l.advance()
		return Token{Type: COMMA, Literal: ",", Pos: start}
	case r == '"':
		return l.scanString(start)
	case r == '-' || r == '+' || isDigit(r):
		return l.scanNumeric(start)
	case isIdentStart(r):
		return l.scanIdent(start)
	default:
		l.advance()
		return l.fail(start, "unexpected character %q", r)
	}
}

// skipTrivia consumes whitespace and comments. It returns ok=false with an
// ILLEGAL token when a block comment is unterminated.
func (l *Lexer) skipTrivia() (Token, bool) {
	for {
		r := l.peek()
		switch {
		case r == -1:
			return Token{}, true
		case unicode.IsSpace(r):
			l.advance()
		case r == '/' && l.peekAt(1) == '/':
			for r := l.peek(); r != '\n' && r != -1; r = l.peek() {
				l.advance()
			}
		case r == '/' && l.peekAt(1) == '*':
			start := l.pos()
			l.advance()
			l.advance()
			for {
				if l.peek() == -1 {
					return l.fail(start, "unterminated block comment"), false
				}
				if l.peek() == '*' && l.peekAt(1) == '/' {
					l.advance()
					l.advance()
					break
				}
				l.advance()
			}
		default:
			return Token{}, true
		}
	}
}

func (l *Lexer) scanString(start Pos) Token {
	l.advance() // opening quote
	var sb strings.Builder
	for {
		r := l.advance()
		switch r {
		case -1, '\n':
			return l.fail(start, "unterminated string")
		case '"':
			return Token{Type: STRING, Literal: sb.String(), Pos: start}
		case '\\':
			esc := l.advance()
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '"', '\\', '/':
				sb.WriteRune(esc)
			case 'u':
				var hex [4]byte
				for i := range hex {
					hex[i] = byte(l.advance())
				}
				n, err := strconv.ParseUint(string(hex[:]), 16, 32)
				if err != nil {
					return l.fail(start, "invalid unicode escape \\u%s", hex[:])
				}
				sb.WriteRune(rune(n))
			default:
				return l.fail(start, "invalid escape sequence \\%c", esc)
			}
		default:
			sb.WriteRune(r)
		}
	}
}

// scanNumeric reads a run of word characters starting with a digit or sign.
// Runs that parse as a finite float are NUMBER tokens; anything else (an
// unquoted date such as 2024-01-01, or +Inf) is a bare IDENT.
func (l *Lexer) scanNumeric(start Pos) Token {
	begin := l.offset
	l.advance()
	for r := l.peek(); isWordChar(r) || r == '+'; r = l.peek() {
		l.advance()
	}
	text := string(l.src[begin:l.offset])
	if text == "-" || text == "+" {
		return l.fail(start, "unexpected character %q", text)
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return Token{Type: NUMBER, Literal: text, Pos: start}
	}
	return Token{Type: IDENT, Literal: text, Pos: start}
}

func (l *Lexer) scanIdent(start Pos) Token {
	begin := l.offset
	for r := l.peek(); isWordChar(r) || r == '$'; r = l.peek() {
		l.advance()
	}
	return Token{Type: IDENT, Literal: string(l.src[begin:l.offset]), Pos: start}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isWordChar(r rune) bool {
	return r == '_' || r == '-' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
