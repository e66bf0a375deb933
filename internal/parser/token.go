package parser

import "fmt"

// TokenType identifies a lexical token class.
type TokenType int

const (
	EOF TokenType = iota
	ILLEGAL
	IDENT
	NUMBER
	STRING
	LBRACE   // {
	RBRACE   // }
	LBRACKET // [
	RBRACKET // ]
	COLON    // :
	SEMI     // ;
	COMMA    // ,
)

var tokenNames = map[TokenType]string{
	EOF:      "end of input",
	ILLEGAL:  "illegal token",
	IDENT:    "identifier",
	NUMBER:   "number",
	STRING:   "string",
	LBRACE:   "'{'",
	RBRACE:   "'}'",
	LBRACKET: "'['",
	RBRACKET: "']'",
	COLON:    "':'",
	SEMI:     "';'",
	COMMA:    "','",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Token is a lexeme with its position. For STRING tokens Literal holds the
// unquoted, unescaped text.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Pos
}

// Pos is a source position. Line and Column are 1-based; Offset is the
// byte offset into the source.
type Pos struct {
	Filename string
	Line     int
	Column   int
	Offset   int
}

// IsValid reports whether the position was set.
func (p Pos) IsValid() bool {
	return p.Line > 0
}

func (p Pos) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Definition keywords recognized at the top level and inside bodies.
// The generic categories (entity, behavior, temporal, result) introduce
// definitions without a dedicated schema.
var definitionKeywords = map[string]bool{
	"deal":          true,
	"asset":         true,
	"component":     true,
	"stream":        true,
	"assumption":    true,
	"logic_block":   true,
	"rule_block":    true,
	"schedule":      true,
	"event_trigger": true,
	"template":      true,
	"contract":      true,
	"party":         true,
	"fund":          true,
	"portfolio":     true,
	"capital_stack": true,
	"waterfall":     true,
	"metric":        true,
	"market_data":   true,
	"entity":        true,
	"behavior":      true,
	"temporal":      true,
	"result":        true,
}

// IsDefinitionKeyword reports whether kw starts a definition.
func IsDefinitionKeyword(kw string) bool {
	return definitionKeywords[kw]
}
