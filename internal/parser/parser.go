// Package parser is a hand-written recursive-descent parser for CFDL
// source text. It produces a concrete parse tree (*File); a syntax error
// aborts the parse and no partial tree is returned.
//
// Grammar:
//
//	file       = { import | definition } .
//	import     = "import" STRING [ ";" ] .
//	definition = KEYWORD name "{" { item } "}" [ ";" ] .
//	item       = definition | property .
//	property   = key ":" value [ ";" | "," ] .
//	value      = NUMBER | STRING | IDENT | list | block .
//	list       = "[" [ value { "," value } [ "," ] ] "]" .
//	block      = "{" { property } "}" .
package parser

import (
	"fmt"
)

// Parser holds the token window over a Lexer.
type Parser struct {
	l         *Lexer
	curToken  Token
	peekToken Token
	err       *SyntaxError
}

// New creates a parser for src. filename is used in positions only.
func New(filename string, src []byte) *Parser {
	p := &Parser{l: NewLexer(filename, src)}
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses a complete CFDL source.
func Parse(filename string, src []byte) (*File, error) {
	return New(filename, src).ParseFile()
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t TokenType) bool {
	return p.peekToken.Type == t
}

// errorf records the first error. A lexer error takes precedence because
// it explains the ILLEGAL token the parser tripped over.
func (p *Parser) errorf(pos Pos, format string, args ...any) {
	if p.err != nil {
		return
	}
	if lexErr := p.l.Err(); lexErr != nil {
		p.err = lexErr
		return
	}
	p.err = newSyntaxError(pos, format, args...)
}

func (p *Parser) expect(t TokenType) bool {
	if p.curTokenIs(t) {
		p.nextToken()
		return true
	}
	p.errorf(p.curToken.Pos, "expected %s, found %s", t, describe(p.curToken))
	return false
}

func describe(tok Token) string {
	switch tok.Type {
	case IDENT, NUMBER:
		return fmt.Sprintf("%s %q", tok.Type, tok.Literal)
	case STRING:
		return fmt.Sprintf("string %q", tok.Literal)
	default:
		return tok.Type.String()
	}
}

// ParseFile parses imports and definitions until EOF.
func (p *Parser) ParseFile() (*File, error) {
	file := &File{Name: p.l.filename}

	for !p.curTokenIs(EOF) && p.err == nil {
		switch {
		case p.curTokenIs(IDENT) && p.curToken.Literal == "import":
			if imp := p.parseImport(); imp != nil {
				file.Imports = append(file.Imports, imp)
			}
		case p.curTokenIs(SEMI):
			p.nextToken()
		default:
			if def := p.parseDefinition(); def != nil {
				file.Defs = append(file.Defs, def)
			}
		}
	}

	if p.err == nil {
		if lexErr := p.l.Err(); lexErr != nil {
			p.err = lexErr
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	return file, nil
}

func (p *Parser) parseImport() *Import {
	imp := &Import{Pos: p.curToken.Pos}
	p.nextToken()
	if !p.curTokenIs(STRING) {
		p.errorf(p.curToken.Pos, "expected import path string, found %s", describe(p.curToken))
		return nil
	}
	imp.Path = p.curToken.Literal
	p.nextToken()
	if p.curTokenIs(SEMI) {
		p.nextToken()
	}
	return imp
}

func (p *Parser) parseDefinition() *Definition {
	if !p.curTokenIs(IDENT) {
		p.errorf(p.curToken.Pos, "expected definition keyword, found %s", describe(p.curToken))
		return nil
	}
	if !IsDefinitionKeyword(p.curToken.Literal) {
		p.errorf(p.curToken.Pos, "unknown definition kind %q", p.curToken.Literal)
		return nil
	}

	def := &Definition{Keyword: p.curToken.Literal, Pos: p.curToken.Pos}
	p.nextToken()

	switch p.curToken.Type {
	case IDENT, STRING, NUMBER:
		def.ID = p.curToken.Literal
		p.nextToken()
	default:
		p.errorf(p.curToken.Pos, "expected %s identifier, found %s", def.Keyword, describe(p.curToken))
		return nil
	}

	if !p.expect(LBRACE) {
		return nil
	}

	for !p.curTokenIs(RBRACE) {
		if p.curTokenIs(EOF) {
			p.errorf(def.Pos, "unterminated %s %q: missing '}'", def.Keyword, def.ID)
			return nil
		}
		item := p.parseItem()
		if item == nil {
			return nil
		}
		def.Body = append(def.Body, item)
	}
	p.nextToken() // '}'

	if p.curTokenIs(SEMI) {
		p.nextToken()
	}
	return def
}

// parseItem decides between a nested definition (`asset A1 {`) and a
// property (`key: value;`) by looking one token ahead.
func (p *Parser) parseItem() Item {
	if p.curTokenIs(IDENT) && !p.peekTokenIs(COLON) && IsDefinitionKeyword(p.curToken.Literal) {
		if def := p.parseDefinition(); def != nil {
			return def
		}
		return nil
	}
	if prop := p.parseProperty(); prop != nil {
		return prop
	}
	return nil
}

func (p *Parser) parseProperty() *Property {
	if !p.curTokenIs(IDENT) && !p.curTokenIs(STRING) {
		p.errorf(p.curToken.Pos, "expected property name, found %s", describe(p.curToken))
		return nil
	}
	prop := &Property{Key: p.curToken.Literal, Pos: p.curToken.Pos}
	p.nextToken()

	if !p.expect(COLON) {
		return nil
	}

	prop.Value = p.parseValue()
	if prop.Value == nil {
		return nil
	}

	switch p.curToken.Type {
	case SEMI, COMMA:
		p.nextToken()
	case RBRACE:
		// separator is optional before a closing brace
	default:
		p.errorf(p.curToken.Pos, "expected ';' after property %q, found %s", prop.Key, describe(p.curToken))
		return nil
	}
	return prop
}

func (p *Parser) parseValue() Value {
	tok := p.curToken
	switch tok.Type {
	case NUMBER:
		p.nextToken()
		return &NumberLit{Raw: tok.Literal, Pos: tok.Pos}
	case STRING:
		p.nextToken()
		return &StringLit{Value: tok.Literal, Pos: tok.Pos}
	case IDENT:
		p.nextToken()
		switch tok.Literal {
		case "true":
			return &BoolLit{Value: true, Pos: tok.Pos}
		case "false":
			return &BoolLit{Value: false, Pos: tok.Pos}
		case "null":
			return &NullLit{Pos: tok.Pos}
		}
		return &IdentLit{Name: tok.Literal, Pos: tok.Pos}
	case LBRACKET:
		return p.parseList()
	case LBRACE:
		return p.parseBlock()
	default:
		p.errorf(tok.Pos, "expected value, found %s", describe(tok))
		return nil
	}
}

func (p *Parser) parseList() Value {
	list := &ListLit{Pos: p.curToken.Pos}
	p.nextToken() // '['

	for !p.curTokenIs(RBRACKET) {
		elem := p.parseValue()
		if elem == nil {
			return nil
		}
		list.Elems = append(list.Elems, elem)

		if p.curTokenIs(COMMA) {
			p.nextToken()
			continue
		}
		if !p.curTokenIs(RBRACKET) {
			p.errorf(p.curToken.Pos, "expected ',' or ']' in list, found %s", describe(p.curToken))
			return nil
		}
	}
	p.nextToken() // ']'
	return list
}

func (p *Parser) parseBlock() Value {
	block := &BlockLit{Pos: p.curToken.Pos}
	p.nextToken() // '{'

	for !p.curTokenIs(RBRACE) {
		if p.curTokenIs(EOF) {
			p.errorf(block.Pos, "unterminated block: missing '}'")
			return nil
		}
		prop := p.parseProperty()
		if prop == nil {
			return nil
		}
		block.Entries = append(block.Entries, prop)
	}
	p.nextToken() // '}'
	return block
}
