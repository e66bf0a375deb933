package ast

import (
	"math"
	"strconv"
	"strings"

	"github.com/roach88/cfdl/internal/parser"
)

// Value is a property value in the AST. It is a sealed interface:
// Null, String, Ident, Number, Bool, List and *Map implement it.
type Value interface {
	astValue()
}

type Null struct{}

// String is a quoted string literal, already unquoted.
type String string

// Ident is a bare token (enum value, entity id, unquoted date).
type Ident string

// Number keeps the literal text next to its parsed forms.
type Number struct {
	Raw   string
	Float float64
	Int   int64
	IsInt bool // written without fraction or exponent and fits in int64
}

type Bool bool

type List []Value

// Entry is one key/value pair of a Map.
type Entry struct {
	Key   string
	Value Value
}

// Map is an ordered mapping from a nested `{ ... }` block.
type Map struct {
	Entries []Entry
}

func (Null) astValue()   {}
func (String) astValue() {}
func (Ident) astValue()  {}
func (Number) astValue() {}
func (Bool) astValue()   {}
func (List) astValue()   {}
func (*Map) astValue()   {}

// Get returns the value for key and whether it is present.
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return nil, false
	}
	for i := len(m.Entries) - 1; i >= 0; i-- {
		if m.Entries[i].Key == key {
			return m.Entries[i].Value, true
		}
	}
	return nil, false
}

// Set replaces an existing key in place or appends a new one.
func (m *Map) Set(key string, v Value) {
	for i := range m.Entries {
		if m.Entries[i].Key == key {
			m.Entries[i].Value = v
			return
		}
	}
	m.Entries = append(m.Entries, Entry{Key: key, Value: v})
}

// ParseNumber converts a numeric literal. The second result is false when
// the text is not a finite number.
func ParseNumber(raw string) (Number, bool) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return Number{}, false
	}
	n := Number{Raw: raw, Float: f}
	if !strings.ContainsAny(raw, ".eE") {
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			n.Int = i
			n.IsInt = true
		}
	}
	return n, true
}

// Text returns the string form of a String or Ident value.
func Text(v Value) (string, bool) {
	switch val := v.(type) {
	case String:
		return string(val), true
	case Ident:
		return string(val), true
	default:
		return "", false
	}
}

// fromLiteral lifts a parse-tree value into the AST value model.
func fromLiteral(v parser.Value) Value {
	switch lit := v.(type) {
	case *parser.NumberLit:
		if n, ok := ParseNumber(lit.Raw); ok {
			return n
		}
		return Ident(lit.Raw)
	case *parser.StringLit:
		return String(lit.Value)
	case *parser.BoolLit:
		return Bool(lit.Value)
	case *parser.NullLit:
		return Null{}
	case *parser.IdentLit:
		return Ident(lit.Name)
	case *parser.ListLit:
		out := make(List, 0, len(lit.Elems))
		for _, elem := range lit.Elems {
			out = append(out, fromLiteral(elem))
		}
		return out
	case *parser.BlockLit:
		m := &Map{}
		for _, entry := range lit.Entries {
			m.Set(entry.Key, fromLiteral(entry.Value))
		}
		return m
	default:
		return Null{}
	}
}
