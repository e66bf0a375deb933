// Package ast holds the typed syntax tree built from a CFDL parse tree.
//
// Every definition becomes a *Node with an ordered property bag. The bag is
// the single source of truth: typed views such as Deal or Stream read from
// it and never keep their own copies. Keys that the node's kind does not
// declare are kept as extension properties, so tooling can tell a known
// but unset field from an unknown one.
package ast

import (
	"github.com/roach88/cfdl/internal/parser"
)

// Node is one definition. Children holds definitions embedded in the body
// (for example an asset declared inside a deal).
type Node struct {
	Kind     Kind
	Keyword  string // keyword as written; distinguishes generic categories
	ID       string
	Name     string
	Pos      parser.Pos
	Props    *Properties
	Children []*Node
}

// Property is one entry of the bag. Key is the canonical name; Source is
// the key as written when an alias was used.
type Property struct {
	Key       string
	Source    string
	Value     Value
	Pos       parser.Pos
	Extension bool
}

// Properties is an ordered property bag.
type Properties struct {
	list  []*Property
	index map[string]int
}

// NewProperties returns an empty bag.
func NewProperties() *Properties {
	return &Properties{index: make(map[string]int)}
}

// Set stores p. A repeated key replaces the earlier value in place, so the
// last occurrence wins while the original order is kept.
func (ps *Properties) Set(p *Property) {
	if i, ok := ps.index[p.Key]; ok {
		ps.list[i] = p
		return
	}
	ps.index[p.Key] = len(ps.list)
	ps.list = append(ps.list, p)
}

// Lookup returns the property stored under key.
func (ps *Properties) Lookup(key string) (*Property, bool) {
	if ps == nil {
		return nil, false
	}
	i, ok := ps.index[key]
	if !ok {
		return nil, false
	}
	return ps.list[i], true
}

// Get returns the value stored under key, or nil.
func (ps *Properties) Get(key string) Value {
	if p, ok := ps.Lookup(key); ok {
		return p.Value
	}
	return nil
}

// Has reports whether key is present (even with a null value).
func (ps *Properties) Has(key string) bool {
	_, ok := ps.Lookup(key)
	return ok
}

// All returns properties in source order.
func (ps *Properties) All() []*Property {
	if ps == nil {
		return nil
	}
	out := make([]*Property, len(ps.list))
	copy(out, ps.list)
	return out
}

// Keys returns the canonical keys in source order.
func (ps *Properties) Keys() []string {
	if ps == nil {
		return nil
	}
	keys := make([]string, len(ps.list))
	for i, p := range ps.list {
		keys[i] = p.Key
	}
	return keys
}

// Extensions returns the keys that the node's kind does not declare.
func (ps *Properties) Extensions() []string {
	if ps == nil {
		return nil
	}
	var keys []string
	for _, p := range ps.list {
		if p.Extension {
			keys = append(keys, p.Key)
		}
	}
	return keys
}

// Len returns the number of properties.
func (ps *Properties) Len() int {
	if ps == nil {
		return 0
	}
	return len(ps.list)
}

// String returns the text of a String or Ident property.
func (ps *Properties) String(key string) string {
	s, _ := Text(ps.Get(key))
	return s
}

// Strings returns a list property as strings, skipping non-text elements.
// A single text value is returned as a one-element slice.
func (ps *Properties) Strings(key string) []string {
	switch v := ps.Get(key).(type) {
	case List:
		out := make([]string, 0, len(v))
		for _, elem := range v {
			if s, ok := Text(elem); ok {
				out = append(out, s)
			}
		}
		return out
	case String, Ident:
		s, _ := Text(v)
		return []string{s}
	default:
		return nil
	}
}

// Number returns a numeric property.
func (ps *Properties) Number(key string) (Number, bool) {
	n, ok := ps.Get(key).(Number)
	return n, ok
}

// appendID adds id to the list property key, creating it when absent.
func (ps *Properties) appendID(key string, id string, pos parser.Pos) {
	p, ok := ps.Lookup(key)
	if !ok {
		ps.Set(&Property{Key: key, Value: List{Ident(id)}, Pos: pos})
		return
	}
	list, _ := p.Value.(List)
	for _, existing := range list {
		if s, _ := Text(existing); s == id {
			return
		}
	}
	p.Value = append(list, Ident(id))
}
