package ir

import "slices"

// Node is implemented by the 16 IR kinds and nothing else. Code that needs
// per-kind behavior type-switches over the concrete pointers.
type Node interface {
	Kind() Kind
	Common() *Base
	irNode()
}

// Base is the state every node shares.
//
// Props is the single copy of the node's properties, keyed by canonical
// name. Meta holds computed schema metadata and is never authoritative.
// Messages doubles as the validity flag: a node is valid exactly when it
// has none.
type Base struct {
	ID     string
	Name   string
	Props  IRObject
	Meta   IRObject
	Deps   []string
	Line   int
	Column int

	// Extensions lists the property keys the source used that the kind
	// does not declare.
	Extensions []string

	Messages []string

	kind Kind
}

func newBase(kind Kind, id, name string) Base {
	return Base{
		ID:    id,
		Name:  name,
		Props: IRObject{},
		Meta:  IRObject{},
		kind:  kind,
	}
}

func (b *Base) Kind() Kind    { return b.kind }
func (b *Base) Common() *Base { return b }

// SchemaType returns the schema URI of the node's kind.
func (b *Base) SchemaType() string { return b.kind.SchemaURI() }

// Valid reports whether no validation message was recorded.
func (b *Base) Valid() bool { return len(b.Messages) == 0 }

// AddMessage records a validation failure and marks the node invalid.
func (b *Base) AddMessage(msg string) {
	b.Messages = append(b.Messages, msg)
}

// AddDependency records a reference to another node. Empty ids are
// ignored and repeated ids are kept once, at their first position.
func (b *Base) AddDependency(id string) {
	if id == "" || slices.Contains(b.Deps, id) {
		return
	}
	b.Deps = append(b.Deps, id)
}

// New returns an empty node of the given kind.
func New(kind Kind, id, name string) (Node, bool) {
	base := newBase(kind, id, name)
	switch kind {
	case KindDeal:
		return &Deal{Base: base}, true
	case KindAsset:
		return &Asset{Base: base}, true
	case KindComponent:
		return &Component{Base: base}, true
	case KindStream:
		return &Stream{Base: base}, true
	case KindParty:
		return &Party{Base: base}, true
	case KindContract:
		return &Contract{Base: base}, true
	case KindCapitalStack:
		return &CapitalStack{Base: base}, true
	case KindAssumption:
		return &Assumption{Base: base}, true
	case KindWaterfall:
		return &Waterfall{Base: base}, true
	case KindPortfolio:
		return &Portfolio{Base: base}, true
	case KindFund:
		return &Fund{Base: base}, true
	case KindLogicBlock:
		return &LogicBlock{Base: base}, true
	case KindRuleBlock:
		return &RuleBlock{Base: base}, true
	case KindEventTrigger:
		return &EventTrigger{Base: base}, true
	case KindTemplate:
		return &Template{Base: base}, true
	case KindMarketData:
		return &MarketData{Base: base}, true
	default:
		return nil, false
	}
}

// Children returns the nodes embedded in n's definition, in declaration
// order. They are not top-level build results but are registered,
// enriched and validated alongside their parent.
func Children(n Node) []Node {
	var out []Node
	add := func(nodes ...Node) { out = append(out, nodes...) }
	switch v := n.(type) {
	case *Deal:
		for _, a := range v.Assets {
			add(a)
		}
		for _, s := range v.Streams {
			add(s)
		}
	case *Asset:
		for _, c := range v.Components {
			add(c)
		}
		for _, c := range v.Contracts {
			add(c)
		}
		for _, s := range v.Streams {
			add(s)
		}
	case *Component:
		for _, s := range v.Streams {
			add(s)
		}
	case *Contract:
		for _, s := range v.Streams {
			add(s)
		}
	}
	return out
}

// Walk calls fn for n and every embedded descendant, parents first.
func Walk(n Node, fn func(Node)) {
	fn(n)
	for _, c := range Children(n) {
		Walk(c, fn)
	}
}
