package parser

// File is the parse tree of one CFDL source.
type File struct {
	Name    string
	Imports []*Import
	Defs    []*Definition
}

// Import is an `import "path";` statement.
type Import struct {
	Path string
	Pos  Pos
}

// Definition is `<keyword> <id> { <items> }`.
type Definition struct {
	Keyword string
	ID      string
	Pos     Pos // position of the keyword
	Body    []Item
}

// Item is a member of a definition body: *Property or *Definition.
type Item interface {
	Position() Pos
	item()
}

// Property is `key: value;`.
type Property struct {
	Key   string
	Value Value
	Pos   Pos
}

func (d *Definition) Position() Pos { return d.Pos }
func (p *Property) Position() Pos   { return p.Pos }

func (*Definition) item() {}
func (*Property) item()   {}

// Value is a property value. Implementations: *NumberLit, *StringLit,
// *BoolLit, *NullLit, *IdentLit, *ListLit, *BlockLit.
type Value interface {
	Position() Pos
	value()
}

// NumberLit keeps the literal text so integers and floats can be told apart
// downstream.
type NumberLit struct {
	Raw string
	Pos Pos
}

type StringLit struct {
	Value string
	Pos   Pos
}

type BoolLit struct {
	Value bool
	Pos   Pos
}

type NullLit struct {
	Pos Pos
}

// IdentLit is a bare token such as an enum value or an entity id.
type IdentLit struct {
	Name string
	Pos  Pos
}

type ListLit struct {
	Elems []Value
	Pos   Pos
}

// BlockLit is a nested `{ key: value; ... }` mapping. Entries keep source
// order.
type BlockLit struct {
	Entries []*Property
	Pos     Pos
}

func (v *NumberLit) Position() Pos { return v.Pos }
func (v *StringLit) Position() Pos { return v.Pos }
func (v *BoolLit) Position() Pos   { return v.Pos }
func (v *NullLit) Position() Pos   { return v.Pos }
func (v *IdentLit) Position() Pos  { return v.Pos }
func (v *ListLit) Position() Pos   { return v.Pos }
func (v *BlockLit) Position() Pos  { return v.Pos }

func (*NumberLit) value() {}
func (*StringLit) value() {}
func (*BoolLit) value()   {}
func (*NullLit) value()   {}
func (*IdentLit) value()  {}
func (*ListLit) value()   {}
func (*BlockLit) value()  {}
