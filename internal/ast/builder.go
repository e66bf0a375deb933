package ast

import (
	"github.com/roach88/cfdl/internal/parser"
)

// Build lifts every top-level definition of file into a Node, in source
// order. It performs no validation: unknown keys become extension
// properties and malformed values are carried as written.
func Build(file *parser.File) []*Node {
	if file == nil {
		return nil
	}
	nodes := make([]*Node, 0, len(file.Defs))
	for _, def := range file.Defs {
		nodes = append(nodes, buildNode(def))
	}
	return nodes
}

// BuildAll concatenates Build over several files, keeping file order.
func BuildAll(files ...*parser.File) []*Node {
	var nodes []*Node
	for _, f := range files {
		nodes = append(nodes, Build(f)...)
	}
	return nodes
}

func buildNode(def *parser.Definition) *Node {
	kind, ok := KindForKeyword(def.Keyword)
	if !ok {
		kind = KindGeneric
	}

	n := &Node{
		Kind:    kind,
		Keyword: def.Keyword,
		ID:      def.ID,
		Name:    def.ID,
		Pos:     def.Pos,
		Props:   NewProperties(),
	}

	for _, item := range def.Body {
		switch it := item.(type) {
		case *parser.Property:
			n.addProperty(it)
		case *parser.Definition:
			child := buildNode(it)
			n.Children = append(n.Children, child)
			if list, ok := childLists[child.Kind]; ok {
				n.Props.appendID(list, child.ID, child.Pos)
			}
		}
	}
	return n
}

func (n *Node) addProperty(p *parser.Property) {
	value := fromLiteral(p.Value)

	if p.Key == "name" {
		if s, ok := Text(value); ok && s != "" {
			n.Name = s
		}
		return
	}

	canonical, declared := Canonical(n.Kind, p.Key)
	prop := &Property{
		Key:       canonical,
		Value:     value,
		Pos:       p.Pos,
		Extension: !declared,
	}
	if canonical != p.Key {
		prop.Source = p.Key
	}

	// Id lists also accept a single bare id.
	if declared && isIDList(canonical) {
		if s, ok := Text(value); ok {
			prop.Value = List{Ident(s)}
		}
	}
	n.Props.Set(prop)
}

func isIDList(key string) bool {
	switch key {
	case "assetIds", "streamIds", "componentIds", "contractIds", "dealIds", "portfolioIds":
		return true
	}
	return false
}
