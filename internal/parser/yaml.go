package parser

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlKeywords maps the compact YAML spelling of a definition kind to its
// CFDL keyword.
var yamlKeywords = map[string]string{
	"logicblock":   "logic_block",
	"ruleblock":    "rule_block",
	"eventtrigger": "event_trigger",
	"capitalstack": "capital_stack",
	"marketdata":   "market_data",
}

// nestedLists are the body properties whose list items may embed full
// definitions (`- asset: {A1: {...}}`) instead of id references.
var nestedLists = map[string]string{
	"assets":     "asset",
	"components": "component",
	"streams":    "stream",
}

// ParseYAML parses the YAML form of CFDL. The root is either a mapping of
// kind → definition(s) or a sequence of such mappings; a definition is a
// mapping of id → properties:
//
//	imports: [common.yaml]
//	deal:
//	  D1:
//	    dealType: acquisition
//	    assets:
//	      - asset:
//	          A1: {category: real_estate}
//	      - A2
//
// The result is the same parse tree the CFDL syntax produces.
func ParseYAML(filename string, src []byte) (*File, error) {
	file := &File{Name: filename}

	dec := yaml.NewDecoder(bytes.NewReader(src))
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &SyntaxError{Pos: Pos{Filename: filename}, Message: err.Error()}
		}
		if len(doc.Content) == 0 {
			continue
		}
		if err := collectRoot(file, filename, doc.Content[0]); err != nil {
			return nil, err
		}
	}
	return file, nil
}

func yamlPos(filename string, n *yaml.Node) Pos {
	return Pos{Filename: filename, Line: n.Line, Column: n.Column}
}

func collectRoot(file *File, filename string, root *yaml.Node) error {
	switch root.Kind {
	case yaml.SequenceNode:
		for _, item := range root.Content {
			if err := collectRoot(file, filename, item); err != nil {
				return err
			}
		}
		return nil
	case yaml.MappingNode:
		for i := 0; i+1 < len(root.Content); i += 2 {
			key, val := root.Content[i], root.Content[i+1]
			if key.Value == "imports" || key.Value == "import" {
				imports, err := yamlImports(filename, val)
				if err != nil {
					return err
				}
				file.Imports = append(file.Imports, imports...)
				continue
			}
			defs, err := yamlDefinitions(filename, key, val)
			if err != nil {
				return err
			}
			file.Defs = append(file.Defs, defs...)
		}
		return nil
	case yaml.AliasNode:
		return collectRoot(file, filename, root.Alias)
	default:
		return newSyntaxError(yamlPos(filename, root), "expected a mapping of definitions")
	}
}

func yamlImports(filename string, n *yaml.Node) ([]*Import, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return []*Import{{Path: n.Value, Pos: yamlPos(filename, n)}}, nil
	case yaml.SequenceNode:
		var out []*Import
		for _, item := range n.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, newSyntaxError(yamlPos(filename, item), "import path must be a string")
			}
			out = append(out, &Import{Path: item.Value, Pos: yamlPos(filename, item)})
		}
		return out, nil
	default:
		return nil, newSyntaxError(yamlPos(filename, n), "imports must be a string or a list of strings")
	}
}

func yamlKeyword(raw string) string {
	kw := strings.ToLower(raw)
	if mapped, ok := yamlKeywords[kw]; ok {
		return mapped
	}
	return kw
}

// yamlDefinitions reads `kind: {id: {...}}` or `kind: [{id: {...}}, ...]`.
func yamlDefinitions(filename string, key, val *yaml.Node) ([]*Definition, error) {
	kw := yamlKeyword(key.Value)
	if !IsDefinitionKeyword(kw) {
		return nil, newSyntaxError(yamlPos(filename, key), "unknown definition kind %q", key.Value)
	}

	var entries []*yaml.Node
	switch val.Kind {
	case yaml.MappingNode:
		entries = []*yaml.Node{val}
	case yaml.SequenceNode:
		entries = val.Content
	default:
		return nil, newSyntaxError(yamlPos(filename, val), "%s definition must be a mapping of id to properties", kw)
	}

	var defs []*Definition
	for _, entry := range entries {
		if entry.Kind != yaml.MappingNode {
			return nil, newSyntaxError(yamlPos(filename, entry), "%s definition must be a mapping of id to properties", kw)
		}
		for i := 0; i+1 < len(entry.Content); i += 2 {
			def, err := yamlDefinition(filename, kw, entry.Content[i], entry.Content[i+1])
			if err != nil {
				return nil, err
			}
			defs = append(defs, def)
		}
	}
	return defs, nil
}

func yamlDefinition(filename, kw string, idNode, body *yaml.Node) (*Definition, error) {
	def := &Definition{Keyword: kw, ID: idNode.Value, Pos: yamlPos(filename, idNode)}
	if body.Kind == yaml.AliasNode {
		body = body.Alias
	}
	if body.Kind == yaml.ScalarNode && body.ShortTag() == "!!null" {
		return def, nil
	}
	if body.Kind != yaml.MappingNode {
		return nil, newSyntaxError(yamlPos(filename, body), "%s %q: properties must be a mapping", kw, def.ID)
	}

	for i := 0; i+1 < len(body.Content); i += 2 {
		k, v := body.Content[i], body.Content[i+1]

		if childKind, ok := nestedLists[k.Value]; ok && v.Kind == yaml.SequenceNode {
			children, refs, err := yamlNested(filename, childKind, v)
			if err != nil {
				return nil, err
			}
			for _, child := range children {
				def.Body = append(def.Body, child)
			}
			if len(refs.Elems) > 0 || len(children) == 0 {
				def.Body = append(def.Body, &Property{Key: k.Value, Value: refs, Pos: yamlPos(filename, k)})
			}
			continue
		}

		value, err := yamlValue(filename, v)
		if err != nil {
			return nil, err
		}
		def.Body = append(def.Body, &Property{Key: k.Value, Value: value, Pos: yamlPos(filename, k)})
	}
	return def, nil
}

// yamlNested splits a nested list into embedded definitions and plain
// references.
func yamlNested(filename, childKind string, seq *yaml.Node) ([]*Definition, *ListLit, error) {
	refs := &ListLit{Pos: yamlPos(filename, seq)}
	var children []*Definition
	for _, item := range seq.Content {
		if item.Kind == yaml.MappingNode && len(item.Content) == 2 && yamlKeyword(item.Content[0].Value) == childKind {
			defs, err := yamlDefinitions(filename, item.Content[0], item.Content[1])
			if err != nil {
				return nil, nil, err
			}
			children = append(children, defs...)
			continue
		}
		value, err := yamlValue(filename, item)
		if err != nil {
			return nil, nil, err
		}
		refs.Elems = append(refs.Elems, value)
	}
	return children, refs, nil
}

func yamlValue(filename string, n *yaml.Node) (Value, error) {
	pos := yamlPos(filename, n)
	switch n.Kind {
	case yaml.AliasNode:
		return yamlValue(filename, n.Alias)
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!int", "!!float":
			return &NumberLit{Raw: n.Value, Pos: pos}, nil
		case "!!bool":
			var b bool
			if err := n.Decode(&b); err != nil {
				return nil, newSyntaxError(pos, "invalid boolean %q", n.Value)
			}
			return &BoolLit{Value: b, Pos: pos}, nil
		case "!!null":
			return &NullLit{Pos: pos}, nil
		default:
			return &StringLit{Value: n.Value, Pos: pos}, nil
		}
	case yaml.SequenceNode:
		list := &ListLit{Pos: pos}
		for _, item := range n.Content {
			v, err := yamlValue(filename, item)
			if err != nil {
				return nil, err
			}
			list.Elems = append(list.Elems, v)
		}
		return list, nil
	case yaml.MappingNode:
		block := &BlockLit{Pos: pos}
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			value, err := yamlValue(filename, v)
			if err != nil {
				return nil, err
			}
			block.Entries = append(block.Entries, &Property{Key: k.Value, Value: value, Pos: yamlPos(filename, k)})
		}
		return block, nil
	default:
		return nil, newSyntaxError(pos, "unsupported YAML node")
	}
}
