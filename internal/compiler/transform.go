package compiler

import (
	"fmt"

	"github.com/roach88/cfdl/internal/ast"
	"github.com/roach88/cfdl/internal/ir"
)

var irKinds = map[ast.Kind]ir.Kind{
	ast.KindDeal:         ir.KindDeal,
	ast.KindAsset:        ir.KindAsset,
	ast.KindComponent:    ir.KindComponent,
	ast.KindStream:       ir.KindStream,
	ast.KindParty:        ir.KindParty,
	ast.KindContract:     ir.KindContract,
	ast.KindCapitalStack: ir.KindCapitalStack,
	ast.KindAssumption:   ir.KindAssumption,
	ast.KindWaterfall:    ir.KindWaterfall,
	ast.KindPortfolio:    ir.KindPortfolio,
	ast.KindFund:         ir.KindFund,
	ast.KindLogicBlock:   ir.KindLogicBlock,
	ast.KindRuleBlock:    ir.KindRuleBlock,
	ast.KindEventTrigger: ir.KindEventTrigger,
	ast.KindTemplate:     ir.KindTemplate,
	ast.KindMarketData:   ir.KindMarketData,
}

// Transform converts one AST definition into its IR node. Properties are
// copied into the node's bag, references are recorded as dependencies and
// nested definitions are transformed and attached to the parent.
//
// Transform does not validate. It fails only for kinds without an IR
// variant and for reference properties of the wrong shape.
func Transform(n *ast.Node) (ir.Node, error) {
	if n == nil {
		return nil, &TransformError{Kind: "unknown", Err: fmt.Errorf("nil node")}
	}
	keyword := n.Keyword
	if keyword == "" {
		keyword = n.Kind.String()
	}

	kind, ok := irKinds[n.Kind]
	if !ok {
		return nil, &TransformError{
			NodeID: n.ID,
			Kind:   keyword,
			Err:    fmt.Errorf("%w: %s", ErrUnsupportedKind, keyword),
		}
	}

	node, _ := ir.New(kind, n.ID, n.Name)
	b := node.Common()
	b.Line, b.Column = n.Pos.Line, n.Pos.Column
	for _, p := range n.Props.All() {
		b.Props[p.Key] = convertValue(p.Value)
		if p.Extension {
			b.Extensions = append(b.Extensions, p.Key)
		}
	}

	if err := collectDependencies(node); err != nil {
		return nil, &TransformError{NodeID: n.ID, Kind: keyword, Err: err}
	}
	for _, child := range n.Children {
		if err := attach(node, child); err != nil {
			return nil, &TransformError{NodeID: n.ID, Kind: keyword, Err: err}
		}
	}
	return node, nil
}

// attach transforms a nested definition and hangs it off its parent.
func attach(parent ir.Node, child *ast.Node) error {
	cn, err := Transform(child)
	if err != nil {
		return fmt.Errorf("nested %s %s: %w", child.Keyword, child.ID, err)
	}

	placed := false
	switch p := parent.(type) {
	case *ir.Deal:
		switch c := cn.(type) {
		case *ir.Asset:
			p.Assets, placed = append(p.Assets, c), true
		case *ir.Stream:
			p.Streams, placed = append(p.Streams, c), true
		}
	case *ir.Asset:
		switch c := cn.(type) {
		case *ir.Component:
			p.Components, placed = append(p.Components, c), true
		case *ir.Contract:
			p.Contracts, placed = append(p.Contracts, c), true
		case *ir.Stream:
			p.Streams, placed = append(p.Streams, c), true
		}
	case *ir.Component:
		if c, ok := cn.(*ir.Stream); ok {
			p.Streams, placed = append(p.Streams, c), true
		}
	case *ir.Contract:
		if c, ok := cn.(*ir.Stream); ok {
			p.Streams, placed = append(p.Streams, c), true
		}
	}
	if !placed {
		return fmt.Errorf("%s %s cannot be declared inside a %s", cn.Kind(), child.ID, parent.Kind())
	}
	return nil
}

// collectDependencies records every id the node refers to, in property
// order per kind.
func collectDependencies(n ir.Node) error {
	c := &depCollector{base: n.Common()}
	switch n.(type) {
	case *ir.Deal:
		c.ref("capitalStackId")
		c.refs("assetIds")
		c.refs("streamIds")
	case *ir.Asset:
		c.ref("dealId")
		c.refs("streamIds")
		c.refs("contractIds")
		c.refs("componentIds")
	case *ir.Component:
		c.ref("assetId")
		c.refs("streamIds")
	case *ir.Contract:
		c.ref("dealId")
		c.ref("assetId")
		c.ref("componentId")
		c.objectRefs("parties", "partyId")
		c.refs("streamIds")
	case *ir.CapitalStack:
		c.objectRefs("participants", "partyId")
		c.ref("waterfallId")
	case *ir.Assumption:
		c.ref("template")
		c.ref("marketDataRef")
	case *ir.Waterfall:
		c.recipients()
	case *ir.Portfolio:
		c.refs("dealIds")
		c.refs("streamIds")
	case *ir.Fund:
		c.refs("portfolioIds")
		c.refs("streamIds")
		c.objectRefs("participants", "partyId")
	case *ir.LogicBlock:
		c.refs("inputs")
	case *ir.RuleBlock:
		c.ref("scheduleId")
		c.ref("eventTriggerId")
	case *ir.EventTrigger:
		c.ref("assumptionId")
		c.ref("streamId")
	case *ir.MarketData:
		c.ref("refreshScheduleId")
	case *ir.Stream, *ir.Party, *ir.Template:
	}
	return c.err
}

// depCollector keeps the first shape error and skips the rest.
type depCollector struct {
	base *ir.Base
	err  error
}

func (c *depCollector) fail(format string, args ...any) {
	if c.err == nil {
		c.err = fmt.Errorf(format, args...)
	}
}

func (c *depCollector) lookup(key string) (ir.IRValue, bool) {
	v, ok := c.base.Props[key]
	if !ok || ir.IsNull(v) {
		return nil, false
	}
	return v, true
}

// ref handles a property holding a single id.
func (c *depCollector) ref(key string) {
	v, ok := c.lookup(key)
	if !ok {
		return
	}
	s, ok := ir.Text(v)
	if !ok {
		c.fail("%s must be an identifier, got %s", key, typeName(v))
		return
	}
	c.base.AddDependency(s)
}

// refs handles an id list. Non-text elements are left for the validator.
func (c *depCollector) refs(key string) {
	v, ok := c.lookup(key)
	if !ok {
		return
	}
	switch val := v.(type) {
	case ir.IRString:
		c.base.AddDependency(string(val))
	case ir.IRArray:
		for _, elem := range val {
			if s, ok := ir.Text(elem); ok {
				c.base.AddDependency(s)
			}
		}
	default:
		c.fail("%s must be a list of identifiers, got %s", key, typeName(v))
	}
}

// objectRefs handles a list of objects whose field holds an id.
func (c *depCollector) objectRefs(key, field string) {
	v, ok := c.lookup(key)
	if !ok {
		return
	}
	list, ok := v.(ir.IRArray)
	if !ok {
		c.fail("%s must be a list, got %s", key, typeName(v))
		return
	}
	for _, item := range list {
		obj, ok := item.(ir.IRObject)
		if !ok {
			continue
		}
		if s, ok := ir.Text(obj[field]); ok {
			c.base.AddDependency(s)
		}
	}
}

// recipients records every string recipient of a waterfall distribution.
func (c *depCollector) recipients() {
	v, ok := c.lookup("tiers")
	if !ok {
		return
	}
	tiers, ok := v.(ir.IRArray)
	if !ok {
		c.fail("tiers must be a list, got %s", typeName(v))
		return
	}
	for i, item := range tiers {
		tier, ok := item.(ir.IRObject)
		if !ok {
			continue
		}
		dv, present := tier["distribute"]
		if !present || ir.IsNull(dv) {
			continue
		}
		dists, ok := dv.(ir.IRArray)
		if !ok {
			c.fail("tier %d distribute must be a list, got %s", i, typeName(dv))
			return
		}
		for _, d := range dists {
			if dist, ok := d.(ir.IRObject); ok {
				if s, ok := ir.Text(dist["recipient"]); ok {
					c.base.AddDependency(s)
				}
			}
		}
	}
}
