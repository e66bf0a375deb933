package ir

import "strconv"

// Deal is the root of a structured-finance transaction.
type Deal struct {
	Base
	Assets  []*Asset
	Streams []*Stream
}

// Asset is an underlying asset of a deal.
type Asset struct {
	Base
	Components []*Component
	Contracts  []*Contract
	Streams    []*Stream
}

// Component is an atomic cash-flow unit of an asset.
type Component struct {
	Base
	Streams []*Stream
}

// Stream is a scheduled cash flow.
type Stream struct{ Base }

// Party is a person or organization taking part in contracts and funds.
type Party struct{ Base }

// Contract binds parties to terms and streams.
type Contract struct {
	Base
	Streams []*Stream
}

// CapitalStack lists capital contributions. Waterfall is linked during
// resolution when the referenced waterfall is part of the build.
type CapitalStack struct {
	Base
	Waterfall *Waterfall
}

type Assumption struct{ Base }
type Waterfall struct{ Base }
type Portfolio struct{ Base }
type Fund struct{ Base }
type LogicBlock struct{ Base }
type RuleBlock struct{ Base }
type EventTrigger struct{ Base }
type Template struct{ Base }
type MarketData struct{ Base }

func (*Deal) irNode()         {}
func (*Asset) irNode()        {}
func (*Component) irNode()    {}
func (*Stream) irNode()       {}
func (*Party) irNode()        {}
func (*Contract) irNode()     {}
func (*CapitalStack) irNode() {}
func (*Assumption) irNode()   {}
func (*Waterfall) irNode()    {}
func (*Portfolio) irNode()    {}
func (*Fund) irNode()         {}
func (*LogicBlock) irNode()   {}
func (*RuleBlock) irNode()    {}
func (*EventTrigger) irNode() {}
func (*Template) irNode()     {}
func (*MarketData) irNode()   {}

// countOrLen returns the number of ids under key, or 1 for a single string.
func countOrLen(props IRObject, key string) int {
	switch v := props[key].(type) {
	case IRArray:
		return len(v)
	case IRString:
		return 1
	default:
		return 0
	}
}

// sumField totals a numeric field across the objects of a list.
// Non-numeric entries count as zero.
func sumField(items []IRObject, field string) float64 {
	var total float64
	for _, item := range items {
		if n, ok := Num(item[field]); ok {
			total += n
		}
	}
	return total
}

// initialState returns stateConfig.initialState, the state a portfolio or
// fund starts in.
func initialState(props IRObject) string {
	return props.Object("stateConfig").Str("initialState")
}

// Deal

func (d *Deal) DealType() string       { return d.Props.Str("dealType") }
func (d *Deal) Currency() string       { return d.Props.Str("currency") }
func (d *Deal) CapitalStackID() string { return d.Props.Str("capitalStackId") }
func (d *Deal) AssetIDs() []string     { return d.Props.Strings("assetIds") }
func (d *Deal) StreamIDs() []string    { return d.Props.Strings("streamIds") }

// HasAssets reports embedded or referenced assets.
func (d *Deal) HasAssets() bool {
	return len(d.Assets) > 0 || len(d.AssetIDs()) > 0
}

// HasStreams reports embedded or referenced streams.
func (d *Deal) HasStreams() bool {
	return len(d.Streams) > 0 || len(d.StreamIDs()) > 0
}

func (d *Deal) ParticipantCount() int { return len(d.Props.Array("participants")) }

// Asset

func (a *Asset) DealID() string         { return a.Props.Str("dealId") }
func (a *Asset) Category() string       { return a.Props.Str("category") }
func (a *Asset) StreamIDs() []string    { return a.Props.Strings("streamIds") }
func (a *Asset) ContractIDs() []string  { return a.Props.Strings("contractIds") }
func (a *Asset) ComponentIDs() []string { return a.Props.Strings("componentIds") }
func (a *Asset) AttributeCount() int    { return len(a.Props.Object("attributes")) }

func (a *Asset) HasStreams() bool {
	return len(a.Streams) > 0 || len(a.StreamIDs()) > 0
}

// Component

func (c *Component) AssetID() string       { return c.Props.Str("assetId") }
func (c *Component) StreamIDs() []string   { return c.Props.Strings("streamIds") }
func (c *Component) AttributeCount() int   { return len(c.Props.Object("attributes")) }
func (c *Component) ComponentType() string { return c.Props.Str("componentType") }

func (c *Component) HasStreams() bool {
	return len(c.Streams) > 0 || len(c.StreamIDs()) > 0
}

// Stream

func (s *Stream) Scope() string    { return s.Props.Str("scope") }
func (s *Stream) Category() string { return s.Props.Str("category") }
func (s *Stream) SubType() string  { return s.Props.Str("subType") }
func (s *Stream) Schedule() IRObject {
	return s.Props.Object("schedule")
}
func (s *Stream) Tags() []string { return s.Props.Strings("tags") }

// AmountType classifies the amount: "fixed" for a number, "expression" for
// a string formula, "structured" for an object, "none" when absent.
func (s *Stream) AmountType() string {
	switch s.Props["amount"].(type) {
	case IRInt, IRFloat:
		return "fixed"
	case IRString:
		return "expression"
	case IRObject, IRArray:
		return "structured"
	default:
		return "none"
	}
}

// Party

func (p *Party) PartyType() string     { return p.Props.Str("partyType") }
func (p *Party) ContactInfo() IRObject { return p.Props.Object("contactInfo") }
func (p *Party) HasContactInfo() bool  { return len(p.ContactInfo()) > 0 }

// Contract

func (c *Contract) DealID() string       { return c.Props.Str("dealId") }
func (c *Contract) AssetID() string      { return c.Props.Str("assetId") }
func (c *Contract) ComponentID() string  { return c.Props.Str("componentId") }
func (c *Contract) ContractType() string { return c.Props.Str("contractType") }
func (c *Contract) StartDate() string    { return c.Props.Str("startDate") }
func (c *Contract) EndDate() string      { return c.Props.Str("endDate") }
func (c *Contract) Parties() []IRObject  { return c.Props.Objects("parties") }
func (c *Contract) StreamIDs() []string  { return c.Props.Strings("streamIds") }

func (c *Contract) HasStreams() bool {
	return len(c.Streams) > 0 || len(c.StreamIDs()) > 0
}

// CapitalStack

func (cs *CapitalStack) Participants() []IRObject { return cs.Props.Objects("participants") }
func (cs *CapitalStack) WaterfallID() string      { return cs.Props.Str("waterfallId") }
func (cs *CapitalStack) ParticipantCount() int    { return len(cs.Props.Array("participants")) }

// TotalCapital sums participant amounts.
func (cs *CapitalStack) TotalCapital() float64 {
	return sumField(cs.Participants(), "amount")
}

// Assumption

func (a *Assumption) Category() string   { return a.Props.Str("category") }
func (a *Assumption) Scope() string      { return a.Props.Str("scope") }
func (a *Assumption) Type() string       { return a.Props.Str("type") }
func (a *Assumption) TemplateID() string { return a.Props.Str("template") }
func (a *Assumption) MarketDataRef() string {
	return a.Props.Str("marketDataRef")
}

// IsStochastic reports a distribution assumption with a distribution spec.
func (a *Assumption) IsStochastic() bool {
	return a.Type() == "distribution" && a.Props.Has("distribution")
}

// IsTimeVarying reports a non-empty time series.
func (a *Assumption) IsTimeVarying() bool {
	return len(a.Props.Array("timeSeries")) > 0
}

// EffectiveValue returns the value the assumption contributes. Without a
// template it is the value property. With a template that lookup can
// find, it is an object of the template's parameter defaults overlaid by
// the assumption's overrides; the template body is not instantiated.
func (a *Assumption) EffectiveValue(lookup func(id string) (*Template, bool)) IRValue {
	base := a.Props["value"]
	ref := a.TemplateID()
	if ref == "" || lookup == nil {
		return base
	}
	tmpl, ok := lookup(ref)
	if !ok {
		return base
	}

	merged := IRObject{}
	for _, param := range tmpl.Parameters() {
		name := param.Str("name")
		if name == "" {
			continue
		}
		if def, ok := param["defaultValue"]; ok {
			merged[name] = cloneValue(def)
		}
	}
	if obj, ok := base.(IRObject); ok {
		for k, v := range obj {
			merged[k] = cloneValue(v)
		}
	}
	for k, v := range a.Props.Object("overrides") {
		merged[k] = cloneValue(v)
	}
	return merged
}

// Waterfall

func (w *Waterfall) Tiers() []IRObject { return w.Props.Objects("tiers") }
func (w *Waterfall) TierCount() int    { return len(w.Props.Array("tiers")) }

// HasPreferredReturns reports any tier carrying a prefRate.
func (w *Waterfall) HasPreferredReturns() bool {
	for _, tier := range w.Tiers() {
		if _, ok := tier["prefRate"]; ok {
			return true
		}
	}
	return false
}

// UsesCapitalStackProportions reports any distribution sourced from the
// capital stack.
func (w *Waterfall) UsesCapitalStackProportions() bool {
	for _, tier := range w.Tiers() {
		if TierUsesCapitalStack(tier) {
			return true
		}
	}
	return false
}

// TierUsesCapitalStack reports whether one distribution of tier has
// fromCapitalStack: true.
func TierUsesCapitalStack(tier IRObject) bool {
	for _, dist := range tier.Objects("distribute") {
		if b, ok := dist["fromCapitalStack"].(IRBool); ok && bool(b) {
			return true
		}
	}
	return false
}

// Portfolio

func (p *Portfolio) DealIDs() []string   { return p.Props.Strings("dealIds") }
func (p *Portfolio) StreamIDs() []string { return p.Props.Strings("streamIds") }
func (p *Portfolio) DealCount() int      { return len(p.Props.Array("dealIds")) }
func (p *Portfolio) StreamCount() int    { return len(p.Props.Array("streamIds")) }
func (p *Portfolio) HasStateManagement() bool {
	return len(p.Props.Object("stateConfig")) > 0
}
func (p *Portfolio) CurrentState() string { return initialState(p.Props) }

// Fund

func (f *Fund) FundType() string         { return f.Props.Str("fundType") }
func (f *Fund) PortfolioIDs() []string   { return f.Props.Strings("portfolioIds") }
func (f *Fund) StreamIDs() []string      { return f.Props.Strings("streamIds") }
func (f *Fund) Participants() []IRObject { return f.Props.Objects("participants") }
func (f *Fund) PortfolioCount() int      { return len(f.Props.Array("portfolioIds")) }
func (f *Fund) StreamCount() int         { return len(f.Props.Array("streamIds")) }
func (f *Fund) ParticipantCount() int    { return len(f.Props.Array("participants")) }
func (f *Fund) CurrentState() string     { return initialState(f.Props) }
func (f *Fund) TotalCommitment() float64 { return sumField(f.Participants(), "commitment") }
func (f *Fund) HasGeneralPartners() bool { return f.hasRole("general_partner") }
func (f *Fund) HasLimitedPartners() bool { return f.hasRole("limited_partner") }

func (f *Fund) hasRole(role string) bool {
	for _, p := range f.Participants() {
		if p.Str("role") == role {
			return true
		}
	}
	return false
}

// LogicBlock

func (l *LogicBlock) Scope() string    { return l.Props.Str("scope") }
func (l *LogicBlock) Type() string     { return l.Props.Str("type") }
func (l *LogicBlock) Language() string { return l.Props.Str("language") }
func (l *LogicBlock) Inputs() []string { return l.Props.Strings("inputs") }
func (l *LogicBlock) InputCount() int  { return len(l.Props.Array("inputs")) }
func (l *LogicBlock) OutputCount() int { return len(l.Props.Array("outputs")) }

// ExecutionOrder returns the declared order and whether one was declared.
func (l *LogicBlock) ExecutionOrder() (int64, bool) {
	switch v := l.Props["executionOrder"].(type) {
	case IRInt:
		return int64(v), true
	case IRFloat:
		return int64(v), true
	default:
		return 0, false
	}
}

// RuleBlock

func (r *RuleBlock) Scope() string          { return r.Props.Str("scope") }
func (r *RuleBlock) ScheduleID() string     { return r.Props.Str("scheduleId") }
func (r *RuleBlock) EventTriggerID() string { return r.Props.Str("eventTriggerId") }
func (r *RuleBlock) Condition() string      { return r.Props.Str("condition") }

func (r *RuleBlock) HasScheduleTrigger() bool { return r.ScheduleID() != "" }
func (r *RuleBlock) HasEventTrigger() bool    { return r.EventTriggerID() != "" }
func (r *RuleBlock) HasCondition() bool       { return r.Condition() != "" }

// HasMultipleActions reports an action list rather than a single action.
func (r *RuleBlock) HasMultipleActions() bool {
	_, ok := r.Props["action"].(IRArray)
	return ok
}

func (r *RuleBlock) ActionCount() int { return countOrLen(r.Props, "action") }

// TriggerType names the strongest trigger present: schedule, event,
// condition or none.
func (r *RuleBlock) TriggerType() string {
	switch {
	case r.HasScheduleTrigger():
		return "schedule"
	case r.HasEventTrigger():
		return "event"
	case r.HasCondition():
		return "condition"
	default:
		return "none"
	}
}

// EventTrigger

func (e *EventTrigger) Type() string         { return e.Props.Str("type") }
func (e *EventTrigger) AssumptionID() string { return e.Props.Str("assumptionId") }
func (e *EventTrigger) StreamID() string     { return e.Props.Str("streamId") }
func (e *EventTrigger) Operator() string     { return e.Props.Str("operator") }

// Threshold returns the numeric threshold of a stream_threshold trigger.
func (e *EventTrigger) Threshold() (float64, bool) {
	return Num(e.Props["threshold"])
}

// Description renders the trigger condition for people.
func (e *EventTrigger) Description() string {
	switch e.Type() {
	case "assumption_change":
		return "Assumption '" + e.AssumptionID() + "' changes"
	case "stream_threshold":
		threshold := "null"
		if t, ok := e.Threshold(); ok {
			threshold = strconv.FormatFloat(t, 'g', -1, 64)
		}
		return "Stream '" + e.StreamID() + "' " + e.Operator() + " " + threshold
	case "external_event":
		return "External event '" + e.Props.Str("externalEventName") + "' occurs"
	case "custom":
		return "Custom condition: " + e.Props.Str("expression")
	default:
		return "Unknown trigger type: " + e.Type()
	}
}

// Template

func (t *Template) TemplateType() string   { return t.Props.Str("templateType") }
func (t *Template) Body() string           { return t.Props.Str("body") }
func (t *Template) Parameters() []IRObject { return t.Props.Objects("parameters") }
func (t *Template) ParameterCount() int    { return len(t.Props.Array("parameters")) }

// RequiredParameterCount counts parameters with required: true.
func (t *Template) RequiredParameterCount() int {
	n := 0
	for _, p := range t.Parameters() {
		if b, ok := p["required"].(IRBool); ok && bool(b) {
			n++
		}
	}
	return n
}

// HasDefaultValues reports any parameter declaring a defaultValue.
func (t *Template) HasDefaultValues() bool {
	for _, p := range t.Parameters() {
		if _, ok := p["defaultValue"]; ok {
			return true
		}
	}
	return false
}

// ParameterNames lists the declared parameter names in order.
func (t *Template) ParameterNames() []string {
	var names []string
	for _, p := range t.Parameters() {
		if name := p.Str("name"); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// ComplexityLevel scores the template one point each for more than five
// parameters, a body over 500 characters and more than three required
// parameters.
func (t *Template) ComplexityLevel() string {
	score := 0
	if t.ParameterCount() > 5 {
		score++
	}
	if len(t.Body()) > 500 {
		score++
	}
	if t.RequiredParameterCount() > 3 {
		score++
	}
	switch {
	case score >= 2:
		return "complex"
	case score == 1:
		return "moderate"
	default:
		return "simple"
	}
}

// MarketData

func (m *MarketData) DataType() string          { return m.Props.Str("dataType") }
func (m *MarketData) Source() IRObject          { return m.Props.Object("source") }
func (m *MarketData) SourceType() string        { return m.Source().Str("type") }
func (m *MarketData) RefreshScheduleID() string { return m.Props.Str("refreshScheduleId") }
func (m *MarketData) SymbolCount() int          { return countOrLen(m.Props, "symbol") }
func (m *MarketData) HasMultipleSymbols() bool  { return m.SymbolCount() > 1 }
func (m *MarketData) HasCredentials() bool      { return m.Source().Has("credentialsRef") }
func (m *MarketData) HasSourceParameters() bool { return m.Source().Has("parameters") }
