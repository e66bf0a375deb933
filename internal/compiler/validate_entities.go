package compiler

import (
	"math"
	"slices"
	"strings"

	"github.com/roach88/cfdl/internal/ir"
)

func validateDeal(r *rules, d *ir.Deal) {
	r.identity()
	r.required("dealType", "currency", "entryDate", "exitDate", "analysisStart")
	if years, ok := ir.Num(d.Props["holdingPeriodYears"]); !ok || years <= 0 {
		r.add(ErrInvalidValue, "holdingPeriodYears", "Deal holdingPeriodYears is required and must be positive")
	}
	for _, a := range d.Assets {
		r.child(a)
	}
	for _, s := range d.Streams {
		r.child(s)
	}
}

func validateAsset(r *rules, a *ir.Asset) {
	r.identity()
	r.required("dealId", "category")
	r.oneOf("category", assetCategories)
	for _, c := range a.Components {
		r.child(c)
	}
	for _, c := range a.Contracts {
		r.child(c)
	}
	for _, s := range a.Streams {
		r.child(s)
	}
}

func validateComponent(r *rules, c *ir.Component) {
	r.identity()
	r.required("assetId")
	for _, s := range c.Streams {
		r.child(s)
		if s.Scope() != "component" {
			r.add(ErrStructuralRule, "streams", "Component stream %s must have scope 'component'", s.ID)
		}
	}
}

func validateStream(r *rules, s *ir.Stream) {
	r.identity()
	r.required("scope", "category")
	if missing(s.Props, "schedule") {
		r.add(ErrRequiredField, "schedule", "Stream schedule is required")
	}
	if missing(s.Props, "amount") {
		r.add(ErrRequiredField, "amount", "Stream amount is required")
	}
	r.oneOf("scope", scopes)
	r.oneOf("category", streamCategories)
	r.oneOf("subType", streamSubTypes)

	if missing(s.Props, "schedule") {
		return
	}
	schedule := objectOf(s.Props["schedule"])
	kind, ok := ir.Text(schedule["type"])
	if !ok {
		r.add(ErrRequiredField, "schedule", "Stream schedule must have a 'type' field")
		return
	}
	switch kind {
	case "oneTime":
		if _, ok := schedule["date"]; !ok {
			r.add(ErrStructuralRule, "schedule", "oneTime schedule must have a 'date' field")
		}
	case "recurring", "dateBounded":
		_, hasRule := schedule["recurrenceRule"]
		_, hasStart := schedule["startDate"]
		if !hasRule || !hasStart {
			r.add(ErrStructuralRule, "schedule", "%s schedule must have 'recurrenceRule' and 'startDate' fields", kind)
		}
		if _, ok := schedule["endDate"]; kind == "dateBounded" && !ok {
			r.add(ErrStructuralRule, "schedule", "dateBounded schedule must have an 'endDate' field")
		}
	default:
		r.add(ErrInvalidValue, "schedule", "Schedule type must be one of: %s", strings.Join(scheduleTypes, ", "))
	}
}

func validateParty(r *rules, p *ir.Party) {
	r.identity()
	r.required("partyType")
	r.oneOf("partyType", partyTypes)

	contact := p.ContactInfo()
	if contact == nil {
		return
	}
	if email, ok := ir.Text(contact["email"]); ok && !strings.Contains(email, "@") {
		r.add(ErrInvalidValue, "contactInfo", "Party email must be a valid email format")
	}
	if address := contact.Object("address"); address != nil {
		if !address.Has("streetAddress") || !address.Has("city") || !address.Has("country") {
			r.add(ErrStructuralRule, "contactInfo", "Party address must include streetAddress, city, and country")
		}
	}
}

func validateContract(r *rules, c *ir.Contract) {
	r.identity()
	r.required("dealId", "contractType", "startDate", "endDate")
	parties := c.Props.Array("parties")
	if len(parties) == 0 {
		r.add(ErrRequiredField, "parties", "Contract parties are required")
	}
	r.oneOf("contractType", contractTypes)

	for i := range parties {
		party := objectAt(parties, i)
		if missing(party, "partyId") {
			r.add(ErrRequiredField, "parties", "Contract party %d must have partyId", i)
		}
		if missing(party, "role") {
			r.add(ErrRequiredField, "parties", "Contract party %d must have role", i)
		}
	}

	start, hasStart := ir.Text(c.Props["startDate"])
	end, hasEnd := ir.Text(c.Props["endDate"])
	if hasStart && hasEnd && start >= end {
		r.add(ErrStructuralRule, "endDate", "Contract endDate must be after startDate")
	}

	for _, s := range c.Streams {
		r.child(s)
	}
}

func validateCapitalStack(r *rules, cs *ir.CapitalStack) {
	r.identity()
	participants := cs.Props.Array("participants")
	if len(participants) == 0 {
		r.add(ErrRequiredField, "participants", "Capital stack participants are required")
	}
	r.required("waterfallId")

	for i := range participants {
		p := objectAt(participants, i)
		if missing(p, "partyId") {
			r.add(ErrRequiredField, "participants", "Capital stack participant %d must have partyId", i)
		}
		if missing(p, "amount") {
			r.add(ErrRequiredField, "participants", "Capital stack participant %d must have amount", i)
			continue
		}
		amount, ok := ir.Num(p["amount"])
		switch {
		case !ok:
			r.add(ErrInvalidValue, "participants", "Capital stack participant %d amount must be a number", i)
		case amount <= 0:
			r.add(ErrInvalidValue, "participants", "Capital stack participant %d amount must be positive", i)
		}
	}
}

func validateAssumption(r *rules, a *ir.Assumption) {
	if blank(a.ID) {
		r.add(ErrRequiredField, "id", "Assumption id is required")
	}
	r.required("category", "scope", "type")
	r.oneOf("category", assumptionCategory)
	r.oneOf("scope", scopes)
	r.oneOf("type", assumptionTypes)

	if a.Type() == "distribution" {
		dist := a.Props.Object("distribution")
		if len(dist) == 0 {
			r.add(ErrStructuralRule, "distribution", "Assumption with type 'distribution' must have distribution specification")
		} else {
			if missing(dist, "type") {
				r.add(ErrRequiredField, "distribution", "Assumption distribution must have type")
			}
			if missing(dist, "parameters") {
				r.add(ErrRequiredField, "distribution", "Assumption distribution must have parameters")
			}
			if !missing(dist, "type") {
				if t, _ := ir.Text(dist["type"]); !slices.Contains(distributionTypes, t) {
					r.add(ErrInvalidValue, "distribution", "Assumption distribution type must be one of: %s", strings.Join(distributionTypes, ", "))
				}
			}
		}
	}

	series := a.Props.Array("timeSeries")
	for i := range series {
		point := objectAt(series, i)
		if missing(point, "date") {
			r.add(ErrRequiredField, "timeSeries", "Assumption timeSeries item %d must have date", i)
		}
		if missing(point, "value") {
			r.add(ErrRequiredField, "timeSeries", "Assumption timeSeries item %d must have value", i)
		}
	}

	if a.Type() != "distribution" && missing(a.Props, "value") && len(series) == 0 && missing(a.Props, "template") {
		r.add(ErrStructuralRule, "value", "Assumption must have either value, timeSeries data, or template")
	}
}

func validateWaterfall(r *rules, w *ir.Waterfall) {
	r.identity()
	tiers := w.Props.Array("tiers")
	if len(tiers) == 0 {
		r.add(ErrRequiredField, "tiers", "Waterfall tiers are required")
	}

	for i := range tiers {
		tier := objectAt(tiers, i)
		if missing(tier, "id") {
			r.add(ErrRequiredField, "tiers", "Waterfall tier %d must have id", i)
		}
		if missing(tier, "distribute") {
			r.add(ErrRequiredField, "tiers", "Waterfall tier %d must have distribute", i)
		}
		switch gates := tierGates(tier); {
		case gates == 0:
			r.add(ErrStructuralRule, "tiers", "Waterfall tier %d must have one of: condition, until, or prefRate", i)
		case gates > 1:
			r.add(ErrStructuralRule, "tiers", "Waterfall tier %d must have exactly one of: condition, until, or prefRate", i)
		}

		dists, ok := tier["distribute"].(ir.IRArray)
		if !ok {
			continue
		}
		var total float64
		fromStack := false
		for j := range dists {
			dist := objectAt(dists, j)
			if flag, _ := dist["fromCapitalStack"].(ir.IRBool); flag {
				fromStack = true
				if missing(dist, "layerName") {
					r.add(ErrRequiredField, "tiers", "Waterfall tier %d distribution %d with fromCapitalStack must have layerName", i, j)
				}
				continue
			}
			if missing(dist, "recipient") {
				r.add(ErrRequiredField, "tiers", "Waterfall tier %d distribution %d must have recipient", i, j)
			}
			if missing(dist, "percentage") {
				r.add(ErrRequiredField, "tiers", "Waterfall tier %d distribution %d must have percentage", i, j)
				continue
			}
			if pct, ok := ir.Num(dist["percentage"]); ok {
				if pct < 0 || pct > 1 {
					r.add(ErrInvalidValue, "tiers", "Waterfall tier %d distribution %d percentage must be between 0 and 1", i, j)
				}
				total += pct
			}
		}
		if !fromStack && math.Abs(total-1) > percentTolerance {
			r.add(ErrStructuralRule, "tiers", "Waterfall tier %d distribution percentages must sum to 1.0, got %s", i, formatSum(total))
		}
	}
}

// tierGates counts the gating fields a tier sets.
func tierGates(tier ir.IRObject) int {
	n := 0
	for _, key := range []string{"condition", "until", "prefRate"} {
		if !missing(tier, key) {
			n++
		}
	}
	return n
}

func validatePortfolio(r *rules, p *ir.Portfolio) {
	r.identity()
	if len(listOf(p.Props["dealIds"])) == 0 {
		r.add(ErrRequiredField, "dealIds", "Portfolio deals array is required and must not be empty")
	}
	r.idList("dealIds", "deal")
	r.idList("streamIds", "stream")
	if !missing(p.Props, "stateConfig") {
		r.stateConfig(objectOf(p.Props["stateConfig"]))
	}
}

func validateFund(r *rules, f *ir.Fund) {
	r.identity()
	cfg := objectOf(f.Props["stateConfig"])
	if len(cfg) == 0 {
		r.add(ErrRequiredField, "stateConfig", "Fund stateConfig is required")
	}
	r.oneOf("fundType", fundTypes)
	r.idList("portfolioIds", "portfolio")
	r.idList("streamIds", "stream")

	participants := f.Props.Array("participants")
	for i := range participants {
		p := objectAt(participants, i)
		if missing(p, "partyId") {
			r.add(ErrRequiredField, "participants", "Fund participant %d must have partyId", i)
		}
		if missing(p, "role") {
			r.add(ErrRequiredField, "participants", "Fund participant %d must have role", i)
		} else if role, _ := ir.Text(p["role"]); !slices.Contains(fundRoles, role) {
			r.add(ErrInvalidValue, "participants", "Fund participant %d role must be one of: %s", i, strings.Join(fundRoles, ", "))
		}
		if missing(p, "commitment") {
			r.add(ErrRequiredField, "participants", "Fund participant %d must have commitment", i)
		} else if c, ok := ir.Num(p["commitment"]); !ok {
			r.add(ErrInvalidValue, "participants", "Fund participant %d commitment must be a number", i)
		} else if c < 0 {
			r.add(ErrInvalidValue, "participants", "Fund participant %d commitment must be non-negative", i)
		}
	}

	if !missing(f.Props, "stateConfig") {
		r.stateConfig(cfg)
	}
}

func validateLogicBlock(r *rules, l *ir.LogicBlock) {
	r.identity()
	r.required("scope", "type", "code")
	r.oneOf("scope", scopes)
	r.oneOf("type", logicBlockTypes)
	for i, elem := range listOf(l.Props["inputs"]) {
		if s, ok := ir.Text(elem); !ok || blank(s) {
			r.add(ErrInvalidValue, "inputs", "Logic block input %d cannot be null or empty", i)
		}
	}
	for i, elem := range listOf(l.Props["outputs"]) {
		if s, ok := ir.Text(elem); !ok || blank(s) {
			r.add(ErrInvalidValue, "outputs", "Logic block output %d cannot be null or empty", i)
		}
	}
	if order, ok := l.ExecutionOrder(); ok && order < 0 {
		r.add(ErrInvalidValue, "executionOrder", "Logic block executionOrder must be non-negative")
	}
}

func validateRuleBlock(r *rules, rb *ir.RuleBlock) {
	r.identity()
	r.required("scope")
	if missing(rb.Props, "action") {
		r.add(ErrRequiredField, "action", "Rule block action is required")
	}
	r.oneOf("scope", scopes)
	if rb.TriggerType() == "none" {
		r.add(ErrStructuralRule, "condition", "Rule block must have at least one trigger: schedule, eventTrigger, or condition")
	}
	stringOrList(r, rb.Props["action"], "action")
}

func validateEventTrigger(r *rules, e *ir.EventTrigger) {
	r.required("type")
	r.oneOf("type", triggerTypes)

	switch e.Type() {
	case "assumption_change":
		if blank(e.AssumptionID()) {
			r.add(ErrStructuralRule, "assumptionId", "Event trigger of type 'assumption_change' must have assumptionId")
		}
	case "stream_threshold":
		if blank(e.StreamID()) {
			r.add(ErrStructuralRule, "streamId", "Event trigger of type 'stream_threshold' must have streamId")
		}
		if blank(e.Operator()) {
			r.add(ErrStructuralRule, "operator", "Event trigger of type 'stream_threshold' must have operator")
		} else if !slices.Contains(triggerOperators, e.Operator()) {
			r.add(ErrInvalidValue, "operator", "Event trigger operator must be one of: %s", strings.Join(triggerOperators, ", "))
		}
		if missing(e.Props, "threshold") {
			r.add(ErrStructuralRule, "threshold", "Event trigger of type 'stream_threshold' must have threshold")
		}
	case "external_event":
		if blank(e.Props.Str("externalEventName")) {
			r.add(ErrStructuralRule, "externalEventName", "Event trigger of type 'external_event' must have externalEventName")
		}
	case "custom":
		if blank(e.Props.Str("expression")) {
			r.add(ErrStructuralRule, "expression", "Event trigger of type 'custom' must have expression")
		}
	}
}

func validateTemplate(r *rules, t *ir.Template) {
	r.identity()
	r.required("templateType", "body")
	params := t.Props.Array("parameters")
	if len(params) == 0 {
		r.add(ErrRequiredField, "parameters", "Template parameters are required")
	}
	r.oneOf("templateType", templateTypes)

	for i := range params {
		param := objectAt(params, i)
		if missing(param, "name") {
			r.add(ErrRequiredField, "parameters", "Template parameter %d must have name", i)
		} else if name, _ := ir.Text(param["name"]); blank(name) {
			r.add(ErrInvalidValue, "parameters", "Template parameter %d name cannot be empty", i)
		}
		if missing(param, "dataType") {
			r.add(ErrRequiredField, "parameters", "Template parameter %d must have dataType", i)
		} else if dt, _ := ir.Text(param["dataType"]); !slices.Contains(parameterTypes, dt) {
			r.add(ErrInvalidValue, "parameters", "Template parameter %d dataType must be one of: %s", i, strings.Join(parameterTypes, ", "))
		}
	}
}

func validateMarketData(r *rules, m *ir.MarketData) {
	r.identity()
	r.required("dataType")
	if missing(m.Props, "symbol") {
		r.add(ErrRequiredField, "symbol", "Market data symbol is required")
	}
	if missing(m.Props, "source") {
		r.add(ErrRequiredField, "source", "Market data source is required")
	}
	r.oneOf("dataType", marketDataTypes)
	stringOrList(r, m.Props["symbol"], "symbol")

	if missing(m.Props, "source") {
		return
	}
	source := objectOf(m.Props["source"])
	if missing(source, "type") {
		r.add(ErrRequiredField, "source", "Market data source must have type")
	} else if st, _ := ir.Text(source["type"]); !slices.Contains(sourceTypes, st) {
		r.add(ErrInvalidValue, "source", "Market data source type must be one of: %s", strings.Join(sourceTypes, ", "))
	}
	if missing(source, "endpoint") {
		r.add(ErrRequiredField, "source", "Market data source must have endpoint")
	} else if ep, _ := ir.Text(source["endpoint"]); blank(ep) {
		r.add(ErrInvalidValue, "source", "Market data source endpoint cannot be empty")
	}
}

// stringOrList checks a property that holds one string or a list of them,
// as rule block actions and market data symbols do.
func stringOrList(r *rules, v ir.IRValue, noun string) {
	switch val := v.(type) {
	case nil, ir.IRNull:
	case ir.IRString:
		if blank(string(val)) {
			r.add(ErrInvalidValue, noun, "%s %s cannot be empty", r.subject, noun)
		}
	case ir.IRArray:
		if len(val) == 0 {
			r.add(ErrInvalidValue, noun, "%s %s list cannot be empty", r.subject, noun)
		}
		for i, elem := range val {
			if s, ok := ir.Text(elem); !ok || blank(s) {
				r.add(ErrInvalidValue, noun, "%s %s %d cannot be null or empty", r.subject, noun, i)
			}
		}
	default:
		r.add(ErrStructuralRule, noun, "%s %s must be either a string or a list of strings", r.subject, noun)
	}
}
