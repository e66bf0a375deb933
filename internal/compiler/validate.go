package compiler

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/cfdl/internal/ir"
)

// Allowed values for enumerated properties.
var (
	scopes             = []string{"component", "asset", "deal", "portfolio", "fund"}
	assetCategories    = []string{"real_estate", "financial_asset", "physical_asset", "legal_right", "operating_entity", "contract_bundle", "mixed", "other"}
	streamCategories   = []string{"Revenue", "Expense", "OtherIncome"}
	streamSubTypes     = []string{"Operating", "Financing", "Tax", "CapEx", "Fee", "Other"}
	partyTypes         = []string{"individual", "organization", "government", "trust", "fund", "other"}
	contractTypes      = []string{"lease", "power-purchase-agreement", "loan-agreement", "service-agreement", "royalty-agreement", "management-agreement", "sale-leaseback", "other"}
	assumptionCategory = []string{"revenue", "expense", "capital", "leasing", "timing", "financing", "other"}
	assumptionTypes    = []string{"fixed", "distribution", "table", "expression"}
	distributionTypes  = []string{"normal", "uniform", "triangular", "lognormal", "beta", "custom"}
	fundTypes          = []string{"closed_end", "open_end", "private_equity", "real_estate", "hedge", "venture_capital", "other"}
	fundRoles          = []string{"general_partner", "limited_partner", "advisor", "other"}
	logicBlockTypes    = []string{"calculation", "aggregation", "validation", "trigger", "generator", "custom"}
	triggerTypes       = []string{"assumption_change", "stream_threshold", "external_event", "custom"}
	triggerOperators   = []string{"eq", "ne", "lt", "lte", "gt", "gte"}
	templateTypes      = []string{"deal", "asset", "component", "stream", "logic-block", "rule-block", "assumption", "view", "scenario", "contract", "waterfall"}
	parameterTypes     = []string{"string", "number", "date", "boolean", "enum"}
	marketDataTypes    = []string{"interest_rate", "index_value", "fx_rate", "inflation_index", "custom"}
	sourceTypes        = []string{"api", "database", "file", "service"}
	scheduleTypes      = []string{"oneTime", "recurring", "dateBounded"}
)

// percentTolerance is how far explicit tier percentages may drift from 1.
const percentTolerance = 0.001

// Validation error codes (E110-E119)
const (
	ErrUnsupportedNodeType = "E110" // no rules for the node's type
	ErrRequiredField       = "E111" // required field absent or blank
	ErrInvalidValue        = "E112" // value outside its enum, type or range
	ErrStructuralRule      = "E113" // cross-field rule broken
	ErrInvalidChild        = "E114" // embedded or linked node is invalid
)

// ValidationError is one failed rule. Message is what the node records.
type ValidationError struct {
	Node    string `json:"node"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s %s: %s", e.Code, e.Line, e.Node, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s %s: %s", e.Code, e.Node, e.Field, e.Message)
}

// subjects prefix messages, e.g. "Capital stack participants are required".
var subjects = map[ir.Kind]string{
	ir.KindDeal:         "Deal",
	ir.KindAsset:        "Asset",
	ir.KindComponent:    "Component",
	ir.KindStream:       "Stream",
	ir.KindParty:        "Party",
	ir.KindContract:     "Contract",
	ir.KindCapitalStack: "Capital stack",
	ir.KindAssumption:   "Assumption",
	ir.KindWaterfall:    "Waterfall",
	ir.KindPortfolio:    "Portfolio",
	ir.KindFund:         "Fund",
	ir.KindLogicBlock:   "Logic block",
	ir.KindRuleBlock:    "Rule block",
	ir.KindEventTrigger: "Event trigger",
	ir.KindTemplate:     "Template",
	ir.KindMarketData:   "Market data",
}

// Validate checks n and its embedded children against their kind's rules
// and records every failure's message on the node it concerns. It returns
// all errors found, children included (does not fail-fast); n is valid
// exactly when it recorded no message.
//
// Validate does not follow references. Checks that need other top-level
// nodes (a capital stack's waterfall) run in CheckLinks after resolution.
func Validate(n ir.Node) []ValidationError {
	n.Common().Messages = nil
	r := newRules(n)

	switch v := n.(type) {
	case *ir.Deal:
		validateDeal(r, v)
	case *ir.Asset:
		validateAsset(r, v)
	case *ir.Component:
		validateComponent(r, v)
	case *ir.Stream:
		validateStream(r, v)
	case *ir.Party:
		validateParty(r, v)
	case *ir.Contract:
		validateContract(r, v)
	case *ir.CapitalStack:
		validateCapitalStack(r, v)
	case *ir.Assumption:
		validateAssumption(r, v)
	case *ir.Waterfall:
		validateWaterfall(r, v)
	case *ir.Portfolio:
		validatePortfolio(r, v)
	case *ir.Fund:
		validateFund(r, v)
	case *ir.LogicBlock:
		validateLogicBlock(r, v)
	case *ir.RuleBlock:
		validateRuleBlock(r, v)
	case *ir.EventTrigger:
		validateEventTrigger(r, v)
	case *ir.Template:
		validateTemplate(r, v)
	case *ir.MarketData:
		validateMarketData(r, v)
	default:
		r.add(ErrUnsupportedNodeType, "type", "unsupported node type: %T", n)
	}
	return r.errs
}

// CheckLinks records failures of linked top-level nodes on n. It must run
// after Resolve and after every linked node was validated.
func CheckLinks(n ir.Node) []ValidationError {
	r := newRules(n)
	if cs, ok := n.(*ir.CapitalStack); ok && cs.Waterfall != nil && !cs.Waterfall.Valid() {
		r.add(ErrInvalidChild, "waterfallId", "Waterfall %s has validation errors", cs.Waterfall.ID)
	}
	return r.errs
}

// rules collects the failures of one node.
type rules struct {
	b       *ir.Base
	subject string
	errs    []ValidationError
}

func newRules(n ir.Node) *rules {
	return &rules{b: n.Common(), subject: subjects[n.Kind()]}
}

func (r *rules) add(code, field, format string, args ...any) {
	e := ValidationError{
		Node:    r.b.ID,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
		Line:    r.b.Line,
	}
	r.b.AddMessage(e.Message)
	r.errs = append(r.errs, e)
}

// identity checks id and name.
func (r *rules) identity() {
	if blank(r.b.ID) {
		r.add(ErrRequiredField, "id", "%s id is required", r.subject)
	}
	if blank(r.b.Name) {
		r.add(ErrRequiredField, "name", "%s name is required", r.subject)
	}
}

// required checks that each key holds non-blank text.
func (r *rules) required(keys ...string) {
	for _, key := range keys {
		if blank(r.b.Props.Str(key)) {
			r.add(ErrRequiredField, key, "%s %s is required", r.subject, key)
		}
	}
}

// oneOf checks a present property against its allowed values.
func (r *rules) oneOf(key string, allowed []string) {
	v, ok := r.b.Props[key]
	if !ok || ir.IsNull(v) {
		return
	}
	if s, _ := ir.Text(v); !slices.Contains(allowed, s) {
		r.add(ErrInvalidValue, key, "%s %s must be one of: %s", r.subject, key, strings.Join(allowed, ", "))
	}
}

// idList checks that every element of a present id list is non-blank text.
func (r *rules) idList(key, noun string) {
	for i, elem := range listOf(r.b.Props[key]) {
		if s, ok := ir.Text(elem); !ok || blank(s) {
			r.add(ErrInvalidValue, key, "%s %s %d id cannot be null or empty", r.subject, noun, i)
		}
	}
}

// child validates an embedded node, keeps its errors, and flags the parent
// once when it failed.
func (r *rules) child(n ir.Node) {
	errs := Validate(n)
	r.errs = append(r.errs, errs...)
	if !n.Common().Valid() {
		field := strings.ToLower(n.Kind().String()) + "s"
		r.add(ErrInvalidChild, field, "%s %s has validation errors", n.Kind(), n.Common().ID)
	}
}

// stateConfig checks allowed states, the initial state and transitions.
func (r *rules) stateConfig(cfg ir.IRObject) {
	if missing(cfg, "allowedStates") {
		r.add(ErrRequiredField, "stateConfig", "%s stateConfig must have allowedStates", r.subject)
	}
	if missing(cfg, "initialState") {
		r.add(ErrRequiredField, "stateConfig", "%s stateConfig must have initialState", r.subject)
	}

	allowedValue, hasAllowed := cfg["allowedStates"].(ir.IRArray)
	allowed := textsOf(allowedValue)
	if initial, ok := ir.Text(cfg["initialState"]); ok && hasAllowed && !slices.Contains(allowed, initial) {
		r.add(ErrStructuralRule, "stateConfig", "%s initialState '%s' must be in allowedStates", r.subject, initial)
	}

	transitions := cfg.Object("transitionRules")
	if transitions == nil || !hasAllowed {
		return
	}
	for _, from := range transitions.SortedKeys() {
		if !slices.Contains(allowed, from) {
			r.add(ErrStructuralRule, "stateConfig", "%s transition rule from state '%s' must be in allowedStates", r.subject, from)
		}
		for _, to := range textsOf(listOf(transitions[from])) {
			if !slices.Contains(allowed, to) {
				r.add(ErrStructuralRule, "stateConfig", "%s transition rule to state '%s' must be in allowedStates", r.subject, to)
			}
		}
	}
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// missing reports an absent or null key.
func missing(obj ir.IRObject, key string) bool {
	return ir.IsNull(obj[key])
}

// listOf returns v as a list. A lone string counts as a one-element list.
func listOf(v ir.IRValue) ir.IRArray {
	switch val := v.(type) {
	case ir.IRArray:
		return val
	case ir.IRString:
		return ir.IRArray{val}
	default:
		return nil
	}
}

// objectAt returns list element i as an object, or an empty one.
func objectAt(list ir.IRArray, i int) ir.IRObject {
	if obj, ok := list[i].(ir.IRObject); ok {
		return obj
	}
	return ir.IRObject{}
}

// objectOf returns v as an object, or an empty one.
func objectOf(v ir.IRValue) ir.IRObject {
	if obj, ok := v.(ir.IRObject); ok {
		return obj
	}
	return ir.IRObject{}
}

func textsOf(list ir.IRArray) []string {
	out := make([]string, 0, len(list))
	for _, elem := range list {
		if s, ok := ir.Text(elem); ok {
			out = append(out, s)
		}
	}
	return out
}

// formatSum prints a percentage total with six significant digits, so
// binary rounding noise (0.6 + 0.3) reads as 0.9.
func formatSum(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}
