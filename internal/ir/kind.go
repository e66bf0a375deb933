package ir

// Kind identifies one of the 16 IR node kinds.
type Kind int

const (
	KindDeal Kind = iota + 1
	KindAsset
	KindComponent
	KindStream
	KindParty
	KindContract
	KindCapitalStack
	KindAssumption
	KindWaterfall
	KindPortfolio
	KindFund
	KindLogicBlock
	KindRuleBlock
	KindEventTrigger
	KindTemplate
	KindMarketData
)

const schemaBase = "https://cfdl.dev/ontology/"

var kindInfo = map[Kind]struct {
	name   string
	schema string
}{
	KindDeal:         {"Deal", "entity/deal"},
	KindAsset:        {"Asset", "entity/asset"},
	KindComponent:    {"Component", "entity/component"},
	KindStream:       {"Stream", "behavior/stream"},
	KindParty:        {"Party", "entity/party"},
	KindContract:     {"Contract", "entity/contract"},
	KindCapitalStack: {"CapitalStack", "entity/capital-stack"},
	KindAssumption:   {"Assumption", "behavior/assumption"},
	KindWaterfall:    {"Waterfall", "result/waterfall"},
	KindPortfolio:    {"Portfolio", "entity/portfolio"},
	KindFund:         {"Fund", "entity/fund"},
	KindLogicBlock:   {"LogicBlock", "behavior/logic-block"},
	KindRuleBlock:    {"RuleBlock", "behavior/rule-block"},
	KindEventTrigger: {"EventTrigger", "temporal/event-trigger"},
	KindTemplate:     {"Template", "entity/template"},
	KindMarketData:   {"MarketData", "behavior/market-data"},
}

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindInfo))
	for k := KindDeal; k <= KindMarketData; k++ {
		out = append(out, k)
	}
	return out
}

// String returns the kind name, e.g. "CapitalStack".
func (k Kind) String() string {
	if info, ok := kindInfo[k]; ok {
		return info.name
	}
	return "Unknown"
}

// SchemaURI returns the ontology schema the kind conforms to.
func (k Kind) SchemaURI() string {
	if info, ok := kindInfo[k]; ok {
		return schemaBase + info.schema + ".schema.yaml"
	}
	return ""
}

// ParseKind is the inverse of String.
func ParseKind(s string) (Kind, bool) {
	for k, info := range kindInfo {
		if info.name == s {
			return k, true
		}
	}
	return 0, false
}
