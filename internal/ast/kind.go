package ast

// Kind identifies the definition kind of an AST node.
type Kind int

const (
	KindInvalid Kind = iota
	KindDeal
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
	KindSchedule
	KindMetric
	// KindGeneric covers `entity|behavior|temporal|result <id> { ... }`.
	KindGeneric
)

var kindKeywords = map[string]Kind{
	"deal":          KindDeal,
	"asset":         KindAsset,
	"component":     KindComponent,
	"stream":        KindStream,
	"party":         KindParty,
	"contract":      KindContract,
	"capital_stack": KindCapitalStack,
	"assumption":    KindAssumption,
	"waterfall":     KindWaterfall,
	"portfolio":     KindPortfolio,
	"fund":          KindFund,
	"logic_block":   KindLogicBlock,
	"rule_block":    KindRuleBlock,
	"event_trigger": KindEventTrigger,
	"template":      KindTemplate,
	"market_data":   KindMarketData,
	"schedule":      KindSchedule,
	"metric":        KindMetric,
	"entity":        KindGeneric,
	"behavior":      KindGeneric,
	"temporal":      KindGeneric,
	"result":        KindGeneric,
}

var kindNames = map[Kind]string{
	KindInvalid:      "invalid",
	KindDeal:         "deal",
	KindAsset:        "asset",
	KindComponent:    "component",
	KindStream:       "stream",
	KindParty:        "party",
	KindContract:     "contract",
	KindCapitalStack: "capital_stack",
	KindAssumption:   "assumption",
	KindWaterfall:    "waterfall",
	KindPortfolio:    "portfolio",
	KindFund:         "fund",
	KindLogicBlock:   "logic_block",
	KindRuleBlock:    "rule_block",
	KindEventTrigger: "event_trigger",
	KindTemplate:     "template",
	KindMarketData:   "market_data",
	KindSchedule:     "schedule",
	KindMetric:       "metric",
	KindGeneric:      "generic",
}

// KindForKeyword maps a definition keyword to its Kind.
func KindForKeyword(kw string) (Kind, bool) {
	k, ok := kindKeywords[kw]
	return k, ok
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}
