package compiler

import (
	"fmt"
	"time"

	"github.com/roach88/cfdl/internal/ir"
)

// fieldSets lists the required and optional fields advertised in each
// kind's schema metadata.
var fieldSets = map[ir.Kind]struct {
	entity   string
	required []string
	optional []string
}{
	ir.KindDeal: {"deal",
		[]string{"id", "name", "dealType", "currency", "entryDate", "exitDate", "analysisStart", "holdingPeriodYears"},
		[]string{"description", "calendar", "participants", "capitalStackId", "stateConfig", "metadata"}},
	ir.KindAsset: {"asset",
		[]string{"id", "name", "dealId", "category"},
		[]string{"description", "location", "attributes", "stateConfig", "history", "metadata"}},
	ir.KindComponent: {"component",
		[]string{"id", "name", "assetId"},
		[]string{"description", "componentType", "attributes", "stateConfig", "metadata"}},
	ir.KindStream: {"stream",
		[]string{"id", "name", "scope", "category", "schedule", "amount"},
		[]string{"description", "subType", "growth", "tags", "metadata"}},
	ir.KindParty: {"party",
		[]string{"id", "name", "partyType"},
		[]string{"description", "contactInfo", "metadata"}},
	ir.KindContract: {"contract",
		[]string{"id", "name", "dealId", "contractType", "parties", "startDate", "endDate"},
		[]string{"description", "assetId", "componentId", "terms", "stateConfig", "metadata"}},
	ir.KindCapitalStack: {"capitalStack",
		[]string{"id", "name", "participants", "waterfallId"},
		[]string{"metadata"}},
	ir.KindAssumption: {"assumption",
		[]string{"id", "category", "scope", "type"},
		[]string{"name", "value", "distribution", "timeSeries", "unit", "template", "overrides", "source", "marketDataRef", "metadata"}},
	ir.KindWaterfall: {"waterfall",
		[]string{"id", "name", "tiers"},
		[]string{"description", "metadata"}},
	ir.KindPortfolio: {"portfolio",
		[]string{"id", "name", "deals"},
		[]string{"description", "streams", "stateConfig", "metadata"}},
	ir.KindFund: {"fund",
		[]string{"id", "name", "stateConfig"},
		[]string{"description", "fundType", "portfolios", "streams", "participants", "metadata"}},
	ir.KindLogicBlock: {"logicBlock",
		[]string{"id", "name", "scope", "type", "code"},
		[]string{"description", "inputs", "outputs", "executionOrder", "language", "metadata"}},
	ir.KindRuleBlock: {"ruleBlock",
		[]string{"id", "name", "scope", "action"},
		[]string{"description", "schedule", "eventTrigger", "condition", "metadata"}},
	ir.KindEventTrigger: {"eventTrigger",
		[]string{"type"},
		[]string{"assumptionId", "streamId", "operator", "threshold", "externalEventName", "expression", "metadata"}},
	ir.KindTemplate: {"template",
		[]string{"id", "name", "templateType", "parameters", "body"},
		[]string{"description", "metadata"}},
	ir.KindMarketData: {"marketData",
		[]string{"id", "name", "dataType", "symbol", "source"},
		[]string{"description", "refreshSchedule", "field", "metadata"}},
}

// Enrich fills n's schema metadata. It reads properties and never changes
// them, so a failure here only costs the node its metadata.
func Enrich(n ir.Node, now time.Time) error {
	if n == nil {
		return fmt.Errorf("nil node")
	}
	fs, ok := fieldSets[n.Kind()]
	if !ok {
		return fmt.Errorf("no schema metadata for kind %s", n.Kind())
	}

	b := n.Common()
	meta := ir.IRObject{
		"schemaType":          ir.IRString(b.SchemaType()),
		"entityType":          ir.IRString(fs.entity),
		"requiredFields":      ir.StringArray(fs.required),
		"optionalFields":      ir.StringArray(fs.optional),
		"enrichmentTimestamp": ir.IRString(now.UTC().Format(time.RFC3339)),
	}
	set := func(key string, v ir.IRValue) { meta[key] = v }
	has := b.Props.Has

	switch v := n.(type) {
	case *ir.Deal:
		set("hasAssets", ir.IRBool(v.HasAssets()))
		set("hasStreams", ir.IRBool(v.HasStreams()))
		set("participantCount", ir.IRInt(v.ParticipantCount()))
		set("hasCapitalStack", ir.IRBool(v.CapitalStackID() != ""))
	case *ir.Asset:
		set("hasStreams", ir.IRBool(v.HasStreams()))
		set("hasLocation", ir.IRBool(has("location")))
		set("attributeCount", ir.IRInt(v.AttributeCount()))
	case *ir.Component:
		set("hasStreams", ir.IRBool(v.HasStreams()))
		set("attributeCount", ir.IRInt(v.AttributeCount()))
		set("atomicLevel", ir.IRBool(true))
	case *ir.Stream:
		set("hasGrowthModel", ir.IRBool(has("growth")))
		set("tagCount", ir.IRInt(len(v.Tags())))
		set("amountType", ir.IRString(v.AmountType()))
	case *ir.Party:
		set("hasContactInfo", ir.IRBool(v.HasContactInfo()))
		set("partyClassification", optString(v.PartyType()))
	case *ir.Contract:
		set("contractClassification", optString(v.ContractType()))
		set("hasStreams", ir.IRBool(v.HasStreams()))
		set("partyCount", ir.IRInt(len(b.Props.Array("parties"))))
		set("hasTerms", ir.IRBool(has("terms")))
		set("isAssetLevel", ir.IRBool(has("assetId")))
		set("isComponentLevel", ir.IRBool(has("componentId")))
	case *ir.CapitalStack:
		set("participantCount", ir.IRInt(v.ParticipantCount()))
		set("totalCapital", ir.IRFloat(v.TotalCapital()))
		set("hasWaterfall", ir.IRBool(v.WaterfallID() != ""))
	case *ir.Assumption:
		set("assumptionCategory", optString(v.Category()))
		set("assumptionScope", optString(v.Scope()))
		set("assumptionType", optString(v.Type()))
		set("isStochastic", ir.IRBool(v.IsStochastic()))
		set("isTimeVarying", ir.IRBool(v.IsTimeVarying()))
		set("hasTemplate", ir.IRBool(has("template")))
		set("hasMarketDataRef", ir.IRBool(has("marketDataRef")))
		set("hasUnit", ir.IRBool(has("unit")))
	case *ir.Waterfall:
		set("tierCount", ir.IRInt(v.TierCount()))
		set("hasPreferredReturns", ir.IRBool(v.HasPreferredReturns()))
		set("usesCapitalStackProportions", ir.IRBool(v.UsesCapitalStackProportions()))
		set("hasDescription", ir.IRBool(has("description")))
	case *ir.Portfolio:
		set("dealCount", ir.IRInt(v.DealCount()))
		set("streamCount", ir.IRInt(v.StreamCount()))
		set("hasStateManagement", ir.IRBool(v.HasStateManagement()))
		set("hasPortfolioStreams", ir.IRBool(v.StreamCount() > 0))
		set("hasDescription", ir.IRBool(has("description")))
		if s := v.CurrentState(); s != "" {
			set("currentState", ir.IRString(s))
		}
	case *ir.Fund:
		set("portfolioCount", ir.IRInt(v.PortfolioCount()))
		set("streamCount", ir.IRInt(v.StreamCount()))
		set("participantCount", ir.IRInt(v.ParticipantCount()))
		set("totalCommitment", ir.IRFloat(v.TotalCommitment()))
		set("hasGeneralPartners", ir.IRBool(v.HasGeneralPartners()))
		set("hasLimitedPartners", ir.IRBool(v.HasLimitedPartners()))
		set("hasFundStreams", ir.IRBool(v.StreamCount() > 0))
		set("hasDescription", ir.IRBool(has("description")))
		set("hasFundType", ir.IRBool(has("fundType")))
		if s := v.CurrentState(); s != "" {
			set("currentState", ir.IRString(s))
		}
	case *ir.LogicBlock:
		order, hasOrder := v.ExecutionOrder()
		set("blockScope", optString(v.Scope()))
		set("blockType", optString(v.Type()))
		set("inputCount", ir.IRInt(v.InputCount()))
		set("outputCount", ir.IRInt(v.OutputCount()))
		set("hasExecutionOrder", ir.IRBool(hasOrder))
		set("hasLanguage", ir.IRBool(v.Language() != ""))
		set("isCalculation", ir.IRBool(v.Type() == "calculation"))
		set("isValidation", ir.IRBool(v.Type() == "validation"))
		set("isTrigger", ir.IRBool(v.Type() == "trigger"))
		set("hasDescription", ir.IRBool(has("description")))
		if hasOrder {
			set("executionOrder", ir.IRInt(order))
		}
		if lang := v.Language(); lang != "" {
			set("language", ir.IRString(lang))
		}
	case *ir.RuleBlock:
		set("blockScope", optString(v.Scope()))
		set("triggerType", ir.IRString(v.TriggerType()))
		set("hasScheduleTrigger", ir.IRBool(v.HasScheduleTrigger()))
		set("hasEventTrigger", ir.IRBool(v.HasEventTrigger()))
		set("hasCondition", ir.IRBool(v.HasCondition()))
		set("hasMultipleActions", ir.IRBool(v.HasMultipleActions()))
		set("actionCount", ir.IRInt(v.ActionCount()))
		set("hasDescription", ir.IRBool(has("description")))
	case *ir.EventTrigger:
		t := v.Type()
		set("triggerType", optString(t))
		set("isAssumptionTrigger", ir.IRBool(t == "assumption_change"))
		set("isStreamTrigger", ir.IRBool(t == "stream_threshold"))
		set("isExternalTrigger", ir.IRBool(t == "external_event"))
		set("isCustomTrigger", ir.IRBool(t == "custom"))
		set("triggerDescription", ir.IRString(v.Description()))
	case *ir.Template:
		required := v.RequiredParameterCount()
		set("templateType", optString(v.TemplateType()))
		set("parameterCount", ir.IRInt(v.ParameterCount()))
		set("requiredParameterCount", ir.IRInt(required))
		set("optionalParameterCount", ir.IRInt(v.ParameterCount()-required))
		set("hasParameters", ir.IRBool(v.ParameterCount() > 0))
		set("hasDefaultValues", ir.IRBool(v.HasDefaultValues()))
		set("hasDescription", ir.IRBool(has("description")))
		set("parameterNames", ir.StringArray(v.ParameterNames()))
		set("complexityLevel", ir.IRString(v.ComplexityLevel()))
	case *ir.MarketData:
		dt := v.DataType()
		set("dataType", optString(dt))
		set("hasMultipleSymbols", ir.IRBool(v.HasMultipleSymbols()))
		set("symbolCount", ir.IRInt(v.SymbolCount()))
		set("isInterestRate", ir.IRBool(dt == "interest_rate"))
		set("isIndexValue", ir.IRBool(dt == "index_value"))
		set("isFxRate", ir.IRBool(dt == "fx_rate"))
		set("isInflationIndex", ir.IRBool(dt == "inflation_index"))
		set("isCustomData", ir.IRBool(dt == "custom"))
		set("sourceType", optString(v.SourceType()))
		set("hasCredentials", ir.IRBool(v.HasCredentials()))
		set("hasSourceParameters", ir.IRBool(v.HasSourceParameters()))
		set("hasRefreshSchedule", ir.IRBool(v.RefreshScheduleID() != ""))
		set("hasField", ir.IRBool(b.Props.Str("field") != ""))
	default:
		return fmt.Errorf("no schema metadata for %T", n)
	}

	b.Meta = meta
	return nil
}

// optString maps an unset string property to null.
func optString(s string) ir.IRValue {
	if s == "" {
		return ir.IRNull{}
	}
	return ir.IRString(s)
}
