package ast

import (
	"slices"
	"strings"
)

// fieldTable maps a source key to its canonical bag key for one kind.
type fieldTable map[string]string

// fields builds a table from "key" or "alias=canonical" entries. The
// canonical name is always accepted as written too. Every kind declares
// description.
func fields(specs ...string) fieldTable {
	t := fieldTable{"description": "description"}
	for _, spec := range specs {
		src, canonical, ok := strings.Cut(spec, "=")
		if !ok {
			canonical = src
		}
		t[src] = canonical
		t[canonical] = canonical
	}
	return t
}

// declaredFields lists the recognized properties of each kind. Everything
// else in a body is an extension property.
var declaredFields = map[Kind]fieldTable{
	KindDeal: fields(
		"dealType", "currency", "entryDate", "exitDate", "analysisStart",
		"holdingPeriodYears", "calendar", "participants", "capitalStackId",
		"stateConfig", "assets=assetIds", "streams=streamIds"),
	KindAsset: fields(
		"dealId", "category", "location", "attributes", "stateConfig", "state",
		"history", "streams=streamIds", "contracts=contractIds",
		"components=componentIds"),
	KindComponent: fields(
		"assetId", "componentType", "attributes", "stateConfig",
		"streams=streamIds"),
	KindStream: fields(
		"scope", "category", "subType", "schedule", "amount", "amountType",
		"growth", "tags"),
	KindParty: fields(
		"partyType", "contact=contactInfo", "role"),
	KindContract: fields(
		"dealId", "assetId", "componentId", "contractType", "startDate",
		"endDate", "parties", "terms", "stateConfig", "streams=streamIds"),
	KindCapitalStack: fields(
		"participants", "waterfallId", "waterfall=waterfallId"),
	KindAssumption: fields(
		"category", "scope", "type", "value", "distribution", "timeSeries",
		"unit", "templateRef=template", "overrides", "source",
		"marketDataRef"),
	KindWaterfall: fields("tiers"),
	KindPortfolio: fields(
		"deals=dealIds", "streams=streamIds", "stateConfig"),
	KindFund: fields(
		"fundType", "portfolios=portfolioIds", "streams=streamIds",
		"participants", "stateConfig"),
	KindLogicBlock: fields(
		"scope", "type", "inputs", "outputs", "executionOrder", "code",
		"language"),
	KindRuleBlock: fields(
		"scope", "schedule=scheduleId", "eventTrigger=eventTriggerId",
		"condition", "action"),
	KindEventTrigger: fields(
		"type", "assumptionId", "streamId", "operator", "threshold",
		"externalEventName", "expression"),
	KindTemplate: fields(
		"templateType", "parameters", "body"),
	KindMarketData: fields(
		"dataType", "symbol", "source", "refreshScheduleId", "field"),
	KindSchedule: fields(
		"type", "date", "startDate", "endDate", "frequency",
		"recurrenceRule"),
	KindMetric: fields("type", "value", "unit"),
}

// childLists names the id list a nested definition is recorded in.
var childLists = map[Kind]string{
	KindAsset:     "assetIds",
	KindComponent: "componentIds",
	KindStream:    "streamIds",
	KindContract:  "contractIds",
}

// Canonical resolves a source key for kind. ok is false for extension
// properties.
func Canonical(kind Kind, key string) (canonical string, ok bool) {
	table, found := declaredFields[kind]
	if !found {
		return key, false
	}
	canonical, ok = table[key]
	if !ok {
		return key, false
	}
	return canonical, true
}

// DeclaredFields returns the sorted canonical keys recognized for kind,
// without aliases.
func DeclaredFields(kind Kind) []string {
	seen := make(map[string]bool)
	var out []string
	for _, canonical := range declaredFields[kind] {
		if !seen[canonical] {
			seen[canonical] = true
			out = append(out, canonical)
		}
	}
	slices.Sort(out)
	return out
}
