package ir

import "strings"

// Document renders n with every property, its schema URI and a $metadata
// section for tooling: enrichment metadata, dependencies, validity,
// messages and source position. Embedded children are rendered the same
// way.
func Document(n Node) IRObject {
	b := n.Common()
	doc := IRObject{
		"id":      IRString(b.ID),
		"$schema": IRString(b.SchemaType()),
	}
	if b.Name != "" {
		doc["name"] = IRString(b.Name)
	}
	for k, v := range b.Props {
		doc[k] = cloneValue(v)
	}

	meta := IRObject{
		"valid":        IRBool(b.Valid()),
		"lineNumber":   IRInt(b.Line),
		"columnNumber": IRInt(b.Column),
	}
	if len(b.Meta) > 0 {
		meta["schema"] = b.Meta.Clone()
	}
	if len(b.Deps) > 0 {
		meta["dependencies"] = StringArray(b.Deps)
	}
	if len(b.Messages) > 0 {
		meta["validationMessages"] = StringArray(b.Messages)
	}
	if len(b.Extensions) > 0 {
		meta["extensionProperties"] = StringArray(b.Extensions)
	}
	doc["$metadata"] = meta

	for _, group := range childGroups(n) {
		docs := make(IRArray, 0, len(group.nodes))
		for _, c := range group.nodes {
			docs = append(docs, Document(c))
		}
		doc[group.key] = docs
	}
	return doc
}

type childGroup struct {
	key   string
	nodes []Node
}

// childGroups names the document keys under which embedded children are
// rendered. Asset components and contracts use *Definitions keys because
// the engine projection already uses components/contracts for id lists.
func childGroups(n Node) []childGroup {
	var groups []childGroup
	add := func(key string, nodes []Node) {
		if len(nodes) > 0 {
			groups = append(groups, childGroup{key, nodes})
		}
	}
	switch v := n.(type) {
	case *Deal:
		add("assets", nodeList(v.Assets))
		add("streams", nodeList(v.Streams))
	case *Asset:
		add("componentDefinitions", nodeList(v.Components))
		add("contractDefinitions", nodeList(v.Contracts))
		add("streams", nodeList(v.Streams))
	case *Component:
		add("streams", nodeList(v.Streams))
	case *Contract:
		add("streams", nodeList(v.Streams))
	}
	return groups
}

func nodeList[T Node](in []T) []Node {
	out := make([]Node, len(in))
	for i, n := range in {
		out[i] = n
	}
	return out
}

// EngineDocument renders the projection consumed by the execution engine:
// business fields only (absent, null and empty-list fields omitted) plus a
// few computed convenience fields. Diagnostics stay in Document.
func EngineDocument(n Node) IRObject {
	b := n.Common()
	doc := IRObject{"id": IRString(b.ID)}
	if b.Name != "" {
		doc["name"] = IRString(b.Name)
	}

	switch v := n.(type) {
	case *Deal:
		copyFields(doc, b.Props, "dealType", "currency", "entryDate", "exitDate",
			"analysisStart", "holdingPeriodYears", "description", "calendar",
			"participants", "capitalStackId", "stateConfig", "assetIds", "streamIds")
	case *Asset:
		copyFields(doc, b.Props, "dealId", "category", "description", "location",
			"attributes", "stateConfig", "history",
			"contractIds=contracts", "componentIds=components", "streamIds")
	case *Component:
		copyFields(doc, b.Props, "assetId", "componentType", "description",
			"attributes", "stateConfig", "streamIds")
	case *Stream:
		copyFields(doc, b.Props, "scope", "category", "description", "subType",
			"schedule", "amount", "growth", "tags")
	case *Party:
		copyFields(doc, b.Props, "partyType", "description", "contactInfo")
	case *Contract:
		copyFields(doc, b.Props, "dealId", "contractType", "startDate", "endDate",
			"parties", "description", "assetId", "componentId", "terms",
			"stateConfig", "streamIds")
	case *CapitalStack:
		copyFields(doc, b.Props, "participants", "waterfallId", "description")
		if v.Waterfall != nil {
			doc["waterfall"] = EngineDocument(v.Waterfall)
		}
		doc["totalCapital"] = IRFloat(v.TotalCapital())
		doc["participantCount"] = IRInt(v.ParticipantCount())
	case *Assumption:
		copyFields(doc, b.Props, "category", "scope", "type", "value",
			"distribution", "timeSeries", "unit", "template", "source",
			"marketDataRef", "overrides", "description")
		doc["isStochastic"] = IRBool(v.IsStochastic())
		doc["isTimeVarying"] = IRBool(v.IsTimeVarying())
	case *Waterfall:
		copyFields(doc, b.Props, "tiers", "description")
		doc["tierCount"] = IRInt(v.TierCount())
		doc["hasPreferredReturns"] = IRBool(v.HasPreferredReturns())
		doc["usesCapitalStackProportions"] = IRBool(v.UsesCapitalStackProportions())
	case *Portfolio:
		copyFields(doc, b.Props, "dealIds=deals", "description",
			"streamIds=streams", "stateConfig")
		doc["dealCount"] = IRInt(v.DealCount())
		doc["streamCount"] = IRInt(v.StreamCount())
		doc["hasStateManagement"] = IRBool(v.HasStateManagement())
		doc["hasPortfolioStreams"] = IRBool(v.StreamCount() > 0)
		if s := v.CurrentState(); s != "" {
			doc["currentState"] = IRString(s)
		}
	case *Fund:
		copyFields(doc, b.Props, "stateConfig", "description", "fundType",
			"portfolioIds=portfolios", "streamIds=streams", "participants")
		doc["portfolioCount"] = IRInt(v.PortfolioCount())
		doc["streamCount"] = IRInt(v.StreamCount())
		doc["participantCount"] = IRInt(v.ParticipantCount())
		doc["totalCommitment"] = IRFloat(v.TotalCommitment())
		doc["hasGeneralPartners"] = IRBool(v.HasGeneralPartners())
		doc["hasLimitedPartners"] = IRBool(v.HasLimitedPartners())
		doc["hasFundStreams"] = IRBool(v.StreamCount() > 0)
		if s := v.CurrentState(); s != "" {
			doc["currentState"] = IRString(s)
		}
	case *LogicBlock:
		copyFields(doc, b.Props, "scope", "type", "code", "description",
			"language", "executionOrder", "inputs", "outputs")
		_, hasOrder := v.ExecutionOrder()
		doc["inputCount"] = IRInt(v.InputCount())
		doc["outputCount"] = IRInt(v.OutputCount())
		doc["hasExecutionOrder"] = IRBool(hasOrder)
		doc["hasLanguage"] = IRBool(v.Language() != "")
		doc["isCalculation"] = IRBool(v.Type() == "calculation")
		doc["isValidation"] = IRBool(v.Type() == "validation")
		doc["isTrigger"] = IRBool(v.Type() == "trigger")
	case *RuleBlock:
		copyFields(doc, b.Props, "scope", "action", "description",
			"scheduleId=schedule", "eventTriggerId=eventTrigger", "condition")
		doc["hasScheduleTrigger"] = IRBool(v.HasScheduleTrigger())
		doc["hasEventTrigger"] = IRBool(v.HasEventTrigger())
		doc["hasCondition"] = IRBool(v.HasCondition())
		doc["hasMultipleActions"] = IRBool(v.HasMultipleActions())
		doc["actionCount"] = IRInt(v.ActionCount())
		doc["triggerType"] = IRString(v.TriggerType())
	case *EventTrigger:
		copyFields(doc, b.Props, "type", "assumptionId", "streamId", "operator",
			"threshold", "externalEventName", "expression", "description")
		doc["isAssumptionChangeTrigger"] = IRBool(v.Type() == "assumption_change")
		doc["isStreamThresholdTrigger"] = IRBool(v.Type() == "stream_threshold")
		doc["isExternalEventTrigger"] = IRBool(v.Type() == "external_event")
		doc["isCustomTrigger"] = IRBool(v.Type() == "custom")
		doc["triggerDescription"] = IRString(v.Description())
	case *Template:
		copyFields(doc, b.Props, "templateType", "body", "parameters", "description")
		required := v.RequiredParameterCount()
		doc["parameterCount"] = IRInt(v.ParameterCount())
		doc["requiredParameterCount"] = IRInt(required)
		doc["optionalParameterCount"] = IRInt(v.ParameterCount() - required)
		doc["hasParameters"] = IRBool(v.ParameterCount() > 0)
		doc["hasDefaultValues"] = IRBool(v.HasDefaultValues())
		doc["parameterNames"] = StringArray(v.ParameterNames())
	case *MarketData:
		copyFields(doc, b.Props, "dataType", "symbol", "source", "description",
			"refreshScheduleId=refreshSchedule", "field")
		dt := v.DataType()
		doc["hasMultipleSymbols"] = IRBool(v.HasMultipleSymbols())
		doc["symbolCount"] = IRInt(v.SymbolCount())
		doc["isInterestRate"] = IRBool(dt == "interest_rate")
		doc["isIndexValue"] = IRBool(dt == "index_value")
		doc["isFxRate"] = IRBool(dt == "fx_rate")
		doc["isInflationIndex"] = IRBool(dt == "inflation_index")
		doc["isCustomData"] = IRBool(dt == "custom")
		if st := v.SourceType(); st != "" {
			doc["sourceType"] = IRString(st)
		}
		doc["hasCredentials"] = IRBool(v.HasCredentials())
		doc["hasSourceParameters"] = IRBool(v.HasSourceParameters())
		doc["hasRefreshSchedule"] = IRBool(v.RefreshScheduleID() != "")
		doc["hasField"] = IRBool(v.Props.Str("field") != "")
	}

	for _, group := range childGroups(n) {
		docs := make(IRArray, 0, len(group.nodes))
		for _, c := range group.nodes {
			docs = append(docs, EngineDocument(c))
		}
		doc[group.key] = docs
	}
	return doc
}

// copyFields copies the listed properties into doc. An entry "from=to"
// renames the key. Null values and empty lists are skipped.
func copyFields(doc, props IRObject, fields ...string) {
	for _, f := range fields {
		from, to, ok := strings.Cut(f, "=")
		if !ok {
			to = from
		}
		v, present := props[from]
		if !present || IsNull(v) {
			continue
		}
		if arr, isArr := v.(IRArray); isArr && len(arr) == 0 {
			continue
		}
		doc[to] = cloneValue(v)
	}
}
