package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCoversEveryKind(t *testing.T) {
	for _, k := range Kinds() {
		t.Run(k.String(), func(t *testing.T) {
			n, ok := New(k, "X1", "X1")
			require.True(t, ok)
			assert.Equal(t, k, n.Kind())
			assert.Equal(t, "X1", n.Common().ID)
			assert.True(t, n.Common().Valid())
			assert.NotEmpty(t, n.Common().SchemaType())

			parsed, ok := ParseKind(k.String())
			require.True(t, ok)
			assert.Equal(t, k, parsed)
		})
	}
	assert.Len(t, Kinds(), 16)

	_, ok := New(Kind(0), "X", "X")
	assert.False(t, ok)
}

func TestSchemaURI(t *testing.T) {
	assert.Equal(t, "https://cfdl.dev/ontology/entity/deal.schema.yaml", KindDeal.SchemaURI())
	assert.Equal(t, "https://cfdl.dev/ontology/temporal/event-trigger.schema.yaml", KindEventTrigger.SchemaURI())
	assert.Equal(t, "https://cfdl.dev/ontology/result/waterfall.schema.yaml", KindWaterfall.SchemaURI())
}

func TestAddDependencyDedupes(t *testing.T) {
	n, _ := New(KindContract, "C1", "C1")
	b := n.Common()
	b.AddDependency("D1")
	b.AddDependency("P1")
	b.AddDependency("")
	b.AddDependency("D1")

	assert.Equal(t, []string{"D1", "P1"}, b.Deps)
}

func TestMessagesFlipValidity(t *testing.T) {
	n, _ := New(KindParty, "P1", "P1")
	b := n.Common()
	require.True(t, b.Valid())

	b.AddMessage("Party partyType is required")

	assert.False(t, b.Valid())
	assert.Equal(t, []string{"Party partyType is required"}, b.Messages)
}

func TestWalkVisitsEmbeddedChildren(t *testing.T) {
	deal := &Deal{Base: newBase(KindDeal, "D1", "D1")}
	asset := &Asset{Base: newBase(KindAsset, "A1", "A1")}
	asset.Streams = []*Stream{{Base: newBase(KindStream, "S1", "S1")}}
	deal.Assets = []*Asset{asset}
	deal.Streams = []*Stream{{Base: newBase(KindStream, "S2", "S2")}}

	var ids []string
	Walk(deal, func(n Node) { ids = append(ids, n.Common().ID) })

	assert.Equal(t, []string{"D1", "A1", "S1", "S2"}, ids)
}

func TestEffectiveValue(t *testing.T) {
	tmpl := &Template{Base: newBase(KindTemplate, "T1", "T1")}
	tmpl.Props["parameters"] = IRArray{
		IRObject{"name": IRString("rate"), "dataType": IRString("number"), "defaultValue": IRFloat(0.05)},
		IRObject{"name": IRString("term"), "dataType": IRString("number"), "defaultValue": IRInt(10)},
		IRObject{"name": IRString("index"), "dataType": IRString("string")},
	}
	lookup := func(id string) (*Template, bool) {
		if id == "T1" {
			return tmpl, true
		}
		return nil, false
	}

	t.Run("no template", func(t *testing.T) {
		a := &Assumption{Base: newBase(KindAssumption, "AS1", "AS1")}
		a.Props["value"] = IRFloat(0.03)
		assert.Equal(t, IRFloat(0.03), a.EffectiveValue(lookup))
	})

	t.Run("template with overrides", func(t *testing.T) {
		a := &Assumption{Base: newBase(KindAssumption, "AS2", "AS2")}
		a.Props["template"] = IRString("T1")
		a.Props["overrides"] = IRObject{"rate": IRFloat(0.07), "index": IRString("SOFR")}

		got := a.EffectiveValue(lookup)
		assert.Equal(t, IRObject{
			"rate":  IRFloat(0.07),
			"term":  IRInt(10),
			"index": IRString("SOFR"),
		}, got)
	})

	t.Run("unknown template keeps base value", func(t *testing.T) {
		a := &Assumption{Base: newBase(KindAssumption, "AS3", "AS3")}
		a.Props["template"] = IRString("T9")
		a.Props["value"] = IRInt(1)
		assert.Equal(t, IRInt(1), a.EffectiveValue(lookup))
	})
}

func TestTemplateComplexity(t *testing.T) {
	tests := []struct {
		name     string
		params   int
		required int
		bodyLen  int
		want     string
	}{
		{"simple", 2, 1, 10, "simple"},
		{"many parameters", 6, 0, 10, "moderate"},
		{"long body and required", 4, 4, 501, "complex"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := &Template{Base: newBase(KindTemplate, "T", "T")}
			var params IRArray
			for i := 0; i < tt.params; i++ {
				params = append(params, IRObject{
					"name":     IRString("p"),
					"required": IRBool(i < tt.required),
				})
			}
			tmpl.Props["parameters"] = params
			body := make([]byte, tt.bodyLen)
			for i := range body {
				body[i] = 'x'
			}
			tmpl.Props["body"] = IRString(body)

			assert.Equal(t, tt.want, tmpl.ComplexityLevel())
		})
	}
}

func TestRuleBlockTriggerType(t *testing.T) {
	r := &RuleBlock{Base: newBase(KindRuleBlock, "R1", "R1")}
	assert.Equal(t, "none", r.TriggerType())

	r.Props["condition"] = IRString("dscr < 1.2")
	assert.Equal(t, "condition", r.TriggerType())

	r.Props["eventTriggerId"] = IRString("ET1")
	assert.Equal(t, "event", r.TriggerType())

	r.Props["scheduleId"] = IRString("SCH1")
	assert.Equal(t, "schedule", r.TriggerType())

	r.Props["action"] = IRArray{IRString("a"), IRString("b")}
	assert.True(t, r.HasMultipleActions())
	assert.Equal(t, 2, r.ActionCount())
}

func TestEventTriggerDescription(t *testing.T) {
	e := &EventTrigger{Base: newBase(KindEventTrigger, "ET1", "ET1")}
	e.Props["type"] = IRString("stream_threshold")
	e.Props["streamId"] = IRString("S1")
	e.Props["operator"] = IRString("lt")
	e.Props["threshold"] = IRInt(1000)

	assert.Equal(t, "Stream 'S1' lt 1000", e.Description())

	e.Props["type"] = IRString("bogus")
	assert.Equal(t, "Unknown trigger type: bogus", e.Description())
}
