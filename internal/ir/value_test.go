package ir

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIRValueSealed(t *testing.T) {
	var _ IRValue = IRNull{}
	var _ IRValue = IRString("test")
	var _ IRValue = IRInt(42)
	var _ IRValue = IRFloat(0.5)
	var _ IRValue = IRBool(true)
	var _ IRValue = IRArray{IRString("a"), IRInt(1)}
	var _ IRValue = IRObject{"key": IRString("value")}
}

func TestIRObjectSortedKeys(t *testing.T) {
	obj := IRObject{"a": IRInt(1), "A": IRInt(2), "aa": IRInt(3), "AA": IRInt(4), "Aa": IRInt(5)}
	assert.Equal(t, []string{"A", "AA", "Aa", "a", "aa"}, obj.SortedKeys())
	assert.Empty(t, IRObject{}.SortedKeys())
}

func TestIRObjectAccessors(t *testing.T) {
	obj := IRObject{
		"name":    IRString("Tower"),
		"count":   IRInt(3),
		"nothing": IRNull{},
		"ids":     IRArray{IRString("A1"), IRInt(7), IRString("A2")},
		"parties": IRArray{IRObject{"partyId": IRString("P1")}, IRString("stray")},
		"nested":  IRObject{"k": IRBool(true)},
	}

	assert.Equal(t, "Tower", obj.Str("name"))
	assert.Equal(t, "", obj.Str("count"))
	assert.True(t, obj.Has("count"))
	assert.False(t, obj.Has("nothing"))
	assert.False(t, obj.Has("missing"))
	assert.Equal(t, []string{"A1", "A2"}, obj.Strings("ids"))
	assert.Len(t, obj.Objects("parties"), 1)
	assert.Equal(t, IRBool(true), obj.Object("nested")["k"])
	assert.Nil(t, obj.Array("name"))
}

func TestNum(t *testing.T) {
	tests := []struct {
		name string
		in   IRValue
		want float64
		ok   bool
	}{
		{"int", IRInt(5), 5, true},
		{"float", IRFloat(0.25), 0.25, true},
		{"string", IRString("5"), 0, false},
		{"nil", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Num(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := IRObject{"tiers": IRArray{IRObject{"id": IRString("t1")}}}
	clone := orig.Clone()

	clone.Array("tiers")[0].(IRObject)["id"] = IRString("changed")

	assert.Equal(t, "t1", orig.Objects("tiers")[0].Str("id"))
}

func TestUnmarshalNumbers(t *testing.T) {
	var obj IRObject
	require.NoError(t, json.Unmarshal([]byte(`{"a":5,"b":5.0,"c":1e3,"d":-0.125,"e":null}`), &obj))

	assert.Equal(t, IRInt(5), obj["a"])
	assert.Equal(t, IRFloat(5), obj["b"])
	assert.Equal(t, IRFloat(1000), obj["c"])
	assert.Equal(t, IRFloat(-0.125), obj["d"])
	assert.Equal(t, IRNull{}, obj["e"])
}

func TestMarshalJSONRoundTrip(t *testing.T) {
	obj := IRObject{
		"s":   IRString("<b>"),
		"i":   IRInt(-3),
		"f":   IRFloat(0.6),
		"b":   IRBool(false),
		"n":   IRNull{},
		"arr": IRArray{IRInt(1), IRArray{}},
		"obj": IRObject{"z": IRInt(1), "a": IRInt(2)},
	}

	data, err := json.Marshal(obj)
	require.NoError(t, err)

	var back IRObject
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, obj, back)
}

func TestMarshalIRValueRejectsNonFinite(t *testing.T) {
	_, err := MarshalIRValue(IRFloat(math.NaN()))
	assert.ErrorContains(t, err, "non-finite")
}
