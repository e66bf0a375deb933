package compiler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cfdl/internal/ast"
	"github.com/roach88/cfdl/internal/ir"
)

func transformOne(t *testing.T, src string) (ir.Node, error) {
	t.Helper()
	nodes := parse(t, src)
	require.Len(t, nodes, 1)
	return Transform(nodes[0])
}

func TestTransform_CopiesProperties(t *testing.T) {
	n, err := transformOne(t, validDeal)
	require.NoError(t, err)

	deal, ok := n.(*ir.Deal)
	require.True(t, ok)
	assert.Equal(t, "D1", deal.ID)
	assert.Equal(t, "Main Deal", deal.Name)
	assert.Equal(t, 1, deal.Line)
	assert.Equal(t, ir.IRString("acquisition"), deal.Props["dealType"])
	assert.Equal(t, ir.IRString("USD"), deal.Props["currency"])
	assert.Equal(t, ir.IRInt(5), deal.Props["holdingPeriodYears"], "integral numbers stay integral")
	assert.Empty(t, deal.Extensions)
}

func TestTransform_NumbersAndExtensions(t *testing.T) {
	n, err := transformOne(t, `asset A1 {
  dealId: D1;
  category: real_estate;
  floorCount: 42;
  occupancy: 0.95;
  listed: false;
  manager: null;
}`)
	require.NoError(t, err)

	b := n.Common()
	assert.Equal(t, ir.IRInt(42), b.Props["floorCount"])
	assert.Equal(t, ir.IRFloat(0.95), b.Props["occupancy"])
	assert.Equal(t, ir.IRBool(false), b.Props["listed"])
	assert.Equal(t, ir.IRNull{}, b.Props["manager"])
	assert.Equal(t, []string{"floorCount", "occupancy", "listed", "manager"}, b.Extensions)
}

func TestTransform_Dependencies(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "deal",
			src:  `deal D1 { capitalStackId: CS1; assets: [A1, A2]; streams: S1; }`,
			want: []string{"CS1", "A1", "A2", "S1"},
		},
		{
			name: "contract parties",
			src:  `contract C1 { dealId: D1; assetId: A1; parties: [ { partyId: P1; role: tenant }, { partyId: P2; role: landlord } ]; }`,
			want: []string{"D1", "A1", "P1", "P2"},
		},
		{
			name: "capital stack",
			src:  `capital_stack CS1 { participants: [ { partyId: P1 }, { partyId: P1 } ]; waterfall: W1; }`,
			want: []string{"P1", "W1"},
		},
		{
			name: "assumption template alias",
			src:  `assumption AS1 { templateRef: T1; marketDataRef: M1; }`,
			want: []string{"T1", "M1"},
		},
		{
			name: "waterfall recipients",
			src:  `waterfall W1 { tiers: [ { distribute: [ { recipient: LP }, { recipient: GP }, { fromCapitalStack: true } ] } ]; }`,
			want: []string{"LP", "GP"},
		},
		{
			name: "rule block",
			src:  `rule_block R1 { schedule: SCH1; eventTrigger: ET1; }`,
			want: []string{"SCH1", "ET1"},
		},
		{
			name: "fund",
			src:  `fund F1 { portfolios: [PF1]; streams: [S1]; participants: [ { partyId: GP1 } ]; }`,
			want: []string{"PF1", "S1", "GP1"},
		},
		{
			name: "party has none",
			src:  `party P1 { partyType: individual; }`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := transformOne(t, tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n.Common().Deps)
		})
	}
}

func TestTransform_NestedChildren(t *testing.T) {
	n, err := transformOne(t, `deal D1 {
  asset A1 {
    dealId: D1;
    category: real_estate;
    component CM1 { assetId: A1; }
    stream S2 { scope: asset; }
  }
  stream S1 { scope: deal; }
}`)
	require.NoError(t, err)

	deal := n.(*ir.Deal)
	require.Len(t, deal.Assets, 1)
	require.Len(t, deal.Streams, 1)
	asset := deal.Assets[0]
	assert.Equal(t, "A1", asset.ID)
	require.Len(t, asset.Components, 1)
	assert.Equal(t, "CM1", asset.Components[0].ID)
	require.Len(t, asset.Streams, 1)
	assert.Equal(t, "S2", asset.Streams[0].ID)
	assert.Equal(t, []string{"A1", "S1"}, deal.Deps, "nested ids are dependencies of the parent")
}

func TestTransform_MisplacedChild(t *testing.T) {
	_, err := transformOne(t, `deal D1 { component CM1 { assetId: A1; } }`)

	require.Error(t, err)
	var te *TransformError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "D1", te.NodeID)
	assert.Contains(t, err.Error(), "Component CM1 cannot be declared inside a Deal")
}

func TestTransform_UnsupportedKind(t *testing.T) {
	for _, src := range []string{
		`schedule SCH1 { type: recurring; }`,
		`metric M1 { value: 1; }`,
		`entity E1 { foo: bar; }`,
	} {
		_, err := transformOne(t, src)
		assert.ErrorIs(t, err, ErrUnsupportedKind, src)
	}
}

func TestTransform_WrongShape(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`capital_stack CS1 { participants: "P1"; }`, "participants must be a list, got string"},
		{`contract C1 { dealId: [D1]; }`, "dealId must be an identifier, got list"},
		{`portfolio PF1 { deals: 7; }`, "dealIds must be a list of identifiers, got number"},
		{`waterfall W1 { tiers: { a: 1 }; }`, "tiers must be a list, got object"},
		{`waterfall W1 { tiers: [ { distribute: LP } ]; }`, "tier 0 distribute must be a list, got string"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			_, err := transformOne(t, tt.src)
			require.Error(t, err)
			assert.Equal(t, tt.want, transformMessage(err))
		})
	}
}

func TestTransform_Nil(t *testing.T) {
	_, err := Transform(nil)
	assert.Error(t, err)
}

func TestTransform_EveryKind(t *testing.T) {
	for astKind, irKind := range irKinds {
		n, err := Transform(&ast.Node{Kind: astKind, ID: "X1", Name: "X1", Props: ast.NewProperties()})
		require.NoError(t, err, astKind.String())
		assert.Equal(t, irKind, n.Kind())
	}
}

func TestConvertValue(t *testing.T) {
	m := &ast.Map{Entries: []ast.Entry{{Key: "k", Value: ast.Ident("v")}}}

	assert.Equal(t, ir.IRNull{}, convertValue(nil))
	assert.Equal(t, ir.IRString("s"), convertValue(ast.String("s")))
	assert.Equal(t, ir.IRInt(3), convertValue(ast.Number{Raw: "3", Int: 3, Float: 3, IsInt: true}))
	assert.Equal(t, ir.IRFloat(2.5), convertValue(ast.Number{Raw: "2.5", Float: 2.5}))
	assert.Equal(t, ir.IRArray{ir.IRBool(true)}, convertValue(ast.List{ast.Bool(true)}))
	assert.Equal(t, ir.IRObject{"k": ir.IRString("v")}, convertValue(m))
}
