package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cfdl/internal/ir"
)

func TestAnalyzeCycles_Empty(t *testing.T) {
	assert.Empty(t, AnalyzeCycles(NewRegistry()))
}

func TestAnalyzeCycles_DAG(t *testing.T) {
	reg := registryOf(t,
		newNode(t, ir.KindPortfolio, "PF1", "D1", "D2"),
		newNode(t, ir.KindDeal, "D1", "CS1"),
		newNode(t, ir.KindDeal, "D2", "CS1"),
		newNode(t, ir.KindCapitalStack, "CS1", "P1", "W1"),
		newNode(t, ir.KindParty, "P1"),
		newNode(t, ir.KindWaterfall, "W1", "P1"),
	)

	assert.Empty(t, AnalyzeCycles(reg), "a DAG has no cycles")
}

func TestAnalyzeCycles_SelfLoop(t *testing.T) {
	reg := registryOf(t, newNode(t, ir.KindLogicBlock, "L1", "L1"))

	warnings := AnalyzeCycles(reg)

	require.Len(t, warnings, 1)
	assert.Equal(t, []string{"L1", "L1"}, warnings[0].Path)
	assert.Equal(t, "Dependency cycle: L1 -> L1", warnings[0].Message)
}

func TestAnalyzeCycles_TwoNodeCycle(t *testing.T) {
	reg := registryOf(t,
		newNode(t, ir.KindLogicBlock, "L2", "L1"),
		newNode(t, ir.KindLogicBlock, "L1", "L2"),
	)

	warnings := AnalyzeCycles(reg)

	require.Len(t, warnings, 1)
	assert.Equal(t, []string{"L1", "L2", "L1"}, warnings[0].Path, "path starts at the smallest id")
}

func TestAnalyzeCycles_ThreeNodeCycle(t *testing.T) {
	reg := registryOf(t,
		newNode(t, ir.KindLogicBlock, "A", "B"),
		newNode(t, ir.KindLogicBlock, "B", "C"),
		newNode(t, ir.KindLogicBlock, "C", "A"),
	)

	warnings := AnalyzeCycles(reg)

	require.Len(t, warnings, 1)
	assert.Equal(t, "Dependency cycle: A -> B -> C -> A", warnings[0].Message)
}

func TestAnalyzeCycles_ShortestPathThroughSCC(t *testing.T) {
	// A reaches B directly and through C; B closes the loop.
	reg := registryOf(t,
		newNode(t, ir.KindLogicBlock, "A", "C", "B"),
		newNode(t, ir.KindLogicBlock, "B", "A"),
		newNode(t, ir.KindLogicBlock, "C", "B"),
	)

	warnings := AnalyzeCycles(reg)

	require.Len(t, warnings, 1)
	assert.Equal(t, []string{"A", "B", "A"}, warnings[0].Path)
}

func TestAnalyzeCycles_MultipleIndependentCycles(t *testing.T) {
	reg := registryOf(t,
		newNode(t, ir.KindLogicBlock, "X1", "X2"),
		newNode(t, ir.KindLogicBlock, "X2", "X1"),
		newNode(t, ir.KindLogicBlock, "L1", "L2"),
		newNode(t, ir.KindLogicBlock, "L2", "L1"),
		newNode(t, ir.KindLogicBlock, "Z", "L1"),
	)

	warnings := AnalyzeCycles(reg)

	require.Len(t, warnings, 2)
	assert.Equal(t, "Dependency cycle: L1 -> L2 -> L1", warnings[0].Message, "sorted by message")
	assert.Equal(t, "Dependency cycle: X1 -> X2 -> X1", warnings[1].Message)
}

func TestAnalyzeCycles_OrderIndependent(t *testing.T) {
	a := registryOf(t,
		newNode(t, ir.KindLogicBlock, "A", "B"),
		newNode(t, ir.KindLogicBlock, "B", "C"),
		newNode(t, ir.KindLogicBlock, "C", "A"),
	)
	b := registryOf(t,
		newNode(t, ir.KindLogicBlock, "C", "A"),
		newNode(t, ir.KindLogicBlock, "B", "C"),
		newNode(t, ir.KindLogicBlock, "A", "B"),
	)

	assert.Equal(t, AnalyzeCycles(a), AnalyzeCycles(b))
}

func TestAnalyzeCycles_IgnoresUnresolved(t *testing.T) {
	reg := registryOf(t, newNode(t, ir.KindLogicBlock, "L1", "missing", "L1x"))

	assert.Empty(t, AnalyzeCycles(reg))
}

func TestAnalyzeCycles_IgnoresOwnershipBackReferences(t *testing.T) {
	asset := newNode(t, ir.KindAsset, "A1", "D1", "C1")
	asset.Common().Props["dealId"] = ir.IRString("D1")
	contract := newNode(t, ir.KindContract, "C1", "D1", "A1")
	contract.Common().Props["dealId"] = ir.IRString("D1")
	contract.Common().Props["assetId"] = ir.IRString("A1")

	reg := registryOf(t,
		newNode(t, ir.KindDeal, "D1", "A1"),
		asset,
		contract,
	)

	assert.Empty(t, AnalyzeCycles(reg))
}

func TestBuildDependencyGraph(t *testing.T) {
	reg := registryOf(t,
		newNode(t, ir.KindRuleBlock, "R1", "SCH1", "ET1"),
		newNode(t, ir.KindEventTrigger, "ET1", "S1"),
		newNode(t, ir.KindStream, "S1"),
	)

	graph := buildDependencyGraph(reg)

	assert.Equal(t, []string{"ET1"}, graph["R1"], "unregistered SCH1 is dropped")
	assert.Equal(t, []string{"S1"}, graph["ET1"])
	assert.Empty(t, graph["S1"])
}

func TestHasSelfLoop(t *testing.T) {
	graph := dependencyGraph{"A": {"A"}, "B": {"C"}}
	assert.True(t, hasSelfLoop("A", graph))
	assert.False(t, hasSelfLoop("B", graph))
}

func TestTarjanSCC(t *testing.T) {
	graph := dependencyGraph{"A": {"B"}, "B": {"A"}, "C": {"A"}}

	sccs := tarjanSCC(graph, []string{"A", "B", "C"})

	require.Len(t, sccs, 2)
	assert.ElementsMatch(t, []string{"A", "B"}, sccs[0])
	assert.Equal(t, []string{"C"}, sccs[1])
}

func TestReconstructCyclePath_NoCycleFallsBack(t *testing.T) {
	path := reconstructCyclePath([]string{"B", "A"}, dependencyGraph{})
	assert.Equal(t, []string{"A", "A"}, path)
}
