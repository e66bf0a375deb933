package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_DealDefinition(t *testing.T) {
	src := `deal D1 {
  dealType: syndicated_loan;
  currency: "USD";
  entryDate: "2024-01-01";
  exitDate: "2029-01-01";
  analysisStart: "2024-01-01";
  holdingPeriodYears: 5;
}`
	file, err := Parse("deal.cfdl", []byte(src))
	require.NoError(t, err)
	require.Len(t, file.Defs, 1)

	def := file.Defs[0]
	assert.Equal(t, "deal", def.Keyword)
	assert.Equal(t, "D1", def.ID)
	assert.Equal(t, 1, def.Pos.Line)
	assert.Equal(t, 1, def.Pos.Column)
	require.Len(t, def.Body, 6)

	first, ok := def.Body[0].(*Property)
	require.True(t, ok)
	assert.Equal(t, "dealType", first.Key)
	assert.Equal(t, &IdentLit{Name: "syndicated_loan", Pos: first.Value.Position()}, first.Value)

	currency := def.Body[1].(*Property)
	assert.Equal(t, "USD", currency.Value.(*StringLit).Value)
	assert.Equal(t, 3, currency.Pos.Line)

	years := def.Body[5].(*Property)
	assert.Equal(t, "5", years.Value.(*NumberLit).Raw)
}

func TestParse_Values(t *testing.T) {
	src := `stream S1 {
  amount: -1250.5;
  rate: 2.5e-2;
  active: true;
  retired: false;
  parent: null;
  tags: [rent, "base rent", 3,];
  schedule: { type: recurring, startDate: 2024-01-01; recurrenceRule: { freq: monthly } };
  "quoted key": x
}`
	file, err := Parse("s.cfdl", []byte(src))
	require.NoError(t, err)
	body := file.Defs[0].Body
	require.Len(t, body, 8)

	values := make(map[string]Value)
	for _, item := range body {
		p := item.(*Property)
		values[p.Key] = p.Value
	}

	assert.Equal(t, "-1250.5", values["amount"].(*NumberLit).Raw)
	assert.Equal(t, "2.5e-2", values["rate"].(*NumberLit).Raw)
	assert.True(t, values["active"].(*BoolLit).Value)
	assert.False(t, values["retired"].(*BoolLit).Value)
	assert.IsType(t, &NullLit{}, values["parent"])

	tags := values["tags"].(*ListLit)
	require.Len(t, tags.Elems, 3)
	assert.Equal(t, "rent", tags.Elems[0].(*IdentLit).Name)
	assert.Equal(t, "base rent", tags.Elems[1].(*StringLit).Value)
	assert.Equal(t, "3", tags.Elems[2].(*NumberLit).Raw)

	schedule := values["schedule"].(*BlockLit)
	require.Len(t, schedule.Entries, 3)
	assert.Equal(t, "type", schedule.Entries[0].Key)
	assert.Equal(t, "2024-01-01", schedule.Entries[1].Value.(*IdentLit).Name, "unquoted dates lex as bare tokens")
	rule := schedule.Entries[2].Value.(*BlockLit)
	assert.Equal(t, "freq", rule.Entries[0].Key)

	assert.Equal(t, "x", values["quoted key"].(*IdentLit).Name)
}

func TestParse_NonFiniteNumbersAreIdentifiers(t *testing.T) {
	for _, raw := range []string{"+Inf", "-Inf", "-infinity", "+NaN", "1e400"} {
		t.Run(raw, func(t *testing.T) {
			file, err := Parse("f.cfdl", []byte("fund F1 { commitment: "+raw+"; }"))
			require.NoError(t, err)
			p := file.Defs[0].Body[0].(*Property)
			assert.Equal(t, &IdentLit{Name: raw, Pos: p.Value.Position()}, p.Value)
		})
	}
}

func TestParse_CommentsAndImports(t *testing.T) {
	src := `// shared parties
import "parties.cfdl";
/* block
   comment */
party P1 { partyType: organization; } // trailing
entity E1 { anything: 1; }`
	file, err := Parse("main.cfdl", []byte(src))
	require.NoError(t, err)

	require.Len(t, file.Imports, 1)
	assert.Equal(t, "parties.cfdl", file.Imports[0].Path)
	assert.Equal(t, 2, file.Imports[0].Pos.Line)

	require.Len(t, file.Defs, 2)
	assert.Equal(t, "party", file.Defs[0].Keyword)
	assert.Equal(t, 5, file.Defs[0].Pos.Line)
	assert.Equal(t, "entity", file.Defs[1].Keyword)
}

func TestParse_NestedDefinitions(t *testing.T) {
	src := `deal D1 {
  name: "Tower";
  asset A1 {
    category: real_estate;
    stream S1 { scope: asset; }
  }
  assets: [A2];
}`
	file, err := Parse("n.cfdl", []byte(src))
	require.NoError(t, err)
	body := file.Defs[0].Body
	require.Len(t, body, 3)

	nested, ok := body[1].(*Definition)
	require.True(t, ok)
	assert.Equal(t, "asset", nested.Keyword)
	assert.Equal(t, "A1", nested.ID)
	require.Len(t, nested.Body, 2)
	stream, ok := nested.Body[1].(*Definition)
	require.True(t, ok)
	assert.Equal(t, "S1", stream.ID)
}

func TestParse_KeywordAsPropertyName(t *testing.T) {
	src := `assumption A1 { template: T1; schedule: { type: oneTime; date: "2025-01-01"; } }`
	file, err := Parse("a.cfdl", []byte(src))
	require.NoError(t, err)
	body := file.Defs[0].Body
	require.Len(t, body, 2)
	assert.Equal(t, "template", body[0].(*Property).Key)
	assert.Equal(t, "schedule", body[1].(*Property).Key)
}

func TestParse_Empty(t *testing.T) {
	file, err := Parse("empty.cfdl", []byte("  // nothing\n"))
	require.NoError(t, err)
	assert.Empty(t, file.Defs)
}

func TestParse_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		line    int
		column  int
		message string
	}{
		{
			name:    "unknown kind",
			src:     `widget W1 { }`,
			line:    1,
			column:  1,
			message: `unknown definition kind "widget"`,
		},
		{
			name:    "missing colon",
			src:     "deal D1 {\n  currency \"USD\";\n}",
			line:    2,
			column:  12,
			message: `expected ':', found string "USD"`,
		},
		{
			name:    "missing separator",
			src:     "deal D1 { currency: USD dealType: x; }",
			line:    1,
			column:  25,
			message: `expected ';' after property "currency", found identifier "dealType"`,
		},
		{
			name:    "unterminated definition",
			src:     "deal D1 {\n  currency: USD;\n",
			line:    1,
			column:  1,
			message: `unterminated deal "D1": missing '}'`,
		},
		{
			name:    "unterminated string",
			src:     `deal D1 { currency: "USD; }`,
			line:    1,
			column:  21,
			message: "unterminated string",
		},
		{
			name:    "bad list",
			src:     `deal D1 { assets: [A1 A2]; }`,
			line:    1,
			column:  23,
			message: `expected ',' or ']' in list, found identifier "A2"`,
		},
		{
			name:    "missing id",
			src:     `deal { }`,
			line:    1,
			column:  6,
			message: "expected deal identifier, found '{'",
		},
		{
			name:    "illegal character",
			src:     `deal D1 { x: @; }`,
			line:    1,
			column:  14,
			message: "unexpected character '@'",
		},
		{
			name:    "unterminated comment",
			src:     "deal D1 { } /* open",
			line:    1,
			column:  13,
			message: "unterminated block comment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := Parse("bad.cfdl", []byte(tt.src))
			require.Error(t, err)
			assert.Nil(t, file, "no partial tree on syntax error")
			assert.True(t, errors.Is(err, ErrSyntax))

			var synErr *SyntaxError
			require.True(t, errors.As(err, &synErr))
			assert.Equal(t, tt.line, synErr.Pos.Line)
			assert.Equal(t, tt.column, synErr.Pos.Column)
			assert.Equal(t, tt.message, synErr.Message)
			assert.Contains(t, err.Error(), "bad.cfdl:")
		})
	}
}
