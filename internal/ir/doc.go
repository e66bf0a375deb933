// Package ir is the intermediate representation produced by the CFDL
// compiler.
//
// The IR is a closed set of 16 node kinds (Deal, Asset, Component, Stream,
// Party, Contract, CapitalStack, Assumption, Waterfall, Portfolio, Fund,
// LogicBlock, RuleBlock, EventTrigger, Template, MarketData). Every kind
// embeds Base, which holds the node's properties once; typed accessors on
// each kind read from Base.Props.
//
// ir imports nothing internal. The compiler fills nodes in; documents,
// canonical JSON and hashes are computed here.
//
// Key design constraints:
//   - Node is sealed: only the 16 kinds in this package implement it
//   - Schema metadata (Base.Meta) never affects validity or hashes
//   - Canonical JSON (RFC 8785) is the only input to hashing
package ir
