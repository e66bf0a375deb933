package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeHashDeterminism(t *testing.T) {
	h1, err := NodeHash(sampleDeal())
	require.NoError(t, err)
	h2, err := NodeHash(sampleDeal())
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestNodeHashIgnoresDiagnostics(t *testing.T) {
	clean := sampleDeal()
	noisy := sampleDeal()
	noisy.AddMessage("Deal entryDate is required")
	noisy.Meta["enrichmentTimestamp"] = IRString("2026-01-01T00:00:00Z")
	noisy.Line = 99

	assert.Equal(t, MustNodeHash(clean), MustNodeHash(noisy))
}

func TestNodeHashChangesWithContent(t *testing.T) {
	a := sampleDeal()
	b := sampleDeal()
	b.Props["currency"] = IRString("EUR")

	assert.NotEqual(t, MustNodeHash(a), MustNodeHash(b))
}

func TestNodeHashIncludesKind(t *testing.T) {
	p, _ := New(KindParty, "X", "X")
	s, _ := New(KindStream, "X", "X")

	assert.NotEqual(t, MustNodeHash(p), MustNodeHash(s))
}

func TestBuildFingerprint(t *testing.T) {
	p, _ := New(KindParty, "P1", "P1")
	deal := sampleDeal()

	f1, err := BuildFingerprint([]Node{deal, p})
	require.NoError(t, err)
	f2, err := BuildFingerprint([]Node{deal, p})
	require.NoError(t, err)
	reversed, err := BuildFingerprint([]Node{p, deal})
	require.NoError(t, err)
	empty, err := BuildFingerprint(nil)
	require.NoError(t, err)

	assert.Equal(t, f1, f2)
	assert.NotEqual(t, f1, reversed)
	assert.Len(t, empty, 64)
}

func TestHashWithDomainSeparation(t *testing.T) {
	data := []byte(`{"id":"D1"}`)
	assert.NotEqual(t, hashWithDomain(DomainNode, data), hashWithDomain(DomainBuild, data))
	// Moving bytes across the separator must change the hash.
	assert.NotEqual(t, hashWithDomain("ab", []byte("c")), hashWithDomain("a", []byte("bc")))
}
