package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes. The version suffix leaves room for
// changing the hashed document without colliding with old hashes.
const (
	DomainNode  = "cfdl/node/v1"
	DomainBuild = "cfdl/build/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data). The separator keeps
// the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// NodeHash is the content hash of a node's engine document together with
// its kind. Diagnostics (validity, positions, enrichment) do not take part,
// so two builds of the same source produce the same hash.
func NodeHash(n Node) (string, error) {
	obj := IRObject{
		"kind":     IRString(n.Kind().String()),
		"document": EngineDocument(n),
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("NodeHash %s: %w", n.Common().ID, err)
	}
	return hashWithDomain(DomainNode, canonical), nil
}

// BuildFingerprint hashes the ordered list of node hashes. Reordering
// definitions changes the fingerprint; it identifies a build output, not a
// set of entities.
func BuildFingerprint(nodes []Node) (string, error) {
	entries := make(IRArray, 0, len(nodes))
	for _, n := range nodes {
		h, err := NodeHash(n)
		if err != nil {
			return "", err
		}
		entries = append(entries, IRObject{
			"id":   IRString(n.Common().ID),
			"hash": IRString(h),
		})
	}
	canonical, err := MarshalCanonical(entries)
	if err != nil {
		return "", fmt.Errorf("BuildFingerprint: %w", err)
	}
	return hashWithDomain(DomainBuild, canonical), nil
}

// MustNodeHash is like NodeHash but panics on error.
// Use only in tests or when the node is known to be finite.
func MustNodeHash(n Node) string {
	h, err := NodeHash(n)
	if err != nil {
		panic(err)
	}
	return h
}
