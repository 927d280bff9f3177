package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes. The version suffix allows the
// encoding to change without colliding with old hashes.
const (
	DomainEvent = "jsdares/event/v1"
	DomainState = "jsdares/state/v1"
	DomainTrace = "jsdares/trace/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Hash returns the domain-separated SHA-256 of the canonical encoding of v.
func Hash(domain string, v Value) (string, error) {
	data, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", domain, err)
	}
	return hashWithDomain(domain, data), nil
}

// MustHash is like Hash but panics on error.
func MustHash(domain string, v Value) string {
	h, err := Hash(domain, v)
	if err != nil {
		panic(err)
	}
	return h
}
