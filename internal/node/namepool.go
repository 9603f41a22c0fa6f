// Package node implements the XDM node model: node identity and kinds, a
// shared name pool, axis navigation and document order, built as a
// private tree representation rather than a binding onto an external
// DOM.
package node

import (
	"sync"

	"github.com/google/uuid"
)

// Fingerprint is an interned (prefix, namespace-uri, local-name) triple,
// used in place of string comparison for name tests and name-based
// comparisons. 0 is never a valid fingerprint (NoFingerprint).
type Fingerprint int32

// NoFingerprint marks the absence of a name (e.g. a document node).
const NoFingerprint Fingerprint = 0

type nameKey struct {
	uri   string
	local string
}

type nameEntry struct {
	uri    string
	prefix string
	local  string
}

// NamePool interns qualified names to small integers so that name tests
// during navigation are integer comparisons rather than string comparisons.
// One pool can be shared by many trees, and it is safe for concurrent use.
//
// Generation is a uuid stamped at construction that identifies the pool
// instance. A Fingerprint does not carry it, so nothing here stops a
// fingerprint minted by one pool from being used with another.
type NamePool struct {
	mu         sync.RWMutex
	generation uuid.UUID
	byKey      map[nameKey]Fingerprint
	entries    []nameEntry // index i holds the entry for Fingerprint(i+1)
}

// NewNamePool constructs an empty pool.
func NewNamePool() *NamePool {
	return &NamePool{
		generation: uuid.New(),
		byKey:      make(map[nameKey]Fingerprint),
	}
}

// Generation returns the uuid that identifies this pool instance.
func (p *NamePool) Generation() uuid.UUID { return p.generation }

// Intern returns the fingerprint for (uri, prefix, local), minting a new one
// on first use. The prefix is not part of the interning key (two names with
// the same URI and local name but different prefixes share a fingerprint,
// matching QName equality semantics), but the prefix of the first caller to
// intern a given (uri, local) pair is retained for display.
func (p *NamePool) Intern(uri, prefix, local string) Fingerprint {
	key := nameKey{uri: uri, local: local}

	p.mu.RLock()
	if fp, ok := p.byKey[key]; ok {
		p.mu.RUnlock()
		return fp
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	if fp, ok := p.byKey[key]; ok {
		return fp
	}
	p.entries = append(p.entries, nameEntry{uri: uri, prefix: prefix, local: local})
	fp := Fingerprint(len(p.entries))
	p.byKey[key] = fp
	return fp
}

// URI returns the namespace URI of a fingerprint ("" if none).
func (p *NamePool) URI(fp Fingerprint) string {
	if fp == NoFingerprint {
		return ""
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.entries[fp-1].uri
}

// LocalName returns the local name of a fingerprint.
func (p *NamePool) LocalName(fp Fingerprint) string {
	if fp == NoFingerprint {
		return ""
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.entries[fp-1].local
}

// Prefix returns the display prefix recorded for a fingerprint (the first
// prefix seen at intern time).
func (p *NamePool) Prefix(fp Fingerprint) string {
	if fp == NoFingerprint {
		return ""
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.entries[fp-1].prefix
}

// DisplayName renders "prefix:local", or just "local" with no prefix.
func (p *NamePool) DisplayName(fp Fingerprint) string {
	if fp == NoFingerprint {
		return ""
	}
	prefix := p.Prefix(fp)
	local := p.LocalName(fp)
	if prefix == "" {
		return local
	}
	return prefix + ":" + local
}

// SameName reports whether two fingerprints name the same (uri, local)
// pair. Since fingerprints are canonicalized by (uri, local), this is just
// equality, but it documents the XDM name-equality rule at call sites.
func SameName(a, b Fingerprint) bool { return a == b }
