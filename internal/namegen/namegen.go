// Package namegen assigns the per-chat anonymous display names handed out at
// pairing time.
package namegen

import "math/rand/v2"

// defaultPool mirrors the classic animal-name set users expect to see.
var defaultPool = []string{
	"CuriousCat", "WiseOwl", "SilentFox", "HappyPanda", "WittyBadger",
	"CleverCoyote", "GentleGiraffe", "BraveLion", "SwiftSparrow", "EagerBeaver",
}

// Fallback names used when the pool cannot supply two distinct entries.
const (
	FallbackFirst  = "UserAlpha"
	FallbackSecond = "UserBeta"
)

// Pool is a fixed set of pseudonyms to draw pairings from.
type Pool struct {
	names []string
}

// NewPool returns a pool over the given names; with no arguments it uses the
// default set.
func NewPool(names ...string) *Pool {
	if len(names) == 0 {
		names = defaultPool
	}
	return &Pool{names: names}
}

// Pick draws two distinct pseudonyms, one per side of a pairing. Pools with
// fewer than two entries fall back to a fixed pair.
func (p *Pool) Pick() [2]string {
	if len(p.names) < 2 {
		return [2]string{FallbackFirst, FallbackSecond}
	}
	i := rand.IntN(len(p.names))
	j := rand.IntN(len(p.names) - 1)
	if j >= i {
		j++
	}
	return [2]string{p.names[i], p.names[j]}
}

// Contains reports whether name belongs to the pool.
func (p *Pool) Contains(name string) bool {
	for _, n := range p.names {
		if n == name {
			return true
		}
	}
	return false
}
