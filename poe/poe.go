// Package poe computes proof-of-existence times over an evidence graph.
//
// A valid timestamp proves that everything it covers existed no later than
// the timestamp's own proven time, and coverage composes: an archive
// timestamp over a signature timestamp pushes the proven time of the
// signature back to no later than the archive timestamp's production. Tokens
// that no timestamp covers get the validation's current time, the weakest
// possible proof.
package poe

import (
	"fmt"
	"sort"
	"time"

	"github.com/georgepadayatti/adesvalidator/checks"
	"github.com/georgepadayatti/adesvalidator/identifier"
)

// Type represents the source of a proof of existence.
type Type int

const (
	// TypeValidationTime is the fallback proof: the token exists now.
	TypeValidationTime Type = iota
	// TypeTimestamp is a proof derived from a covering timestamp.
	TypeTimestamp
	// TypeExternal is a proof supplied by the caller.
	TypeExternal
)

// String returns the string representation of the type.
func (t Type) String() string {
	switch t {
	case TypeValidationTime:
		return "validation_time"
	case TypeTimestamp:
		return "timestamp"
	case TypeExternal:
		return "external"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// Proof states that Token existed no later than Time.
type Proof struct {
	Token identifier.Identifier
	Time  time.Time
	Type  Type
	// Source is the timestamp the proof derives from, if any.
	Source identifier.Identifier
}

// Set holds the lowest proof of existence of every token of one validation
// run. It is read-only once extracted.
type Set struct {
	current  time.Time
	proofs   map[identifier.Identifier]Proof
	verdicts map[identifier.Identifier]*checks.Conclusion
}

// CurrentTime returns the time used for tokens without a better proof.
func (s *Set) CurrentTime() time.Time {
	return s.current
}

// Proof returns the lowest proof for id.
func (s *Set) Proof(id identifier.Identifier) Proof {
	if p, ok := s.proofs[id]; ok {
		return p
	}
	return Proof{Token: id, Time: s.current, Type: TypeValidationTime}
}

// Time returns the lowest proven existence time of id.
func (s *Set) Time(id identifier.Identifier) time.Time {
	return s.Proof(id).Time
}

// Source returns the timestamp that provides id's lowest proof.
func (s *Set) Source(id identifier.Identifier) (identifier.Identifier, bool) {
	p := s.Proof(id)
	return p.Source, !p.Source.IsZero()
}

// Proven reports whether id is proven to have existed at or before at.
func (s *Set) Proven(id identifier.Identifier, at time.Time) bool {
	return !s.Time(id).After(at)
}

// Bounds returns the distinct proven times earlier than the current time,
// latest first.
func (s *Set) Bounds() []time.Time {
	seen := make(map[time.Time]bool)
	var out []time.Time
	for _, p := range s.proofs {
		t := p.Time.UTC()
		if !t.Before(s.current) || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].After(out[j]) })
	return out
}

// Len returns the number of tokens with a proof better than the current time.
func (s *Set) Len() int {
	n := 0
	for _, p := range s.proofs {
		if p.Type != TypeValidationTime {
			n++
		}
	}
	return n
}

// Verdict returns the acceptance outcome of timestamp id. It is absent when
// the set was extracted without an acceptor.
func (s *Set) Verdict(id identifier.Identifier) (*checks.Conclusion, bool) {
	c, ok := s.verdicts[id]
	return c, ok
}

// Rejected returns the timestamps whose acceptance did not pass, sorted.
func (s *Set) Rejected() []identifier.Identifier {
	var out []identifier.Identifier
	for id, c := range s.verdicts {
		if !c.IsPassed() {
			out = append(out, id)
		}
	}
	identifier.Sort(out)
	return out
}
