package poe

import (
	"time"

	"github.com/georgepadayatti/adesvalidator/checks"
	"github.com/georgepadayatti/adesvalidator/identifier"
	"github.com/georgepadayatti/adesvalidator/token"
)

// Acceptor decides whether a timestamp may prove the existence of what it
// covers. proven is the timestamp's own proven time, taken from external
// proofs and the accepted timestamps covering it.
type Acceptor func(ts *token.TimestampToken, proven time.Time) *checks.Conclusion

type extractor struct {
	graph    *token.Graph
	current  time.Time
	acceptor Acceptor
	external map[identifier.Identifier]Proof
	memo     map[identifier.Identifier]Proof
	accepted map[identifier.Identifier]bool
	verdicts map[identifier.Identifier]*checks.Conclusion
}

// Extract computes the proof-of-existence set of a graph at current time.
// A timestamp proves existence only if its signature is intact and accept,
// when not nil, passes it. External proofs lower the proven time of the
// tokens they name and flow on to whatever those tokens cover.
//
// Cyclic timestamp coverage is reported as a *token.IntegrityError.
func Extract(g *token.Graph, current time.Time, accept Acceptor, external ...Proof) (*Set, error) {
	if err := checkAcyclic(g); err != nil {
		return nil, err
	}

	e := &extractor{
		graph:    g,
		current:  current,
		acceptor: accept,
		external: make(map[identifier.Identifier]Proof),
		memo:     make(map[identifier.Identifier]Proof),
		accepted: make(map[identifier.Identifier]bool),
		verdicts: make(map[identifier.Identifier]*checks.Conclusion),
	}
	for _, p := range external {
		p.Type = TypeExternal
		if prev, ok := e.external[p.Token]; !ok || p.Time.Before(prev.Time) {
			e.external[p.Token] = p
		}
	}

	ids := identifier.NewSet()
	for _, c := range g.Certificates() {
		ids.Add(c.ID)
	}
	for _, r := range g.Revocations() {
		ids.Add(r.ID)
	}
	for _, s := range g.Signatures() {
		ids.Add(s.ID)
	}
	for _, ts := range g.Timestamps() {
		ids.Add(ts.ID)
		for _, covered := range ts.Covered {
			ids.Add(covered)
		}
	}
	for id := range e.external {
		ids.Add(id)
	}

	set := &Set{
		current:  current,
		proofs:   make(map[identifier.Identifier]Proof, len(ids)),
		verdicts: e.verdicts,
	}
	for _, id := range ids.Sorted() {
		set.proofs[id] = e.proof(id)
	}
	return set, nil
}

// proof returns the lowest proof for id. Termination relies on checkAcyclic.
func (e *extractor) proof(id identifier.Identifier) Proof {
	if p, ok := e.memo[id]; ok {
		return p
	}

	best := Proof{Token: id, Time: e.current, Type: TypeValidationTime}
	if ext, ok := e.external[id]; ok {
		best = lower(best, ext)
	}
	for _, ts := range e.graph.CoveringTimestamps(id) {
		p := e.proof(ts.ID)
		if !e.accepted[ts.ID] {
			continue
		}
		p.Token = id
		best = lower(best, p)
	}
	// A timestamp's own production time wins ties.
	if ts, ok := e.graph.Timestamp(id); ok && e.accept(ts, best.Time) {
		best = lower(Proof{Token: id, Time: ts.ProductionTime, Type: TypeTimestamp, Source: id}, best)
	}

	e.memo[id] = best
	return best
}

func (e *extractor) accept(ts *token.TimestampToken, proven time.Time) bool {
	ok := ts.SignatureValid
	if e.acceptor != nil {
		verdict := e.acceptor(ts, proven)
		e.verdicts[ts.ID] = verdict
		ok = ok && verdict.IsPassed()
	}
	e.accepted[ts.ID] = ok
	return ok
}

// lower keeps the earlier proof, preferring the incumbent on ties.
func lower(cur, candidate Proof) Proof {
	if candidate.Time.Before(cur.Time) {
		return candidate
	}
	return cur
}

// checkAcyclic rejects graphs where a timestamp transitively covers itself.
func checkAcyclic(g *token.Graph) error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[identifier.Identifier]int)

	var visit func(ts *token.TimestampToken) error
	visit = func(ts *token.TimestampToken) error {
		switch state[ts.ID] {
		case visiting:
			return token.NewIntegrityError(ts.ID, "timestamp coverage is cyclic")
		case done:
			return nil
		}
		state[ts.ID] = visiting
		for _, covered := range ts.Covered {
			inner, ok := g.Timestamp(covered)
			if !ok {
				continue
			}
			if err := visit(inner); err != nil {
				return err
			}
		}
		state[ts.ID] = done
		return nil
	}

	for _, ts := range g.Timestamps() {
		if err := visit(ts); err != nil {
			return err
		}
	}
	return nil
}
