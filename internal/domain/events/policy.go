// Package events holds the event-stream reduction core: the policy
// table, the per-frame stream builder, the reducer that collapses the
// noisy frame stream into a match timeline, and the summary
// aggregator. Everything here is pure; no I/O, no clocks.
package events

import (
	"github.com/Fayad-nullPointer/VAR-System-AI/internal/domain/entity"
)

// Rule describes how repeated detections of one label fold into the
// timeline. Singleton labels (the default) keep their first occurrence
// only; repeatable labels keep every occurrence, numbered in order,
// with optional per-occurrence notes.
type Rule struct {
	Repeatable bool
	// Notes maps a 1-based occurrence index to a domain note attached
	// to that timeline entry.
	Notes map[int]string
}

// Policy is the table driving the reducer's multiplicity handling.
// Labels absent from the table are singletons.
type Policy struct {
	rules map[entity.Label]Rule
}

func NewPolicy(rules map[entity.Label]Rule) *Policy {
	p := &Policy{rules: make(map[entity.Label]Rule, len(rules))}
	for l, r := range rules {
		p.rules[l] = r
	}
	return p
}

// DefaultPolicy covers the card family: yellow cards accumulate, and
// the second one carries the red-card escalation note.
func DefaultPolicy() *Policy {
	return NewPolicy(map[entity.Label]Rule{
		"Yellow_Card": {
			Repeatable: true,
			Notes:      map[int]string{2: "second yellow = red card"},
		},
	})
}

// WithRepeatable returns a copy of the policy with the given labels
// added as repeatable (no notes). Used to fold configuration into the
// default table.
func (p *Policy) WithRepeatable(labels ...entity.Label) *Policy {
	next := NewPolicy(p.rules)
	for _, l := range labels {
		if _, ok := next.rules[l]; !ok {
			next.rules[l] = Rule{Repeatable: true}
		}
	}
	return next
}

func (p *Policy) IsRepeatable(l entity.Label) bool {
	return p.rules[l].Repeatable
}

// NoteFor returns the note for the nth occurrence of a repeatable
// label, if the table defines one.
func (p *Policy) NoteFor(l entity.Label, occurrence int) (string, bool) {
	note, ok := p.rules[l].Notes[occurrence]
	return note, ok
}
