package events

import (
	"fmt"

	"github.com/Fayad-nullPointer/VAR-System-AI/internal/domain/entity"
)

// Reducer collapses an ordered FrameEvent stream into the match
// timeline according to its multiplicity policy.
type Reducer struct {
	policy *Policy
}

func NewReducer(policy *Policy) *Reducer {
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &Reducer{policy: policy}
}

// Reduce produces the deduplicated, ordered timeline. Nothing-frames
// are dropped. Singleton labels contribute their first occurrence only,
// label verbatim. Repeatable labels contribute every occurrence as
// "<Label>_<n>", numbered in chronological order, carrying the policy
// note for that occurrence when the table defines one. No temporal
// clustering is performed: adjacent identical detections of a
// repeatable label each count.
//
// The input arrives in strict timestamp order, so a single in-order
// pass yields entries interleaved by first occurrence. An input with
// no detections reduces to an empty timeline.
func (r *Reducer) Reduce(frames []entity.FrameEvent) []entity.TimelineEntry {
	timeline := make([]entity.TimelineEntry, 0)
	seen := make(map[entity.Label]bool)
	occurrences := make(map[entity.Label]int)

	for _, f := range frames {
		if f.Label.IsNothing() {
			continue
		}

		if r.policy.IsRepeatable(f.Label) {
			occurrences[f.Label]++
			n := occurrences[f.Label]
			entry := entity.TimelineEntry{
				EventLabel: fmt.Sprintf("%s_%d", f.Label, n),
				Timestamp:  f.Timestamp,
			}
			if note, ok := r.policy.NoteFor(f.Label, n); ok {
				entry.Note = note
			}
			timeline = append(timeline, entry)
			continue
		}

		if seen[f.Label] {
			continue
		}
		seen[f.Label] = true
		timeline = append(timeline, entity.TimelineEntry{
			EventLabel: string(f.Label),
			Timestamp:  f.Timestamp,
		})
	}

	return timeline
}
