package entity

import "strings"

// Label is one category from the configured classifier label set.
type Label string

// Nothing is the reserved null label: a frame on which the classifier
// saw no match event.
const Nothing Label = "nothing"

func (l Label) IsNothing() bool {
	return l == Nothing
}

// LabelSet is the closed enumeration of labels the classifier may
// emit. It always contains Nothing.
type LabelSet struct {
	labels map[Label]struct{}
}

func NewLabelSet(labels []string) *LabelSet {
	set := &LabelSet{labels: make(map[Label]struct{}, len(labels)+1)}
	for _, l := range labels {
		set.labels[Label(strings.TrimSpace(l))] = struct{}{}
	}
	set.labels[Nothing] = struct{}{}
	return set
}

func (s *LabelSet) Contains(l Label) bool {
	_, ok := s.labels[l]
	return ok
}

func (s *LabelSet) Len() int {
	return len(s.labels)
}

// Normalize maps a raw classifier output onto the set. Labels outside
// the enumeration degrade to Nothing rather than polluting the stream.
func (s *LabelSet) Normalize(raw string) Label {
	l := Label(strings.TrimSpace(raw))
	if l == "" || !s.Contains(l) {
		return Nothing
	}
	return l
}

// FrameEvent is one classifier result, timestamped and flagged, before
// reduction. Instances are immutable once built.
type FrameEvent struct {
	Timestamp  float64 `json:"timestamp"`
	FrameIndex int     `json:"frame_index"`
	Label      Label   `json:"label"`
	Confidence float64 `json:"confidence"`

	// Significant mirrors the classifier contract: every non-nothing
	// label counts, no confidence threshold is applied.
	Significant bool `json:"significant"`

	// ImmediateDuplicate marks a frame whose label repeats the
	// directly preceding frame's non-nothing label. Display only; the
	// reducer does not consult it.
	ImmediateDuplicate bool `json:"is_immediate_duplicate"`

	// ClassifierError carries the error detail when the classification
	// call failed and the frame was recovered as Nothing.
	ClassifierError string `json:"classifier_error,omitempty"`
}

func (e FrameEvent) Failed() bool {
	return e.ClassifierError != ""
}
