package events

import "github.com/Fayad-nullPointer/VAR-System-AI/internal/domain/entity"

// Classification is a single classifier verdict for one frame.
type Classification struct {
	Label      entity.Label
	Confidence float64
}

// BuildFrameEvent turns one classification into a FrameEvent, flagging
// significance and immediate duplication against the trailing history.
// It is a pure function of the classification and the previously built
// events; history is never mutated.
func BuildFrameEvent(timestamp float64, frameIndex int, c Classification, history []entity.FrameEvent) entity.FrameEvent {
	ev := entity.FrameEvent{
		Timestamp:   timestamp,
		FrameIndex:  frameIndex,
		Label:       c.Label,
		Confidence:  c.Confidence,
		Significant: !c.Label.IsNothing(),
	}

	if len(history) > 0 {
		prev := history[len(history)-1]
		ev.ImmediateDuplicate = prev.Label == ev.Label && !ev.Label.IsNothing()
	}

	return ev
}

// BuildFailedFrameEvent records a frame whose classification call
// failed. The frame degrades to Nothing with the error detail attached
// so that a single bad call never breaks stream construction.
func BuildFailedFrameEvent(timestamp float64, frameIndex int, callErr error) entity.FrameEvent {
	return entity.FrameEvent{
		Timestamp:       timestamp,
		FrameIndex:      frameIndex,
		Label:           entity.Nothing,
		Confidence:      0.0,
		ClassifierError: callErr.Error(),
	}
}
