package events

import (
	"errors"
	"testing"

	"github.com/Fayad-nullPointer/VAR-System-AI/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFrameEvent_Significance(t *testing.T) {
	tests := []struct {
		name        string
		label       entity.Label
		significant bool
	}{
		{"goal is significant", "Goal", true},
		{"yellow card is significant", "Yellow_Card", true},
		{"nothing is not significant", entity.Nothing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := BuildFrameEvent(1.0, 1, Classification{Label: tt.label, Confidence: 0.9}, nil)
			assert.Equal(t, tt.significant, ev.Significant)
			assert.Equal(t, tt.label, ev.Label)
			assert.Equal(t, 0.9, ev.Confidence)
		})
	}
}

func TestBuildFrameEvent_ImmediateDuplicateFlags(t *testing.T) {
	// [A, A, nothing, A] must flag [false, true, false, false]
	labels := []entity.Label{"Goal", "Goal", entity.Nothing, "Goal"}
	want := []bool{false, true, false, false}

	var history []entity.FrameEvent
	for i, l := range labels {
		ev := BuildFrameEvent(float64(i), i, Classification{Label: l, Confidence: 0.5}, history)
		history = append(history, ev)
	}

	require.Len(t, history, 4)
	for i, ev := range history {
		assert.Equal(t, want[i], ev.ImmediateDuplicate, "frame %d", i)
	}
}

func TestBuildFrameEvent_RepeatedNothingIsNotDuplicate(t *testing.T) {
	history := []entity.FrameEvent{
		BuildFrameEvent(0.0, 0, Classification{Label: entity.Nothing}, nil),
	}
	ev := BuildFrameEvent(1.0, 1, Classification{Label: entity.Nothing}, history)
	assert.False(t, ev.ImmediateDuplicate)
}

func TestBuildFrameEvent_DoesNotMutateHistory(t *testing.T) {
	history := []entity.FrameEvent{
		BuildFrameEvent(0.0, 0, Classification{Label: "Goal", Confidence: 0.8}, nil),
	}
	snapshot := history[0]

	_ = BuildFrameEvent(1.0, 1, Classification{Label: "Goal", Confidence: 0.7}, history)
	assert.Equal(t, snapshot, history[0])
}

func TestBuildFailedFrameEvent(t *testing.T) {
	ev := BuildFailedFrameEvent(2.0, 2, errors.New("connection refused"))

	assert.Equal(t, entity.Nothing, ev.Label)
	assert.Equal(t, 0.0, ev.Confidence)
	assert.False(t, ev.Significant)
	assert.Equal(t, "connection refused", ev.ClassifierError)
	assert.True(t, ev.Failed())
}
