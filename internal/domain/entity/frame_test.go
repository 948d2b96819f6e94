package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabelSet_Normalize(t *testing.T) {
	set := NewLabelSet([]string{"Yellow_Card", "Goal", "offside", "nothing"})

	tests := []struct {
		raw  string
		want Label
	}{
		{"Goal", "Goal"},
		{" Goal ", "Goal"},
		{"Yellow_Card", "Yellow_Card"},
		{"nothing", Nothing},
		{"Corner_Kick", Nothing}, // outside the enumeration
		{"", Nothing},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, set.Normalize(tt.raw), "raw=%q", tt.raw)
	}
}

func TestLabelSet_AlwaysContainsNothing(t *testing.T) {
	set := NewLabelSet([]string{"Goal"})
	assert.True(t, set.Contains(Nothing))
	assert.Equal(t, 2, set.Len())
}
