package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobLifecycle(t *testing.T) {
	job := NewJob("user-1", "user-1/match.mp4", 1024, 3)
	require.Equal(t, JobStatusPending, job.Status)
	require.True(t, job.CanRetry())

	job.MarkProcessing()
	assert.Equal(t, JobStatusProcessing, job.Status)
	assert.Equal(t, 1, job.Attempt)

	job.MarkCompleted("user-1/analysis_x.json", 90, 3, 90.0)
	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.Equal(t, 90, job.FrameCount)
	assert.Equal(t, 3, job.EventCount)
	require.NotNil(t, job.CompletedAt)
}

func TestJobRetryExhaustion(t *testing.T) {
	job := NewJob("user-1", "user-1/match.mp4", 1024, 2)

	job.MarkProcessing()
	job.MarkFailed("sample_frames: broken video")
	assert.True(t, job.CanRetry())

	job.MarkProcessing()
	job.MarkFailed("sample_frames: broken video")
	assert.False(t, job.CanRetry())
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "sample_frames: broken video", job.ErrorMessage)
}
