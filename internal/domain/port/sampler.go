package port

import "context"

// SampledFrame is one frame lifted out of the video at a fixed
// interval. Timestamps are strictly increasing in the returned slice.
type SampledFrame struct {
	Path       string
	FrameIndex int
	Timestamp  float64
}

type FrameSampleResult struct {
	Frames        []SampledFrame
	VideoDuration float64
}

type FrameSampler interface {
	SampleFrames(ctx context.Context, videoPath string, outputDir string) (*FrameSampleResult, error)
}
