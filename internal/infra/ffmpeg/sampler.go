package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Fayad-nullPointer/VAR-System-AI/internal/domain/port"
	"go.uber.org/zap"
)

// Sampler lifts frames out of a video at a fixed time interval,
// optionally downscaling them to a target width.
type Sampler struct {
	interval    float64
	resizeWidth int
	format      string
	logger      *zap.Logger
}

func NewSampler(interval float64, resizeWidth int, format string, logger *zap.Logger) *Sampler {
	return &Sampler{interval: interval, resizeWidth: resizeWidth, format: format, logger: logger}
}

func (s *Sampler) SampleFrames(ctx context.Context, videoPath string, outputDir string) (*port.FrameSampleResult, error) {
	duration, err := s.getVideoDuration(ctx, videoPath)
	if err != nil {
		s.logger.Warn("could not get video duration", zap.Error(err))
	}

	filters := []string{fmt.Sprintf("fps=1/%g", s.interval)}
	if s.resizeWidth > 0 {
		// -2 keeps the aspect ratio and an even height for the encoder.
		filters = append(filters, fmt.Sprintf("scale=%d:-2", s.resizeWidth))
	}

	framePattern := filepath.Join(outputDir, fmt.Sprintf("frame_%%06d.%s", s.format))
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", videoPath,
		"-vf", strings.Join(filters, ","),
		"-y",
		framePattern,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg error: %w, output: %s", err, string(output))
	}

	globPattern := filepath.Join(outputDir, fmt.Sprintf("*.%s", s.format))
	paths, err := filepath.Glob(globPattern)
	if err != nil {
		return nil, fmt.Errorf("glob frames: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no frames sampled from video")
	}
	sort.Strings(paths)

	frames := make([]port.SampledFrame, 0, len(paths))
	for i, p := range paths {
		frames = append(frames, port.SampledFrame{
			Path:       p,
			FrameIndex: i,
			Timestamp:  float64(i) * s.interval,
		})
	}

	s.logger.Info("frames sampled",
		zap.Int("count", len(frames)),
		zap.Float64("interval_seconds", s.interval),
		zap.Float64("video_duration", duration),
	)

	return &port.FrameSampleResult{
		Frames:        frames,
		VideoDuration: duration,
	}, nil
}

func (s *Sampler) getVideoDuration(ctx context.Context, videoPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath,
	)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}

	durationStr := strings.TrimSpace(string(output))
	duration, err := strconv.ParseFloat(durationStr, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}
	return duration, nil
}
