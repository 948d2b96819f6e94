package events

import (
	"time"

	"github.com/Fayad-nullPointer/VAR-System-AI/internal/domain/entity"
)

// Aggregate assembles the terminal Summary from the full frame stream
// and the reduced timeline, along with the per-label statistics used
// for reporting. Counts cover every frame, the Nothing label included;
// average confidences are arithmetic means over the frames carrying
// each label and are simply absent for labels that never occurred.
func Aggregate(filename string, processedAt time.Time, frames []entity.FrameEvent, timeline []entity.TimelineEntry) (entity.Summary, entity.Stats) {
	stats := entity.Stats{
		EventCounts:        make(map[entity.Label]int),
		AverageConfidences: make(map[entity.Label]float64),
		TotalFrames:        len(frames),
	}

	confidenceSums := make(map[entity.Label]float64)
	for _, f := range frames {
		stats.EventCounts[f.Label]++
		confidenceSums[f.Label] += f.Confidence
		if !f.Label.IsNothing() {
			stats.TotalDetections++
		}
		if f.Failed() {
			stats.FailedFrames++
		}
	}

	for label, sum := range confidenceSums {
		stats.AverageConfidences[label] = sum / float64(stats.EventCounts[label])
	}

	summary := entity.Summary{
		VideoInfo: entity.VideoInfo{
			Filename:    filename,
			ProcessedAt: processedAt.Format(time.RFC3339),
		},
		EventsDetected: timeline,
	}

	return summary, stats
}
