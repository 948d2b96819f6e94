package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "varai_jobs_processed_total",
		Help: "Total number of analysis jobs processed, by status",
	}, []string{"status"})

	JobProcessingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "varai_job_processing_duration_seconds",
		Help:    "Duration of video analysis pipeline stages",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"stage"})

	FramesSampledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "varai_frames_sampled_total",
		Help: "Total number of frames sampled across all jobs",
	})

	FramesClassifiedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "varai_frames_classified_total",
		Help: "Total number of frames classified, by outcome",
	}, []string{"outcome"})

	EventsDetectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "varai_events_detected_total",
		Help: "Total number of timeline events detected, by label",
	}, []string{"label"})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "varai_active_workers",
		Help: "Number of currently active workers processing jobs",
	})

	RetryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "varai_retry_total",
		Help: "Total number of retries",
	}, []string{"attempt"})
)
