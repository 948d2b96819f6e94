package entity

// TimelineEntry is one deduplicated match event. EventLabel may carry
// an occurrence suffix for repeatable labels ("Yellow_Card_2").
type TimelineEntry struct {
	EventLabel string  `json:"event"`
	Timestamp  float64 `json:"timestamp"`
	Note       string  `json:"note,omitempty"`
}

// VideoInfo is the source metadata block of a Summary.
type VideoInfo struct {
	Filename    string `json:"filename"`
	ProcessedAt string `json:"processed_at"`
}

// Summary is the terminal analysis artifact. Its JSON shape is the
// contract with downstream consumers and must not grow extra fields.
type Summary struct {
	VideoInfo      VideoInfo       `json:"video_info"`
	EventsDetected []TimelineEntry `json:"events_detected"`
}

// Stats holds the per-label aggregates computed alongside a Summary.
// They are reported and persisted separately and never merged into the
// summary document.
type Stats struct {
	EventCounts        map[Label]int     `json:"event_counts"`
	AverageConfidences map[Label]float64 `json:"average_confidences"`
	TotalFrames        int               `json:"total_frames"`
	TotalDetections    int               `json:"total_detections"`
	FailedFrames       int               `json:"failed_frames"`
}
