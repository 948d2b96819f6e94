package port

import (
	"context"

	"github.com/Fayad-nullPointer/VAR-System-AI/internal/domain/entity"
)

// ClassifierResult is one label-plus-confidence verdict for a frame.
type ClassifierResult struct {
	Label      entity.Label
	Confidence float64
}

// FrameClassifier labels a single frame image. Calls may fail
// transiently; callers are expected to recover per frame.
type FrameClassifier interface {
	ClassifyFrame(ctx context.Context, imagePath string) (*ClassifierResult, error)
}
