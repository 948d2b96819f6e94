package port

import (
	"context"

	"github.com/Fayad-nullPointer/VAR-System-AI/internal/domain/entity"
	"github.com/google/uuid"
)

type JobRepository interface {
	Create(ctx context.Context, job *entity.Job) error
	Update(ctx context.Context, job *entity.Job) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Job, error)
	SaveResult(ctx context.Context, jobID uuid.UUID, summary *entity.Summary, stats *entity.Stats) error
}
