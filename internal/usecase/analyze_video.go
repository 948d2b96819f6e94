package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Fayad-nullPointer/VAR-System-AI/internal/domain/entity"
	"github.com/Fayad-nullPointer/VAR-System-AI/internal/domain/events"
	"github.com/Fayad-nullPointer/VAR-System-AI/internal/domain/port"
	"github.com/Fayad-nullPointer/VAR-System-AI/internal/infra/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type AnalyzeVideoUseCase struct {
	repo       port.JobRepository
	storage    port.VideoStorage
	results    port.ResultStore
	sampler    port.FrameSampler
	classifier port.FrameClassifier
	reducer    *events.Reducer
	publisher  port.StatusPublisher
	dlq        port.DLQPublisher
	notifier   port.FailureNotifier
	logger     *zap.Logger
	tempDir    string
	maxRetry   int
}

type AnalyzeVideoConfig struct {
	TempDir    string
	MaxRetries int
}

func NewAnalyzeVideoUseCase(
	repo port.JobRepository,
	storage port.VideoStorage,
	results port.ResultStore,
	sampler port.FrameSampler,
	classifier port.FrameClassifier,
	reducer *events.Reducer,
	publisher port.StatusPublisher,
	dlq port.DLQPublisher,
	notifier port.FailureNotifier,
	logger *zap.Logger,
	cfg AnalyzeVideoConfig,
) *AnalyzeVideoUseCase {
	return &AnalyzeVideoUseCase{
		repo:       repo,
		storage:    storage,
		results:    results,
		sampler:    sampler,
		classifier: classifier,
		reducer:    reducer,
		publisher:  publisher,
		dlq:        dlq,
		notifier:   notifier,
		logger:     logger,
		tempDir:    cfg.TempDir,
		maxRetry:   cfg.MaxRetries,
	}
}

func (uc *AnalyzeVideoUseCase) Execute(ctx context.Context, rawMsg []byte) error {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "AnalyzeVideoUseCase.Execute")
	defer span.End()

	totalTimer := time.Now()

	var msg entity.VideoAnalysisMessage
	if err := json.Unmarshal(rawMsg, &msg); err != nil {
		uc.logger.Error("failed to unmarshal message", zap.Error(err), zap.ByteString("body", rawMsg))
		_ = uc.dlq.PublishToDLQ(ctx, rawMsg, "unmarshal_error: "+err.Error())
		return nil
	}

	span.SetAttributes(
		attribute.String("job.id", msg.JobID.String()),
		attribute.String("job.video_key", msg.VideoKey),
	)

	log := uc.logger.With(zap.String("job_id", msg.JobID.String()), zap.String("video_key", msg.VideoKey))

	job, err := uc.repo.FindByID(ctx, msg.JobID)
	if err != nil {
		job = entity.NewJob(msg.UserID, msg.VideoKey, msg.FileSize, uc.maxRetry)
		job.ID = msg.JobID
		if err := uc.repo.Create(ctx, job); err != nil {
			log.Error("failed to create job record", zap.Error(err))
			return fmt.Errorf("create job: %w", err)
		}
	}

	if !job.CanRetry() {
		log.Warn("job exhausted retries, sending to DLQ")
		_ = uc.handlePermanentFailure(ctx, job, msg, rawMsg, "max retries exceeded")
		return nil
	}

	job.MarkProcessing()
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to update job to PROCESSING", zap.Error(err))
		return fmt.Errorf("update job: %w", err)
	}

	metrics.ActiveWorkers.Inc()
	defer metrics.ActiveWorkers.Dec()

	if err := uc.analysisPipeline(ctx, job, msg, rawMsg, log); err != nil {
		return err
	}

	metrics.JobsProcessedTotal.WithLabelValues("completed").Inc()
	metrics.JobProcessingDuration.WithLabelValues("total").Observe(time.Since(totalTimer).Seconds())

	return nil
}

func (uc *AnalyzeVideoUseCase) analysisPipeline(
	ctx context.Context,
	job *entity.Job,
	msg entity.VideoAnalysisMessage,
	rawMsg []byte,
	log *zap.Logger,
) error {
	tracer := otel.Tracer("usecase")

	workDir := filepath.Join(uc.tempDir, job.ID.String())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return fmt.Errorf("create workdir: %w", err)
	}
	defer os.RemoveAll(workDir)

	// Download video from storage
	dlStart := time.Now()
	ctx2, spanDl := tracer.Start(ctx, "download_video")
	videoPath := filepath.Join(workDir, "input.mp4")
	if err := uc.storage.DownloadVideo(ctx2, msg.VideoKey, videoPath); err != nil {
		spanDl.End()
		log.Error("failed to download video", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "download_video: "+err.Error(), log)
	}
	spanDl.End()
	metrics.JobProcessingDuration.WithLabelValues("download").Observe(time.Since(dlStart).Seconds())

	// Sample frames at the configured interval. A video that cannot be
	// opened or read fails the whole attempt; there is no partial
	// summary for a broken source.
	smStart := time.Now()
	ctx3, spanSm := tracer.Start(ctx, "sample_frames")
	framesDir := filepath.Join(workDir, "frames")
	if err := os.MkdirAll(framesDir, 0755); err != nil {
		spanSm.End()
		return fmt.Errorf("create frames dir: %w", err)
	}
	sampled, err := uc.sampler.SampleFrames(ctx3, videoPath, framesDir)
	if err != nil {
		spanSm.End()
		log.Error("frame sampling failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "sample_frames: "+err.Error(), log)
	}
	spanSm.End()
	metrics.JobProcessingDuration.WithLabelValues("sample").Observe(time.Since(smStart).Seconds())
	metrics.FramesSampledTotal.Add(float64(len(sampled.Frames)))

	// Classify each frame in playback order
	clStart := time.Now()
	ctx4, spanCl := tracer.Start(ctx, "classify_frames")
	stream, err := uc.buildEventStream(ctx4, sampled.Frames, log)
	spanCl.End()
	if err != nil {
		log.Error("classification run aborted", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "classify_frames: "+err.Error(), log)
	}
	metrics.JobProcessingDuration.WithLabelValues("classify").Observe(time.Since(clStart).Seconds())

	// Reduce to the match timeline and aggregate the summary
	_, spanRd := tracer.Start(ctx, "reduce_events")
	timeline := uc.reducer.Reduce(stream)
	summary, stats := events.Aggregate(filepath.Base(msg.VideoKey), time.Now().UTC(), stream, timeline)
	spanRd.End()

	for _, entry := range timeline {
		metrics.EventsDetectedTotal.WithLabelValues(entry.EventLabel).Inc()
	}

	// Persist: summary JSON to the results bucket, row in postgres
	upStart := time.Now()
	ctx5, spanUp := tracer.Start(ctx, "persist_summary")
	resultKey := fmt.Sprintf("%s/analysis_%s.json", msg.UserID, job.ID.String())
	doc, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		spanUp.End()
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := uc.results.UploadSummary(ctx5, resultKey, bytes.NewReader(doc), int64(len(doc))); err != nil {
		spanUp.End()
		log.Error("summary upload failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "upload_summary: "+err.Error(), log)
	}
	if err := uc.repo.SaveResult(ctx5, job.ID, &summary, &stats); err != nil {
		spanUp.End()
		log.Error("failed to save result row", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "save_result: "+err.Error(), log)
	}
	spanUp.End()
	metrics.JobProcessingDuration.WithLabelValues("persist").Observe(time.Since(upStart).Seconds())

	job.MarkCompleted(resultKey, len(stream), len(timeline), sampled.VideoDuration)
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to update job to COMPLETED", zap.Error(err))
		return fmt.Errorf("update job completed: %w", err)
	}

	uc.publishStatus(ctx, job, log)

	log.Info("analysis completed",
		zap.Int("frame_count", len(stream)),
		zap.Int("events_detected", len(timeline)),
		zap.Int("failed_frames", stats.FailedFrames),
		zap.Float64("duration_secs", sampled.VideoDuration),
		zap.String("result_key", resultKey),
	)

	return nil
}

// buildEventStream classifies frames one at a time, in timestamp
// order. A failed classification degrades that frame to a nothing
// event and the run continues; only context cancellation stops it.
func (uc *AnalyzeVideoUseCase) buildEventStream(ctx context.Context, frames []port.SampledFrame, log *zap.Logger) ([]entity.FrameEvent, error) {
	stream := make([]entity.FrameEvent, 0, len(frames))

	for _, frame := range frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := uc.classifier.ClassifyFrame(ctx, frame.Path)
		if err != nil {
			metrics.FramesClassifiedTotal.WithLabelValues("error").Inc()
			log.Warn("frame classification failed, recording as nothing",
				zap.Int("frame_index", frame.FrameIndex),
				zap.Float64("timestamp", frame.Timestamp),
				zap.Error(err),
			)
			stream = append(stream, events.BuildFailedFrameEvent(frame.Timestamp, frame.FrameIndex, err))
			continue
		}

		metrics.FramesClassifiedTotal.WithLabelValues("ok").Inc()
		ev := events.BuildFrameEvent(frame.Timestamp, frame.FrameIndex, events.Classification{
			Label:      result.Label,
			Confidence: result.Confidence,
		}, stream)

		if ev.Significant {
			log.Debug("event detected",
				zap.String("label", string(ev.Label)),
				zap.Float64("timestamp", ev.Timestamp),
				zap.Float64("confidence", ev.Confidence),
				zap.Bool("immediate_duplicate", ev.ImmediateDuplicate),
			)
		}
		stream = append(stream, ev)
	}

	return stream, nil
}

func (uc *AnalyzeVideoUseCase) handleRetryableFailure(
	ctx context.Context,
	job *entity.Job,
	msg entity.VideoAnalysisMessage,
	rawMsg []byte,
	errMsg string,
	log *zap.Logger,
) error {
	job.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, job)

	if !job.CanRetry() {
		return uc.handlePermanentFailure(ctx, job, msg, rawMsg, errMsg)
	}

	metrics.RetryTotal.WithLabelValues(strconv.Itoa(job.Attempt)).Inc()
	uc.publishStatus(ctx, job, log)

	return fmt.Errorf("retryable failure (attempt %d/%d): %s", job.Attempt, job.MaxAttempts, errMsg)
}

func (uc *AnalyzeVideoUseCase) handlePermanentFailure(
	ctx context.Context,
	job *entity.Job,
	msg entity.VideoAnalysisMessage,
	rawMsg []byte,
	errMsg string,
) error {
	job.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, job)

	_ = uc.dlq.PublishToDLQ(ctx, rawMsg, errMsg)

	uc.publishStatus(ctx, job, uc.logger)

	metrics.JobsProcessedTotal.WithLabelValues("dlq").Inc()

	if msg.UserEmail != "" {
		_ = uc.notifier.NotifyFailure(ctx, msg.UserEmail, job.ID.String(), msg.VideoKey, errMsg)
	}

	return nil
}

func (uc *AnalyzeVideoUseCase) publishStatus(ctx context.Context, job *entity.Job, log *zap.Logger) {
	statusMsg := entity.AnalysisStatusMessage{
		JobID:        job.ID,
		UserID:       job.UserID,
		Status:       job.Status,
		VideoKey:     job.VideoKey,
		ResultKey:    job.ResultKey,
		FrameCount:   job.FrameCount,
		EventCount:   job.EventCount,
		Duration:     job.VideoDuration,
		ErrorMessage: job.ErrorMessage,
		Attempt:      job.Attempt,
		MaxAttempts:  job.MaxAttempts,
	}
	data, _ := json.Marshal(statusMsg)
	if err := uc.publisher.PublishStatus(ctx, data); err != nil {
		log.Error("failed to publish status", zap.Error(err))
	}
}
