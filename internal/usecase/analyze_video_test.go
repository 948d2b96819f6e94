package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/Fayad-nullPointer/VAR-System-AI/internal/domain/entity"
	"github.com/Fayad-nullPointer/VAR-System-AI/internal/domain/events"
	"github.com/Fayad-nullPointer/VAR-System-AI/internal/domain/port"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRepo struct {
	mu      sync.Mutex
	jobs    map[uuid.UUID]*entity.Job
	summary *entity.Summary
	stats   *entity.Stats
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{jobs: make(map[uuid.UUID]*entity.Job)}
}

func (r *fakeRepo) Create(_ context.Context, job *entity.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *fakeRepo) Update(_ context.Context, job *entity.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *job
	return &cp, nil
}

func (r *fakeRepo) SaveResult(_ context.Context, _ uuid.UUID, summary *entity.Summary, stats *entity.Stats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summary = summary
	r.stats = stats
	return nil
}

type fakeStorage struct {
	downloadErr error
	uploaded    map[string][]byte
}

func (s *fakeStorage) DownloadVideo(_ context.Context, _ string, _ string) error {
	return s.downloadErr
}

func (s *fakeStorage) UploadSummary(_ context.Context, key string, reader io.Reader, _ int64) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	if s.uploaded == nil {
		s.uploaded = make(map[string][]byte)
	}
	s.uploaded[key] = data
	return nil
}

type fakeSampler struct {
	frames []port.SampledFrame
	err    error
}

func (s *fakeSampler) SampleFrames(_ context.Context, _ string, _ string) (*port.FrameSampleResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &port.FrameSampleResult{Frames: s.frames, VideoDuration: float64(len(s.frames))}, nil
}

// scriptedClassifier returns one scripted result per call, in order.
type scriptedClassifier struct {
	results []func() (*port.ClassifierResult, error)
	calls   int
}

func (c *scriptedClassifier) ClassifyFrame(_ context.Context, _ string) (*port.ClassifierResult, error) {
	if c.calls >= len(c.results) {
		return &port.ClassifierResult{Label: entity.Nothing}, nil
	}
	fn := c.results[c.calls]
	c.calls++
	return fn()
}

func classify(label entity.Label, conf float64) func() (*port.ClassifierResult, error) {
	return func() (*port.ClassifierResult, error) {
		return &port.ClassifierResult{Label: label, Confidence: conf}, nil
	}
}

func classifyErr(msg string) func() (*port.ClassifierResult, error) {
	return func() (*port.ClassifierResult, error) {
		return nil, errors.New(msg)
	}
}

type fakePublisher struct {
	mu       sync.Mutex
	statuses [][]byte
	dlq      [][]byte
}

func (p *fakePublisher) PublishStatus(_ context.Context, msg []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statuses = append(p.statuses, msg)
	return nil
}

func (p *fakePublisher) PublishToDLQ(_ context.Context, msg []byte, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dlq = append(p.dlq, msg)
	return nil
}

type fakeNotifier struct {
	notified []string
}

func (n *fakeNotifier) NotifyFailure(_ context.Context, userEmail, _, _, _ string) error {
	n.notified = append(n.notified, userEmail)
	return nil
}

func sampledFrames(n int) []port.SampledFrame {
	frames := make([]port.SampledFrame, n)
	for i := range frames {
		frames[i] = port.SampledFrame{
			Path:       fmt.Sprintf("/tmp/frame_%06d.jpg", i),
			FrameIndex: i,
			Timestamp:  float64(i),
		}
	}
	return frames
}

func newTestUseCase(t *testing.T, repo *fakeRepo, storage *fakeStorage, sampler *fakeSampler, classifier port.FrameClassifier, pub *fakePublisher, notifier *fakeNotifier, maxRetries int) *AnalyzeVideoUseCase {
	t.Helper()
	return NewAnalyzeVideoUseCase(
		repo, storage, storage, sampler, classifier,
		events.NewReducer(nil),
		pub, pub, notifier,
		zap.NewNop(),
		AnalyzeVideoConfig{TempDir: t.TempDir(), MaxRetries: maxRetries},
	)
}

func analysisMessage(t *testing.T) (entity.VideoAnalysisMessage, []byte) {
	t.Helper()
	msg := entity.VideoAnalysisMessage{
		JobID:     uuid.New(),
		UserID:    "user-1",
		VideoKey:  "user-1/match.mp4",
		FileSize:  2048,
		UserEmail: "fan@example.com",
	}
	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	return msg, raw
}

func TestExecute_HappyPath(t *testing.T) {
	repo := newFakeRepo()
	storage := &fakeStorage{}
	sampler := &fakeSampler{frames: sampledFrames(5)}
	classifier := &scriptedClassifier{results: []func() (*port.ClassifierResult, error){
		classify(entity.Nothing, 0.1),
		classify("Goal", 0.9),
		classify("Goal", 0.8),
		classify("Yellow_Card", 0.7),
		classify("Yellow_Card", 0.6),
	}}
	pub := &fakePublisher{}
	notifier := &fakeNotifier{}

	uc := newTestUseCase(t, repo, storage, sampler, classifier, pub, notifier, 3)

	msg, raw := analysisMessage(t)
	require.NoError(t, uc.Execute(context.Background(), raw))

	job, err := repo.FindByID(context.Background(), msg.JobID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusCompleted, job.Status)
	assert.Equal(t, 5, job.FrameCount)
	assert.Equal(t, 3, job.EventCount)

	resultKey := fmt.Sprintf("user-1/analysis_%s.json", msg.JobID)
	require.Contains(t, storage.uploaded, resultKey)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(storage.uploaded[resultKey], &doc))
	require.Contains(t, doc, "video_info")
	require.Contains(t, doc, "events_detected")

	var timeline []entity.TimelineEntry
	require.NoError(t, json.Unmarshal(doc["events_detected"], &timeline))
	require.Len(t, timeline, 3)
	assert.Equal(t, "Goal", timeline[0].EventLabel)
	assert.Equal(t, "Yellow_Card_1", timeline[1].EventLabel)
	assert.Equal(t, "Yellow_Card_2", timeline[2].EventLabel)
	assert.Equal(t, "second yellow = red card", timeline[2].Note)

	require.Len(t, pub.statuses, 1)
	assert.Empty(t, pub.dlq)
	assert.Empty(t, notifier.notified)
}

func TestExecute_ClassifierFailureMidRunRecovers(t *testing.T) {
	repo := newFakeRepo()
	storage := &fakeStorage{}
	sampler := &fakeSampler{frames: sampledFrames(5)}
	classifier := &scriptedClassifier{results: []func() (*port.ClassifierResult, error){
		classify("Goal", 0.9),
		classifyErr("timeout"),
		classify(entity.Nothing, 0.1),
		classify("offside", 0.8),
		classify(entity.Nothing, 0.2),
	}}
	pub := &fakePublisher{}

	uc := newTestUseCase(t, repo, storage, sampler, classifier, pub, &fakeNotifier{}, 3)

	msg, raw := analysisMessage(t)
	require.NoError(t, uc.Execute(context.Background(), raw))

	job, err := repo.FindByID(context.Background(), msg.JobID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusCompleted, job.Status)
	// All five frames survive; the failed one degrades to nothing.
	assert.Equal(t, 5, job.FrameCount)
	assert.Equal(t, 2, job.EventCount)

	require.NotNil(t, repo.stats)
	assert.Equal(t, 1, repo.stats.FailedFrames)
	assert.Equal(t, 3, repo.stats.EventCounts[entity.Nothing])
}

func TestExecute_SamplingFailureIsRetryable(t *testing.T) {
	repo := newFakeRepo()
	storage := &fakeStorage{}
	sampler := &fakeSampler{err: errors.New("cannot open video")}
	pub := &fakePublisher{}

	uc := newTestUseCase(t, repo, storage, sampler, &scriptedClassifier{}, pub, &fakeNotifier{}, 3)

	msg, raw := analysisMessage(t)
	err := uc.Execute(context.Background(), raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sample_frames")

	job, findErr := repo.FindByID(context.Background(), msg.JobID)
	require.NoError(t, findErr)
	assert.Equal(t, entity.JobStatusFailed, job.Status)
	assert.Empty(t, storage.uploaded)
	assert.Empty(t, pub.dlq)
}

func TestExecute_ExhaustedRetriesGoToDLQAndNotify(t *testing.T) {
	repo := newFakeRepo()
	storage := &fakeStorage{downloadErr: errors.New("object not found")}
	pub := &fakePublisher{}
	notifier := &fakeNotifier{}

	uc := newTestUseCase(t, repo, storage, &fakeSampler{}, &scriptedClassifier{}, pub, notifier, 1)

	msg, raw := analysisMessage(t)
	// Single allowed attempt fails permanently.
	require.NoError(t, uc.Execute(context.Background(), raw))

	job, err := repo.FindByID(context.Background(), msg.JobID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusFailed, job.Status)
	require.Len(t, pub.dlq, 1)
	assert.Equal(t, []string{"fan@example.com"}, notifier.notified)
}

func TestExecute_MalformedMessageGoesToDLQ(t *testing.T) {
	repo := newFakeRepo()
	pub := &fakePublisher{}

	uc := newTestUseCase(t, repo, &fakeStorage{}, &fakeSampler{}, &scriptedClassifier{}, pub, &fakeNotifier{}, 3)

	require.NoError(t, uc.Execute(context.Background(), []byte("{not json")))
	require.Len(t, pub.dlq, 1)
}
