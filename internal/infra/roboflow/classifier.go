package roboflow

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/Fayad-nullPointer/VAR-System-AI/internal/domain/entity"
	"github.com/Fayad-nullPointer/VAR-System-AI/internal/domain/port"
	"go.uber.org/zap"
)

// Classifier calls the Roboflow hosted classification API for a single
// frame image. It maps any label outside the configured set to the
// null label rather than letting unknown classes into the stream.
type Classifier struct {
	endpoint string
	apiKey   string
	model    string
	version  int
	labels   *entity.LabelSet
	client   *http.Client
	logger   *zap.Logger
}

type Config struct {
	Endpoint string
	APIKey   string
	Model    string
	Version  int
	Timeout  time.Duration
}

func NewClassifier(cfg Config, labels *entity.LabelSet, logger *zap.Logger) *Classifier {
	return &Classifier{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		version:  cfg.Version,
		labels:   labels,
		client:   &http.Client{Timeout: cfg.Timeout},
		logger:   logger,
	}
}

// inferenceResponse mirrors the hosted classification API payload. The
// top-level prediction either carries a "top" class directly or nests
// per-class scores.
type inferenceResponse struct {
	Predictions []prediction `json:"predictions"`
}

type prediction struct {
	Top         string       `json:"top"`
	Confidence  float64      `json:"confidence"`
	Predictions []classScore `json:"predictions"`
}

type classScore struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
}

func (c *Classifier) ClassifyFrame(ctx context.Context, imagePath string) (*port.ClassifierResult, error) {
	img, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}

	reqURL := fmt.Sprintf("%s/%s/%d?api_key=%s",
		c.endpoint, c.model, c.version, url.QueryEscape(c.apiKey))

	body := base64.StdEncoding.EncodeToString(img)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classify frame: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classifier returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed inferenceResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	label, confidence := c.pickBest(parsed)
	return &port.ClassifierResult{
		Label:      c.labels.Normalize(label),
		Confidence: confidence,
	}, nil
}

// pickBest prefers the model's "top" class; older model versions only
// return the nested per-class scores, so fall back to the highest one.
func (c *Classifier) pickBest(resp inferenceResponse) (string, float64) {
	if len(resp.Predictions) == 0 {
		return string(entity.Nothing), 0.0
	}

	pred := resp.Predictions[0]
	if pred.Top != "" {
		return pred.Top, pred.Confidence
	}

	if len(pred.Predictions) > 0 {
		best := pred.Predictions[0]
		for _, cs := range pred.Predictions[1:] {
			if cs.Confidence > best.Confidence {
				best = cs
			}
		}
		return best.Class, best.Confidence
	}

	return string(entity.Nothing), 0.0
}
