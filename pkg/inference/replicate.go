package inference

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/replicate/replicate-go"
	log "github.com/sirupsen/logrus"

	"herotime/internal/config"
	"herotime/pkg/utils"
)

const maxDownloadBytes = 64 << 20

// ErrPredictionFailed is returned when the provider finishes a prediction as failed or canceled.
var ErrPredictionFailed = errors.New("prediction failed")

// StatusError is an HTTP-level rejection from the inference provider.
type StatusError struct {
	Status int
	Title  string
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("inference provider returned %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("inference provider returned %d", e.Status)
}

// Request is the model input for one hero image.
type Request struct {
	Size        string
	Width       int
	Height      int
	AspectRatio string
	Prompt      string
	ImageInput  []string
}

type Prediction struct {
	ID     string
	Status string
	Output Output
	Error  string

	raw *replicate.Prediction
}

type Client interface {
	Submit(ctx context.Context, req Request) (*Prediction, error)
	// Wait blocks until the prediction reaches a terminal state or the wait budget is spent.
	Wait(ctx context.Context, prediction *Prediction) (*Prediction, error)
	Download(ctx context.Context, url string) ([]byte, error)
}

type replicateClient struct {
	api         *replicate.Client
	owner       string
	name        string
	maxDuration time.Duration
	httpClient  *http.Client
}

// NewReplicateClient builds the inference client. A missing API key is not an error here;
// every call then fails with utils.ErrProviderNotConfigured.
func NewReplicateClient(cfg config.ReplicateConfig) (Client, error) {
	owner, name, ok := strings.Cut(cfg.Model, "/")
	if !ok || owner == "" || name == "" {
		return nil, fmt.Errorf("invalid replicate model %q: want owner/name", cfg.Model)
	}

	c := &replicateClient{
		owner:       owner,
		name:        name,
		maxDuration: cfg.MaxDuration,
		httpClient:  &http.Client{Timeout: 2 * time.Minute},
	}

	if cfg.APIKey == "" {
		log.Warn("REPLICATE_API_KEY is not set; image generation is disabled")
		return c, nil
	}

	api, err := replicate.NewClient(replicate.WithToken(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("init replicate client: %w", err)
	}
	c.api = api
	return c, nil
}

func (r *replicateClient) Submit(ctx context.Context, req Request) (*Prediction, error) {
	if r.api == nil {
		return nil, fmt.Errorf("replicate: %w", utils.ErrProviderNotConfigured)
	}

	input := replicate.PredictionInput{
		"size":                        req.Size,
		"width":                       req.Width,
		"height":                      req.Height,
		"prompt":                      req.Prompt,
		"max_images":                  1,
		"image_input":                 req.ImageInput,
		"aspect_ratio":                req.AspectRatio,
		"sequential_image_generation": "disabled",
	}

	prediction, err := r.api.CreatePredictionWithModel(ctx, r.owner, r.name, input, nil, false)
	if err != nil {
		return nil, fmt.Errorf("create prediction: %w", translateError(err))
	}
	return fromReplicate(prediction), nil
}

func (r *replicateClient) Wait(ctx context.Context, prediction *Prediction) (*Prediction, error) {
	if r.api == nil {
		return nil, fmt.Errorf("replicate: %w", utils.ErrProviderNotConfigured)
	}
	if prediction == nil || prediction.raw == nil {
		return nil, errors.New("wait: prediction was not submitted by this client")
	}

	if r.maxDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.maxDuration)
		defer cancel()
	}

	if err := r.api.Wait(ctx, prediction.raw); err != nil {
		return nil, fmt.Errorf("wait for prediction %s: %w", prediction.ID, translateError(err))
	}

	done := fromReplicate(prediction.raw)
	switch prediction.raw.Status {
	case replicate.Failed, replicate.Canceled:
		return done, fmt.Errorf("%w: %s (%s)", ErrPredictionFailed, done.Error, done.Status)
	}
	return done, nil
}

func (r *replicateClient) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("download %s: unexpected status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return nil, fmt.Errorf("read download body: %w", err)
	}
	return data, nil
}

func fromReplicate(p *replicate.Prediction) *Prediction {
	out := &Prediction{
		ID:     p.ID,
		Status: string(p.Status),
		Output: ParseOutput(p.Output),
		raw:    p,
	}
	if p.Error != nil {
		out.Error = fmt.Sprint(p.Error)
	}
	return out
}

func translateError(err error) error {
	var apiErr *replicate.APIError
	if errors.As(err, &apiErr) {
		return &StatusError{Status: apiErr.Status, Title: apiErr.Title, Detail: apiErr.Detail}
	}
	return err
}
