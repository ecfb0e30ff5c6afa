package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/geordievannese/garuda-calculator/server/internal/metrics"
	"github.com/geordievannese/garuda-calculator/server/internal/models"

	"go.uber.org/zap"
)

// ServerError is returned when the prediction endpoint cannot be reached or answers
// with a non-2xx status. StatusCode is 0 for transport failures.
type ServerError struct {
	StatusCode int
	Err        error
}

func (e *ServerError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("prediction request failed: %v", e.Err)
	}
	return fmt.Sprintf("prediction endpoint returned status %d", e.StatusCode)
}

func (e *ServerError) Unwrap() error { return e.Err }

// IsServerError reports whether err is, or wraps, a *ServerError.
func IsServerError(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}

// Predictor sends a predictor record to the scoring endpoint.
type Predictor interface {
	Predict(ctx context.Context, record models.PredictorRecord) (*models.PredictionResponse, error)
}

// PredictorClient calls POST <url> with the record as a JSON body.
type PredictorClient struct {
	log        *zap.Logger
	url        string
	httpClient *http.Client
	timeout    func() time.Duration
	metrics    *metrics.Registry
}

// NewPredictorClient creates a client. A zero timeout never gives up on the server.
func NewPredictorClient(log *zap.Logger, url string, timeout time.Duration, m *metrics.Registry) *PredictorClient {
	return &PredictorClient{
		log:        log,
		url:        url,
		httpClient: &http.Client{},
		timeout:    func() time.Duration { return timeout },
		metrics:    m,
	}
}

// WithTimeoutFunc makes every request read its timeout from f, so a reloaded
// configuration applies to the next submission.
func (pc *PredictorClient) WithTimeoutFunc(f func() time.Duration) *PredictorClient {
	pc.timeout = f
	return pc
}

// Predict issues exactly one request; there are no retries.
func (pc *PredictorClient) Predict(ctx context.Context, record models.PredictorRecord) (*models.PredictionResponse, error) {
	start := time.Now()
	defer pc.metrics.Since(metrics.PredictorLatency, start)

	body, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode predictor record: %w", err)
	}

	if timeout := pc.timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, pc.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build prediction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := pc.httpClient.Do(req)
	if err != nil {
		pc.metrics.Inc(metrics.PredictorFailures)
		pc.log.Error("Prediction request failed", zap.String("url", pc.url), zap.Error(err))
		return nil, &ServerError{Err: err}
	}
	defer resp.Body.Close()

	// The error body is not consumed.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		pc.metrics.Inc(metrics.PredictorFailures)
		pc.log.Warn("Prediction endpoint returned an error status",
			zap.String("url", pc.url),
			zap.Int("status", resp.StatusCode),
			zap.Duration("latency", time.Since(start)),
		)
		return nil, &ServerError{StatusCode: resp.StatusCode}
	}

	var prediction models.PredictionResponse
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		pc.metrics.Inc(metrics.PredictorFailures)
		return nil, fmt.Errorf("failed to decode prediction response: %w", err)
	}

	pc.log.Debug("Prediction received", zap.Duration("latency", time.Since(start)))
	return &prediction, nil
}
