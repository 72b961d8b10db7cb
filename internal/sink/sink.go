package sink

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"matrixci/internal/matrix"
)

// Payload carries one coverage artifact upload.
type Payload struct {
	RunID     string
	VariantID string
	Body      []byte
}

// Sink receives a coverage report for one job.
type Sink interface {
	Name() string
	Upload(ctx context.Context, p Payload) error
}

// HTTPSink posts coverage artifacts to an external service endpoint.
type HTTPSink struct {
	name     string
	url      string
	tokenEnv string
	client   *http.Client
}

// NewHTTPSink builds a sink client from its configuration.
func NewHTTPSink(cfg matrix.SinkConfig) *HTTPSink {
	name := cfg.Name
	if name == "" {
		name = cfg.URL
	}
	return &HTTPSink{
		name:     name,
		url:      cfg.URL,
		tokenEnv: cfg.TokenEnv,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Name identifies the sink in warnings and logs.
func (s *HTTPSink) Name() string { return s.name }

// Upload posts the payload body to the sink endpoint. The sink secret,
// when required, is read from the environment variable named in the
// configuration; it is never part of the matrix file.
func (s *HTTPSink) Upload(ctx context.Context, p Payload) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(p.Body))
	if err != nil {
		return fmt.Errorf("sink %s: build request: %w", s.name, err)
	}
	req.Header.Set("Content-Type", "text/xml")
	req.Header.Set("X-Run-ID", p.RunID)
	req.Header.Set("X-Variant", p.VariantID)

	if s.tokenEnv != "" {
		token := os.Getenv(s.tokenEnv)
		if token == "" {
			return fmt.Errorf("sink %s: environment variable %s is not set", s.name, s.tokenEnv)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sink %s: %w", s.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sink %s: unexpected status %s", s.name, resp.Status)
	}
	return nil
}
