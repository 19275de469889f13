// Package ecapa implements embedding.Extractor against the ECAPA-TDNN
// speaker embedding HTTP sidecar.
package ecapa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	apperrors "github.com/skillsenselab/voicegate/errors"
	"github.com/skillsenselab/voicegate/embedding"
	"github.com/skillsenselab/voicegate/provider"
	"github.com/skillsenselab/voicegate/resilience"
)

const (
	// ProviderName is the registered name for the ECAPA-TDNN provider.
	ProviderName = "ecapa-tdnn"

	defaultBaseURL     = "http://localhost:8390"
	defaultTimeout     = 60 * time.Second
	defaultMaxAttempts = 3
)

// Config holds configuration for the ECAPA-TDNN extraction provider.
type Config struct {
	BaseURL string        `json:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
	// MaxAttempts bounds retries against a transiently failing sidecar.
	MaxAttempts int `json:"max_attempts" mapstructure:"max_attempts"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
}

// Provider implements embedding.Extractor using the ECAPA-TDNN HTTP sidecar.
type Provider struct {
	cfg    Config
	client *http.Client
}

// NewProvider creates a new ECAPA-TDNN extraction provider.
func NewProvider(cfg Config) *Provider {
	cfg.ApplyDefaults()
	return &Provider{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Factory returns a provider.Factory that creates ECAPA-TDNN Provider
// instances from a generic config map.
func Factory() provider.Factory[embedding.Extractor] {
	return func(cfg map[string]any) (embedding.Extractor, error) {
		pc := Config{}
		if v, ok := cfg["base_url"].(string); ok {
			pc.BaseURL = v
		}
		if v, ok := cfg["timeout"].(time.Duration); ok {
			pc.Timeout = v
		}
		if v, ok := cfg["max_attempts"].(int); ok {
			pc.MaxAttempts = v
		}
		return NewProvider(pc), nil
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the extraction sidecar is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.BaseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Extract sends raw audio to the sidecar and returns the speaker embedding.
// The sidecar decodes and resamples the audio itself; a 4xx from it means
// the audio was unusable (too short, undecodable) and is surfaced as an
// input error. A response vector of any length other than embedding.Dim is
// rejected outright. Transient sidecar failures are retried with backoff.
func (p *Provider) Extract(ctx context.Context, audio []byte) (embedding.Embedding, error) {
	if len(audio) == 0 {
		return nil, apperrors.InvalidInput("audio_data", "audio is empty")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("audio", "audio.wav")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, fmt.Errorf("write audio data: %w", err)
	}
	writer.Close()

	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.MaxAttempts = p.cfg.MaxAttempts
	retryCfg.RetryIf = retryableExtract

	return resilience.Retry(ctx, retryCfg, func() (embedding.Embedding, error) {
		return p.embed(ctx, buf.Bytes(), writer.FormDataContentType())
	})
}

// retryableExtract retries only transient sidecar failures, never input errors.
func retryableExtract(err error) bool {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		return resilience.DefaultRetryIf(err)
	}
	return appErr.Retryable
}

// embed performs one extraction attempt against the sidecar.
func (p *Provider) embed(ctx context.Context, body []byte, contentType string) (embedding.Embedding, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, apperrors.ExternalServiceError("embedding extraction", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, apperrors.InvalidInput("audio_data", sidecarReason(body))
		}
		return nil, apperrors.ExternalServiceError("embedding extraction",
			fmt.Errorf("sidecar status %d: %s", resp.StatusCode, string(body)))
	}

	var result embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, apperrors.ExternalServiceError("embedding extraction",
			fmt.Errorf("decode response: %w", err))
	}

	if result.Error != "" {
		return nil, apperrors.ExternalServiceError("embedding extraction",
			fmt.Errorf("sidecar error: %s", result.Error))
	}

	emb := embedding.Embedding(result.Embedding)
	if err := emb.Validate(); err != nil {
		// Never squeeze or average an unexpected shape into place.
		return nil, apperrors.ExternalServiceError("embedding extraction", err)
	}
	return emb, nil
}

// --- internal sidecar API types ---

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
	Dim       int       `json:"dim"`
	Error     string    `json:"error,omitempty"`
}

type embedError struct {
	Error string `json:"error"`
}

// sidecarReason extracts a human-readable reason from a sidecar 4xx body.
func sidecarReason(body []byte) string {
	var e embedError
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return "audio could not be processed"
}

// compile-time check
var _ embedding.Extractor = (*Provider)(nil)
