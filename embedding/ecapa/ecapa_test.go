package ecapa

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/skillsenselab/voicegate/errors"
	"github.com/skillsenselab/voicegate/embedding"
)

func sidecar(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	// single attempt keeps failure tests from sleeping through backoff
	return NewProvider(Config{BaseURL: srv.URL, MaxAttempts: 1})
}

func vector(dim int) []float32 {
	v := make([]float32, dim)
	v[0] = 1
	return v
}

func TestExtract_Success(t *testing.T) {
	p := sidecar(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("expected multipart form: %v", err)
		}
		if _, _, err := r.FormFile("audio"); err != nil {
			t.Errorf("expected audio part: %v", err)
		}
		json.NewEncoder(w).Encode(embedResponse{Embedding: vector(embedding.Dim), Dim: embedding.Dim})
	})

	emb, err := p.Extract(context.Background(), []byte("fake-wav-bytes"))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if err := emb.Validate(); err != nil {
		t.Errorf("returned embedding invalid: %v", err)
	}
}

func TestExtract_RejectsWrongShape(t *testing.T) {
	p := sidecar(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{Embedding: vector(256), Dim: 256})
	})

	_, err := p.Extract(context.Background(), []byte("audio"))
	if err == nil {
		t.Fatal("expected error for 256-dim response")
	}
	if apperrors.CodeOf(err) != apperrors.ErrCodeExternalService {
		t.Errorf("expected EXTERNAL_SERVICE_ERROR, got %v", err)
	}
}

func TestExtract_SidecarInputError(t *testing.T) {
	p := sidecar(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(embedError{Error: "audio recording is too short"})
	})

	_, err := p.Extract(context.Background(), []byte("audio"))
	if apperrors.CodeOf(err) != apperrors.ErrCodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT for sidecar 400, got %v", err)
	}
	appErr, _ := apperrors.AsAppError(err)
	if appErr.Message != "Invalid input: audio recording is too short" {
		t.Errorf("expected sidecar reason in message, got %q", appErr.Message)
	}
}

func TestExtract_SidecarFailure(t *testing.T) {
	p := sidecar(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := p.Extract(context.Background(), []byte("audio"))
	if apperrors.CodeOf(err) != apperrors.ErrCodeExternalService {
		t.Fatalf("expected EXTERNAL_SERVICE_ERROR for sidecar 500, got %v", err)
	}
}

func TestExtract_EmptyAudio(t *testing.T) {
	p := NewProvider(Config{BaseURL: "http://unused"})
	_, err := p.Extract(context.Background(), nil)
	if apperrors.CodeOf(err) != apperrors.ErrCodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT for empty audio, got %v", err)
	}
}

func TestExtract_ErrorFieldInBody(t *testing.T) {
	p := sidecar(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{Error: "model not loaded"})
	})

	_, err := p.Extract(context.Background(), []byte("audio"))
	if apperrors.CodeOf(err) != apperrors.ErrCodeExternalService {
		t.Fatalf("expected EXTERNAL_SERVICE_ERROR, got %v", err)
	}
}

func TestExtract_RetriesTransientFailure(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(embedResponse{Embedding: vector(embedding.Dim), Dim: embedding.Dim})
	}))
	t.Cleanup(srv.Close)
	p := NewProvider(Config{BaseURL: srv.URL, MaxAttempts: 2})

	emb, err := p.Extract(context.Background(), []byte("audio"))
	if err != nil {
		t.Fatalf("Extract failed after retry: %v", err)
	}
	if err := emb.Validate(); err != nil {
		t.Errorf("returned embedding invalid: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 sidecar calls, got %d", calls)
	}
}

func TestExtract_NoRetryOnInputError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(embedError{Error: "unsupported codec"})
	}))
	t.Cleanup(srv.Close)
	p := NewProvider(Config{BaseURL: srv.URL, MaxAttempts: 3})

	_, err := p.Extract(context.Background(), []byte("audio"))
	if apperrors.CodeOf(err) != apperrors.ErrCodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
	if calls != 1 {
		t.Errorf("input errors must not be retried, got %d calls", calls)
	}
}

func TestIsAvailable(t *testing.T) {
	p := sidecar(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})
	if !p.IsAvailable(context.Background()) {
		t.Error("expected available")
	}

	down := NewProvider(Config{BaseURL: "http://127.0.0.1:1"})
	if down.IsAvailable(context.Background()) {
		t.Error("expected unavailable for unreachable sidecar")
	}
}

func TestFactory(t *testing.T) {
	f := Factory()
	ext, err := f(map[string]any{"base_url": "http://example:9000"})
	if err != nil {
		t.Fatalf("Factory failed: %v", err)
	}
	if ext.Name() != ProviderName {
		t.Errorf("expected %q, got %q", ProviderName, ext.Name())
	}
}
