package speaker

import (
	"context"
	"testing"

	apperrors "github.com/skillsenselab/voicegate/errors"
	"github.com/skillsenselab/voicegate/embedding"
	"github.com/skillsenselab/voicegate/logger"
)

func newTestRegistrar(t *testing.T) *Registrar {
	t.Helper()
	store, _ := newTestStore(t)
	return NewRegistrar(store, logger.NewDefault("test"))
}

func TestEnroll_NormalizesUsername(t *testing.T) {
	r := newTestRegistrar(t)

	got, err := r.Enroll(context.Background(), "  Alice Smith  ", "en", testEmbedding(1))
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if got != "alice_smith" {
		t.Errorf("expected alice_smith, got %q", got)
	}
}

func TestEnroll_Rejections(t *testing.T) {
	r := newTestRegistrar(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		lang     string
		emb      embedding.Embedding
		code     apperrors.ErrorCode
	}{
		{"empty username", "   ", "en", testEmbedding(1), apperrors.ErrCodeInvalidInput},
		{"unusable username", "@#$%", "en", testEmbedding(1), apperrors.ErrCodeInvalidInput},
		{"unsupported language", "alice", "fr", testEmbedding(1), apperrors.ErrCodeInvalidInput},
		{"short embedding", "alice", "en", make(embedding.Embedding, 10), apperrors.ErrCodeInvalidInput},
		{"nil embedding", "alice", "en", nil, apperrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Enroll(ctx, tt.username, tt.lang, tt.emb)
			if apperrors.CodeOf(err) != tt.code {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestEnroll_DuplicateAfterNormalization(t *testing.T) {
	r := newTestRegistrar(t)
	ctx := context.Background()

	if _, err := r.Enroll(ctx, "alice", "en", testEmbedding(1)); err != nil {
		t.Fatalf("first enroll: %v", err)
	}
	// different raw spelling, same normalized key
	_, err := r.Enroll(ctx, " ALICE ", "hi", testEmbedding(2))
	if apperrors.CodeOf(err) != apperrors.ErrCodeAlreadyExists {
		t.Fatalf("expected ALREADY_EXISTS, got %v", err)
	}
}
