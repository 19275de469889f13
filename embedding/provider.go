package embedding

import (
	"context"

	"github.com/skillsenselab/voicegate/provider"
)

// Extractor is the interface that embedding extraction backends must
// implement. Implementations own audio decoding, resampling, and model
// inference; callers hand over raw audio bytes and receive a validated
// fixed-length embedding or an error. An unexpected output shape from the
// backend is an error, never a silently reshaped vector.
type Extractor interface {
	provider.Provider // embeds Name() and IsAvailable()

	// Extract sends raw audio for embedding extraction and returns the
	// resulting speaker embedding.
	Extract(ctx context.Context, audio []byte) (Embedding, error)
}

// NewRegistry creates a provider registry for extractor backends.
func NewRegistry() *provider.Registry[Extractor] {
	return provider.NewRegistry[Extractor]()
}
