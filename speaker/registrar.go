package speaker

import (
	"context"

	apperrors "github.com/skillsenselab/voicegate/errors"
	"github.com/skillsenselab/voicegate/embedding"
	"github.com/skillsenselab/voicegate/language"
	"github.com/skillsenselab/voicegate/logger"
	"github.com/skillsenselab/voicegate/util"
)

// Registrar enrolls new speakers. Usernames are normalized and immutable
// once taken; there is no overwrite, update, or delete path.
type Registrar struct {
	store *Store
	log   *logger.Logger
}

// NewRegistrar creates a Registrar over the given store.
func NewRegistrar(store *Store, log *logger.Logger) *Registrar {
	return &Registrar{
		store: store,
		log:   log.WithComponent("registrar"),
	}
}

// Enroll validates and durably records a new speaker, returning the
// normalized username under which the record was stored.
//
// Rejections: a username empty after normalization, an unsupported
// language code, an embedding violating the length invariant, or a
// username already taken.
func (r *Registrar) Enroll(ctx context.Context, username, lang string, emb embedding.Embedding) (string, error) {
	normalized := util.SafeUsername(username)
	if normalized == "" {
		return "", apperrors.InvalidInput("username", "username is empty or contains no usable characters")
	}
	if !language.IsSupported(lang) {
		return "", apperrors.InvalidInput("language", "unsupported language code")
	}
	if err := emb.Validate(); err != nil {
		return "", apperrors.InvalidInput("embedding", err.Error())
	}

	if err := r.store.Create(ctx, normalized, lang, emb); err != nil {
		return "", err
	}
	return normalized, nil
}
