package speaker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"

	apperrors "github.com/skillsenselab/voicegate/errors"
	"github.com/skillsenselab/voicegate/embedding"
	"github.com/skillsenselab/voicegate/logger"
	"github.com/skillsenselab/voicegate/storage"
)

const (
	registryFile = "user_data.json"
	embeddingDir = "saved_embeddings"
)

// Store persists enrolled speaker records and their embedding artifacts.
//
// The registry is a whole-file JSON snapshot mapping normalized username to
// {embedding_file, language}. JSON object key order is preserved on both
// load and save because it defines the matcher's tie-break order. Each
// embedding artifact is a fixed-size binary file (see embedding.Marshal).
//
// The enrolled set is rebuilt from durable storage on every call; nothing
// is cached across requests, so a login racing an enrollment sees either
// the old or the new snapshot.
type Store struct {
	files storage.ByteClient
	log   *logger.Logger
}

// NewStore creates a Store on top of the given object storage.
func NewStore(s storage.Storage, log *logger.Logger) *Store {
	return &Store{
		files: storage.NewByteClient(s),
		log:   log.WithComponent("speaker-store"),
	}
}

// Records loads the registry snapshot in insertion order. A missing or
// empty registry file reads as zero records.
func (s *Store) Records(ctx context.Context) ([]Record, error) {
	data, err := s.files.Download(ctx, registryFile)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load registry: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	return decodeRegistry(data)
}

// Language returns the enrollment language recorded for username.
func (s *Store) Language(ctx context.Context, username string) (string, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return "", err
	}
	for _, r := range records {
		if r.Username == username {
			return r.Language, nil
		}
	}
	return "", apperrors.NotFound("user", username)
}

// Enrolled loads every enrolled speaker's reference embedding, in registry
// insertion order. Artifacts that are missing or fail the length invariant
// are logged and excluded rather than failing the whole load.
func (s *Store) Enrolled(ctx context.Context) ([]Entry, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(records))
	for _, r := range records {
		data, err := s.files.Download(ctx, path.Join(embeddingDir, r.EmbeddingFile))
		if err != nil {
			s.log.Warn("Skipping enrolled user: embedding artifact unreadable",
				logger.Fields(logger.FieldUsername, r.Username, logger.FieldError, err.Error()))
			continue
		}
		emb, err := embedding.Unmarshal(data)
		if err != nil {
			s.log.Warn("Skipping enrolled user: embedding artifact malformed",
				logger.Fields(logger.FieldUsername, r.Username, logger.FieldError, err.Error()))
			continue
		}
		entries = append(entries, Entry{Username: r.Username, Embedding: emb})
	}
	return entries, nil
}

// Create durably enrolls a speaker: the embedding artifact is written
// first, then the registry snapshot is replaced atomically (temp file +
// rename). If the snapshot write fails the artifact is removed best-effort,
// so a reader never observes a registry entry without its artifact.
func (s *Store) Create(ctx context.Context, username, lang string, emb embedding.Embedding) error {
	records, err := s.Records(ctx)
	if err != nil {
		return err
	}
	for _, r := range records {
		if r.Username == username {
			return apperrors.AlreadyExists("user").WithDetail("username", username)
		}
	}

	artifact, err := embedding.Marshal(emb)
	if err != nil {
		return apperrors.InvalidInput("embedding", err.Error())
	}

	filename := username + ".vec"
	artifactPath := path.Join(embeddingDir, filename)
	if err := s.files.Upload(ctx, artifactPath, artifact); err != nil {
		return fmt.Errorf("write embedding artifact: %w", err)
	}

	records = append(records, Record{
		Username:      username,
		EmbeddingFile: filename,
		Language:      lang,
	})
	snapshot, err := encodeRegistry(records)
	if err != nil {
		s.removeArtifact(ctx, artifactPath)
		return fmt.Errorf("encode registry: %w", err)
	}
	if err := s.files.UploadAtomic(ctx, registryFile, snapshot); err != nil {
		s.removeArtifact(ctx, artifactPath)
		return fmt.Errorf("write registry: %w", err)
	}

	s.log.Info("User enrolled", logger.Fields(
		logger.FieldUsername, username,
		"language", lang,
	))
	return nil
}

func (s *Store) removeArtifact(ctx context.Context, artifactPath string) {
	if err := s.files.Delete(ctx, artifactPath); err != nil {
		s.log.Error("Failed to remove orphaned embedding artifact",
			logger.Fields("path", artifactPath, logger.FieldError, err.Error()))
	}
}

// --- registry codec ---

// decodeRegistry parses the snapshot with a token stream so that object key
// order survives into the record slice.
func decodeRegistry(data []byte) ([]Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("parse registry: expected object, got %v", tok)
	}

	var records []Record
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse registry: %w", err)
		}
		username, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("parse registry: expected string key, got %v", keyTok)
		}

		var rec Record
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("parse registry entry %q: %w", username, err)
		}
		rec.Username = username
		records = append(records, rec)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	return records, nil
}

// encodeRegistry writes the snapshot preserving slice order.
func encodeRegistry(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, r := range records {
		key, err := json.Marshal(r.Username)
		if err != nil {
			return nil, err
		}
		body, err := json.Marshal(r)
		if err != nil {
			return nil, err
		}
		buf.WriteString("    ")
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(body)
		if i < len(records)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}
