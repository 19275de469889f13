package speaker

import "github.com/skillsenselab/voicegate/embedding"

// Record is one registry entry: the durable metadata for an enrolled
// speaker. Records are created at enrollment and immutable thereafter.
type Record struct {
	// Username is the normalized, filesystem-safe unique key.
	Username string `json:"-"`
	// EmbeddingFile is the artifact filename holding the reference embedding.
	EmbeddingFile string `json:"embedding_file"`
	// Language is the enrollment language code.
	Language string `json:"language"`
}

// Entry pairs an enrolled username with its loaded reference embedding.
// Slice order is registry insertion order; the matcher's tie-break
// depends on it.
type Entry struct {
	Username  string
	Embedding embedding.Embedding
}

// Match is the outcome of one identification scan: the nearest enrolled
// username and its cosine distance from the query.
type Match struct {
	Username string
	Distance float64
}
