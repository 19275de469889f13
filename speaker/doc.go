// Package speaker implements the core enrollment and identification domain:
// the durable registry of enrolled speakers, the enrollment registrar, and
// the nearest-neighbor matcher that decides whether a query embedding
// belongs to an enrolled speaker.
//
// The matcher is a pure function over already-extracted embeddings; audio
// handling and model inference live behind embedding.Extractor.
package speaker
