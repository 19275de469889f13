// Package embedding defines the speaker embedding value type, its binary
// artifact codec, cosine distance, and the extractor provider interface for
// interacting with embedding extraction backends.
//
// It follows the provider pattern with a pluggable registry for
// runtime-selectable backends.
//
// # Backends
//
//   - embedding/ecapa: ECAPA-TDNN speaker embedding extraction sidecar
//
// # Usage
//
//	reg := embedding.NewRegistry()
//	reg.Set(ecapa.ProviderName, ecapa.NewProvider(cfg))
//	ext, _ := reg.Get(ecapa.ProviderName)
//	emb, err := ext.Extract(ctx, audioBytes)
package embedding
