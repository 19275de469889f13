// Package provider defines the plug-in contract for external backends,
// such as the embedding extraction sidecar, and a typed registry for
// constructing them by name.
package provider

import "context"

// Provider is the minimum surface a pluggable backend exposes.
type Provider interface {
	// Name identifies the provider, e.g. "ecapa".
	Name() string
	// IsAvailable probes whether the backend can take requests right now.
	IsAvailable(ctx context.Context) bool
}

// Factory builds a provider from its configuration map.
type Factory[T Provider] func(cfg map[string]any) (T, error)
