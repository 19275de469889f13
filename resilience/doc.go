// Package resilience provides retry with exponential backoff for
// operations against external services.
//
// The embedding sidecar is the main consumer: transient failures
// (5xx responses, connection resets) are retried, while input errors
// surface immediately via RetryConfig.RetryIf.
//
//	cfg := resilience.DefaultRetryConfig()
//	cfg.RetryIf = func(err error) bool {
//	    appErr, ok := apperrors.AsAppError(err)
//	    return ok && appErr.Retryable
//	}
//	emb, err := resilience.Retry(ctx, cfg, func() (embedding.Embedding, error) {
//	    return client.Embed(ctx, audio)
//	})
package resilience
