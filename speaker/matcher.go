package speaker

import (
	"math"

	apperrors "github.com/skillsenselab/voicegate/errors"
	"github.com/skillsenselab/voicegate/embedding"
	"github.com/skillsenselab/voicegate/logger"
)

// DefaultThreshold is the maximum cosine distance for a match to be
// accepted. Operator-tunable; not derived from data.
const DefaultThreshold = 0.4

// Matcher decides whether a query embedding belongs to an enrolled speaker
// by linear nearest-neighbor scan under a fixed cosine distance threshold.
type Matcher struct {
	threshold float64
	log       *logger.Logger
}

// NewMatcher creates a Matcher with the given accept threshold.
func NewMatcher(threshold float64, log *logger.Logger) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{
		threshold: threshold,
		log:       log.WithComponent("matcher"),
	}
}

// Threshold returns the configured accept threshold.
func (m *Matcher) Threshold() float64 { return m.threshold }

// Identify scans every enrolled entry in slice order and tracks the minimum
// cosine distance to the query. On exact ties the first entry encountered
// wins, which is the registry's insertion order.
//
// Outcomes:
//   - query not exactly 192-dim: INVALID_INPUT, no comparison attempted.
//   - no enrolled entries: NO_ENROLLED_USERS, distance +Inf.
//   - minimum distance within threshold: the match, nil error.
//   - minimum distance above threshold: NOT_RECOGNIZED carrying the best
//     distance. A per-entry computation failure (corrupt vector) is logged
//     and that candidate skipped, never fatal to the scan.
//
// Identify is pure: it mutates nothing and persists nothing.
func (m *Matcher) Identify(query embedding.Embedding, enrolled []Entry) (Match, error) {
	if err := query.Validate(); err != nil {
		return Match{}, apperrors.InvalidInput("embedding", err.Error())
	}
	if len(enrolled) == 0 {
		return Match{Distance: math.Inf(1)}, apperrors.NoEnrolledUsers()
	}

	best := Match{Distance: math.Inf(1)}
	for _, entry := range enrolled {
		dist, err := embedding.CosineDistance(query, entry.Embedding)
		if err != nil {
			m.log.Warn("Distance computation failed, skipping candidate",
				logger.Fields(logger.FieldUsername, entry.Username, logger.FieldError, err.Error()))
			continue
		}
		m.log.Debug("Compared with enrolled user", logger.Fields(
			logger.FieldUsername, entry.Username,
			logger.FieldDistance, dist,
		))
		if dist < best.Distance {
			best = Match{Username: entry.Username, Distance: dist}
		}
	}

	if best.Username != "" && best.Distance <= m.threshold {
		return best, nil
	}
	return Match{Distance: best.Distance}, apperrors.NotRecognized(best.Distance)
}
