package moderation

import (
	"context"
)

// Verdict is the tri-state outcome of classifying review text.
type Verdict string

const (
	VerdictApproved     Verdict = "approved"
	VerdictFlagged      Verdict = "flagged"
	VerdictInconclusive Verdict = "inconclusive"
)

// Gateway classifies review text for public appropriateness. Implementations
// must fail closed: ambiguity or unavailability resolves to
// VerdictInconclusive, never to VerdictApproved.
type Gateway interface {
	Classify(ctx context.Context, text string) (Verdict, error)
}
