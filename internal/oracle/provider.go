// Package oracle scores submitted work. The provider interface keeps the
// verification backend swappable; the default implementation is a local
// deterministic heuristic, so the app works with no network and no API key.
package oracle

import "context"

// Provider defines the verification call used by the lifecycle service.
type Provider interface {
	Score(ctx context.Context, req ScoreRequest) (ScoreResult, error)
}

// ScoreRequest describes the submission to verify.
type ScoreRequest struct {
	EscrowID    string   `json:"escrow_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Checks      []string `json:"checks"`
	Milestones  int      `json:"milestones"`
	DoneCount   int      `json:"done_count"`
}

// ScoreResult is the verdict: a 0-100 quality score plus the per-check
// pass/fail breakdown shown in the verification view.
type ScoreResult struct {
	Score  int             `json:"score"`
	Passed map[string]bool `json:"passed"`
}
