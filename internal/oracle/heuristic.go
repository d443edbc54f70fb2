package oracle

import (
	"context"
	"hash/fnv"
	"time"
)

// Heuristic is the offline provider. The score is derived from a hash of the
// escrow id, so repeated runs against the same escrow agree, skewed into the
// 70-100 band where most real verdicts land. Completing every milestone
// before submitting earns the top of the band.
type Heuristic struct {
	Delay time.Duration // simulated verification latency
}

func NewHeuristic(delay time.Duration) *Heuristic {
	return &Heuristic{Delay: delay}
}

func (h *Heuristic) Score(ctx context.Context, req ScoreRequest) (ScoreResult, error) {
	if h.Delay > 0 {
		select {
		case <-time.After(h.Delay):
		case <-ctx.Done():
			return ScoreResult{}, ctx.Err()
		}
	}

	f := fnv.New32a()
	f.Write([]byte(req.EscrowID))
	base := 70 + int(f.Sum32()%26) // 70..95

	bonus := 0
	if req.Milestones > 0 && req.DoneCount == req.Milestones {
		bonus = 5
	}
	score := base + bonus
	if score > 100 {
		score = 100
	}

	passed := make(map[string]bool, len(req.Checks))
	for _, c := range req.Checks {
		// A check fails only when the overall score is poor; individual
		// checks reuse the same hash stream so the breakdown is stable.
		f.Write([]byte(c))
		passed[c] = score >= 75 || f.Sum32()%4 != 0
	}

	return ScoreResult{Score: score, Passed: passed}, nil
}
