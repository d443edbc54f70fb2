package oracle

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestHeuristicScoreIsDeterministic(t *testing.T) {
	h := NewHeuristic(0)
	req := ScoreRequest{
		EscrowID:   "a1b2c3",
		Title:      "Logo redesign",
		Checks:     []string{"quality_check", "completeness"},
		Milestones: 2,
		DoneCount:  2,
	}

	first, err := h.Score(context.Background(), req)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	second, err := h.Score(context.Background(), req)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if first.Score != second.Score {
		t.Errorf("scores differ across runs: %d vs %d", first.Score, second.Score)
	}
	if first.Score < 0 || first.Score > 100 {
		t.Errorf("score %d out of range", first.Score)
	}
	if len(first.Passed) != 2 {
		t.Errorf("breakdown has %d checks, want 2", len(first.Passed))
	}
}

func TestHeuristicHonorsContext(t *testing.T) {
	h := NewHeuristic(time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := h.Score(ctx, ScoreRequest{EscrowID: "x"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want DeadlineExceeded", err)
	}
}
