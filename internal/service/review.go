package service

import (
	"context"

	"github.com/kshaw/clearhold/internal/escrow"
	"github.com/kshaw/clearhold/internal/oracle"
)

// ReviewService runs the verification step: it asks the oracle to score a
// pending submission and applies the verdict through the lifecycle.
type ReviewService struct {
	Lifecycle *LifecycleService
	Oracle    oracle.Provider
}

// Verify scores the pending escrow and completes it. The oracle call is
// bounded by ctx; a cancelled or failed verification leaves the escrow
// pending so it can be retried.
func (s *ReviewService) Verify(ctx context.Context, id string) (escrow.Escrow, oracle.ScoreResult, error) {
	e, err := s.Lifecycle.Get(ctx, id)
	if err != nil {
		return escrow.Escrow{}, oracle.ScoreResult{}, err
	}
	if e.Status != escrow.StatusPending {
		return escrow.Escrow{}, oracle.ScoreResult{}, escrow.ErrInvalidTransition
	}

	done := 0
	for _, m := range e.Milestones {
		if m.Done {
			done++
		}
	}
	res, err := s.Oracle.Score(ctx, oracle.ScoreRequest{
		EscrowID:    e.ID,
		Title:       e.Title,
		Description: e.Description,
		Checks:      e.Checks,
		Milestones:  len(e.Milestones),
		DoneCount:   done,
	})
	if err != nil {
		return escrow.Escrow{}, oracle.ScoreResult{}, err
	}

	updated, err := s.Lifecycle.DeliverScore(ctx, id, res.Score)
	if err != nil {
		return escrow.Escrow{}, oracle.ScoreResult{}, err
	}
	return updated, res, nil
}
