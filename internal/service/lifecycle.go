// Package service coordinates the escrow lifecycle over a swappable store:
// wizard submissions in, guarded transitions through, verification verdicts
// out. All methods operate on copies and persist only after every guard has
// passed, so storage never sees a half-applied transition.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kshaw/clearhold/internal/database/repository"
	"github.com/kshaw/clearhold/internal/escrow"
)

// EscrowStore is the persistence surface the lifecycle needs. Both the
// sqlite repository and the JSON store satisfy it.
type EscrowStore interface {
	Insert(ctx context.Context, e escrow.Escrow) error
	Get(ctx context.Context, id string) (escrow.Escrow, error)
	List(ctx context.Context, q escrow.Query) ([]escrow.Escrow, error)
	Update(ctx context.Context, e escrow.Escrow) error
}

// DisputeStore persists full dispute records. Optional; the JSON backend
// runs without one and keeps only the note on the escrow itself.
type DisputeStore interface {
	Insert(ctx context.Context, d repository.Dispute) error
	ListByEscrow(ctx context.Context, escrowID string) ([]repository.Dispute, error)
}

// LifecycleService owns every state change an escrow can go through.
type LifecycleService struct {
	Escrows  EscrowStore
	Disputes DisputeStore
	Log      *slog.Logger

	// Now is swappable for tests; nil means time.Now.
	Now func() time.Time
}

func (s *LifecycleService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *LifecycleService) log() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}

// Create builds a new escrow from a finished wizard form and persists it in
// the incomplete state.
func (s *LifecycleService) Create(ctx context.Context, f escrow.FormState) (escrow.Escrow, error) {
	e, err := escrow.BuildEscrow(f, s.now())
	if err != nil {
		return escrow.Escrow{}, err
	}
	if err := s.Escrows.Insert(ctx, e); err != nil {
		return escrow.Escrow{}, err
	}
	s.log().Info("escrow created", "id", e.ID, "code", e.Code, "amount_cents", e.AmountCents)
	return e, nil
}

// UpdateDraft overwrites an incomplete escrow's editable fields from a
// wizard form.
func (s *LifecycleService) UpdateDraft(ctx context.Context, id string, f escrow.FormState) (escrow.Escrow, error) {
	return s.mutate(ctx, id, "draft updated", func(e *escrow.Escrow) error {
		return escrow.ApplyDraftEdits(e, f, s.now())
	})
}

// Activate funds the escrow: incomplete becomes active and the amount is
// frozen.
func (s *LifecycleService) Activate(ctx context.Context, id string) (escrow.Escrow, error) {
	return s.mutate(ctx, id, "escrow activated", func(e *escrow.Escrow) error {
		return escrow.Activate(e, s.now())
	})
}

// SubmitWork hands the deliverables over for verification. actorRole is the
// stored profile role; only freelancers pass the guard.
func (s *LifecycleService) SubmitWork(ctx context.Context, id, actorRole string) (escrow.Escrow, error) {
	return s.mutate(ctx, id, "work submitted", func(e *escrow.Escrow) error {
		return escrow.SubmitWork(e, actorRole, s.now())
	})
}

// DeliverScore applies a verification verdict to a pending escrow.
func (s *LifecycleService) DeliverScore(ctx context.Context, id string, score int) (escrow.Escrow, error) {
	e, err := s.mutate(ctx, id, "verification delivered", func(e *escrow.Escrow) error {
		return escrow.CompleteWithScore(e, score, s.now())
	})
	if err != nil {
		return escrow.Escrow{}, err
	}
	s.log().Info("payout computed",
		"id", e.ID, "score", score,
		"paid_cents", e.Verification.PaidCents,
		"auto_released", e.Verification.AutoReleased)
	return e, nil
}

// OpenDispute flags a working escrow as disputed and, when a dispute store is
// wired, files the full record alongside.
func (s *LifecycleService) OpenDispute(ctx context.Context, id, reason, details, proposed string) (escrow.Escrow, error) {
	e, err := s.mutate(ctx, id, "dispute opened", func(e *escrow.Escrow) error {
		return escrow.OpenDispute(e, reason, s.now())
	})
	if err != nil {
		return escrow.Escrow{}, err
	}
	if s.Disputes != nil {
		d := repository.Dispute{
			ID:               uuid.NewString(),
			EscrowID:         e.ID,
			Reason:           reason,
			Details:          details,
			ProposedSolution: proposed,
			Status:           "open",
			OpenedAt:         e.Dispute.OpenedAt,
		}
		if err := s.Disputes.Insert(ctx, d); err != nil {
			return escrow.Escrow{}, err
		}
	}
	return e, nil
}

// CompleteMilestone marks one milestone done on an active escrow.
func (s *LifecycleService) CompleteMilestone(ctx context.Context, id string, index int) (escrow.Escrow, error) {
	return s.mutate(ctx, id, "milestone completed", func(e *escrow.Escrow) error {
		return escrow.CompleteMilestone(e, index, s.now())
	})
}

// Get returns one escrow by id.
func (s *LifecycleService) Get(ctx context.Context, id string) (escrow.Escrow, error) {
	return s.Escrows.Get(ctx, id)
}

// List returns escrows matching the query, newest first.
func (s *LifecycleService) List(ctx context.Context, q escrow.Query) ([]escrow.Escrow, error) {
	return s.Escrows.List(ctx, q)
}

// DisputeHistory returns the filed dispute records for an escrow, newest
// first. Without a dispute store it returns nothing.
func (s *LifecycleService) DisputeHistory(ctx context.Context, escrowID string) ([]repository.Dispute, error) {
	if s.Disputes == nil {
		return nil, nil
	}
	return s.Disputes.ListByEscrow(ctx, escrowID)
}

// mutate loads the record, applies fn to a copy and persists only on
// success. A failed guard leaves storage untouched.
func (s *LifecycleService) mutate(ctx context.Context, id, event string, fn func(*escrow.Escrow) error) (escrow.Escrow, error) {
	e, err := s.Escrows.Get(ctx, id)
	if err != nil {
		return escrow.Escrow{}, err
	}
	next := e.Clone()
	if err := fn(&next); err != nil {
		s.log().Warn("transition rejected", "id", id, "event", event, "error", err)
		return escrow.Escrow{}, err
	}
	if err := s.Escrows.Update(ctx, next); err != nil {
		return escrow.Escrow{}, err
	}
	s.log().Info(event, "id", id, "status", string(next.Status))
	return next, nil
}
