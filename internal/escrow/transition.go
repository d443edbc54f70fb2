package escrow

import "time"

// Transitions mutate the record in place, but only after every guard has
// passed: a failed transition leaves the escrow exactly as it was.

// Activate moves a finished draft into escrow: the deposit step. The amount
// is frozen from here on.
func Activate(e *Escrow, now time.Time) error {
	if e.Status != StatusIncomplete {
		return ErrInvalidTransition
	}
	if !ValidAddress(e.FreelancerAddress) {
		return ErrInvalidAddress
	}
	if e.AmountCents <= 0 {
		return ErrInvalidAmount
	}
	t := now.UTC()
	e.Status = StatusActive
	e.ActivatedAt = &t
	e.Progress = DeriveProgress(e.Milestones)
	e.UpdatedAt = t
	return nil
}

// SubmitWork hands the deliverables over for verification. Only the
// freelancer side of the agreement may submit.
func SubmitWork(e *Escrow, actorRole string, now time.Time) error {
	if e.Status != StatusActive {
		return ErrInvalidTransition
	}
	if actorRole != RoleFreelancer {
		return ErrInvalidTransition
	}
	t := now.UTC()
	e.Status = StatusPending
	e.Submission = &Submission{SubmittedAt: t}
	e.UpdatedAt = t
	return nil
}

// CompleteWithScore records the verification verdict and the resulting
// payout. The score is recorded once and never amended.
func CompleteWithScore(e *Escrow, score int, now time.Time) error {
	if e.Status != StatusPending {
		return ErrInvalidTransition
	}
	if score < 0 || score > 100 {
		return ErrInvalidTransition
	}
	p, err := ComputePayout(e.AmountCents, score)
	if err != nil {
		return err
	}
	t := now.UTC()
	e.Status = StatusCompleted
	e.Verification = &Verification{
		Score:        score,
		PaidCents:    p.PayoutCents,
		AutoReleased: e.AutoRelease && p.AutoReleased,
		CompletedAt:  t,
	}
	e.UpdatedAt = t
	return nil
}

// OpenDispute moves a working escrow into the disputed state, provided the
// escrow's dispute window has not elapsed since the event that started the
// current phase (activation for active, submission for pending).
func OpenDispute(e *Escrow, reason string, now time.Time) error {
	var since time.Time
	switch e.Status {
	case StatusActive:
		if e.ActivatedAt == nil {
			return ErrInvalidTransition
		}
		since = *e.ActivatedAt
	case StatusPending:
		if e.Submission == nil {
			return ErrInvalidTransition
		}
		since = e.Submission.SubmittedAt
	default:
		return ErrInvalidTransition
	}
	window := time.Duration(e.DisputeWindowDays) * 24 * time.Hour
	if now.UTC().Sub(since) > window {
		return ErrInvalidTransition
	}
	t := now.UTC()
	e.Status = StatusDisputed
	e.Dispute = &DisputeNote{Reason: reason, OpenedAt: t}
	e.UpdatedAt = t
	return nil
}

// CompleteMilestone marks one milestone done on an active escrow and
// re-derives the progress percentage. The frozen amount is untouched.
func CompleteMilestone(e *Escrow, index int, now time.Time) error {
	if e.Status != StatusActive {
		return ErrInvalidTransition
	}
	if index < 0 || index >= len(e.Milestones) {
		return ErrInvalidTransition
	}
	e.Milestones[index].Done = true
	e.Progress = DeriveProgress(e.Milestones)
	e.UpdatedAt = now.UTC()
	return nil
}

// ApplyDraftEdits overwrites the editable fields of an incomplete escrow
// from a wizard form and recomputes the amount from the new milestones.
// Anything past incomplete rejects edits.
func ApplyDraftEdits(e *Escrow, f FormState, now time.Time) error {
	if e.Status != StatusIncomplete {
		return ErrInvalidTransition
	}
	updated, err := buildFromForm(f, now)
	if err != nil {
		return err
	}
	e.Title = updated.Title
	e.Description = updated.Description
	e.Category = updated.Category
	e.FreelancerAddress = updated.FreelancerAddress
	e.Deadline = updated.Deadline
	e.AutoRelease = updated.AutoRelease
	e.DisputeWindowDays = updated.DisputeWindowDays
	e.Checks = updated.Checks
	e.Milestones = updated.Milestones
	e.AmountCents = updated.AmountCents
	e.UpdatedAt = now.UTC()
	return nil
}
