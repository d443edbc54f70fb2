package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kshaw/clearhold/internal/database/repository"
	"github.com/kshaw/clearhold/internal/escrow"
	"github.com/kshaw/clearhold/internal/jsonstore"
	"github.com/kshaw/clearhold/internal/oracle"
)

func testLifecycle(t *testing.T, at time.Time) (*LifecycleService, *clock) {
	t.Helper()
	store, err := jsonstore.Open(t.TempDir() + "/clearhold.json")
	require.NoError(t, err)
	c := &clock{t: at}
	return &LifecycleService{Escrows: store, Now: c.now}, c
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func wizardForm() escrow.FormState {
	f := escrow.NewFormState()
	f.Title = "Logo redesign"
	f.Description = "Full brand refresh"
	f.Category = "Design & Creative"
	f.Deadline = "2026-04-30"
	f.FreelancerAddress = "0x1234567890abcdef1234567890abcdef12345678"
	f.Milestones = []escrow.MilestoneForm{
		{Title: "Concepts", Description: "Three directions", Amount: "500", Date: "2026-03-20"},
		{Title: "Final delivery", Description: "Vector files", Amount: "700", Date: "2026-04-15"},
	}
	f.ConsentAccepted = true
	return f
}

func TestLifecycleEndToEnd(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc, clk := testLifecycle(t, start)

	created, err := svc.Create(ctx, wizardForm())
	require.NoError(t, err)
	require.Equal(t, escrow.StatusIncomplete, created.Status)
	require.EqualValues(t, 120000, created.AmountCents)

	clk.advance(time.Hour)
	active, err := svc.Activate(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, escrow.StatusActive, active.Status)
	require.NotNil(t, active.ActivatedAt)

	// Finish both milestones before handing the work over.
	clk.advance(24 * time.Hour)
	_, err = svc.CompleteMilestone(ctx, created.ID, 0)
	require.NoError(t, err)
	withProgress, err := svc.CompleteMilestone(ctx, created.ID, 1)
	require.NoError(t, err)
	require.Equal(t, 100, withProgress.Progress)

	clk.advance(time.Hour)
	pending, err := svc.SubmitWork(ctx, created.ID, escrow.RoleFreelancer)
	require.NoError(t, err)
	require.Equal(t, escrow.StatusPending, pending.Status)
	require.NotNil(t, pending.Submission)

	clk.advance(time.Hour)
	done, err := svc.DeliverScore(ctx, created.ID, 92)
	require.NoError(t, err)
	require.Equal(t, escrow.StatusCompleted, done.Status)
	require.NotNil(t, done.Verification)
	require.EqualValues(t, 110400, done.Verification.PaidCents)
	require.True(t, done.Verification.AutoReleased)

	// The stored record matches what the service returned.
	stored, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, done.Verification, stored.Verification)
}

func TestRejectedTransitionLeavesStoreUntouched(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := testLifecycle(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	created, err := svc.Create(ctx, wizardForm())
	require.NoError(t, err)

	// Submitting a draft skips activation and must fail.
	_, err = svc.SubmitWork(ctx, created.ID, escrow.RoleFreelancer)
	require.ErrorIs(t, err, escrow.ErrInvalidTransition)

	stored, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, escrow.StatusIncomplete, stored.Status)
	require.Nil(t, stored.Submission)
}

func TestOpenDisputeRespectsWindow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, clk := testLifecycle(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	created, err := svc.Create(ctx, wizardForm())
	require.NoError(t, err)
	_, err = svc.Activate(ctx, created.ID)
	require.NoError(t, err)

	clk.advance(8 * 24 * time.Hour) // default window is 7 days
	_, err = svc.OpenDispute(ctx, created.ID, "missed deadline", "no response for a week", "refund")
	require.ErrorIs(t, err, escrow.ErrInvalidTransition)

	stored, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, escrow.StatusActive, stored.Status)
}

func TestOpenDisputeInsideWindow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, clk := testLifecycle(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	created, err := svc.Create(ctx, wizardForm())
	require.NoError(t, err)
	_, err = svc.Activate(ctx, created.ID)
	require.NoError(t, err)

	clk.advance(2 * 24 * time.Hour)
	disputed, err := svc.OpenDispute(ctx, created.ID, "missed deadline", "", "")
	require.NoError(t, err)
	require.Equal(t, escrow.StatusDisputed, disputed.Status)
	require.NotNil(t, disputed.Dispute)
	require.Equal(t, "missed deadline", disputed.Dispute.Reason)
}

func TestUpdateDraft(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := testLifecycle(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	created, err := svc.Create(ctx, wizardForm())
	require.NoError(t, err)

	f := wizardForm()
	f.Title = "Logo redesign v2"
	f.Milestones = f.Milestones[:1] // drop the second milestone
	updated, err := svc.UpdateDraft(ctx, created.ID, f)
	require.NoError(t, err)
	require.Equal(t, "Logo redesign v2", updated.Title)
	require.EqualValues(t, 50000, updated.AmountCents)

	_, err = svc.Activate(ctx, created.ID)
	require.NoError(t, err)
	_, err = svc.UpdateDraft(ctx, created.ID, f)
	require.ErrorIs(t, err, escrow.ErrInvalidTransition)
}

func TestGetUnknownID(t *testing.T) {
	t.Parallel()
	svc, _ := testLifecycle(t, time.Now())
	_, err := svc.Get(context.Background(), "no-such-id")
	require.ErrorIs(t, err, escrow.ErrNotFound)
}

type memDisputes struct{ rows []repository.Dispute }

func (m *memDisputes) Insert(_ context.Context, d repository.Dispute) error {
	m.rows = append([]repository.Dispute{d}, m.rows...)
	return nil
}

func (m *memDisputes) ListByEscrow(_ context.Context, escrowID string) ([]repository.Dispute, error) {
	var out []repository.Dispute
	for _, d := range m.rows {
		if d.EscrowID == escrowID {
			out = append(out, d)
		}
	}
	return out, nil
}

func TestOpenDisputeFilesRecord(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, clk := testLifecycle(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	disputes := &memDisputes{}
	svc.Disputes = disputes

	created, err := svc.Create(ctx, wizardForm())
	require.NoError(t, err)
	_, err = svc.Activate(ctx, created.ID)
	require.NoError(t, err)

	clk.advance(24 * time.Hour)
	_, err = svc.OpenDispute(ctx, created.ID, "Quality below agreement", "logo unusable", "partial refund")
	require.NoError(t, err)

	history, err := svc.DisputeHistory(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, "Quality below agreement", history[0].Reason)
	require.Equal(t, "partial refund", history[0].ProposedSolution)
	require.Equal(t, "open", history[0].Status)
}

func TestVerifyScoresAndCompletes(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	svc, clk := testLifecycle(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	review := &ReviewService{Lifecycle: svc, Oracle: oracle.NewHeuristic(0)}

	created, err := svc.Create(ctx, wizardForm())
	require.NoError(t, err)
	_, err = svc.Activate(ctx, created.ID)
	require.NoError(t, err)
	clk.advance(time.Hour)
	_, err = svc.SubmitWork(ctx, created.ID, escrow.RoleFreelancer)
	require.NoError(t, err)

	done, res, err := review.Verify(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, escrow.StatusCompleted, done.Status)
	require.Equal(t, res.Score, done.Verification.Score)
	require.GreaterOrEqual(t, res.Score, 0)
	require.LessOrEqual(t, res.Score, 100)

	// A second verification has nothing pending to score.
	_, _, err = review.Verify(ctx, created.ID)
	require.ErrorIs(t, err, escrow.ErrInvalidTransition)
}
