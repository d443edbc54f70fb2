package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/kshaw/clearhold/internal/database/repository"
	"github.com/kshaw/clearhold/internal/escrow"
)

// SeedDemo inserts sample escrows into an empty store so a fresh install has
// something to look at. It is idempotent and safe to run on every startup.
func SeedDemo(ctx context.Context, db *sql.DB) error {
	repo := repository.NewEscrowRepo(db)
	existing, err := repo.List(ctx, escrow.Query{})
	if err == nil && len(existing) > 0 {
		return nil
	}
	for _, e := range DemoEscrows(Now()) {
		if err := repo.Insert(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// DemoEscrows builds the sample records relative to now, one per interesting
// lifecycle state. IDs are derived from the titles so reseeding an emptied
// store produces the same records.
func DemoEscrows(now time.Time) []escrow.Escrow {
	now = now.UTC()
	day := 24 * time.Hour

	mk := func(title string) (string, string) {
		id := uuid.NewSHA1(uuid.NameSpaceOID, []byte("escrow:"+title)).String()
		return id, escrow.NewCode(id, now.Year())
	}

	activeID, activeCode := mk("E-commerce Website Development")
	activatedAt := now.Add(-5 * day)
	active := escrow.Escrow{
		ID:                activeID,
		Code:              activeCode,
		Title:             "E-commerce Website Development",
		Description:       "Storefront, cart and checkout for a boutique retailer.",
		Category:          "Development & IT",
		FreelancerAddress: "0x742d35Cc6634C0532925a3b844Bc454e4438f44e",
		Deadline:          now.Add(30 * day),
		AutoRelease:       true,
		DisputeWindowDays: 7,
		Checks:            []string{"quality_check", "completeness"},
		Milestones: []escrow.Milestone{
			{Title: "Storefront", Description: "Product listing and search", AmountCents: 150000, Date: now.Add(10 * day), Done: true},
			{Title: "Checkout", Description: "Cart and payment flow", AmountCents: 200000, Date: now.Add(25 * day)},
		},
		AmountCents: 350000,
		Status:      escrow.StatusActive,
		Progress:    50,
		ActivatedAt: &activatedAt,
		CreatedAt:   now.Add(-6 * day),
		UpdatedAt:   now.Add(-2 * day),
	}

	pendingID, pendingCode := mk("Mobile App UI Design")
	pendingActivated := now.Add(-12 * day)
	pending := escrow.Escrow{
		ID:                pendingID,
		Code:              pendingCode,
		Title:             "Mobile App UI Design",
		Description:       "Full screen set for an iOS fitness tracker.",
		Category:          "Design & Creative",
		FreelancerAddress: "0x8ba1f109551bD432803012645Ac136ddd64DBA72",
		Deadline:          now.Add(14 * day),
		AutoRelease:       true,
		DisputeWindowDays: 7,
		Checks:            []string{"quality_check", "completeness", "plagiarism"},
		Milestones: []escrow.Milestone{
			{Title: "Wireframes", Description: "Low fidelity flows", AmountCents: 60000, Date: now.Add(-8 * day), Done: true},
			{Title: "High fidelity", Description: "Final screens and assets", AmountCents: 120000, Date: now.Add(-1 * day), Done: true},
		},
		AmountCents: 180000,
		Status:      escrow.StatusPending,
		Progress:    100,
		ActivatedAt: &pendingActivated,
		Submission:  &escrow.Submission{SubmittedAt: now.Add(-1 * day)},
		CreatedAt:   now.Add(-13 * day),
		UpdatedAt:   now.Add(-1 * day),
	}

	doneID, doneCode := mk("Technical Blog Series")
	doneActivated := now.Add(-40 * day)
	done := escrow.Escrow{
		ID:                doneID,
		Code:              doneCode,
		Title:             "Technical Blog Series",
		Description:       "Six articles on cloud cost optimisation.",
		Category:          "Writing & Content",
		FreelancerAddress: "0xdAC17F958D2ee523a2206206994597C13D831ec7",
		Deadline:          now.Add(-10 * day),
		AutoRelease:       true,
		DisputeWindowDays: 14,
		Checks:            []string{"quality_check", "completeness", "plagiarism"},
		Milestones: []escrow.Milestone{
			{Title: "First three articles", Description: "Drafts and revisions", AmountCents: 45000, Date: now.Add(-25 * day), Done: true},
			{Title: "Final three articles", Description: "Drafts and revisions", AmountCents: 45000, Date: now.Add(-12 * day), Done: true},
		},
		AmountCents: 90000,
		Status:      escrow.StatusCompleted,
		Progress:    100,
		ActivatedAt: &doneActivated,
		Submission:  &escrow.Submission{SubmittedAt: now.Add(-11 * day)},
		Verification: &escrow.Verification{
			Score:        94,
			PaidCents:    84600,
			AutoReleased: true,
			CompletedAt:  now.Add(-10 * day),
		},
		CreatedAt: now.Add(-42 * day),
		UpdatedAt: now.Add(-10 * day),
	}

	draftID, draftCode := mk("Product Launch Video")
	draft := escrow.Escrow{
		ID:                draftID,
		Code:              draftCode,
		Title:             "Product Launch Video",
		Description:       "Ninety second animated explainer.",
		Category:          "Video & Animation",
		FreelancerAddress: "0x6B175474E89094C44Da98b954EedeAC495271d0F",
		Deadline:          now.Add(45 * day),
		AutoRelease:       false,
		DisputeWindowDays: 7,
		Checks:            []string{"quality_check"},
		Milestones: []escrow.Milestone{
			{Title: "Storyboard", Description: "Script and scene plan", AmountCents: 50000, Date: now.Add(15 * day)},
			{Title: "Final cut", Description: "Rendered video with audio", AmountCents: 150000, Date: now.Add(40 * day)},
		},
		AmountCents: 200000,
		Status:      escrow.StatusIncomplete,
		CreatedAt:   now.Add(-1 * day),
		UpdatedAt:   now.Add(-1 * day),
	}

	disputedID, disputedCode := mk("Landing Page Copywriting")
	disputedActivated := now.Add(-9 * day)
	disputed := escrow.Escrow{
		ID:                disputedID,
		Code:              disputedCode,
		Title:             "Landing Page Copywriting",
		Description:       "Hero, features and pricing copy for a SaaS launch.",
		Category:          "Writing & Content",
		FreelancerAddress: "0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599",
		Deadline:          now.Add(5 * day),
		AutoRelease:       true,
		DisputeWindowDays: 7,
		Checks:            []string{"quality_check", "plagiarism"},
		Milestones: []escrow.Milestone{
			{Title: "First draft", Description: "All sections drafted", AmountCents: 40000, Date: now.Add(-4 * day), Done: true},
			{Title: "Final copy", Description: "Revisions applied", AmountCents: 40000, Date: now.Add(3 * day)},
		},
		AmountCents: 80000,
		Status:      escrow.StatusDisputed,
		Progress:    50,
		ActivatedAt: &disputedActivated,
		Dispute:     &escrow.DisputeNote{Reason: "Quality below agreement", OpenedAt: now.Add(-3 * day)},
		CreatedAt:   now.Add(-10 * day),
		UpdatedAt:   now.Add(-3 * day),
	}

	return []escrow.Escrow{active, pending, done, draft, disputed}
}
