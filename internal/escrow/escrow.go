// Package escrow holds the domain core: the escrow/milestone data model,
// the status state machine, wizard validation, payout math and the
// list filter engine. Nothing in here touches storage or the terminal.
package escrow

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Status is the lifecycle phase of an escrow.
type Status string

const (
	StatusIncomplete Status = "incomplete"
	StatusActive     Status = "active"
	StatusPending    Status = "pending"
	StatusCompleted  Status = "completed"
	StatusDisputed   Status = "disputed"
)

// Roles recognised by the submit-work guard. The profile layer stores one of
// these per user; anything that is not a freelancer counts as a client.
const (
	RoleFreelancer = "freelancer"
	RoleClient     = "client"
)

// Milestone is a priced, dated sub-deliverable owned by exactly one escrow.
// It has no identity of its own; milestones are rewritten with their parent.
type Milestone struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	AmountCents int64     `json:"amountCents"`
	Date        time.Time `json:"date"`
	Done        bool      `json:"done"`
}

// Submission records the freelancer handing work over for review.
type Submission struct {
	SubmittedAt time.Time `json:"submittedAt"`
}

// Verification is the oracle's verdict. It is constructed exactly once, by
// the pending→completed transition, and never amended.
type Verification struct {
	Score        int       `json:"score"`
	PaidCents    int64     `json:"paidCents"`
	AutoReleased bool      `json:"autoReleased"`
	CompletedAt  time.Time `json:"completedAt"`
}

// DisputeNote marks an escrow as disputed. The dispute's own record (reason,
// details, proposed solution) lives in the dispute store.
type DisputeNote struct {
	Reason   string    `json:"reason"`
	OpenedAt time.Time `json:"openedAt"`
}

// Escrow is the central record. Monetary values are integer cents.
//
// Phase-specific data hangs off optional structs: only the transition that
// enters a phase constructs the matching struct, so an active escrow cannot
// carry a verification score and an incomplete one cannot carry a
// submission timestamp.
type Escrow struct {
	ID   string `json:"id"`
	Code string `json:"code"` // display code, e.g. "#ESC-2026-4F09A1"

	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Category          string    `json:"category"`
	FreelancerAddress string    `json:"freelancerAddress"`
	Deadline          time.Time `json:"deadline"`

	// Terms chosen in the wizard.
	AutoRelease       bool     `json:"autoRelease"`
	DisputeWindowDays int      `json:"disputeWindowDays"`
	Checks            []string `json:"checks"`

	AmountCents int64       `json:"amountCents"`
	Milestones  []Milestone `json:"milestones"`

	Status   Status `json:"status"`
	Progress int    `json:"progress"` // 0-100, derived from completed milestones, meaningful while active

	ActivatedAt  *time.Time    `json:"activatedAt,omitempty"`
	Submission   *Submission   `json:"submission,omitempty"`
	Verification *Verification `json:"verification,omitempty"`
	Dispute      *DisputeNote  `json:"dispute,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// ValidAddress reports whether s has the canonical 0x + 40 hex form.
// The core records addresses; it never verifies them on-chain.
func ValidAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// NewCode derives the human-readable display code from the record id and the
// creation year.
func NewCode(id string, year int) string {
	hex := strings.ToUpper(strings.ReplaceAll(id, "-", ""))
	if len(hex) > 6 {
		hex = hex[:6]
	}
	return fmt.Sprintf("#ESC-%d-%s", year, hex)
}

// SumMilestones returns the total of the milestone amounts.
func SumMilestones(ms []Milestone) int64 {
	var total int64
	for _, m := range ms {
		total += m.AmountCents
	}
	return total
}

// DeriveProgress computes the completion percentage from done-milestone
// count, rounded to the nearest whole percent.
func DeriveProgress(ms []Milestone) int {
	if len(ms) == 0 {
		return 0
	}
	done := 0
	for _, m := range ms {
		if m.Done {
			done++
		}
	}
	return int(float64(done)/float64(len(ms))*100 + 0.5)
}

// MilestoneLabel renders the "1 of 3" style counter shown in list views.
func (e Escrow) MilestoneLabel() string {
	done := 0
	for _, m := range e.Milestones {
		if m.Done {
			done++
		}
	}
	return fmt.Sprintf("%d of %d", done, len(e.Milestones))
}

// Validate checks the record invariants that must hold at rest.
// Once an escrow is past incomplete its amount is frozen, so the
// amount==sum(milestones) invariant is only enforced before activation.
func (e Escrow) Validate() error {
	if len(e.Milestones) == 0 {
		return fmt.Errorf("%w: at least one milestone required", ErrValidationFailed)
	}
	if e.AmountCents < 0 {
		return ErrInvalidAmount
	}
	if e.Status == StatusIncomplete && e.AmountCents != SumMilestones(e.Milestones) {
		return fmt.Errorf("%w: amount must equal milestone total", ErrValidationFailed)
	}
	for i, m := range e.Milestones {
		if strings.TrimSpace(m.Title) == "" || strings.TrimSpace(m.Description) == "" {
			return fmt.Errorf("%w: milestone %d incomplete", ErrValidationFailed, i+1)
		}
		if m.AmountCents <= 0 {
			return fmt.Errorf("%w: milestone %d amount", ErrInvalidAmount, i+1)
		}
	}
	return nil
}

// Clone returns a deep copy, so callers can stage a mutation and keep the
// original untouched if a later step fails.
func (e Escrow) Clone() Escrow {
	c := e
	c.Milestones = append([]Milestone(nil), e.Milestones...)
	c.Checks = append([]string(nil), e.Checks...)
	if e.ActivatedAt != nil {
		t := *e.ActivatedAt
		c.ActivatedAt = &t
	}
	if e.Submission != nil {
		s := *e.Submission
		c.Submission = &s
	}
	if e.Verification != nil {
		v := *e.Verification
		c.Verification = &v
	}
	if e.Dispute != nil {
		d := *e.Dispute
		c.Dispute = &d
	}
	return c
}
