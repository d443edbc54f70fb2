package escrow

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Step identifies a page of the creation wizard.
type Step int

const (
	StepDetails Step = iota + 1
	StepMilestones
	StepTerms
	StepReview
)

// DateLayout is the wire format for dates entered in the wizard.
const DateLayout = "2006-01-02"

// MilestoneForm is one milestone as typed into the wizard, still unparsed.
type MilestoneForm struct {
	Title       string
	Description string
	Amount      string
	Date        string
}

// FormState is the accumulated wizard input. Field values stay as entered;
// parsing happens in IsStepValid / BuildEscrow so a half-typed amount never
// crashes the form.
type FormState struct {
	Title             string
	Description       string
	Category          string
	Deadline          string
	FreelancerAddress string

	Milestones []MilestoneForm

	AutoRelease       bool
	DisputeWindowDays int
	Checks            map[string]bool

	ConsentAccepted bool
}

// NewFormState returns the wizard defaults: one empty milestone, auto
// release on, the recommended 7-day dispute window and the baseline
// verification checks.
func NewFormState() FormState {
	return FormState{
		Milestones:        []MilestoneForm{{}},
		AutoRelease:       true,
		DisputeWindowDays: 7,
		Checks: map[string]bool{
			"quality_check": true,
			"completeness":  true,
			"plagiarism":    false,
			"performance":   false,
		},
	}
}

// Categories lists the project categories offered in the details step.
func Categories() []string {
	return []string{
		"Design & Creative",
		"Development & IT",
		"Writing & Content",
		"Marketing & Sales",
		"Video & Animation",
		"Other",
	}
}

// DisputeWindows lists the selectable dispute windows in days.
func DisputeWindows() []int { return []int{3, 7, 14} }

// FormFromEscrow rebuilds wizard state from a stored draft so an incomplete
// escrow can be edited with the same form it was created with.
func FormFromEscrow(e Escrow) FormState {
	f := FormState{
		Title:             e.Title,
		Description:       e.Description,
		Category:          e.Category,
		Deadline:          e.Deadline.Format(DateLayout),
		FreelancerAddress: e.FreelancerAddress,
		AutoRelease:       e.AutoRelease,
		DisputeWindowDays: e.DisputeWindowDays,
		Checks: map[string]bool{
			"quality_check": false,
			"completeness":  false,
			"plagiarism":    false,
			"performance":   false,
		},
	}
	for _, name := range e.Checks {
		f.Checks[name] = true
	}
	for _, m := range e.Milestones {
		f.Milestones = append(f.Milestones, MilestoneForm{
			Title:       m.Title,
			Description: m.Description,
			Amount:      strconv.FormatFloat(float64(m.AmountCents)/100, 'f', 2, 64),
			Date:        m.Date.Format(DateLayout),
		})
	}
	if len(f.Milestones) == 0 {
		f.Milestones = []MilestoneForm{{}}
	}
	return f
}

// IsStepValid reports whether a wizard step is complete enough to advance.
// It never returns detail about which field failed; the caller surfaces a
// generic required-fields notice.
func IsStepValid(step Step, f FormState) bool {
	switch step {
	case StepDetails:
		return strings.TrimSpace(f.Title) != "" &&
			strings.TrimSpace(f.Description) != "" &&
			strings.TrimSpace(f.Category) != "" &&
			strings.TrimSpace(f.Deadline) != "" &&
			ValidAddress(strings.TrimSpace(f.FreelancerAddress))
	case StepMilestones:
		if len(f.Milestones) == 0 {
			return false
		}
		for _, m := range f.Milestones {
			if strings.TrimSpace(m.Title) == "" || strings.TrimSpace(m.Description) == "" {
				return false
			}
			cents, err := ParseCents(m.Amount)
			if err != nil || cents <= 0 {
				return false
			}
			if _, err := time.Parse(DateLayout, strings.TrimSpace(m.Date)); err != nil {
				return false
			}
		}
		return true
	case StepTerms, StepReview:
		// No required fields beyond what earlier steps enforce. Consent is
		// checked at submit time, not step-advance time.
		return true
	default:
		return false
	}
}

// TotalCents sums the milestone amounts as currently typed; unparsable
// entries count as zero, matching the live total the form displays.
func (f FormState) TotalCents() int64 {
	var total int64
	for _, m := range f.Milestones {
		if cents, err := ParseCents(m.Amount); err == nil && cents > 0 {
			total += cents
		}
	}
	return total
}

// ParseCents converts a decimal currency string to cents, half-up.
func ParseCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidAmount
	}
	if v < 0 {
		return 0, ErrInvalidAmount
	}
	return int64(math.Floor(v*100 + 0.5)), nil
}

// BuildEscrow turns a finished wizard form into a new incomplete escrow.
// The whole form is re-validated here: step predicates, explicit consent,
// and the dates-not-in-the-past rules that only apply at creation time.
func BuildEscrow(f FormState, now time.Time) (Escrow, error) {
	if !f.ConsentAccepted {
		return Escrow{}, fmt.Errorf("%w: consent not acknowledged", ErrValidationFailed)
	}
	return buildFromForm(f, now)
}

// buildFromForm is BuildEscrow minus the consent check; draft edits reuse it.
func buildFromForm(f FormState, now time.Time) (Escrow, error) {
	if !IsStepValid(StepDetails, f) || !IsStepValid(StepMilestones, f) {
		return Escrow{}, ErrValidationFailed
	}

	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	deadline, err := time.Parse(DateLayout, strings.TrimSpace(f.Deadline))
	if err != nil {
		return Escrow{}, ErrValidationFailed
	}
	if deadline.Before(today) {
		return Escrow{}, fmt.Errorf("%w: deadline in the past", ErrValidationFailed)
	}

	ms := make([]Milestone, 0, len(f.Milestones))
	for i, mf := range f.Milestones {
		cents, err := ParseCents(mf.Amount)
		if err != nil {
			return Escrow{}, err
		}
		date, err := time.Parse(DateLayout, strings.TrimSpace(mf.Date))
		if err != nil {
			return Escrow{}, ErrValidationFailed
		}
		if date.Before(today) {
			return Escrow{}, fmt.Errorf("%w: milestone %d date in the past", ErrValidationFailed, i+1)
		}
		ms = append(ms, Milestone{
			Title:       strings.TrimSpace(mf.Title),
			Description: strings.TrimSpace(mf.Description),
			AmountCents: cents,
			Date:        date,
		})
	}

	var checks []string
	for _, name := range []string{"quality_check", "completeness", "plagiarism", "performance"} {
		if f.Checks[name] {
			checks = append(checks, name)
		}
	}

	window := f.DisputeWindowDays
	if window == 0 {
		window = 7
	}

	id := uuid.NewString()
	e := Escrow{
		ID:                id,
		Code:              NewCode(id, now.Year()),
		Title:             strings.TrimSpace(f.Title),
		Description:       strings.TrimSpace(f.Description),
		Category:          f.Category,
		FreelancerAddress: strings.TrimSpace(f.FreelancerAddress),
		Deadline:          deadline,
		AutoRelease:       f.AutoRelease,
		DisputeWindowDays: window,
		Checks:            checks,
		AmountCents:       SumMilestones(ms),
		Milestones:        ms,
		Status:            StatusIncomplete,
		Progress:          0,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := e.Validate(); err != nil {
		return Escrow{}, err
	}
	return e, nil
}
