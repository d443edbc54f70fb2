package escrow

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func validForm() FormState {
	f := NewFormState()
	f.Title = "API integration"
	f.Description = "Wire the payments API"
	f.Category = "Development & IT"
	f.Deadline = "2026-05-01"
	f.FreelancerAddress = "0xAbCdEf1234567890aBcDeF1234567890abcdef12"
	f.Milestones = []MilestoneForm{
		{Title: "Spike", Description: "Feasibility", Amount: "250.50", Date: "2026-04-01"},
		{Title: "Build", Description: "Implementation", Amount: "749.50", Date: "2026-04-20"},
	}
	f.ConsentAccepted = true
	return f
}

func TestIsStepValidDetails(t *testing.T) {
	f := validForm()
	if !IsStepValid(StepDetails, f) {
		t.Fatal("complete details step should validate")
	}

	tests := []struct {
		name   string
		mutate func(*FormState)
	}{
		{"missing title", func(f *FormState) { f.Title = " " }},
		{"missing description", func(f *FormState) { f.Description = "" }},
		{"missing category", func(f *FormState) { f.Category = "" }},
		{"missing deadline", func(f *FormState) { f.Deadline = "" }},
		{"address too short", func(f *FormState) { f.FreelancerAddress = "0xabc" }},
		{"address bad prefix", func(f *FormState) {
			f.FreelancerAddress = "1x" + strings.Repeat("a", 40)
		}},
		{"address non-hex", func(f *FormState) {
			f.FreelancerAddress = "0x" + strings.Repeat("g", 40)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.mutate(&f)
			if IsStepValid(StepDetails, f) {
				t.Error("step should not validate")
			}
		})
	}
}

func TestIsStepValidMilestones(t *testing.T) {
	f := validForm()
	if !IsStepValid(StepMilestones, f) {
		t.Fatal("complete milestones step should validate")
	}

	tests := []struct {
		name   string
		mutate func(*FormState)
	}{
		{"no milestones", func(f *FormState) { f.Milestones = nil }},
		{"blank title", func(f *FormState) { f.Milestones[0].Title = "" }},
		{"zero amount", func(f *FormState) { f.Milestones[0].Amount = "0" }},
		{"negative amount", func(f *FormState) { f.Milestones[0].Amount = "-5" }},
		{"garbage amount", func(f *FormState) { f.Milestones[0].Amount = "ten" }},
		{"bad date", func(f *FormState) { f.Milestones[1].Date = "01/04/2026" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.mutate(&f)
			if IsStepValid(StepMilestones, f) {
				t.Error("step should not validate")
			}
		})
	}
}

func TestParseCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"100", 10000, false},
		{"250.50", 25050, false},
		{"0.005", 1, false}, // half-up
		{"999.994", 99999, false},
		{" 12 ", 1200, false},
		{"", 0, true},
		{"-1", 0, true},
		{"NaN", 0, true},
		{"Inf", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseCents(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidAmount) {
				t.Errorf("ParseCents(%q) err = %v, want ErrInvalidAmount", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseCents(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCents(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFormTotalIgnoresUnparsable(t *testing.T) {
	f := validForm()
	f.Milestones = append(f.Milestones, MilestoneForm{Amount: "half-typed"})
	if got := f.TotalCents(); got != 100000 {
		t.Errorf("total = %d, want 100000", got)
	}
}

func TestBuildEscrow(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	e, err := BuildEscrow(validForm(), now)
	if err != nil {
		t.Fatalf("BuildEscrow: %v", err)
	}
	if e.Status != StatusIncomplete {
		t.Errorf("status = %s, want incomplete", e.Status)
	}
	if e.AmountCents != 100000 {
		t.Errorf("amount = %d, want 100000", e.AmountCents)
	}
	if !strings.HasPrefix(e.Code, "#ESC-2026-") || len(e.Code) != len("#ESC-2026-")+6 {
		t.Errorf("code = %q", e.Code)
	}
	if e.DisputeWindowDays != 7 {
		t.Errorf("window = %d, want default 7", e.DisputeWindowDays)
	}
	want := []string{"quality_check", "completeness"}
	if len(e.Checks) != len(want) || e.Checks[0] != want[0] || e.Checks[1] != want[1] {
		t.Errorf("checks = %v, want %v", e.Checks, want)
	}
}

func TestBuildEscrowRequiresConsent(t *testing.T) {
	f := validForm()
	f.ConsentAccepted = false
	if _, err := BuildEscrow(f, time.Now()); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("err = %v, want ErrValidationFailed", err)
	}
}

func TestBuildEscrowRejectsPastDates(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	f := validForm()
	f.Deadline = "2026-02-28"
	if _, err := BuildEscrow(f, now); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("past deadline err = %v, want ErrValidationFailed", err)
	}

	f = validForm()
	f.Milestones[0].Date = "2026-01-15"
	if _, err := BuildEscrow(f, now); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("past milestone date err = %v, want ErrValidationFailed", err)
	}

	// Today is fine.
	f = validForm()
	f.Milestones[0].Date = "2026-03-01"
	if _, err := BuildEscrow(f, now); err != nil {
		t.Errorf("today-dated milestone: %v", err)
	}
}

func TestNewFormStateDefaults(t *testing.T) {
	f := NewFormState()
	if len(f.Milestones) != 1 {
		t.Errorf("milestones = %d, want 1 empty row", len(f.Milestones))
	}
	if !f.AutoRelease {
		t.Error("auto release should default on")
	}
	if f.DisputeWindowDays != 7 {
		t.Errorf("window = %d, want 7", f.DisputeWindowDays)
	}
	if !f.Checks["quality_check"] || !f.Checks["completeness"] {
		t.Error("baseline checks should default on")
	}
	if f.Checks["plagiarism"] || f.Checks["performance"] {
		t.Error("optional checks should default off")
	}
}
