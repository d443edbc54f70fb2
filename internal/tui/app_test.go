package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kshaw/clearhold/internal/config"
	"github.com/kshaw/clearhold/internal/escrow"
	"github.com/kshaw/clearhold/internal/profile"
)

func testApp(t *testing.T) *App {
	t.Helper()
	cfg := config.Config{
		Storage: config.StorageConfig{Driver: "json", Path: "test.json"},
		Escrow:  config.EscrowConfig{AutoRelease: true, DisputeWindowDays: 7, FeeRate: 0.02},
		UI:      config.UIConfig{CurrencySymbol: "$"},
	}
	user := profile.User{FirstName: "Sam", Role: escrow.RoleFreelancer}
	a := New(context.Background(), cfg, nil, nil, nil, user)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	a.escrows = []escrow.Escrow{
		{ID: "3", Code: "#ESC-2026-CCCCCC", Title: "Logo animation", Status: escrow.StatusActive, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "2", Code: "#ESC-2026-BBBBBB", Title: "API integration", Status: escrow.StatusPending, CreatedAt: base.Add(time.Hour)},
		{ID: "1", Code: "#ESC-2026-AAAAAA", Title: "Logo redesign", Status: escrow.StatusActive, CreatedAt: base},
	}
	return a
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestTabCyclingFiltersList(t *testing.T) {
	a := testApp(t)
	a.state = viewEscrows

	if got := len(a.visible()); got != 3 {
		t.Fatalf("all tab shows %d, want 3", got)
	}

	a.Update(key("tab")) // incomplete
	if got := len(a.visible()); got != 0 {
		t.Errorf("incomplete tab shows %d, want 0", got)
	}

	a.Update(key("tab")) // active
	if got := len(a.visible()); got != 2 {
		t.Errorf("active tab shows %d, want 2", got)
	}
	if a.listCursor != 0 {
		t.Errorf("cursor should reset on tab change, got %d", a.listCursor)
	}
}

func TestSearchNarrowsAndClears(t *testing.T) {
	a := testApp(t)
	a.state = viewEscrows

	a.Update(key("/"))
	if !a.searching {
		t.Fatal("slash should enter search mode")
	}
	for _, r := range "logo" {
		a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	a.Update(key("enter"))
	if got := len(a.visible()); got != 2 {
		t.Errorf("search 'logo' shows %d, want 2", got)
	}

	a.Update(key("esc"))
	if a.search != "" {
		t.Error("esc should clear the search")
	}
	if got := len(a.visible()); got != 3 {
		t.Errorf("cleared search shows %d, want 3", got)
	}
}

func TestEnterOpensDetail(t *testing.T) {
	a := testApp(t)
	a.state = viewEscrows
	a.listCursor = 1

	a.Update(key("enter"))
	if a.state != viewDetail {
		t.Fatalf("state = %s, want detail", a.state)
	}
	if a.detailID != "2" {
		t.Errorf("detailID = %q, want 2", a.detailID)
	}
	if a.detail() == nil {
		t.Fatal("detail record not found")
	}
}

func TestNewEscrowStartsWizardWithDefaults(t *testing.T) {
	a := testApp(t)
	a.state = viewEscrows

	a.Update(key("n"))
	if a.state != viewWizard {
		t.Fatalf("state = %s, want wizard", a.state)
	}
	if a.step != escrow.StepDetails {
		t.Errorf("step = %d, want details", a.step)
	}
	if !a.form.AutoRelease || a.form.DisputeWindowDays != 7 {
		t.Errorf("config defaults not applied: %+v", a.form)
	}
	if len(a.form.Milestones) != 1 {
		t.Errorf("wizard should start with one empty milestone")
	}
}

func TestWizardStepGate(t *testing.T) {
	a := testApp(t)
	a.state = viewEscrows
	a.Update(key("n"))

	// Jump the field cursor to the end and try to advance with an empty form.
	a.field = detailFieldCount - 1
	a.Update(key("enter"))
	if a.step != escrow.StepDetails {
		t.Errorf("empty details advanced to step %d", a.step)
	}
	if a.formError == "" {
		t.Error("invalid step should set a form error")
	}
}

func TestMoneyFormatting(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{110400, "$1104.00"},
		{5, "$0.05"},
		{-2050, "-$20.50"},
		{0, "$0.00"},
	}
	for _, tt := range tests {
		if got := money(tt.cents, "$"); got != tt.want {
			t.Errorf("money(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}
