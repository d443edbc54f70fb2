// Package tui is the terminal front end: dashboard, escrow list, creation
// wizard, dispute form, earnings and settings, all driven by the lifecycle
// service underneath.
package tui

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kshaw/clearhold/internal/config"
	"github.com/kshaw/clearhold/internal/escrow"
	"github.com/kshaw/clearhold/internal/oracle"
	"github.com/kshaw/clearhold/internal/profile"
	"github.com/kshaw/clearhold/internal/secrets"
	"github.com/kshaw/clearhold/internal/service"
)

// App ties together views.
type App struct {
	ctx       context.Context
	cfg       config.Config
	lifecycle *service.LifecycleService
	review    *service.ReviewService
	maint     *service.MaintenanceService // nil on the JSON backend
	user      profile.User

	state appState

	// list view
	escrows    []escrow.Escrow // full unfiltered set, newest first
	listCursor int
	tabIndex   int
	search     string
	searching  bool

	// detail view
	detailID string

	// wizard
	form      escrow.FormState
	step      escrow.Step
	field     int
	msCursor  int    // milestone row being edited
	editingID string // non-empty when editing a stored draft
	formError string

	// dispute form
	dispReasonIdx int
	dispField     int
	dispDetails   string
	dispSolution  string

	// settings
	settingsCursor int
	settingsMode   settingsMode
	inputBuffer    string

	status    string
	verifying bool
	currency  string
}

type appState string

const (
	viewDashboard appState = "dashboard"
	viewEscrows   appState = "escrows"
	viewDetail    appState = "detail"
	viewWizard    appState = "wizard"
	viewDispute   appState = "dispute"
	viewEarnings  appState = "earnings"
	viewSettings  appState = "settings"
)

type settingsMode string

const (
	settingsModeIdle      settingsMode = "idle"
	settingsModeWallet    settingsMode = "wallet"
	settingsModeName      settingsMode = "name"
	settingsModeOracleKey settingsMode = "oracleKey"
	settingsModeConfirm   settingsMode = "confirm"
)

// oracleKeySecret names the oracle API key in the secret store.
const oracleKeySecret = "oracle"

// statusTabs is the fixed tab order above the escrow list.
var statusTabs = []string{"all", "incomplete", "active", "pending", "completed", "disputed"}

// disputeReasons mirrors the options offered when opening a dispute.
var disputeReasons = []string{
	"Work not delivered",
	"Quality below agreement",
	"Missed deadline",
	"Scope disagreement",
	"Other",
}

func New(ctx context.Context, cfg config.Config, lifecycle *service.LifecycleService, review *service.ReviewService, maint *service.MaintenanceService, user profile.User) *App {
	return &App{
		ctx:       ctx,
		cfg:       cfg,
		lifecycle: lifecycle,
		review:    review,
		maint:     maint,
		user:      user,
		currency:  cfg.UI.CurrencySymbol,
	}
}

func (a *App) Init() tea.Cmd {
	return a.loadEscrows()
}

func (a *App) loadEscrows() tea.Cmd {
	return func() tea.Msg {
		list, err := a.lifecycle.List(a.ctx, escrow.Query{})
		if err != nil {
			return errMsg{err}
		}
		return escrowsMsg(list)
	}
}

// visible applies the current tab and search to the loaded set.
func (a *App) visible() []escrow.Escrow {
	return escrow.Filter(a.escrows, escrow.Query{
		Status: statusTabs[a.tabIndex],
		Search: a.search,
	})
}

func (a *App) selected() *escrow.Escrow {
	vis := a.visible()
	if len(vis) == 0 || a.listCursor >= len(vis) {
		return nil
	}
	e := vis[a.listCursor]
	return &e
}

func (a *App) detail() *escrow.Escrow {
	for i := range a.escrows {
		if a.escrows[i].ID == a.detailID {
			return &a.escrows[i]
		}
	}
	return nil
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		switch a.state {
		case viewWizard:
			return a.handleWizardKey(m)
		case viewDispute:
			return a.handleDisputeKey(m)
		case viewSettings:
			return a.handleSettingsKey(m)
		case viewDetail:
			return a.handleDetailKey(m)
		}
		if a.searching {
			return a.handleSearchKey(m)
		}
		return a.handleListKey(m)

	case escrowsMsg:
		a.escrows = []escrow.Escrow(m)
		if vis := a.visible(); a.listCursor >= len(vis) {
			a.listCursor = 0
		}
	case statusMsg:
		a.status = string(m)
	case errMsg:
		a.status = "error: " + m.Error()
		a.verifying = false
	case transitionDoneMsg:
		a.status = m.note
		return a, a.loadEscrows()
	case verifyDoneMsg:
		a.verifying = false
		a.status = verificationSummary(m.escrow, m.result, a.currency)
		return a, a.loadEscrows()
	}
	return a, nil
}

func (a *App) handleListKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "d":
		a.state = viewDashboard
	case "l":
		a.state = viewEscrows
	case "e":
		a.state = viewEarnings
	case "p":
		a.state = viewSettings
		a.status = ""
	case "n":
		a.startWizard(escrow.FormState{}, "")
	case "/":
		if a.state == viewEscrows {
			a.searching = true
		}
	case "tab":
		if a.state == viewEscrows {
			a.tabIndex = (a.tabIndex + 1) % len(statusTabs)
			a.listCursor = 0
		}
	case "shift+tab":
		if a.state == viewEscrows {
			a.tabIndex = (a.tabIndex - 1 + len(statusTabs)) % len(statusTabs)
			a.listCursor = 0
		}
	case "up", "k":
		if a.state == viewEscrows && a.listCursor > 0 {
			a.listCursor--
		}
	case "down", "j":
		if a.state == viewEscrows && a.listCursor < len(a.visible())-1 {
			a.listCursor++
		}
	case "enter":
		if a.state == viewEscrows {
			if e := a.selected(); e != nil {
				a.detailID = e.ID
				a.state = viewDetail
				a.status = ""
			}
		} else if a.state == viewDashboard {
			a.state = viewEscrows
		}
	case "esc":
		if a.search != "" {
			a.search = ""
			a.listCursor = 0
		} else {
			a.state = viewDashboard
		}
	}
	return a, nil
}

func (a *App) handleSearchKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEsc:
		a.searching = false
		a.search = ""
		a.listCursor = 0
	case tea.KeyEnter:
		a.searching = false
		a.listCursor = 0
	case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
		if len(a.search) > 0 {
			a.search = a.search[:len(a.search)-1]
		}
	case tea.KeySpace:
		a.search += " "
	case tea.KeyRunes:
		a.search += string(m.Runes)
	}
	return a, nil
}

func (a *App) handleDetailKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	e := a.detail()
	switch m.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "esc", "l":
		a.state = viewEscrows
		a.status = ""
		return a, nil
	}
	if e == nil {
		return a, nil
	}
	switch m.String() {
	case "f":
		if e.Status == escrow.StatusIncomplete {
			return a, a.activateCmd(e.ID)
		}
	case "e":
		if e.Status == escrow.StatusIncomplete {
			a.startWizard(escrow.FormFromEscrow(*e), e.ID)
		}
	case "m":
		if e.Status == escrow.StatusActive {
			idx := nextOpenMilestone(*e)
			if idx < 0 {
				a.status = "all milestones already complete"
				return a, nil
			}
			return a, a.milestoneCmd(e.ID, idx)
		}
	case "s":
		if e.Status == escrow.StatusActive {
			return a, a.submitCmd(e.ID)
		}
	case "v":
		if e.Status == escrow.StatusPending && !a.verifying {
			a.verifying = true
			a.status = "verification in progress..."
			return a, a.verifyCmd(e.ID)
		}
	case "x":
		if e.Status == escrow.StatusActive || e.Status == escrow.StatusPending {
			a.state = viewDispute
			a.dispReasonIdx, a.dispField = 0, 0
			a.dispDetails, a.dispSolution = "", ""
			a.status = ""
		}
	}
	return a, nil
}

func (a *App) startWizard(f escrow.FormState, editingID string) {
	if editingID == "" {
		f = escrow.NewFormState()
		f.AutoRelease = a.cfg.Escrow.AutoRelease
		f.DisputeWindowDays = a.cfg.Escrow.DisputeWindowDays
	}
	a.form = f
	a.step = escrow.StepDetails
	a.field = 0
	a.msCursor = 0
	a.editingID = editingID
	a.formError = ""
	a.state = viewWizard
	a.status = ""
}

func nextOpenMilestone(e escrow.Escrow) int {
	for i, m := range e.Milestones {
		if !m.Done {
			return i
		}
	}
	return -1
}

// commands

func (a *App) activateCmd(id string) tea.Cmd {
	return func() tea.Msg {
		e, err := a.lifecycle.Activate(a.ctx, id)
		if err != nil {
			return errMsg{err}
		}
		totals, err := escrow.ComputeTotals(e.AmountCents, a.cfg.Escrow.FeeRate)
		if err != nil {
			return errMsg{err}
		}
		return transitionDoneMsg{note: "escrow funded: " + money(totals.TotalCents, a.currency) +
			" deposited (" + money(totals.FeeCents, a.currency) + " platform fee)"}
	}
}

func (a *App) submitCmd(id string) tea.Cmd {
	return func() tea.Msg {
		if _, err := a.lifecycle.SubmitWork(a.ctx, id, a.user.Role); err != nil {
			return errMsg{err}
		}
		return transitionDoneMsg{note: "work submitted for verification"}
	}
}

func (a *App) verifyCmd(id string) tea.Cmd {
	return func() tea.Msg {
		e, res, err := a.review.Verify(a.ctx, id)
		if err != nil {
			return errMsg{err}
		}
		return verifyDoneMsg{escrow: e, result: res}
	}
}

func (a *App) milestoneCmd(id string, index int) tea.Cmd {
	return func() tea.Msg {
		e, err := a.lifecycle.CompleteMilestone(a.ctx, id, index)
		if err != nil {
			return errMsg{err}
		}
		return transitionDoneMsg{note: "milestone complete (" + e.MilestoneLabel() + ")"}
	}
}

func (a *App) disputeCmd(id, reason, details, solution string) tea.Cmd {
	return func() tea.Msg {
		if _, err := a.lifecycle.OpenDispute(a.ctx, id, reason, details, solution); err != nil {
			return errMsg{err}
		}
		return transitionDoneMsg{note: "dispute opened"}
	}
}

func (a *App) createCmd() tea.Cmd {
	form := a.form
	editing := a.editingID
	return func() tea.Msg {
		if editing != "" {
			if _, err := a.lifecycle.UpdateDraft(a.ctx, editing, form); err != nil {
				return errMsg{err}
			}
			return transitionDoneMsg{note: "draft updated"}
		}
		e, err := a.lifecycle.Create(a.ctx, form)
		if err != nil {
			return errMsg{err}
		}
		return transitionDoneMsg{note: "escrow " + e.Code + " created"}
	}
}

func (a *App) resetCmd() tea.Cmd {
	return func() tea.Msg {
		if a.maint == nil {
			return errMsg{errResetUnavailable}
		}
		if err := a.maint.Reset(a.ctx); err != nil {
			return errMsg{err}
		}
		return transitionDoneMsg{note: "storage cleared"}
	}
}

func (a *App) saveProfileCmd() tea.Cmd {
	user := a.user
	return func() tea.Msg {
		if err := profile.Save(user); err != nil {
			return errMsg{err}
		}
		return statusMsg("profile saved")
	}
}

func (a *App) saveOracleKeyCmd(key string) tea.Cmd {
	return func() tea.Msg {
		if key == "" {
			if err := secrets.Delete(oracleKeySecret); err != nil {
				return errMsg{err}
			}
			return statusMsg("oracle key removed")
		}
		if err := secrets.Store(oracleKeySecret, key); err != nil {
			return errMsg{err}
		}
		return statusMsg("oracle key saved")
	}
}

var errResetUnavailable = errors.New("reset is only available on the sqlite backend")

// messages

type escrowsMsg []escrow.Escrow

type statusMsg string

type errMsg struct{ error }

type transitionDoneMsg struct{ note string }

type verifyDoneMsg struct {
	escrow escrow.Escrow
	result oracle.ScoreResult
}

func verificationSummary(e escrow.Escrow, res oracle.ScoreResult, currency string) string {
	var b strings.Builder
	b.WriteString("verified: score ")
	b.WriteString(strconv.Itoa(res.Score))
	b.WriteString("/100, payout ")
	b.WriteString(money(e.Verification.PaidCents, currency))
	if e.Verification.AutoReleased {
		b.WriteString(" released automatically")
	} else {
		b.WriteString(" held for manual review")
	}
	return b.String()
}
