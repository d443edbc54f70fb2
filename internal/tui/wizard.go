package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kshaw/clearhold/internal/escrow"
)

// checkNames is the fixed order the verification checks appear in on the
// terms step.
var checkNames = []string{"quality_check", "completeness", "plagiarism", "performance"}

var checkLabels = map[string]string{
	"quality_check": "Quality check",
	"completeness":  "Completeness check",
	"plagiarism":    "Plagiarism scan",
	"performance":   "Performance review",
}

func (a *App) handleWizardKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "esc":
		if a.step > escrow.StepDetails {
			a.step--
			a.field = 0
			a.formError = ""
			return a, nil
		}
		a.state = viewEscrows
		return a, nil
	}

	switch a.step {
	case escrow.StepDetails:
		return a.handleDetailsStep(m)
	case escrow.StepMilestones:
		return a.handleMilestonesStep(m)
	case escrow.StepTerms:
		return a.handleTermsStep(m)
	case escrow.StepReview:
		return a.handleReviewStep(m)
	}
	return a, nil
}

// advance moves to the next step when the current one validates.
func (a *App) advance() {
	if !escrow.IsStepValid(a.step, a.form) {
		a.formError = "complete the highlighted fields before continuing"
		return
	}
	a.formError = ""
	a.step++
	a.field = 0
	a.msCursor = 0
}

const detailFieldCount = 5 // title, description, category, deadline, address

func (a *App) handleDetailsStep(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyUp:
		if a.field > 0 {
			a.field--
		}
		return a, nil
	case tea.KeyDown:
		if a.field < detailFieldCount-1 {
			a.field++
		}
		return a, nil
	case tea.KeyEnter:
		if a.field < detailFieldCount-1 {
			a.field++
			return a, nil
		}
		a.advance()
		return a, nil
	case tea.KeyLeft, tea.KeyRight:
		if a.field == 2 {
			a.form.Category = cycleOption(escrow.Categories(), a.form.Category, m.Type == tea.KeyRight)
		}
		return a, nil
	case tea.KeyBackspace, tea.KeyCtrlH:
		a.editDetailField(func(s string) string {
			if len(s) > 0 {
				return s[:len(s)-1]
			}
			return s
		})
		return a, nil
	case tea.KeySpace:
		a.editDetailField(func(s string) string { return s + " " })
		return a, nil
	case tea.KeyRunes:
		a.editDetailField(func(s string) string { return s + string(m.Runes) })
		return a, nil
	}
	return a, nil
}

func (a *App) editDetailField(edit func(string) string) {
	switch a.field {
	case 0:
		a.form.Title = edit(a.form.Title)
	case 1:
		a.form.Description = edit(a.form.Description)
	case 3:
		a.form.Deadline = edit(a.form.Deadline)
	case 4:
		a.form.FreelancerAddress = edit(a.form.FreelancerAddress)
	}
}

const milestoneFieldCount = 4 // title, description, amount, date

func (a *App) handleMilestonesStep(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "ctrl+a":
		a.form.Milestones = append(a.form.Milestones, escrow.MilestoneForm{})
		a.msCursor = len(a.form.Milestones) - 1
		a.field = 0
		return a, nil
	case "ctrl+d":
		if len(a.form.Milestones) > 1 {
			a.form.Milestones = append(a.form.Milestones[:a.msCursor], a.form.Milestones[a.msCursor+1:]...)
			if a.msCursor >= len(a.form.Milestones) {
				a.msCursor = len(a.form.Milestones) - 1
			}
			a.field = 0
		}
		return a, nil
	}

	switch m.Type {
	case tea.KeyUp:
		if a.field > 0 {
			a.field--
		} else if a.msCursor > 0 {
			a.msCursor--
			a.field = milestoneFieldCount - 1
		}
		return a, nil
	case tea.KeyDown:
		a.nextMilestoneField()
		return a, nil
	case tea.KeyEnter:
		if a.field == milestoneFieldCount-1 && a.msCursor == len(a.form.Milestones)-1 {
			a.advance()
			return a, nil
		}
		a.nextMilestoneField()
		return a, nil
	case tea.KeyBackspace, tea.KeyCtrlH:
		a.editMilestoneField(func(s string) string {
			if len(s) > 0 {
				return s[:len(s)-1]
			}
			return s
		})
		return a, nil
	case tea.KeySpace:
		a.editMilestoneField(func(s string) string { return s + " " })
		return a, nil
	case tea.KeyRunes:
		a.editMilestoneField(func(s string) string { return s + string(m.Runes) })
		return a, nil
	}
	return a, nil
}

func (a *App) nextMilestoneField() {
	if a.field < milestoneFieldCount-1 {
		a.field++
	} else if a.msCursor < len(a.form.Milestones)-1 {
		a.msCursor++
		a.field = 0
	}
}

func (a *App) editMilestoneField(edit func(string) string) {
	ms := &a.form.Milestones[a.msCursor]
	switch a.field {
	case 0:
		ms.Title = edit(ms.Title)
	case 1:
		ms.Description = edit(ms.Description)
	case 2:
		ms.Amount = edit(ms.Amount)
	case 3:
		ms.Date = edit(ms.Date)
	}
}

func (a *App) handleTermsStep(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := 2 + len(checkNames) // auto-release, window, then checks
	switch m.Type {
	case tea.KeyUp:
		if a.field > 0 {
			a.field--
		}
	case tea.KeyDown:
		if a.field < rows-1 {
			a.field++
		}
	case tea.KeySpace:
		switch {
		case a.field == 0:
			a.form.AutoRelease = !a.form.AutoRelease
		case a.field >= 2:
			name := checkNames[a.field-2]
			a.form.Checks[name] = !a.form.Checks[name]
		}
	case tea.KeyLeft, tea.KeyRight:
		if a.field == 1 {
			a.form.DisputeWindowDays = cycleWindow(a.form.DisputeWindowDays, m.Type == tea.KeyRight)
		}
	case tea.KeyEnter:
		a.advance()
	}
	return a, nil
}

func (a *App) handleReviewStep(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeySpace:
		a.form.ConsentAccepted = !a.form.ConsentAccepted
	case tea.KeyEnter:
		if !a.form.ConsentAccepted {
			a.formError = "accept the escrow terms to continue"
			return a, nil
		}
		a.state = viewEscrows
		return a, a.createCmd()
	}
	return a, nil
}

func (a *App) handleDisputeKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	e := a.detail()
	if e == nil {
		a.state = viewEscrows
		return a, nil
	}
	switch m.Type {
	case tea.KeyEsc:
		a.state = viewDetail
		return a, nil
	case tea.KeyUp:
		if a.dispField > 0 {
			a.dispField--
		}
		return a, nil
	case tea.KeyDown:
		if a.dispField < 2 {
			a.dispField++
		}
		return a, nil
	case tea.KeyLeft, tea.KeyRight:
		if a.dispField == 0 {
			n := len(disputeReasons)
			if m.Type == tea.KeyRight {
				a.dispReasonIdx = (a.dispReasonIdx + 1) % n
			} else {
				a.dispReasonIdx = (a.dispReasonIdx - 1 + n) % n
			}
		}
		return a, nil
	case tea.KeyEnter:
		a.state = viewDetail
		return a, a.disputeCmd(e.ID, disputeReasons[a.dispReasonIdx],
			strings.TrimSpace(a.dispDetails), strings.TrimSpace(a.dispSolution))
	case tea.KeyBackspace, tea.KeyCtrlH:
		a.editDisputeField(func(s string) string {
			if len(s) > 0 {
				return s[:len(s)-1]
			}
			return s
		})
		return a, nil
	case tea.KeySpace:
		a.editDisputeField(func(s string) string { return s + " " })
		return a, nil
	case tea.KeyRunes:
		a.editDisputeField(func(s string) string { return s + string(m.Runes) })
		return a, nil
	}
	return a, nil
}

func (a *App) editDisputeField(edit func(string) string) {
	switch a.dispField {
	case 1:
		a.dispDetails = edit(a.dispDetails)
	case 2:
		a.dispSolution = edit(a.dispSolution)
	}
}

func (a *App) handleSettingsKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.settingsMode == settingsModeConfirm {
		switch m.String() {
		case "y", "Y":
			a.settingsMode = settingsModeIdle
			return a, a.resetCmd()
		case "n", "N", "esc":
			a.settingsMode = settingsModeIdle
		}
		return a, nil
	}
	if a.settingsMode != settingsModeIdle {
		switch m.Type {
		case tea.KeyEsc:
			a.settingsMode = settingsModeIdle
			a.inputBuffer = ""
		case tea.KeyEnter:
			text := strings.TrimSpace(a.inputBuffer)
			mode := a.settingsMode
			a.settingsMode = settingsModeIdle
			a.inputBuffer = ""
			switch mode {
			case settingsModeWallet:
				if !escrow.ValidAddress(text) {
					a.status = "invalid address: expected 0x followed by 40 hex characters"
					return a, nil
				}
				a.user.WalletAddress = text
				return a, a.saveProfileCmd()
			case settingsModeName:
				parts := strings.Fields(text)
				if len(parts) > 0 {
					a.user.FirstName = parts[0]
					a.user.LastName = strings.Join(parts[1:], " ")
				}
				return a, a.saveProfileCmd()
			case settingsModeOracleKey:
				return a, a.saveOracleKeyCmd(text)
			}
		case tea.KeyBackspace, tea.KeyCtrlH:
			if len(a.inputBuffer) > 0 {
				a.inputBuffer = a.inputBuffer[:len(a.inputBuffer)-1]
			}
		case tea.KeySpace:
			a.inputBuffer += " "
		case tea.KeyRunes:
			a.inputBuffer += string(m.Runes)
		}
		return a, nil
	}

	switch m.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "esc", "d":
		a.state = viewDashboard
		a.status = ""
	case "l":
		a.state = viewEscrows
	case "r":
		if a.user.Role == escrow.RoleFreelancer {
			a.user.Role = escrow.RoleClient
		} else {
			a.user.Role = escrow.RoleFreelancer
		}
		return a, a.saveProfileCmd()
	case "w":
		a.settingsMode = settingsModeWallet
		a.inputBuffer = a.user.WalletAddress
	case "n":
		a.settingsMode = settingsModeName
		a.inputBuffer = strings.TrimSpace(a.user.FirstName + " " + a.user.LastName)
	case "o":
		a.settingsMode = settingsModeOracleKey
		a.inputBuffer = ""
	case "x":
		a.settingsMode = settingsModeConfirm
	}
	return a, nil
}

func cycleOption(options []string, current string, forward bool) string {
	if len(options) == 0 {
		return current
	}
	idx := 0
	for i, o := range options {
		if o == current {
			idx = i
			break
		}
	}
	if forward {
		idx = (idx + 1) % len(options)
	} else {
		idx = (idx - 1 + len(options)) % len(options)
	}
	return options[idx]
}

func cycleWindow(current int, forward bool) int {
	windows := escrow.DisputeWindows()
	idx := 0
	for i, w := range windows {
		if w == current {
			idx = i
			break
		}
	}
	if forward {
		idx = (idx + 1) % len(windows)
	} else {
		idx = (idx - 1 + len(windows)) % len(windows)
	}
	return windows[idx]
}
