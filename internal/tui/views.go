package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kshaw/clearhold/internal/escrow"
)

// styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	activeTab   = lipgloss.NewStyle().Bold(true).Reverse(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	cursorStyle = lipgloss.NewStyle().Bold(true)
)

func (a *App) View() string {
	var body string
	switch a.state {
	case viewEscrows:
		body = a.renderEscrows()
	case viewDetail:
		body = a.renderDetail()
	case viewWizard:
		body = a.renderWizard()
	case viewDispute:
		body = a.renderDispute()
	case viewEarnings:
		body = a.renderEarnings()
	case viewSettings:
		body = a.renderSettings()
	default:
		body = a.renderDashboard()
	}
	return body
}

func (a *App) renderDashboard() string {
	title := titleStyle.Render("ClearHold — " + a.user.DisplayName() + " (" + a.user.Role + ")")
	counts := escrow.Counts(a.escrows)

	var inEscrowCents int64
	for _, e := range a.escrows {
		if e.Status == escrow.StatusActive || e.Status == escrow.StatusPending {
			inEscrowCents += e.AmountCents
		}
	}
	sum := escrow.SummarizeEarnings(a.escrows)

	body := fmt.Sprintf("Active: %d  Pending review: %d  Completed: %d  Disputed: %d",
		counts[string(escrow.StatusActive)], counts[string(escrow.StatusPending)],
		counts[string(escrow.StatusCompleted)], counts[string(escrow.StatusDisputed)])
	body += fmt.Sprintf("\nIn escrow: %s   Released to date: %s",
		money(inEscrowCents, a.currency), money(sum.EarnedCents, a.currency))

	recent := a.escrows
	if len(recent) > 5 {
		recent = recent[:5]
	}
	if len(recent) > 0 {
		body += "\n\nRecent:"
		for _, e := range recent {
			body += fmt.Sprintf("\n  %s  %-32s %-10s %s",
				e.Code, clip(e.Title, 32), e.Status, money(e.AmountCents, a.currency))
		}
	}
	body += "\n\n[l] Escrows  [n] New escrow  [e] Earnings  [p] Settings  [q] Quit"
	if a.status != "" {
		body += "\n" + a.status
	}
	return title + "\n" + body
}

func (a *App) renderEscrows() string {
	title := titleStyle.Render("Escrows")
	counts := escrow.Counts(a.escrows)

	var tabs []string
	for i, s := range statusTabs {
		label := fmt.Sprintf("%s (%d)", s, counts[s])
		if i == a.tabIndex {
			label = activeTab.Render(label)
		}
		tabs = append(tabs, label)
	}
	out := title + "\n" + strings.Join(tabs, "  ") + "\n"

	if a.searching {
		out += "search: " + a.search + "█\n"
	} else if a.search != "" {
		out += "search: " + a.search + dimStyle.Render("  (esc clears)") + "\n"
	}

	vis := a.visible()
	if len(vis) == 0 {
		out += "\nNo escrows match."
		if a.search != "" {
			if sugg := escrow.Suggest(a.escrows, a.search, 3); len(sugg) > 0 {
				out += "\nDid you mean: " + strings.Join(sugg, ", ") + "?"
			}
		}
		out += "\n"
	} else {
		for i, e := range vis {
			marker := " "
			if i == a.listCursor {
				marker = cursorStyle.Render("▶")
			}
			out += fmt.Sprintf("%s %s  %-32s %-10s %10s  %s\n",
				marker, e.Code, clip(e.Title, 32), e.Status,
				money(e.AmountCents, a.currency), e.MilestoneLabel())
		}
	}
	out += "\n[enter] Open  [tab] Filter  [/] Search  [n] New  [d] Dashboard  [q] Quit"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderDetail() string {
	e := a.detail()
	if e == nil {
		return titleStyle.Render("Escrow") + "\nRecord no longer exists.\n[esc] Back"
	}
	out := titleStyle.Render(e.Code+"  "+e.Title) + "\n"
	out += fmt.Sprintf("Status: %s   Amount: %s   Progress: %d%%\n",
		e.Status, money(e.AmountCents, a.currency), e.Progress)
	out += fmt.Sprintf("Category: %s   Deadline: %s\n", e.Category, e.Deadline.Format("2006-01-02"))
	out += "Freelancer: " + e.FreelancerAddress + "\n"
	out += fmt.Sprintf("Terms: auto-release %v, %d-day dispute window, checks: %s\n",
		e.AutoRelease, e.DisputeWindowDays, strings.Join(e.Checks, ", "))

	out += "\nMilestones (" + e.MilestoneLabel() + " done):\n"
	for i, m := range e.Milestones {
		mark := "[ ]"
		if m.Done {
			mark = "[x]"
		}
		out += fmt.Sprintf("  %s %d. %-28s %10s  due %s\n",
			mark, i+1, clip(m.Title, 28), money(m.AmountCents, a.currency), m.Date.Format("2006-01-02"))
	}

	if e.ActivatedAt != nil {
		out += "\nActivated " + e.ActivatedAt.Format("2006-01-02 15:04") + " UTC"
	}
	if e.Submission != nil {
		out += "\nWork submitted " + e.Submission.SubmittedAt.Format("2006-01-02 15:04") + " UTC"
	}
	if v := e.Verification; v != nil {
		release := "held for manual review"
		if v.AutoReleased {
			release = "auto-released"
		}
		out += fmt.Sprintf("\nVerified %s UTC: score %d/100, paid %s (%s)",
			v.CompletedAt.Format("2006-01-02 15:04"), v.Score, money(v.PaidCents, a.currency), release)
	}
	if d := e.Dispute; d != nil {
		out += fmt.Sprintf("\nDispute opened %s UTC: %s", d.OpenedAt.Format("2006-01-02 15:04"), d.Reason)
	}

	out += "\n\n" + a.detailActions(*e)
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) detailActions(e escrow.Escrow) string {
	var acts []string
	switch e.Status {
	case escrow.StatusIncomplete:
		acts = append(acts, "[f] Fund escrow", "[e] Edit draft")
	case escrow.StatusActive:
		acts = append(acts, "[m] Complete milestone", "[s] Submit work", "[x] Open dispute")
	case escrow.StatusPending:
		acts = append(acts, "[v] Run verification", "[x] Open dispute")
	}
	acts = append(acts, "[esc] Back", "[q] Quit")
	return strings.Join(acts, "  ")
}

func (a *App) renderWizard() string {
	heading := "New Escrow"
	if a.editingID != "" {
		heading = "Edit Draft"
	}
	stepNames := []string{"Details", "Milestones", "Terms", "Review"}
	out := titleStyle.Render(fmt.Sprintf("%s — Step %d of 4: %s", heading, a.step, stepNames[a.step-1])) + "\n"

	switch a.step {
	case escrow.StepDetails:
		out += a.renderDetailsStep()
	case escrow.StepMilestones:
		out += a.renderMilestonesStep()
	case escrow.StepTerms:
		out += a.renderTermsStep()
	case escrow.StepReview:
		out += a.renderReviewStep()
	}

	if a.formError != "" {
		out += "\n" + errorStyle.Render(a.formError)
	}
	return out
}

func (a *App) renderDetailsStep() string {
	rows := []struct {
		label, value string
	}{
		{"Title", a.form.Title},
		{"Description", a.form.Description},
		{"Category", orDash(a.form.Category) + dimStyle.Render("  (←/→)")},
		{"Deadline (YYYY-MM-DD)", a.form.Deadline},
		{"Freelancer address (0x…)", a.form.FreelancerAddress},
	}
	var out string
	for i, r := range rows {
		marker := " "
		if i == a.field {
			marker = cursorStyle.Render("▶")
		}
		out += fmt.Sprintf("%s %-26s %s\n", marker, r.label+":", r.value)
	}
	out += "\n[enter] Next field / step  [esc] Cancel"
	return out
}

func (a *App) renderMilestonesStep() string {
	var out string
	for mi, ms := range a.form.Milestones {
		out += fmt.Sprintf("Milestone %d\n", mi+1)
		rows := []struct {
			label, value string
		}{
			{"Title", ms.Title},
			{"Description", ms.Description},
			{"Amount", ms.Amount},
			{"Due date (YYYY-MM-DD)", ms.Date},
		}
		for fi, r := range rows {
			marker := " "
			if mi == a.msCursor && fi == a.field {
				marker = cursorStyle.Render("▶")
			}
			out += fmt.Sprintf("%s   %-24s %s\n", marker, r.label+":", r.value)
		}
	}
	out += fmt.Sprintf("\nTotal: %s\n", money(a.form.TotalCents(), a.currency))
	out += "[ctrl+a] Add milestone  [ctrl+d] Remove  [enter] Next  [esc] Back"
	return out
}

func (a *App) renderTermsStep() string {
	check := func(on bool) string {
		if on {
			return "[x]"
		}
		return "[ ]"
	}
	rows := []string{
		fmt.Sprintf("%s Auto-release payment at score %d+", check(a.form.AutoRelease), escrow.AutoReleaseThreshold),
		fmt.Sprintf("    Dispute window: %d days %s", a.form.DisputeWindowDays, dimStyle.Render("(←/→)")),
	}
	for _, name := range checkNames {
		rows = append(rows, fmt.Sprintf("%s %s", check(a.form.Checks[name]), checkLabels[name]))
	}
	var out string
	for i, r := range rows {
		marker := " "
		if i == a.field {
			marker = cursorStyle.Render("▶")
		}
		out += marker + " " + r + "\n"
	}
	out += "\n[space] Toggle  [enter] Next  [esc] Back"
	return out
}

func (a *App) renderReviewStep() string {
	total := a.form.TotalCents()
	out := fmt.Sprintf("Title:      %s\n", a.form.Title)
	out += fmt.Sprintf("Category:   %s   Deadline: %s\n", a.form.Category, a.form.Deadline)
	out += fmt.Sprintf("Freelancer: %s\n", a.form.FreelancerAddress)
	out += fmt.Sprintf("Milestones: %d   Total: %s\n", len(a.form.Milestones), money(total, a.currency))
	if totals, err := escrow.ComputeTotals(total, a.cfg.Escrow.FeeRate); err == nil {
		out += fmt.Sprintf("Platform fee (%.0f%%): %s   Deposit due on funding: %s\n",
			a.cfg.Escrow.FeeRate*100, money(totals.FeeCents, a.currency), money(totals.TotalCents, a.currency))
	}
	consent := "[ ]"
	if a.form.ConsentAccepted {
		consent = "[x]"
	}
	out += fmt.Sprintf("\n%s I agree funds will be held in escrow until verification passes\n", consent)
	label := "Create escrow"
	if a.editingID != "" {
		label = "Save draft"
	}
	out += "\n[space] Toggle consent  [enter] " + label + "  [esc] Back"
	return out
}

func (a *App) renderDispute() string {
	e := a.detail()
	if e == nil {
		return "Record no longer exists.\n[esc] Back"
	}
	out := titleStyle.Render("Open Dispute — "+e.Code) + "\n"
	daysLeft := ""
	if e.ActivatedAt != nil {
		daysLeft = dimStyle.Render(fmt.Sprintf("(window: %d days)", e.DisputeWindowDays))
	}
	rows := []struct {
		label, value string
	}{
		{"Reason", disputeReasons[a.dispReasonIdx] + dimStyle.Render("  (←/→)")},
		{"Details", a.dispDetails},
		{"Proposed solution", a.dispSolution},
	}
	for i, r := range rows {
		marker := " "
		if i == a.dispField {
			marker = cursorStyle.Render("▶")
		}
		out += fmt.Sprintf("%s %-18s %s\n", marker, r.label+":", r.value)
	}
	out += daysLeft + "\n[enter] File dispute  [esc] Cancel"
	return out
}

func (a *App) renderEarnings() string {
	sum := escrow.SummarizeEarnings(a.escrows)
	out := titleStyle.Render("Earnings") + "\n"
	out += fmt.Sprintf("Completed escrows: %d\n", sum.CompletedCount)
	out += fmt.Sprintf("Released:          %s\n", money(sum.EarnedCents, a.currency))
	out += fmt.Sprintf("Retained:          %s\n", money(sum.HeldCents, a.currency))
	out += fmt.Sprintf("Average score:     %d/100\n", sum.AverageScore)

	var completed []escrow.Escrow
	for _, e := range a.escrows {
		if e.Status == escrow.StatusCompleted && e.Verification != nil {
			completed = append(completed, e)
		}
	}
	if len(completed) > 0 {
		out += "\nHistory:\n"
		for _, e := range completed {
			out += fmt.Sprintf("  %s  %-32s score %3d  paid %s\n",
				e.Code, clip(e.Title, 32), e.Verification.Score, money(e.Verification.PaidCents, a.currency))
		}
	}
	out += "\n[d] Dashboard  [l] Escrows  [q] Quit"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderSettings() string {
	out := titleStyle.Render("Settings") + "\n"
	out += fmt.Sprintf("Name:    %s\n", a.user.DisplayName())
	out += fmt.Sprintf("Role:    %s\n", a.user.Role)
	out += fmt.Sprintf("Wallet:  %s\n", orDash(a.user.WalletAddress))
	out += fmt.Sprintf("Storage: %s (%s)\n", a.cfg.Storage.Driver, a.cfg.Storage.Path)
	out += fmt.Sprintf("Oracle:  %s\n", a.cfg.Oracle.Provider)

	switch a.settingsMode {
	case settingsModeWallet:
		out += "\nWallet address: " + a.inputBuffer + "█\n[enter] Save  [esc] Cancel"
	case settingsModeName:
		out += "\nName: " + a.inputBuffer + "█\n[enter] Save  [esc] Cancel"
	case settingsModeOracleKey:
		out += "\nOracle API key (blank removes): " + strings.Repeat("*", len(a.inputBuffer)) + "█\n[enter] Save  [esc] Cancel"
	case settingsModeConfirm:
		out += "\n" + errorStyle.Render("Clear all escrow data?") + "\n[y] Yes  [n] No"
	default:
		out += "\n[r] Toggle role  [w] Edit wallet  [n] Edit name  [o] Oracle key  [x] Reset storage  [d] Dashboard  [q] Quit"
	}
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func money(cents int64, currency string) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%s%d.%02d", sign, currency, cents/100, cents%100)
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}
