package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/charmbracelet/lipgloss"
)

var (
	activeTab   = lipgloss.NewStyle().Bold(true).Foreground(cli.PrimaryColor).Padding(0, 1)
	inactiveTab = lipgloss.NewStyle().Foreground(cli.SubtleColor).Padding(0, 1)
	answerBox   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(cli.SubtleColor).
			Padding(0, 1)
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		m.renderDashboard(),
		m.renderRecent(),
		m.renderTabs(),
		m.renderInput(),
	}
	if body := m.renderAnswer(); body != "" {
		sections = append(sections, body)
	}
	if m.status != "" {
		if m.failed {
			sections = append(sections, cli.FormatError(m.status))
		} else {
			sections = append(sections, cli.SuccessStyle.Render(m.status))
		}
	}
	sections = append(sections, m.help.View(m.keymap))

	return strings.Join(sections, "\n\n")
}

func (m Model) renderDashboard() string {
	s := m.summary

	remaining := cli.SuccessStyle.Render(cli.FormatAmount(s.TodayRemaining))
	if s.OverBudget() {
		remaining = cli.ErrorStyle.Render(cli.FormatAmount(s.TodayRemaining) + " over budget")
	}

	budget := cli.FormatAmount(s.Budget)
	if m.state.BudgetIsDefault() {
		budget += cli.SubtleStyle.Render(" (default)")
	}

	lines := []string{
		cli.TitleStyle.UnsetMarginBottom().Render(cli.WalletIcon + " " + s.Now.Format("Mon 2006-01-02")),
		fmt.Sprintf("Today %s   Allowance %s   Left %s",
			cli.BoldStyle.Render(cli.FormatAmount(s.TodaySpent)),
			cli.FormatAmount(s.Allowance),
			remaining),
		fmt.Sprintf("Month %s / %s  %s %.0f%%",
			cli.FormatAmount(s.MonthSpent),
			budget,
			m.bar.ViewAs(s.Progress),
			s.Progress*100),
	}
	return cli.BoxStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderRecent() string {
	if len(m.recent) == 0 {
		return cli.SubtleStyle.Render("No expenses yet. Type an amount below to add one.")
	}

	lines := make([]string, 0, len(m.recent)+1)
	lines = append(lines, cli.SubtitleStyle.Render("Recent"))
	for _, e := range m.recent {
		line := fmt.Sprintf("%s  %s  %s",
			e.Date.Format("01/02 15:04"),
			lipgloss.NewStyle().Width(12).Render(m.colors.Label(e.CategoryName)),
			lipgloss.NewStyle().Width(8).Align(lipgloss.Right).Render(cli.FormatAmount(e.Amount)))
		if e.HasNote() {
			line += "  " + cli.SubtleStyle.Render(e.Note)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderTabs() string {
	add, ask := inactiveTab, inactiveTab
	if m.mode == ModeAsk {
		ask = activeTab
	} else {
		add = activeTab
	}

	askLabel := "Ask AI"
	if m.asker == nil {
		askLabel += " (off)"
	}
	return add.Render("Add expense") + ask.Render(askLabel)
}

func (m Model) renderInput() string {
	if m.mode == ModeAsk {
		return m.askInput.View()
	}
	return m.addInput.View()
}

func (m Model) renderAnswer() string {
	if m.mode != ModeAsk {
		return ""
	}
	if m.busy {
		return m.spinner.View() + " " + cli.SubtleStyle.Render("Thinking about: "+m.asked+" (Esc to cancel)")
	}
	if m.answer == "" {
		return ""
	}

	width := max(20, m.width-4)
	body := lipgloss.NewStyle().Width(width).Render(m.answer)
	if !m.answerOK {
		body = cli.ErrorStyle.Width(width).Render(m.answer)
	}
	header := cli.SubtitleStyle.Render(cli.RobotIcon + " " + m.asked)
	return answerBox.Render(header + "\n" + body)
}
