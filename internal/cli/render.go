package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/tally/internal/aggregate"
	"github.com/Veraticus/tally/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// ShortIDLength is how much of an expense ID listings show.
const ShortIDLength = 8

// FormatAmount renders a whole-unit amount with thousands separators.
func FormatAmount(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	digits := strconv.FormatInt(n, 10)

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String()
}

// ShortID truncates an expense ID for display.
func ShortID(id string) string {
	if len(id) <= ShortIDLength {
		return id
	}
	return id[:ShortIDLength]
}

// ColorIndex maps category names to colors. Names no longer in the list
// render gray.
type ColorIndex map[string]model.Color

// NewColorIndex indexes categories by name; the first category of a name wins.
func NewColorIndex(categories []model.Category) ColorIndex {
	idx := make(ColorIndex, len(categories))
	for _, c := range categories {
		if _, ok := idx[c.Name]; !ok {
			idx[c.Name] = c.Color
		}
	}
	return idx
}

// Color returns the color for name, or gray.
func (idx ColorIndex) Color(name string) model.Color {
	if c, ok := idx[name]; ok {
		return c
	}
	return model.ColorGray
}

// Label renders a swatch and category name.
func (idx ColorIndex) Label(name string) string {
	return Swatch(idx.Color(name)) + " " + name
}

func cell(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}

func rightCell(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Right).Render(s)
}

// RenderExpenses renders a table in the given order.
func RenderExpenses(expenses []model.Expense, idx ColorIndex) string {
	if len(expenses) == 0 {
		return SubtleStyle.Render("No expenses recorded.")
	}

	var b strings.Builder
	b.WriteString(TableHeaderStyle.Render(
		cell("ID", ShortIDLength+2) + cell("DATE", 18) + cell("CATEGORY", 14) + rightCell("AMOUNT", 10) + "  NOTE"))
	b.WriteByte('\n')

	for _, e := range expenses {
		b.WriteString(SubtleStyle.Render(cell(ShortID(e.ID), ShortIDLength+2)))
		b.WriteString(cell(e.Date.Format("2006-01-02 15:04"), 18))
		b.WriteString(cell(idx.Label(e.CategoryName), 14))
		b.WriteString(rightCell(FormatAmount(e.Amount), 10))
		if e.HasNote() {
			b.WriteString("  " + e.Note)
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderBar draws a text progress bar for a ratio in [0, 1].
func RenderBar(ratio float64, width int) string {
	ratio = min(max(ratio, 0), 1)
	filled := int(ratio*float64(width) + 0.5)

	color := SuccessColor
	switch {
	case ratio >= 1:
		color = ErrorColor
	case ratio >= 0.8:
		color = WarningColor
	}
	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	return bar + SubtleStyle.Render(strings.Repeat("░", width-filled))
}

// RenderSummary renders the dashboard figures.
func RenderSummary(s aggregate.Summary, budgetIsDefault bool) string {
	budgetNote := ""
	if budgetIsDefault {
		budgetNote = SubtleStyle.Render(" (default)")
	}

	remaining := FormatAmount(s.TodayRemaining)
	if s.OverBudget() {
		remaining = ErrorStyle.Render(remaining + " over budget")
	} else {
		remaining = SuccessStyle.Render(remaining)
	}

	lines := []string{
		TitleStyle.Render(WalletIcon + " " + s.Now.Format("Monday, 2006-01-02")),
		fmt.Sprintf("Today spent      %s", FormatAmount(s.TodaySpent)),
		fmt.Sprintf("Daily allowance  %s", FormatAmount(s.Allowance)),
		fmt.Sprintf("Today remaining  %s", remaining),
		"",
		fmt.Sprintf("Month spent      %s / %s%s", FormatAmount(s.MonthSpent), FormatAmount(s.Budget), budgetNote),
		fmt.Sprintf("                 %s %3.0f%%", RenderBar(s.Progress, 24), s.Progress*100),
		SubtleStyle.Render(fmt.Sprintf("%d day(s) left in %s, today included", s.RemainingDays, s.Now.Format("January"))),
	}
	return BoxStyle.Render(strings.Join(lines, "\n"))
}

// RenderBreakdown renders sorted category totals with their share of total.
func RenderBreakdown(totals []aggregate.CategoryTotal, total int64, idx ColorIndex) string {
	if len(totals) == 0 {
		return SubtleStyle.Render("Nothing spent.")
	}

	var b strings.Builder
	for _, ct := range totals {
		share := 0.0
		if total > 0 {
			share = float64(ct.Amount) / float64(total)
		}
		b.WriteString(cell(idx.Label(ct.Name), 14))
		b.WriteString(rightCell(FormatAmount(ct.Amount), 10))
		b.WriteString("  " + lipgloss.NewStyle().Foreground(ColorFor(idx.Color(ct.Name))).Render(strings.Repeat("■", int(share*20+0.5))))
		b.WriteString(SubtleStyle.Render(fmt.Sprintf(" %.0f%%", share*100)))
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderReport renders a month history: totals, breakdown and day groups.
func RenderReport(r aggregate.Report, idx ColorIndex) string {
	title := time.Date(r.Year, r.Month, 1, 0, 0, 0, 0, time.UTC).Format("January 2006")

	var b strings.Builder
	b.WriteString(TitleStyle.Render(ChartIcon + " " + title))
	b.WriteByte('\n')
	b.WriteString(fmt.Sprintf("Total %s across %d expense(s)\n\n", BoldStyle.Render(FormatAmount(r.Total)), r.Count))
	b.WriteString(RenderBreakdown(r.Categories, r.Total, idx))

	for _, day := range r.Days {
		b.WriteString("\n\n")
		b.WriteString(BoldStyle.Render(day.Date.Format("01/02 Mon")))
		b.WriteString(SubtleStyle.Render("  " + FormatAmount(day.Total)))
		for _, e := range day.Expenses {
			b.WriteString("\n  ")
			b.WriteString(cell(e.Date.Format("15:04"), 7))
			b.WriteString(cell(idx.Label(e.CategoryName), 14))
			b.WriteString(rightCell(FormatAmount(e.Amount), 10))
			if e.HasNote() {
				b.WriteString("  " + SubtleStyle.Render(e.Note))
			}
		}
	}
	return b.String()
}

// RenderCategories lists categories in match order.
func RenderCategories(categories []model.Category) string {
	if len(categories) == 0 {
		return SubtleStyle.Render("No categories. Every expense will be " + model.UnclassifiedName + ".")
	}

	var b strings.Builder
	b.WriteString(TableHeaderStyle.Render(
		cell("#", 4) + cell("ID", ShortIDLength+2) + cell("NAME", 14) + cell("WINDOW", 14) + "COLOR"))
	for i, c := range categories {
		b.WriteByte('\n')
		window := c.Interval()
		if c.Wraps() {
			window += " ↻"
		}
		b.WriteString(cell(strconv.Itoa(i+1), 4))
		b.WriteString(SubtleStyle.Render(cell(ShortID(c.ID), ShortIDLength+2)))
		b.WriteString(cell(Swatch(c.Color)+" "+c.Name, 14))
		b.WriteString(cell(window, 14))
		b.WriteString(string(c.Color))
	}
	return b.String()
}
