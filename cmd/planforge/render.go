package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"planforge/internal/catalog"
	"planforge/internal/planner"
	"planforge/internal/rebalance"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

func renderPlan(plan planner.Plan, cat *catalog.Catalog) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Profile %d: %s", plan.ProfileID, plan.ProfileName)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("decided by " + plan.Rule))
	b.WriteString("\n\n")

	if plan.Message != "" {
		b.WriteString(errStyle.Render(plan.Message))
		b.WriteString("\n")
		return boxStyle.Render(b.String())
	}

	b.WriteString(sectionStyle.Render("Domain weights"))
	b.WriteString("\n")
	for _, d := range []catalog.Domain{catalog.DomainRetirement, catalog.DomainEducation, catalog.DomainHealth} {
		if w, ok := plan.Weights[d]; ok {
			b.WriteString(fmt.Sprintf("  %-12s %5.1f%%\n", string(d), w*100))
		}
	}
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render(fmt.Sprintf("Monthly allocation ($%.2f budget)", plan.Allocation.Budget)))
	b.WriteString("\n")
	for _, ev := range plan.Ordered {
		amt := plan.Allocation.Vehicles[ev.Name]
		if amt <= 0 && !ev.NonDiscretionary {
			continue
		}
		line := fmt.Sprintf("  %-24s $%9.2f", ev.Name, amt)
		if ev.NonDiscretionary {
			line += dimStyle.Render("  (employer money)")
		} else if ev.Note != "" {
			line += dimStyle.Render("  " + ev.Note)
		}
		if ev.Warning != "" {
			line += "\n" + warnStyle.Render("    ! "+ev.Warning)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if plan.Allocation.EmployerMatch > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  employer match adds $%.2f/mo on top of the budget", plan.Allocation.EmployerMatch)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if !plan.Warnings.OK {
		b.WriteString(warnStyle.Render("Limit warnings (advisory)"))
		b.WriteString("\n")
		for _, w := range plan.Warnings.Warnings {
			b.WriteString(warnStyle.Render("  ! " + w.Message))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(sectionStyle.Render("Projection"))
	b.WriteString("\n")
	proj := plan.Projection
	b.WriteString(fmt.Sprintf("  rate %.1f%%/yr over %d years\n", proj.AnnualRate*100, proj.Years))
	b.WriteString(fmt.Sprintf("  projected balance     $%14.2f\n", proj.ProjectedBalance))
	b.WriteString(fmt.Sprintf("  in today's dollars    $%14.2f\n", proj.RealBalance))
	b.WriteString(fmt.Sprintf("  without contributing  $%14.2f\n", proj.Baseline))
	b.WriteString(fmt.Sprintf("  improvement           $%14.2f\n", proj.Improvement))
	b.WriteString(fmt.Sprintf("  est. monthly income   $%14.2f\n", proj.MonthlyIncome))
	if proj.Education.MonthlyContribution > 0 {
		b.WriteString(fmt.Sprintf("  education balance     $%14.2f over %d years\n",
			proj.Education.ProjectedBalance, proj.Education.Years))
	}
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Tax treatment"))
	b.WriteString("\n")
	for _, s := range proj.TaxBreakdown {
		if s.Percent == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("  %-10s %5.1f%%  $%.2f\n", string(s.Treatment), s.Percent, s.Amount))
	}

	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func renderSession(s rebalance.State) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Session %s", s.ID)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("budget $%.2f/mo", s.Budget)))
	b.WriteString("\n\n")

	for _, name := range s.Vehicles {
		line := fmt.Sprintf("  %-24s $%9.2f", name, s.Amounts[name])
		if limit := s.Limits[name]; !math.IsInf(limit, 1) {
			line += dimStyle.Render(fmt.Sprintf("  of $%.2f", limit))
		}
		if s.Locked[name] {
			line += warnStyle.Render("  [locked]")
		}
		if delta := s.Amounts[name] - s.Recommended[name]; math.Abs(delta) >= 0.01 {
			line += dimStyle.Render(fmt.Sprintf("  (%+.2f vs recommended)", delta))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("  total $%.2f", s.Total())))
	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}
