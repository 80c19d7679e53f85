package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/routinely/internal/models"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	dayStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("63")).
			Bold(true).
			Width(4)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	statusStyles = map[models.InstanceStatus]lipgloss.Style{
		models.StatusScheduled: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		models.StatusCompleted: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		models.StatusSkipped:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		models.StatusCancelled: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}

	statusIcons = map[models.InstanceStatus]string{
		models.StatusScheduled: "○",
		models.StatusCompleted: "✓",
		models.StatusSkipped:   "↷",
		models.StatusCancelled: "✗",
	}
)

// swatch draws the routine color as a bullet.
func swatch(color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(models.ResolveColor(color))).Render("●")
}

func routineLine(r models.Routine) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s",
		swatch(r.Color),
		timeStyle.Render(r.StartTime+"-"+r.EndTime),
		r.Title)
	if r.Category != "" {
		b.WriteString(mutedStyle.Render(" [" + r.Category + "]"))
	}
	if r.RecurringWeeks != nil {
		b.WriteString(mutedStyle.Render(fmt.Sprintf(" (%dw)", *r.RecurringWeeks)))
	}
	if !r.IsActive {
		b.WriteString(mutedStyle.Render(" (paused)"))
	}
	return b.String()
}

func renderRoutines(routines []models.Routine, showIDs bool) string {
	if len(routines) == 0 {
		return mutedStyle.Render("No routines found.") + "\n"
	}
	var b strings.Builder
	for _, r := range routines {
		fmt.Fprintf(&b, "%s %s", dayStyle.Render(r.DayOfWeek.Short()), routineLine(r))
		if showIDs {
			b.WriteString(mutedStyle.Render("  " + r.ID))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderWeek(view models.WeeklyRoutineView) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Weekly routines (%d)", view.Count())))
	b.WriteString("\n")
	for _, day := range models.DaysOfWeek {
		b.WriteString(dayStyle.Render(day.Short()))
		routines := view[day]
		if len(routines) == 0 {
			b.WriteString(mutedStyle.Render(" -"))
			b.WriteString("\n")
			continue
		}
		for i, r := range routines {
			if i > 0 {
				b.WriteString(strings.Repeat(" ", 4))
			}
			b.WriteString(" " + routineLine(r) + "\n")
		}
	}
	return b.String()
}

func statusBadge(status models.InstanceStatus) string {
	style, ok := statusStyles[status]
	if !ok {
		return string(status)
	}
	return style.Render(statusIcons[status] + " " + string(status))
}

func renderDay(view models.DayRoutineView) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s (%s)", view.Date, view.DayOfWeek.Short())))
	b.WriteString("\n")
	if len(view.Routines) == 0 {
		b.WriteString(mutedStyle.Render("No routines scheduled."))
		b.WriteString("\n")
	}
	for _, r := range view.Routines {
		status := mutedStyle.Render("not materialized")
		id := ""
		if inst, ok := view.InstanceFor(r.ID); ok {
			status = statusBadge(inst.Status)
			id = inst.ID
			if inst.Notes != nil && *inst.Notes != "" {
				status += mutedStyle.Render(" - " + *inst.Notes)
			}
		}
		fmt.Fprintf(&b, "%s  %s", routineLine(r), status)
		if id != "" {
			b.WriteString(mutedStyle.Render("  " + id))
		}
		b.WriteString("\n")
	}
	if len(view.Upcoming) > 0 {
		b.WriteString("\n" + headerStyle.Render("Up next") + "\n")
		for _, r := range view.Upcoming {
			b.WriteString(routineLine(r) + "\n")
		}
	}
	return b.String()
}

func renderInstances(instances []models.RoutineInstance) string {
	if len(instances) == 0 {
		return mutedStyle.Render("No instances.") + "\n"
	}
	var b strings.Builder
	for _, inst := range instances {
		title := inst.RoutineID
		when := ""
		if inst.Routine != nil {
			title = inst.Routine.Title
			when = timeStyle.Render(inst.Routine.StartTime+"-"+inst.Routine.EndTime) + " "
		}
		fmt.Fprintf(&b, "%s%s  %s", when, title, statusBadge(inst.Status))
		if inst.ActualStartTime != nil || inst.ActualEndTime != nil {
			b.WriteString(mutedStyle.Render(fmt.Sprintf(" (actual %s-%s)", deref(inst.ActualStartTime), deref(inst.ActualEndTime))))
		}
		b.WriteString(mutedStyle.Render("  " + inst.ID))
		b.WriteString("\n")
	}
	return b.String()
}

// completionBar draws rate (0-100) as a bar of the given width.
func completionBar(rate, width int) string {
	filled := rate * width / 100
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	done := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render(strings.Repeat("█", filled))
	return done + mutedStyle.Render(strings.Repeat("░", width-filled))
}

func renderStats(s models.RoutineStats, from, to string) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Stats %s .. %s", from, to)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Active routines:  %d\n", s.TotalRoutines)
	fmt.Fprintf(&b, "Instances:        %d\n", s.TotalInstances)
	fmt.Fprintf(&b, "Completed:        %d\n", s.CompletedInstances)
	fmt.Fprintf(&b, "Completion rate:  %s %d%%\n", completionBar(s.CompletionRate, 20), s.CompletionRate)

	if len(s.ByCategory) > 0 {
		b.WriteString("\nBy category\n")
		cats := make([]string, 0, len(s.ByCategory))
		for c := range s.ByCategory {
			cats = append(cats, c)
		}
		sort.Strings(cats)
		for _, c := range cats {
			name := c
			if name == "" {
				name = "(none)"
			}
			fmt.Fprintf(&b, "  %-16s %d\n", name, s.ByCategory[c])
		}
	}

	if len(s.ByDay) > 0 {
		b.WriteString("\nBy day\n")
		for _, day := range models.DaysOfWeek {
			if n, ok := s.ByDay[day]; ok {
				fmt.Fprintf(&b, "  %-16s %d\n", day.Short(), n)
			}
		}
	}
	return b.String()
}

func deref(s *string) string {
	if s == nil {
		return "?"
	}
	return *s
}
