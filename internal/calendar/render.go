package calendar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"team-tracker/internal/model"
)

const (
	dateWidth = 11
	laneChars = 14
)

const (
	weekendColor = lipgloss.Color("#c42912")
	todayColor   = lipgloss.Color("#00a352")
	fadedColor   = lipgloss.Color("#555")
)

// Render draws the grid as text: one line per day, one block per member,
// one fixed-width slot per lane. Colors follow the renderer's profile, so a
// renderer writing to a non-terminal produces plain text.
func Render(g Grid, r *lipgloss.Renderer) string {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	var sb strings.Builder

	sb.WriteString(r.NewStyle().Width(dateWidth).Render(g.Window.Start.Month().String()))
	for _, c := range g.Columns {
		sb.WriteString(" ")
		sb.WriteString(memberStyle(r, c).Width(columnChars(c)).Render(truncate(c.Member.Name, columnChars(c))))
	}
	sb.WriteByte('\n')

	for row, day := range g.Days {
		sb.WriteString(dayLabel(r, day))
		for _, c := range g.Columns {
			sb.WriteString(" ")
			sb.WriteString(renderCell(r, c, row))
		}
		if day.Holiday != "" {
			sb.WriteString(r.NewStyle().Foreground(weekendColor).Render(" " + day.Holiday))
		}
		sb.WriteByte('\n')
	}

	for _, c := range g.Columns {
		sb.WriteString(memberStyle(r, c).Render(" "))
		sb.WriteString(r.NewStyle().Foreground(fadedColor).Render(" " + c.Member.Name + "  "))
	}
	return strings.TrimRight(sb.String(), " ") + "\n"
}

func dayLabel(r *lipgloss.Renderer, day Day) string {
	label := fmt.Sprintf("%02d %s", day.Date.Day(), day.Date.ShortWeekday())
	style := r.NewStyle().Width(dateWidth)
	switch {
	case day.Today:
		label += " *"
		style = style.Foreground(todayColor).Bold(true)
	case day.Weekend || day.Holiday != "":
		style = style.Foreground(weekendColor)
	}
	return style.Render(label)
}

func renderCell(r *lipgloss.Renderer, c Column, row int) string {
	lanes := c.Lanes
	if lanes == 0 {
		lanes = 1
	}
	slots := make([]string, lanes)
	blank := r.NewStyle().Width(laneChars).Render("")
	for i := range slots {
		slots[i] = blank
	}
	for _, b := range c.BarsOn(row) {
		slots[b.Lane] = memberStyle(r, c).Width(laneChars).Render(barText(b, row))
	}
	return strings.Join(slots, "")
}

// barText is what a bar shows on one of its rows: the title where it starts
// in view, a rail below it and the completion box on its last day.
func barText(b Bar, row int) string {
	var mark string
	switch {
	case b.Task.Status == model.StatusCompleted:
		mark = "✓"
	case b.Task.Status == model.StatusPending:
		mark = "☐"
	}
	boxed := row == b.CompleteRow && mark != ""

	title := b.Task.Title
	if b.ClippedStart {
		title = "┆ " + title
	}
	switch {
	case row == b.StartRow && boxed:
		return truncate(mark+" "+title, laneChars)
	case row == b.StartRow:
		return truncate(title, laneChars)
	case boxed:
		return "└ " + mark
	default:
		return "│"
	}
}

func memberStyle(r *lipgloss.Renderer, c Column) lipgloss.Style {
	return r.NewStyle().
		Background(lipgloss.Color(c.Member.Color)).
		Foreground(lipgloss.Color(c.Foreground))
}

func columnChars(c Column) int {
	if c.Lanes < 1 {
		return laneChars
	}
	return c.Lanes * laneChars
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 1 {
		return string(runes[:width])
	}
	return string(runes[:width-1]) + "…"
}
