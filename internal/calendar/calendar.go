// Package calendar renders a month of events as a terminal grid.
package calendar

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/meetly-app/meetly/pkg/models"
)

const cellWidth = 5

var weekdays = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

type settings struct {
	noColor bool
	today   time.Time
	loc     *time.Location
}

// Option configures Month.
type Option func(*settings)

// WithNoColor renders without styling; event days are marked with "*".
func WithNoColor() Option {
	return func(s *settings) { s.noColor = true }
}

// WithToday highlights t's day when it falls in the rendered month.
func WithToday(t time.Time) Option {
	return func(s *settings) { s.today = t }
}

// WithLocation sets the zone event dates are bucketed in. Default is UTC.
func WithLocation(loc *time.Location) Option {
	return func(s *settings) { s.loc = loc }
}

// ByDay groups events that fall in year/month by day of month, each day
// sorted by time of day then title.
func ByDay(year int, month time.Month, events []models.Event, loc *time.Location) map[int][]models.Event {
	if loc == nil {
		loc = time.UTC
	}
	days := make(map[int][]models.Event)
	for _, ev := range events {
		d := ev.Date.In(loc)
		if d.Year() != year || d.Month() != month {
			continue
		}
		days[d.Day()] = append(days[d.Day()], ev)
	}
	for _, list := range days {
		slices.SortStableFunc(list, func(a, b models.Event) int {
			if c := strings.Compare(a.Time, b.Time); c != 0 {
				return c
			}
			return strings.Compare(a.Title, b.Title)
		})
	}
	return days
}

// Month renders a Sunday-first grid for year/month, marks days that have
// events, and lists those events beneath the grid.
func Month(year int, month time.Month, events []models.Event, opts ...Option) string {
	s := settings{loc: time.UTC}
	for _, opt := range opts {
		opt(&s)
	}
	days := ByDay(year, month, events, s.loc)

	style := func(c lipgloss.TerminalColor) lipgloss.Style {
		st := lipgloss.NewStyle().Width(cellWidth).Align(lipgloss.Right)
		if s.noColor || c == nil {
			return st
		}
		return st.Foreground(c)
	}
	plain := style(nil)
	header := style(lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"})
	marked := style(lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#2DD4BF"})
	if !s.noColor {
		marked = marked.Bold(true)
	}
	today := plain
	if !s.noColor {
		today = plain.Reverse(true)
	}

	var b strings.Builder
	title := fmt.Sprintf("%s %d", month, year)
	titleStyle := lipgloss.NewStyle().Width(cellWidth * 7).Align(lipgloss.Center)
	if !s.noColor {
		titleStyle = titleStyle.Bold(true)
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteByte('\n')

	cells := make([]string, 0, 7)
	for _, wd := range weekdays {
		cells = append(cells, header.Render(wd[:2]))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	b.WriteByte('\n')

	first := time.Date(year, month, 1, 0, 0, 0, 0, s.loc)
	last := first.AddDate(0, 1, -1).Day()
	cells = cells[:0]
	for range int(first.Weekday()) {
		cells = append(cells, plain.Render(""))
	}
	for day := 1; day <= last; day++ {
		label := fmt.Sprintf("%d", day)
		st := plain
		if _, ok := days[day]; ok {
			st = marked
			if s.noColor {
				label += "*"
			}
		}
		if isToday(s.today, year, month, day, s.loc) {
			st = today
			if s.noColor {
				label = "[" + label + "]"
			}
		}
		cells = append(cells, st.Render(label))
		if len(cells) == 7 || day == last {
			b.WriteString(strings.TrimRight(lipgloss.JoinHorizontal(lipgloss.Top, cells...), " "))
			b.WriteByte('\n')
			cells = cells[:0]
		}
	}

	keys := make([]int, 0, len(days))
	for day := range days {
		keys = append(keys, day)
	}
	slices.Sort(keys)
	if len(keys) == 0 {
		b.WriteString("\nNo events this month.")
		return b.String()
	}
	for _, day := range keys {
		for _, ev := range days[day] {
			line := fmt.Sprintf("\n%s %2d  %s", month.String()[:3], day, ev.Title)
			if ev.Time != "" {
				line += " (" + ev.Time + ")"
			}
			b.WriteString(line)
		}
	}
	return b.String()
}

func isToday(t time.Time, year int, month time.Month, day int, loc *time.Location) bool {
	if t.IsZero() {
		return false
	}
	t = t.In(loc)
	return t.Year() == year && t.Month() == month && t.Day() == day
}
