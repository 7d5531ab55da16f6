// Package ui holds the terminal presentation layer: theme, dialogs, forms,
// spinners and renderers. Every component has an interactive rendition
// (huh, bubbletea) and a headless one that writes plain lines, chosen by
// HeadlessManager.
package ui

import (
	"errors"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is returned when the user aborts a form.
var ErrCancelled = errors.New("ui: cancelled")

// Colors is the Meetly palette.
type Colors struct {
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Success   lipgloss.AdaptiveColor
	Warning   lipgloss.AdaptiveColor
	Error     lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Text      lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
}

// Theme carries the palette and the no-color switch.
type Theme struct {
	NoColor bool
	Colors  Colors
}

// NewTheme returns the default theme.
func NewTheme(noColor bool) *Theme {
	return &Theme{
		NoColor: noColor,
		Colors: Colors{
			Primary:   lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#2DD4BF"},
			Secondary: lipgloss.AdaptiveColor{Light: "#4338CA", Dark: "#818CF8"},
			Success:   lipgloss.AdaptiveColor{Light: "#059669", Dark: "#10B981"},
			Warning:   lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#F59E0B"},
			Error:     lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#EF4444"},
			Muted:     lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6B7280"},
			Text:      lipgloss.AdaptiveColor{Light: "#111827", Dark: "#F9FAFB"},
			Border:    lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#4B5563"},
		},
	}
}

func (t *Theme) fg(c lipgloss.AdaptiveColor) lipgloss.Style {
	if t.NoColor {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(c)
}

func (t *Theme) primary() lipgloss.Style { return t.fg(t.Colors.Primary) }
func (t *Theme) success() lipgloss.Style { return t.fg(t.Colors.Success) }
func (t *Theme) warn() lipgloss.Style    { return t.fg(t.Colors.Warning) }
func (t *Theme) danger() lipgloss.Style  { return t.fg(t.Colors.Error) }
func (t *Theme) muted() lipgloss.Style   { return t.fg(t.Colors.Muted) }

func (t *Theme) symSuccess() string { return t.success().Render("✓") }
func (t *Theme) symError() string   { return t.danger().Render("✗") }
func (t *Theme) symWarning() string { return t.warn().Render("!") }

// huhTheme maps the palette onto huh forms.
func (t *Theme) huhTheme() *huh.Theme {
	h := huh.ThemeBase()
	if t.NoColor {
		return h
	}
	c := t.Colors

	h.Focused.Base = h.Focused.Base.BorderForeground(c.Border)
	h.Focused.Card = h.Focused.Base
	h.Focused.Title = h.Focused.Title.Foreground(c.Primary).Bold(true)
	h.Focused.NoteTitle = h.Focused.NoteTitle.Foreground(c.Primary).Bold(true).MarginBottom(1)
	h.Focused.Description = h.Focused.Description.Foreground(c.Muted)
	h.Focused.ErrorIndicator = h.Focused.ErrorIndicator.Foreground(c.Error)
	h.Focused.ErrorMessage = h.Focused.ErrorMessage.Foreground(c.Error)
	h.Focused.SelectSelector = h.Focused.SelectSelector.Foreground(c.Primary).SetString("▸ ")
	h.Focused.Option = h.Focused.Option.Foreground(c.Text)
	h.Focused.SelectedOption = h.Focused.SelectedOption.Foreground(c.Success)
	h.Focused.TextInput.Cursor = h.Focused.TextInput.Cursor.Foreground(c.Primary)
	h.Focused.TextInput.Placeholder = h.Focused.TextInput.Placeholder.Foreground(c.Muted)
	h.Focused.TextInput.Prompt = h.Focused.TextInput.Prompt.Foreground(c.Secondary)
	h.Focused.FocusedButton = h.Focused.FocusedButton.
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"}).
		Background(c.Primary)
	h.Focused.BlurredButton = h.Focused.BlurredButton.
		Foreground(c.Text).
		Background(lipgloss.AdaptiveColor{Light: "#E5E7EB", Dark: "#374151"})
	h.Focused.Next = h.Focused.FocusedButton

	h.Blurred = h.Focused
	h.Blurred.Base = h.Focused.Base.BorderStyle(lipgloss.HiddenBorder())
	h.Blurred.Card = h.Blurred.Base
	h.Blurred.NextIndicator = lipgloss.NewStyle()
	h.Blurred.PrevIndicator = lipgloss.NewStyle()

	h.Group.Title = h.Focused.Title
	h.Group.Description = h.Focused.Description
	return h
}

// runForm runs a single-group huh form, mapping a user abort to
// ErrCancelled.
func (t *Theme) runForm(fields ...huh.Field) error {
	form := huh.NewForm(huh.NewGroup(fields...)).
		WithTheme(t.huhTheme()).
		WithAccessible(false)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrCancelled
		}
		return err
	}
	return nil
}
