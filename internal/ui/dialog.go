package ui

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/huh"
)

// AnswerYes is the headless answer that accepts every confirmation.
const AnswerYes = "yes"

// Dialog is the single alert/confirm mechanism. Interactive sessions get
// huh modals; headless sessions get plain lines and take confirmations
// from the "yes" answer.
type Dialog struct {
	theme    *Theme
	headless *HeadlessManager
	render   *Renderer
	out      io.Writer
}

// NewDialog writes to out.
func NewDialog(theme *Theme, hm *HeadlessManager, out io.Writer) *Dialog {
	return &Dialog{theme: theme, headless: hm, render: NewRenderer(theme), out: out}
}

// Alert blocks until the user dismisses msg.
func (d *Dialog) Alert(title, msg string) error {
	if d.headless.IsHeadless() {
		_, _ = fmt.Fprintln(d.out, d.render.ErrorCard(title, msg))
		return nil
	}
	note := huh.NewNote().
		Title(d.theme.symError() + " " + title).
		Description(msg).
		Next(true).
		NextLabel("OK")
	if err := d.theme.runForm(note); err != nil && !errors.Is(err, ErrCancelled) {
		return err
	}
	return nil
}

// Confirm asks a yes/no question. Headless sessions confirm only when the
// "yes" answer is set.
func (d *Dialog) Confirm(title, msg string) (bool, error) {
	if d.headless.IsHeadless() {
		v, _ := d.headless.Answer(AnswerYes)
		ok, _ := strconv.ParseBool(v)
		if !ok {
			_, _ = fmt.Fprintf(d.out, "%s %s: %s (re-run with --yes to confirm)\n", d.theme.symWarning(), title, msg)
		}
		return ok, nil
	}

	var ok bool
	field := huh.NewConfirm().
		Title(title).
		Description(msg).
		Affirmative("Yes").
		Negative("No").
		Value(&ok)
	if err := d.theme.runForm(field); err != nil {
		if errors.Is(err, ErrCancelled) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}

// Success prints a success card.
func (d *Dialog) Success(title string, details ...string) {
	_, _ = fmt.Fprintln(d.out, d.render.SuccessCard(title, details...))
}
