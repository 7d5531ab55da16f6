package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meetly-app/meetly/internal/api"
	"github.com/meetly-app/meetly/internal/session"
	"github.com/meetly-app/meetly/internal/ui"
)

// ErrEventNotJoinable is returned when the join action is unavailable:
// the event is full, unapproved or no longer upcoming.
var ErrEventNotJoinable = errors.New("event is not joinable")

// reportedError wraps an error that was already shown in a dialog.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// IsReported reports whether err was already shown to the user.
func IsReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}

// userMessage is the text shown in error dialogs.
func userMessage(err error) string {
	var (
		apiErr  *api.Error
		urlErr  *url.Error
		missing *ui.ErrHeadlessMissing
	)
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, session.ErrNoSession):
		return "Please log in to continue."
	case errors.Is(err, ErrEventNotJoinable):
		reason := strings.TrimPrefix(err.Error(), ErrEventNotJoinable.Error()+": ")
		return "This event cannot be joined right now (" + reason + ")."
	case api.IsTimeout(err):
		return "The server took too long to respond. Please try again."
	case errors.As(err, &missing):
		return missing.Error()
	case errors.As(err, &urlErr):
		return api.GenericMessage
	}
	return err.Error()
}

func dialog(cmd *cobra.Command) *ui.Dialog {
	d := GetDeps()
	return ui.NewDialog(d.Theme, d.Headless, cmd.OutOrStdout())
}

// fail shows err in an alert and returns it marked as reported.
func fail(cmd *cobra.Command, title string, err error) error {
	if err == nil {
		return nil
	}
	if IsReported(err) || errors.Is(err, ui.ErrCancelled) {
		return err
	}
	GetDeps().Logger.Debug().Err(err).Str("command", cmd.CommandPath()).Msg(title)
	if aerr := dialog(cmd).Alert(title, userMessage(err)); aerr != nil {
		return aerr
	}
	return &reportedError{err: err}
}

// call runs fn behind a spinner on stderr.
func call[T any](cmd *cobra.Command, title string, fn func(ctx context.Context) (T, error)) (T, error) {
	d := GetDeps()
	return ui.Wait(d.Theme, d.Headless, cmd.ErrOrStderr(), title, func() (T, error) {
		return fn(cmd.Context())
	})
}

// run runs fn behind a spinner for calls without a result.
func run(cmd *cobra.Command, title string, fn func(ctx context.Context) error) error {
	_, err := call(cmd, title, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// signedIn returns the current user or reports that a login is needed.
func signedIn(cmd *cobra.Command) (string, error) {
	u, err := GetDeps().CurrentUser()
	if err != nil {
		return "", fail(cmd, "Not signed in", err)
	}
	return u.ID, nil
}

// bindAnswers copies the named string flags that were set into the
// headless answers, so forms skip the matching prompts.
func bindAnswers(cmd *cobra.Command, keys ...string) {
	answers := make(map[string]string, len(keys))
	for _, key := range keys {
		f := cmd.Flags().Lookup(key)
		if f != nil && f.Changed {
			answers[key] = f.Value.String()
		}
	}
	GetDeps().Headless.SetAnswers(answers)
}

func printLine(cmd *cobra.Command, a ...any) {
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), a...)
}
