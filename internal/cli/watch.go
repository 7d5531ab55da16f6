package cli

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/meetly-app/meetly/internal/config"
	"github.com/meetly-app/meetly/internal/notify"
	"github.com/meetly-app/meetly/internal/poller"
	"github.com/meetly-app/meetly/internal/session"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print unread and pending counts as they change",
		Long: `Poll unread message and pending request counts until interrupted.
The interval comes from poll.interval (default 30s). The configuration is
re-read after every poll, so "meetly config set poll.interval 10s" from
another terminal takes effect without restarting, and setting
poll.enabled to false stops the watch.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := GetDeps()
			if _, err := signedIn(cmd); err != nil {
				return err
			}
			p, err := d.EnsurePoller()
			if err != nil {
				return fail(cmd, "Could not start watching", err)
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			// A 401 clears the session, which ends the watch.
			stop := d.Bus.Subscribe(notify.AuthChange, func(notify.Topic) {
				if d.Session.Token() == "" {
					cancel()
				}
			})
			defer stop()

			var disabled atomic.Bool
			if err := d.Config.Watch(func(c config.Config) {
				if !c.Poll.Enabled {
					disabled.Store(true)
					cancel()
					return
				}
				if c.Poll.Interval != p.Interval() {
					p.SetInterval(c.Poll.Interval)
					printLine(cmd, d.Renderer.Empty("Now watching every "+c.Poll.Interval.String()+"."))
				}
			}); err != nil {
				return fail(cmd, "Could not start watching", err)
			}

			var (
				mu   sync.Mutex
				last = poller.Counts{Unread: -1}
			)
			unsubscribe := p.Subscribe(func(c poller.Counts) {
				mu.Lock()
				changed := c.Unread != last.Unread || c.Pending != last.Pending
				last = c
				mu.Unlock()
				if changed {
					printLine(cmd, d.Renderer.Counts(c.Unread, c.Pending, c.At))
				}
				if err := d.Config.Reload(); err != nil {
					d.Logger.Warn().Err(err).Msg("config reload failed, keeping previous settings")
				}
			})
			defer unsubscribe()

			printLine(cmd, d.Renderer.Empty("Watching every "+p.Interval().String()+". Press Ctrl+C to stop."))
			if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return fail(cmd, "Watch stopped", err)
			}
			if d.Session.Token() == "" {
				return fail(cmd, "Signed out", session.ErrNoSession)
			}
			if disabled.Load() {
				printLine(cmd, d.Renderer.Empty("Polling was disabled. Watch stopped."))
			}
			return nil
		},
	}
}
