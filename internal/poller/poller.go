// Package poller refreshes the unread message and pending request counts
// on a fixed schedule, and on demand when a local action changes them.
package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/meetly-app/meetly/internal/notify"
)

// DefaultInterval is the scheduled poll period.
const DefaultInterval = 30 * time.Second

// DefaultMinGap is the shortest time between two triggered polls.
const DefaultMinGap = time.Second

// Counts is one poll result.
type Counts struct {
	Unread  int
	Pending int
	At      time.Time
}

// MessageCounter reports the unread message total.
type MessageCounter interface {
	UnreadCount(ctx context.Context) (int, error)
}

// RequestCounter reports the number of chat requests awaiting a reply.
type RequestCounter interface {
	PendingCount(ctx context.Context) (int, error)
}

// Options configure a Poller.
type Options struct {
	Messages MessageCounter
	Requests RequestCounter

	// Interval defaults to DefaultInterval. cron rounds it up to whole
	// seconds.
	Interval time.Duration

	// MinGap defaults to DefaultMinGap.
	MinGap time.Duration

	// Bus, when set, triggers a poll on notify.UnreadCountChanged.
	Bus *notify.Bus

	Logger *zerolog.Logger
	Now    func() time.Time
}

// Poller polls the counts. Run drives it; the other methods are safe to
// call from any goroutine.
type Poller struct {
	messages MessageCounter
	requests RequestCounter
	interval time.Duration
	limiter  *rate.Limiter
	bus      *notify.Bus
	log      zerolog.Logger
	now      func() time.Time

	trigger    chan struct{}
	reschedule chan struct{}
	pollMu     sync.Mutex

	mu     sync.RWMutex
	last   Counts
	have   bool
	nextID int
	subs   map[int]func(Counts)
}

// New returns a Poller. Messages and Requests are required.
func New(opts Options) (*Poller, error) {
	if opts.Messages == nil || opts.Requests == nil {
		return nil, fmt.Errorf("poller: message and request counters are required")
	}
	p := &Poller{
		messages:   opts.Messages,
		requests:   opts.Requests,
		interval:   opts.Interval,
		bus:        opts.Bus,
		log:        zerolog.Nop(),
		now:        opts.Now,
		trigger:    make(chan struct{}, 1),
		reschedule: make(chan struct{}, 1),
		subs:       make(map[int]func(Counts)),
	}
	if p.interval <= 0 {
		p.interval = DefaultInterval
	}
	gap := opts.MinGap
	if gap <= 0 {
		gap = DefaultMinGap
	}
	p.limiter = rate.NewLimiter(rate.Every(gap), 1)
	if opts.Logger != nil {
		p.log = opts.Logger.With().Str("component", "poller").Logger()
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p, nil
}

// Interval returns the scheduled poll period.
func (p *Poller) Interval() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.interval
}

// SetInterval changes the scheduled poll period. A running Run picks it
// up without restarting. Non-positive values are ignored.
func (p *Poller) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	p.mu.Lock()
	changed := d != p.interval
	p.interval = d
	p.mu.Unlock()
	if !changed {
		return
	}
	select {
	case p.reschedule <- struct{}{}:
	default:
	}
}

// Run polls once, then on the schedule and on every trigger, until ctx is
// cancelled.
func (p *Poller) Run(ctx context.Context) error {
	cronLog := cron.PrintfLogger(&p.log)
	sched := cron.New(
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	schedule := func() (cron.EntryID, error) {
		id, err := sched.AddFunc("@every "+p.Interval().String(), func() { p.Poll(ctx) })
		if err != nil {
			return 0, fmt.Errorf("poller: schedule: %w", err)
		}
		return id, nil
	}
	entry, err := schedule()
	if err != nil {
		return err
	}

	if p.bus != nil {
		unsubscribe := p.bus.Subscribe(notify.UnreadCountChanged, func(notify.Topic) { p.Trigger() })
		defer unsubscribe()
	}

	p.Poll(ctx)
	sched.Start()
	defer func() { <-sched.Stop().Done() }()

	p.log.Debug().Dur("interval", p.Interval()).Msg("polling started")
	for {
		select {
		case <-ctx.Done():
			p.log.Debug().Msg("polling stopped")
			return nil
		case <-p.reschedule:
			sched.Remove(entry)
			if entry, err = schedule(); err != nil {
				return err
			}
			p.log.Debug().Dur("interval", p.Interval()).Msg("polling rescheduled")
		case <-p.trigger:
			if err := p.limiter.Wait(ctx); err != nil {
				return nil
			}
			p.Poll(ctx)
		}
	}
}

// Trigger requests an immediate poll. Triggers that arrive before the
// pending one runs are merged into it.
func (p *Poller) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// Poll fetches both counts now. On failure the previous counts are kept.
func (p *Poller) Poll(ctx context.Context) (Counts, error) {
	p.pollMu.Lock()
	defer p.pollMu.Unlock()

	unread, err := p.messages.UnreadCount(ctx)
	if err != nil {
		p.log.Warn().Err(err).Msg("unread count poll failed")
		return p.lastOrZero(), err
	}
	pending, err := p.requests.PendingCount(ctx)
	if err != nil {
		p.log.Warn().Err(err).Msg("pending count poll failed")
		return p.lastOrZero(), err
	}

	c := Counts{Unread: unread, Pending: pending, At: p.now()}
	p.mu.Lock()
	p.last = c
	p.have = true
	subs := make([]func(Counts), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(c)
	}
	return c, nil
}

func (p *Poller) lastOrZero() Counts {
	c, _ := p.Last()
	return c
}

// Last returns the most recent successful poll.
func (p *Poller) Last() (Counts, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last, p.have
}

// Subscribe registers fn for every successful poll and returns a function
// that removes it.
func (p *Poller) Subscribe(fn func(Counts)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	id := p.nextID
	p.subs[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}
