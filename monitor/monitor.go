// Package monitor ties a source, the change detector and the notifiers
// together: one poll at a time, on a schedule that can be started, stopped
// and reset at runtime.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/realDragonium/mcwatch/detect"
	"github.com/realDragonium/mcwatch/format"
	"github.com/realDragonium/mcwatch/logging"
	"github.com/realDragonium/mcwatch/notify"
	"github.com/realDragonium/mcwatch/snapshot"
	"github.com/realDragonium/mcwatch/source"
)

const (
	DefaultInterval      = 10 * time.Second
	DefaultPollTimeout   = 15 * time.Second
	DefaultErrorBackoff  = 5 * time.Second
	DefaultQueryCooldown = 0
	DefaultStartDelay    = 5 * time.Second
)

var (
	playersOnline = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mcwatch",
		Name:      "players_online",
		Help:      "Players online at the last successful poll.",
	})
	playersMax = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mcwatch",
		Name:      "players_max",
		Help:      "Player slots at the last successful poll.",
	})
	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mcwatch",
		Name:      "events_total",
		Help:      "The total number of detected changes by kind.",
	}, []string{"kind"})
	pollsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mcwatch",
		Name:      "polls_total",
		Help:      "The total number of polls by result.",
	}, []string{"result"})
)

var (
	ErrAlreadyRunning = errors.New("monitor is already running")
	ErrNotRunning     = errors.New("monitor is not running")
)

type Config struct {
	ServerName    string
	Interval      time.Duration
	PollTimeout   time.Duration
	ErrorBackoff  time.Duration
	QueryCooldown time.Duration
}

type QuoteFetcher interface {
	Fetch(ctx context.Context) (string, error)
}

type Monitor struct {
	Source   source.Source
	Tracker  *detect.Tracker
	Notifier notify.Notifier
	Quotes   QuoteFetcher

	ServerName    string
	Interval      time.Duration
	PollTimeout   time.Duration
	ErrorBackoff  time.Duration
	QueryCooldown time.Duration

	pollMu sync.Mutex

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	cacheMu   sync.Mutex
	cached    snapshot.Snapshot
	cacheTime time.Time

	healthMu sync.Mutex
	health   Health
}

func New(cfg Config, src source.Source, notifier notify.Notifier) *Monitor {
	if notifier == nil {
		notifier = notify.Log{}
	}
	m := &Monitor{
		Source:        src,
		Tracker:       detect.NewTracker(),
		Notifier:      notifier,
		ServerName:    cfg.ServerName,
		Interval:      cfg.Interval,
		PollTimeout:   cfg.PollTimeout,
		ErrorBackoff:  cfg.ErrorBackoff,
		QueryCooldown: cfg.QueryCooldown,
	}
	if m.Interval <= 0 {
		m.Interval = DefaultInterval
	}
	if m.PollTimeout <= 0 {
		m.PollTimeout = DefaultPollTimeout
	}
	if m.ErrorBackoff <= 0 {
		m.ErrorBackoff = DefaultErrorBackoff
	}
	return m
}

func (m *Monitor) fetch(ctx context.Context) (snapshot.Snapshot, error) {
	if m.PollTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.PollTimeout)
		defer cancel()
	}
	raw, err := m.Source.Fetch(ctx)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	return snapshot.Normalize(raw, m.ServerName), nil
}

// PollOnce fetches the current status and compares it with the last one.
// It returns the notification text when something changed and "" when
// nothing did. A failed fetch leaves the remembered state untouched.
func (m *Monitor) PollOnce(ctx context.Context) (string, error) {
	m.pollMu.Lock()
	defer m.pollMu.Unlock()
	logger := logging.Component("monitor")

	s, err := m.fetch(ctx)
	if err != nil {
		pollsTotal.WithLabelValues("error").Inc()
		m.recordFailure(err)
		return "", fmt.Errorf("poll %s: %w", m.Source.Name(), err)
	}
	pollsTotal.WithLabelValues("ok").Inc()
	m.recordSuccess(s)
	m.store(s)

	events := m.Tracker.Compare(s)
	playersOnline.Set(float64(s.Online))
	playersMax.Set(float64(s.Max))
	for _, ev := range events {
		eventsTotal.WithLabelValues(ev.Kind().String()).Inc()
	}

	logger.Info().
		Str("status", s.Status.String()).
		Int("online", s.Online).
		Int("max", s.Max).
		Int("events", len(events)).
		Msg("poll completed")

	if len(events) == 0 {
		return "", nil
	}
	return format.WithQuote(format.Notification(events, s), m.quote(ctx)), nil
}

// QueryNow renders the current status for a person asking for it. It never
// touches the detector state and never fails: an unreachable server is
// reported as format.Unreachable.
func (m *Monitor) QueryNow(ctx context.Context) string {
	s, ok := m.recent()
	if !ok {
		var err error
		s, err = m.fetch(ctx)
		if err != nil {
			logger := logging.Component("monitor")
			logger.Warn().Err(err).Str("source", m.Source.Name()).Msg("manual query failed")
			return format.Unreachable
		}
		m.store(s)
	}
	return format.WithQuote(format.Snapshot(s), m.quote(ctx))
}

// ResetState forgets the last observation; the next poll initializes again.
func (m *Monitor) ResetState() {
	m.Tracker.Reset()
	logger := logging.Component("monitor")
	logger.Info().Msg("state reset")
}

func (m *Monitor) recent() (snapshot.Snapshot, bool) {
	m.cacheMu.Lock()
	defer m.cacheMu.Unlock()
	if m.cacheTime.IsZero() || time.Since(m.cacheTime) >= m.QueryCooldown {
		return snapshot.Snapshot{}, false
	}
	return m.cached, true
}

func (m *Monitor) store(s snapshot.Snapshot) {
	m.cacheMu.Lock()
	m.cached = s
	m.cacheTime = time.Now()
	m.cacheMu.Unlock()
}

func (m *Monitor) quote(ctx context.Context) string {
	if m.Quotes == nil {
		return ""
	}
	text, err := m.Quotes.Fetch(ctx)
	if err != nil {
		logger := logging.Component("monitor")
		logger.Debug().Err(err).Msg("quote unavailable")
		return ""
	}
	return text
}
