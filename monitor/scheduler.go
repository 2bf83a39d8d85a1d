package monitor

import (
	"context"
	"time"

	"github.com/realDragonium/mcwatch/logging"
	"github.com/realDragonium/mcwatch/notify"
	"github.com/realDragonium/mcwatch/snapshot"
)

// Health is what the monitor knows about its own recent polls.
type Health struct {
	Running             bool              `json:"running"`
	ConsecutiveFailures int               `json:"consecutive_failures"`
	LastError           string            `json:"last_error,omitempty"`
	LastPoll            time.Time         `json:"last_poll"`
	LastSuccess         time.Time         `json:"last_success"`
	Snapshot            snapshot.Snapshot `json:"snapshot"`
}

func (m *Monitor) Health() Health {
	m.healthMu.Lock()
	health := m.health
	m.healthMu.Unlock()
	health.Running = m.Running()
	return health
}

func (m *Monitor) recordFailure(err error) {
	m.healthMu.Lock()
	m.health.ConsecutiveFailures++
	m.health.LastError = err.Error()
	m.health.LastPoll = time.Now()
	m.healthMu.Unlock()
}

func (m *Monitor) recordSuccess(s snapshot.Snapshot) {
	now := time.Now()
	m.healthMu.Lock()
	m.health.ConsecutiveFailures = 0
	m.health.LastError = ""
	m.health.LastPoll = now
	m.health.LastSuccess = now
	m.health.Snapshot = s
	m.healthMu.Unlock()
}

// Start runs the poll loop in the background until Stop is called or ctx is
// done.
func (m *Monitor) Start(ctx context.Context) error {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	if m.done != nil {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.cancel = cancel
	m.done = done

	go func() {
		defer close(done)
		m.Run(ctx)
		m.runMu.Lock()
		if m.done == done {
			m.cancel()
			m.cancel = nil
			m.done = nil
		}
		m.runMu.Unlock()
	}()

	logger := logging.Component("monitor")
	logger.Info().Dur("interval", m.Interval).Str("source", m.Source.Name()).Msg("monitor started")
	return nil
}

// Stop cancels the loop and waits for the poll in flight to return.
func (m *Monitor) Stop() error {
	m.runMu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.runMu.Unlock()
	if done == nil {
		return ErrNotRunning
	}

	cancel()
	<-done
	logger := logging.Component("monitor")
	logger.Info().Msg("monitor stopped")
	return nil
}

func (m *Monitor) Running() bool {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	return m.done != nil
}

// AutoStart starts the loop after delay unless it was started in the meantime
// or ctx ended.
func (m *Monitor) AutoStart(ctx context.Context, delay time.Duration) {
	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		logger := logging.Component("monitor")
		if err := m.Start(ctx); err != nil {
			logger.Debug().Err(err).Msg("auto start skipped")
			return
		}
		logger.Info().Msg("monitor auto started")
	}()
}

// Run polls every Interval until ctx is done. Failures are logged and the
// loop carries on; a failed delivery waits ErrorBackoff before the next poll.
func (m *Monitor) Run(ctx context.Context) {
	logger := logging.Component("monitor")
	for {
		if ctx.Err() != nil {
			return
		}

		wait := m.Interval
		text, err := m.PollOnce(ctx)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return
			}
			logger.Warn().Err(err).Msg("poll failed")
		case text != "":
			msg := notify.NewMessage(m.ServerName, text)
			if err := m.Notifier.Notify(ctx, msg); err != nil {
				logger.Error().Err(err).Str("id", msg.ID).Msg("notification failed")
				wait = m.ErrorBackoff
			}
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
