// Package notify delivers notification text to the places people read it.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/realDragonium/mcwatch/logging"
)

// Message is one notification. ID is unique per message so sinks that retry
// can deduplicate.
type Message struct {
	ID     string    `json:"id"`
	Server string    `json:"server"`
	Text   string    `json:"text"`
	Time   time.Time `json:"time"`
}

func NewMessage(server, text string) Message {
	return Message{
		ID:     uuid.NewString(),
		Server: server,
		Text:   text,
		Time:   time.Now().UTC(),
	}
}

type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

type NotifierFunc func(ctx context.Context, msg Message) error

func (f NotifierFunc) Notify(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// Multi hands every message to all of its notifiers. One failing sink does
// not keep the message from the others; the failures are joined.
type Multi []Notifier

func (multi Multi) Notify(ctx context.Context, msg Message) error {
	var errs []error
	for i, n := range multi {
		if err := n.Notify(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("notifier %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Log writes messages to the structured log.
type Log struct{}

func (Log) Notify(ctx context.Context, msg Message) error {
	logger := logging.Component("notify")
	logger.Info().
		Str("id", msg.ID).
		Str("server", msg.Server).
		Str("text", msg.Text).
		Msg("notification")
	return nil
}
