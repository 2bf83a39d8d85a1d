// Package format renders snapshots and change events as chat-friendly text.
// Everything here is pure.
package format

import (
	"fmt"
	"strings"

	"github.com/realDragonium/mcwatch/detect"
	"github.com/realDragonium/mcwatch/snapshot"
)

const (
	MaxListedPlayers = 10

	Unreachable        = "Cannot reach the server or status API."
	NotificationHeader = "Server activity:"
)

// Snapshot renders a status block, one field per line. The player list is
// only shown while somebody is online and names are known.
func Snapshot(s snapshot.Snapshot) string {
	lines := []string{fmt.Sprintf("[%s] %s", s.Status, s.Name)}
	if s.MOTD != "" {
		lines = append(lines, "MOTD: "+s.MOTD)
	}
	lines = append(lines,
		"Version: "+s.Version,
		fmt.Sprintf("Players: %d/%d", s.Online, s.Max),
	)
	if names := s.Players(); len(names) > 0 && s.Online > 0 {
		lines = append(lines, "Online: "+List(names))
	}
	return strings.Join(lines, "\n")
}

// Events renders one line per event. No events renders as "".
func Events(events []detect.Event) string {
	lines := make([]string, 0, len(events))
	for _, ev := range events {
		lines = append(lines, Event(ev))
	}
	return strings.Join(lines, "\n")
}

func Event(ev detect.Event) string {
	switch e := ev.(type) {
	case detect.PlayersJoined:
		return fmt.Sprintf("+ %s joined the server", List(e.Names))
	case detect.PlayersLeft:
		return fmt.Sprintf("- %s left the server", List(e.Names))
	case detect.CountDelta:
		return fmt.Sprintf("~ player count %+d (now %d)", e.Delta, e.Current)
	}
	return ev.String()
}

// Notification is the message pushed when something changed: the events,
// a blank line, then the current status block.
func Notification(events []detect.Event, s snapshot.Snapshot) string {
	if len(events) == 0 {
		return ""
	}
	return NotificationHeader + "\n" + Events(events) + "\n\n" + Snapshot(s)
}

// WithQuote appends an optional quote paragraph.
func WithQuote(text, quote string) string {
	quote = strings.TrimSpace(quote)
	if quote == "" {
		return text
	}
	return text + "\n\n> " + quote
}

// List joins names with ", " keeping the first MaxListedPlayers and summing
// up the rest as "+N more".
func List(names []string) string {
	if len(names) <= MaxListedPlayers {
		return strings.Join(names, ", ")
	}
	rest := len(names) - MaxListedPlayers
	return fmt.Sprintf("%s +%d more", strings.Join(names[:MaxListedPlayers], ", "), rest)
}
