// Package detect compares consecutive snapshots of a server and reports who
// joined, who left, or by how much the player count moved.
package detect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/realDragonium/mcwatch/snapshot"
)

// State is what the detector remembers between polls. The zero value means
// the server has never been observed.
type State struct {
	Observed bool
	Online   int
	Players  map[string]struct{}
}

func stateOf(s snapshot.Snapshot) State {
	names := s.Players()
	players := make(map[string]struct{}, len(names))
	for _, name := range names {
		players[name] = struct{}{}
	}
	return State{
		Observed: true,
		Online:   s.Online,
		Players:  players,
	}
}

// Names returns the remembered player names in ascending order.
func (state State) Names() []string {
	return sortedKeys(state.Players)
}

func (state State) copy() State {
	players := make(map[string]struct{}, len(state.Players))
	for name := range state.Players {
		players[name] = struct{}{}
	}
	state.Players = players
	return state
}

type EventKind byte

const (
	Left EventKind = iota + 1
	Joined
	Count
)

func (kind EventKind) String() string {
	switch kind {
	case Left:
		return "left"
	case Joined:
		return "joined"
	case Count:
		return "count"
	}
	return "unknown"
}

type Event interface {
	Kind() EventKind
	String() string
}

type PlayersLeft struct {
	Names []string
}

func (PlayersLeft) Kind() EventKind { return Left }

func (ev PlayersLeft) String() string {
	return fmt.Sprintf("left: %s", strings.Join(ev.Names, ", "))
}

type PlayersJoined struct {
	Names []string
}

func (PlayersJoined) Kind() EventKind { return Joined }

func (ev PlayersJoined) String() string {
	return fmt.Sprintf("joined: %s", strings.Join(ev.Names, ", "))
}

// CountDelta is only reported when no names changed but the count did, which
// is what servers that hide their player sample look like.
type CountDelta struct {
	Delta   int
	Current int
}

func (CountDelta) Kind() EventKind { return Count }

func (ev CountDelta) String() string {
	return fmt.Sprintf("count: %+d (%d online)", ev.Delta, ev.Current)
}

// Detect returns the state to remember after cur together with the events
// between prev and cur. Events come in a fixed order: PlayersLeft, then
// PlayersJoined, or a lone CountDelta. The first observation only records
// state. A snapshot that is not online produces no events but still replaces
// the state.
func Detect(prev State, cur snapshot.Snapshot) (State, []Event) {
	next := stateOf(cur)
	if !prev.Observed || cur.Status != snapshot.Online {
		return next, nil
	}

	left := difference(prev.Players, next.Players)
	joined := difference(next.Players, prev.Players)

	var events []Event
	if len(left) > 0 {
		events = append(events, PlayersLeft{Names: left})
	}
	if len(joined) > 0 {
		events = append(events, PlayersJoined{Names: joined})
	}
	if len(events) == 0 && next.Online != prev.Online {
		events = append(events, CountDelta{
			Delta:   next.Online - prev.Online,
			Current: next.Online,
		})
	}
	return next, events
}

// difference returns the sorted names in a that are not in b.
func difference(a, b map[string]struct{}) []string {
	var out []string
	for name := range a {
		if _, ok := b[name]; !ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
