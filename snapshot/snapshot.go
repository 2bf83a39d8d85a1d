// Package snapshot holds the canonical reading of a server and the
// normalizer that builds it from whatever JSON a source returned.
package snapshot

import "encoding/json"

type Status byte

const (
	Unknown Status = iota
	Online
	Offline
	Starting
)

func (status Status) String() string {
	var text string
	switch status {
	case Online:
		text = "online"
	case Offline:
		text = "offline"
	case Starting:
		text = "starting"
	default:
		text = "unknown"
	}
	return text
}

func (status Status) MarshalText() ([]byte, error) {
	return []byte(status.String()), nil
}

// Snapshot is one point-in-time reading of a server. Values are never changed
// after they are built; WithPlayers returns a new one.
type Snapshot struct {
	Status  Status
	Name    string
	Version string
	Online  int
	Max     int
	MOTD    string

	players []string
}

// Players returns the distinct player names in the order the source listed
// them. The slice is a copy.
func (s Snapshot) Players() []string {
	if len(s.players) == 0 {
		return nil
	}
	names := make([]string, len(s.players))
	copy(names, s.players)
	return names
}

// WithPlayers returns a copy of s carrying names, minus duplicates and blanks.
func (s Snapshot) WithPlayers(names ...string) Snapshot {
	s.players = distinct(names)
	return s
}

func distinct(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

type snapshotJSON struct {
	Status  Status   `json:"status"`
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Online  int      `json:"online"`
	Max     int      `json:"max"`
	Players []string `json:"players"`
	MOTD    string   `json:"motd"`
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	players := s.Players()
	if players == nil {
		players = []string{}
	}
	return json.Marshal(snapshotJSON{
		Status:  s.Status,
		Name:    s.Name,
		Version: s.Version,
		Online:  s.Online,
		Max:     s.Max,
		Players: players,
		MOTD:    s.MOTD,
	})
}
