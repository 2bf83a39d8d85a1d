package snapshot_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/realDragonium/mcwatch/snapshot"
)

func decode(t *testing.T, text string) map[string]interface{} {
	t.Helper()
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		t.Fatalf("bad test document %q: %v", text, err)
	}
	return raw
}

func TestNormalize_Offline(t *testing.T) {
	s := snapshot.Normalize(nil, "Survival")
	if s.Status != snapshot.Offline {
		t.Errorf("status: got: %v; want: %v", s.Status, snapshot.Offline)
	}
	if s.Version != "unknown" || s.Online != 0 || s.Max != 0 || s.MOTD != "" || len(s.Players()) != 0 {
		t.Errorf("expected defaulted offline snapshot but got: %+v", s)
	}
	if s.Name != "Survival" {
		t.Errorf("name: got: %v; want: %v", s.Name, "Survival")
	}
}

func TestNormalize_Online(t *testing.T) {
	tt := []struct {
		name    string
		doc     string
		version string
		online  int
		max     int
		players []string
		motd    string
	}{
		{
			name:    "vanilla sample",
			doc:     `{"version":{"name":"1.20.1","protocol":763},"players":{"online":2,"max":20,"sample":[{"name":"Steve","id":"a"},{"name":"Alex","id":"b"}]},"description":{"text":"A Minecraft Server"}}`,
			version: "1.20.1",
			online:  2,
			max:     20,
			players: []string{"Steve", "Alex"},
			motd:    "A Minecraft Server",
		},
		{
			name:    "no sample",
			doc:     `{"version":{"name":"Paper 1.20.4"},"players":{"online":7,"max":50},"description":"Hello"}`,
			version: "Paper 1.20.4",
			online:  7,
			max:     50,
			motd:    "Hello",
		},
		{
			name:    "list of strings under list",
			doc:     `{"version":"1.19.2","players":{"online":"3","max":10,"list":["Notch"," jeb_ ","Notch"]}}`,
			version: "1.19.2",
			online:  3,
			max:     10,
			players: []string{"Notch", "jeb_"},
		},
		{
			name:    "comma separated names",
			doc:     `{"version":{"name":"1.8"},"players":{"online":2,"max":8,"sample":"Steve, Alex ,"}}`,
			version: "1.8",
			online:  2,
			max:     8,
			players: []string{"Steve", "Alex"},
		},
		{
			name:    "name aliases",
			doc:     `{"version":{},"players":{"online":4,"max":10,"sample":[{"username":"u1"},{"name_clean":"n2"},{"playername":"p3"},{"xuid":2535400000000000},{"uuid":"no-name"}]}}`,
			version: "unknown version",
			online:  4,
			max:     10,
			players: []string{"u1", "n2", "p3", "2535400000000000"},
		},
		{
			name:    "name preferred over other aliases",
			doc:     `{"version":{"name":"1.21"},"players":{"online":1,"max":1,"sample":[{"xuid":"x","name":"Steve","username":"steve1"}]}}`,
			version: "1.21",
			online:  1,
			max:     1,
			players: []string{"Steve"},
		},
		{
			name:    "motd clean fragments",
			doc:     `{"online":true,"version":"1.20.1","players":{"online":0,"max":20},"motd":{"raw":["§aHello"],"clean":["Hello","  world "]}}`,
			version: "1.20.1",
			max:     20,
			motd:    "Hello world",
		},
		{
			name:    "chat component with extra",
			doc:     `{"version":{"name":"1.20.1"},"players":{"online":0,"max":20},"description":{"text":"","extra":[{"text":"Welcome ","color":"gold"},{"text":"home","bold":true}]}}`,
			version: "1.20.1",
			max:     20,
			motd:    "Welcome home",
		},
		{
			name:    "legacy formatting codes",
			doc:     `{"version":{"name":"§c1.20"},"players":{"online":1,"max":5},"description":"§6Gold §lServer"}`,
			version: "1.20",
			online:  1,
			max:     5,
			motd:    "Gold Server",
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			s := snapshot.Normalize(decode(t, tc.doc), "mc")
			if s.Status != snapshot.Online {
				t.Errorf("status: got: %v; want: %v", s.Status, snapshot.Online)
			}
			if s.Version != tc.version {
				t.Errorf("version: got: %q; want: %q", s.Version, tc.version)
			}
			if s.Online != tc.online || s.Max != tc.max {
				t.Errorf("counts: got: %d/%d; want: %d/%d", s.Online, s.Max, tc.online, tc.max)
			}
			if diff := cmp.Diff(tc.players, s.Players()); diff != "" {
				t.Errorf("players mismatch (-want +got):\n%s", diff)
			}
			if s.MOTD != tc.motd {
				t.Errorf("motd: got: %q; want: %q", s.MOTD, tc.motd)
			}
		})
	}
}

func TestNormalize_Malformed(t *testing.T) {
	tt := []struct {
		name   string
		doc    string
		status snapshot.Status
	}{
		{name: "missing players", doc: `{"version":{"name":"1.20"}}`, status: snapshot.Starting},
		{name: "missing version", doc: `{"players":{"online":1}}`, status: snapshot.Starting},
		{name: "empty object", doc: `{}`, status: snapshot.Starting},
		{name: "sample as integer", doc: `{"version":{"name":"1.20"},"players":{"online":1,"max":2,"sample":5}}`, status: snapshot.Online},
		{name: "description null", doc: `{"version":{"name":"1.20"},"players":{"online":1,"max":2},"description":null}`, status: snapshot.Online},
		{name: "players not an object", doc: `{"version":{"name":"1.20"},"players":"lots"}`, status: snapshot.Online},
		{name: "counts of wrong type", doc: `{"version":null,"players":{"online":true,"max":[1],"sample":[1,null,{"name":7}]}}`, status: snapshot.Online},
		{name: "negative counts", doc: `{"version":{"name":1},"players":{"online":-3,"max":-1}}`, status: snapshot.Online},
		{name: "description of numbers", doc: `{"version":{"name":"x"},"players":{},"description":{"extra":[1,2]}}`, status: snapshot.Online},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			s := snapshot.Normalize(decode(t, tc.doc), "")
			if s.Status != tc.status {
				t.Errorf("status: got: %v; want: %v", s.Status, tc.status)
			}
			if s.Online < 0 || s.Max < 0 {
				t.Errorf("counts must not be negative: %d/%d", s.Online, s.Max)
			}
			if s.Name != snapshot.DefaultName {
				t.Errorf("name: got: %q; want: %q", s.Name, snapshot.DefaultName)
			}
		})
	}
}

func TestNormalize_Starting(t *testing.T) {
	s := snapshot.Normalize(decode(t, `{"status":"starting","hostname":"mc.example.org"}`), "")
	if s.Status != snapshot.Starting {
		t.Errorf("status: got: %v; want: %v", s.Status, snapshot.Starting)
	}
	if s.Version != "starting" {
		t.Errorf("version: got: %q; want: %q", s.Version, "starting")
	}
	if s.MOTD != `{"hostname":"mc.example.org","status":"starting"}` {
		t.Errorf("motd: got: %q", s.MOTD)
	}
	if s.Name != "mc.example.org" {
		t.Errorf("name: got: %q; want: %q", s.Name, "mc.example.org")
	}
}

func TestSnapshot_PlayersIsCopy(t *testing.T) {
	s := snapshot.Snapshot{Status: snapshot.Online}.WithPlayers("A", "B", "A", "")
	names := s.Players()
	names[0] = "changed"
	if diff := cmp.Diff([]string{"A", "B"}, s.Players()); diff != "" {
		t.Errorf("snapshot was mutated (-want +got):\n%s", diff)
	}
}

func TestSnapshot_MarshalJSON(t *testing.T) {
	s := snapshot.Snapshot{Status: snapshot.Online, Name: "mc", Version: "1.20", Online: 1, Max: 2}.WithPlayers("Steve")
	bb, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	expected := `{"status":"online","name":"mc","version":"1.20","online":1,"max":2,"players":["Steve"],"motd":""}`
	if string(bb) != expected {
		t.Errorf("got: %s; want: %s", bb, expected)
	}
}
