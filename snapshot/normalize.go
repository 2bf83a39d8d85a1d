package snapshot

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Tnze/go-mc/chat"
)

const (
	DefaultName     = "Minecraft server"
	OfflineVersion  = "unknown"
	UnknownVersion  = "unknown version"
	StartingVersion = "starting"
)

// PlayerNameKeys lists, in order of preference, the keys a player record may
// carry its display name under. Different server software and status APIs
// each picked their own.
var PlayerNameKeys = []string{"name", "username", "name_clean", "playername", "xuid"}

// PlayerListKeys are the keys under "players" that may hold the names.
var PlayerListKeys = []string{"sample", "list"}

// DescriptionKeys are the top level keys that may hold the MOTD.
var DescriptionKeys = []string{"description", "motd"}

var formattingCodes = regexp.MustCompile("§[0-9a-fk-orA-FK-OR]")

// Normalize maps a raw status document onto a Snapshot. It never fails:
// anything it cannot make sense of falls back to a default.
//   - nil means the server could not be reached and reads as Offline.
//   - a document with both "version" and "players" reads as Online.
//   - anything else is a server that answered but is not ready yet, Starting.
func Normalize(raw map[string]interface{}, fallbackName string) Snapshot {
	name := displayName(raw, fallbackName)
	if raw == nil {
		return Snapshot{
			Status:  Offline,
			Name:    name,
			Version: OfflineVersion,
		}
	}

	version, hasVersion := raw["version"]
	players, hasPlayers := raw["players"]
	if !hasVersion || !hasPlayers {
		return Snapshot{
			Status:  Starting,
			Name:    name,
			Version: StartingVersion,
			MOTD:    compactJSON(raw),
		}
	}

	s := Snapshot{
		Status:  Online,
		Name:    name,
		Version: versionName(version),
		MOTD:    description(raw),
	}
	if playersObj, ok := players.(map[string]interface{}); ok {
		s.Online = toCount(playersObj["online"])
		s.Max = toCount(playersObj["max"])
		s.players = distinct(playerNames(playersObj))
	}
	return s
}

func displayName(raw map[string]interface{}, fallbackName string) string {
	if name := strings.TrimSpace(fallbackName); name != "" {
		return name
	}
	if hostname, ok := raw["hostname"].(string); ok && strings.TrimSpace(hostname) != "" {
		return strings.TrimSpace(hostname)
	}
	return DefaultName
}

func versionName(v interface{}) string {
	var name string
	switch version := v.(type) {
	case map[string]interface{}:
		name = scalarString(version["name"])
	default:
		name = scalarString(version)
	}
	name = strings.TrimSpace(stripFormatting(name))
	if name == "" {
		return UnknownVersion
	}
	return name
}

// toCount coerces a JSON value into a non-negative count.
func toCount(v interface{}) int {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

func playerNames(players map[string]interface{}) []string {
	for _, key := range PlayerListKeys {
		list, ok := players[key]
		if !ok || list == nil {
			continue
		}
		return namesFrom(list)
	}
	return nil
}

func namesFrom(list interface{}) []string {
	var names []string
	switch entries := list.(type) {
	case []interface{}:
		for _, entry := range entries {
			switch p := entry.(type) {
			case map[string]interface{}:
				names = append(names, recordName(p))
			case string:
				names = append(names, strings.TrimSpace(p))
			}
		}
	case string:
		for _, part := range strings.Split(entries, ",") {
			names = append(names, strings.TrimSpace(part))
		}
	}
	return names
}

func recordName(record map[string]interface{}) string {
	for _, key := range PlayerNameKeys {
		if name := strings.TrimSpace(scalarString(record[key])); name != "" {
			return stripFormatting(name)
		}
	}
	return ""
}

func description(raw map[string]interface{}) string {
	for _, key := range DescriptionKeys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		if text := strings.TrimSpace(stripFormatting(descriptionText(v))); text != "" {
			return text
		}
	}
	return ""
}

func descriptionText(v interface{}) string {
	switch desc := v.(type) {
	case string:
		return desc
	case []interface{}:
		return joinFragments(desc)
	case map[string]interface{}:
		if clean, ok := desc["clean"]; ok {
			switch fragments := clean.(type) {
			case []interface{}:
				return joinFragments(fragments)
			case string:
				return fragments
			}
		}
		return chatText(desc)
	}
	return ""
}

// chatText flattens a chat component, extra children included.
func chatText(component map[string]interface{}) string {
	bb, err := json.Marshal(component)
	if err != nil {
		return scalarString(component["text"])
	}
	var msg chat.Message
	if err := json.Unmarshal(bb, &msg); err != nil {
		return scalarString(component["text"])
	}
	return msg.ClearString()
}

func joinFragments(fragments []interface{}) string {
	parts := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		var text string
		if component, ok := fragment.(map[string]interface{}); ok {
			text = chatText(component)
		} else {
			text = scalarString(fragment)
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

func scalarString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	case bool:
		return strconv.FormatBool(s)
	case int:
		return strconv.Itoa(s)
	}
	return ""
}

func stripFormatting(s string) string {
	return formattingCodes.ReplaceAllString(s, "")
}

func compactJSON(raw map[string]interface{}) string {
	bb, err := json.Marshal(raw)
	if err != nil {
		return fmt.Sprint(raw)
	}
	return string(bb)
}
