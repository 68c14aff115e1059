package telemetry

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrUnknownEvent is returned for a telemetry line with an unsupported type.
var ErrUnknownEvent = errors.New("unknown telemetry event")

// Decode parses one JSON telemetry object. The "type" field selects the
// concrete event.
func Decode(data []byte) (Event, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("decode telemetry: invalid json")
	}
	typ := gjson.GetBytes(data, "type")
	if !typ.Exists() {
		return nil, fmt.Errorf("decode telemetry: missing type")
	}

	var ev Event
	var err error
	switch typ.String() {
	case "game_state_changed":
		ev, err = decodeAs[GameStateChanged](data)
	case "game_tick":
		ev, err = decodeAs[GameTick](data)
	case "hitsplat_applied":
		ev, err = decodeAs[HitsplatApplied](data)
	case "actor_death":
		ev, err = decodeAs[ActorDeath](data)
	case "loot_received":
		ev, err = decodeAs[LootReceived](data)
	case "item_container_changed":
		ev, err = decodeAs[ItemContainerChanged](data)
	case "stat_changed":
		ev, err = decodeAs[StatChanged](data)
	case "widget_loaded":
		ev, err = decodeAs[WidgetLoaded](data)
	case "script_post_fired":
		ev, err = decodeAs[ScriptPostFired](data)
	case "quest_var_changed":
		ev, err = decodeAs[QuestVarChanged](data)
	case "catalog":
		ev, err = decodeAs[Catalog](data)
	default:
		return nil, fmt.Errorf("decode telemetry %q: %w", typ.String(), ErrUnknownEvent)
	}
	if err != nil {
		return nil, fmt.Errorf("decode telemetry %q: %w", typ.String(), err)
	}
	return ev, nil
}

func decodeAs[T Event](data []byte) (Event, error) {
	var ev T
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// Scanner reads JSONL telemetry, skipping blank lines and # comments.
type Scanner struct {
	sc   *bufio.Scanner
	line int
	ev   Event
	err  error
}

// NewScanner creates a telemetry scanner over r.
func NewScanner(r io.Reader) *Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &Scanner{sc: sc}
}

// Scan advances to the next event. It returns false at EOF or on error.
func (s *Scanner) Scan() bool {
	for s.sc.Scan() {
		s.line++
		text := strings.TrimSpace(s.sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		ev, err := Decode([]byte(text))
		if err != nil {
			s.err = fmt.Errorf("line %d: %w", s.line, err)
			return false
		}
		s.ev = ev
		return true
	}
	if err := s.sc.Err(); err != nil {
		s.err = fmt.Errorf("read telemetry: %w", err)
	}
	return false
}

// Event returns the most recently scanned event.
func (s *Scanner) Event() Event {
	return s.ev
}

// Err returns the first error encountered.
func (s *Scanner) Err() error {
	return s.err
}
