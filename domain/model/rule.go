package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PurgeRule selects the messages to delete: everything in Channel older
// than Days days. Days == 0 means every message in the channel.
type PurgeRule struct {
	Channel string `json:"channel"`
	Days    int    `json:"days"`
}

func (r PurgeRule) Validate() error {
	if strings.TrimSpace(r.Channel) == "" {
		return fmt.Errorf("purge rule has no channel")
	}
	if r.Days < 0 {
		return fmt.Errorf("purge rule for %s has negative days: %d", r.Channel, r.Days)
	}
	return nil
}

// Cutoff is the timestamp below which messages are preserved.
func (r PurgeRule) Cutoff(now time.Time) time.Time {
	return now.AddDate(0, 0, -r.Days)
}

// UnmarshalJSON accepts "days" either as a JSON number or as a numeric
// string ({"days": 30} and {"days": "30"} are both valid).
func (r *PurgeRule) UnmarshalJSON(data []byte) error {
	var raw struct {
		Channel string `json:"channel"`
		Days    any    `json:"days"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Channel = raw.Channel
	switch v := raw.Days.(type) {
	case nil:
		r.Days = 0
	case float64:
		r.Days = int(v)
	case string:
		days, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid days %q: %w", v, err)
		}
		r.Days = days
	default:
		return fmt.Errorf("invalid days type %T", raw.Days)
	}
	return nil
}
