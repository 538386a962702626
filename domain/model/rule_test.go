package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPurgeRule_Validate(t *testing.T) {
	tests := []struct {
		name    string
		rule    PurgeRule
		wantErr bool
	}{
		{name: "ok", rule: PurgeRule{Channel: "#gitlab", Days: 5}},
		{name: "zero days", rule: PurgeRule{Channel: "general", Days: 0}},
		{name: "empty channel", rule: PurgeRule{Days: 5}, wantErr: true},
		{name: "blank channel", rule: PurgeRule{Channel: "  ", Days: 5}, wantErr: true},
		{name: "negative days", rule: PurgeRule{Channel: "general", Days: -1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPurgeRule_Cutoff(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	rule := PurgeRule{Channel: "#gitlab", Days: 5}
	assert.Equal(t, time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC), rule.Cutoff(now))

	// days=0 keeps nothing: the cutoff is now itself
	rule = PurgeRule{Channel: "#gitlab", Days: 0}
	assert.Equal(t, now, rule.Cutoff(now))
}

func TestPurgeRule_UnmarshalJSON(t *testing.T) {
	var rules []PurgeRule
	raw := `[{"channel": "#bla", "days": 30}, {"channel": "#ble", "days": "60"}]`
	err := json.Unmarshal([]byte(raw), &rules)
	assert.NoError(t, err)
	assert.Equal(t, []PurgeRule{
		{Channel: "#bla", Days: 30},
		{Channel: "#ble", Days: 60},
	}, rules)

	var rule PurgeRule
	err = json.Unmarshal([]byte(`{"channel": "#bla", "days": "soon"}`), &rule)
	assert.Error(t, err)

	err = json.Unmarshal([]byte(`{"channel": "#bla"}`), &rule)
	assert.NoError(t, err)
	assert.Equal(t, 0, rule.Days)
}
