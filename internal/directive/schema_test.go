package directive

import "testing"

func TestParseValidDirective(t *testing.T) {
	raw := []byte(`{
		"buildingActivityChanges": [{"buildingName": "gymnase", "activityDelta": 0.3}],
		"buildingActivitySet": [{"buildingName": "bibliothèque", "level": 0.9}],
		"personFlows": [{"to": "cafétéria", "count": 12}],
		"peopleAdd": [{"count": 3, "gender": "female", "role": "student", "to": "sciences"}],
		"buildingAdd": [{"name": "Piscine", "position": [30, 0, 30], "size": [8, 6, 8], "zone": "campus"}],
		"buildingRemove": ["annexe"],
		"peopleRemove": [{"all": true}],
		"global": {"speedSet": 2, "resetRandom": false},
		"visibility": {"hide": ["parc"], "showAll": false},
		"settings": {"glow": true, "labels": false},
		"effects": [{"type": "activitySpike", "buildingName": "gymnase", "delta": 0.2, "durationSec": 30}],
		"environment": {"season": "hiver", "dayPeriod": "soir", "weekend": true, "gameTime": 19.5},
		"buildingEvents": [{"buildingName": "centre", "events": [{"text": "Soldes", "type": "sale"}]}]
	}`)

	d, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if d.Empty() {
		t.Fatal("parsed directive reports empty")
	}
	if len(d.BuildingActivityChanges) != 1 || d.BuildingActivityChanges[0].ActivityDelta != 0.3 {
		t.Errorf("activity changes: %+v", d.BuildingActivityChanges)
	}
	if d.Global == nil || d.Global.SpeedSet == nil || *d.Global.SpeedSet != 2 {
		t.Errorf("global: %+v", d.Global)
	}
	if d.Environment == nil || *d.Environment.Season != "hiver" {
		t.Errorf("environment: %+v", d.Environment)
	}
	if d.BuildingAdd[0].Position == nil || d.BuildingAdd[0].Position[0] != 30 {
		t.Errorf("buildingAdd: %+v", d.BuildingAdd)
	}
}

func TestParseEmptyObject(t *testing.T) {
	d, err := Parse([]byte(`{}`))
	if err != nil {
		t.Fatalf("Parse({}): %v", err)
	}
	if !d.Empty() {
		t.Error("empty document should yield an empty directive")
	}
}

func TestParseRejections(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json", `{`},
		{"not an object", `[1,2]`},
		{"bad season enum", `{"environment": {"season": "winter"}}`},
		{"bad day period enum", `{"environment": {"dayPeriod": "morning"}}`},
		{"gameTime out of range", `{"environment": {"gameTime": 24}}`},
		{"activityDelta out of range", `{"buildingActivityChanges": [{"buildingName": "x", "activityDelta": 2}]}`},
		{"level out of range", `{"buildingActivitySet": [{"buildingName": "x", "level": 1.5}]}`},
		{"flow count zero", `{"personFlows": [{"to": "x", "count": 0}]}`},
		{"flow missing to", `{"personFlows": [{"count": 3}]}`},
		{"peopleAdd missing count", `{"peopleAdd": [{"role": "student"}]}`},
		{"peopleAdd bad gender", `{"peopleAdd": [{"count": 1, "gender": "autre"}]}`},
		{"buildingAdd missing name", `{"buildingAdd": [{"zone": "campus"}]}`},
		{"buildingAdd short position", `{"buildingAdd": [{"name": "x", "position": [1, 2]}]}`},
		{"speedSet above clamp", `{"global": {"speedSet": 50}}`},
		{"effect bad type", `{"effects": [{"type": "earthquake", "durationSec": 10}]}`},
		{"effect zero duration", `{"effects": [{"type": "pause", "durationSec": 0}]}`},
		{"event bad type", `{"buildingEvents": [{"buildingName": "x", "events": [{"text": "t", "type": "party"}]}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.raw)); err == nil {
				t.Errorf("Parse accepted %s", tc.raw)
			}
		})
	}
}

func TestParseIgnoresUnknownFields(t *testing.T) {
	d, err := Parse([]byte(`{"unknownField": 42, "global": {"resetRandom": true}}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if d.Global == nil || !d.Global.ResetRandom {
		t.Errorf("known field lost next to unknown one: %+v", d.Global)
	}
}
