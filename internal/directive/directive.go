// Package directive defines the wire contract between the natural-language
// collaborator (LLM or fallback parser) and the directive reducer. Every
// top-level field is independently optional; the reducer applies present
// fields in a fixed, documented order.
package directive

// Directive is a sparse bag of world edits. Building references are names,
// resolved by fuzzy match (case-insensitive substring), never ids; the
// collaborator works from what users typed.
type Directive struct {
	BuildingActivityChanges []BuildingActivityChange `json:"buildingActivityChanges,omitempty"`
	BuildingActivitySet     []BuildingActivitySet    `json:"buildingActivitySet,omitempty"`
	PersonFlows             []PersonFlow             `json:"personFlows,omitempty"`
	PeopleAdd               []PeopleAddSpec          `json:"peopleAdd,omitempty"`
	BuildingAdd             []BuildingAddSpec        `json:"buildingAdd,omitempty"`
	BuildingRemove          []string                 `json:"buildingRemove,omitempty"` // id or fuzzy name
	PeopleRemove            []PeopleRemoveSpec       `json:"peopleRemove,omitempty"`
	Global                  *GlobalOps               `json:"global,omitempty"`
	Visibility              *Visibility              `json:"visibility,omitempty"`
	Settings                *SettingsPatch           `json:"settings,omitempty"`
	Effects                 []EffectSpec             `json:"effects,omitempty"`
	Environment             *EnvironmentPatch        `json:"environment,omitempty"`
	BuildingEvents          []BuildingEventSpec      `json:"buildingEvents,omitempty"`
}

// Empty reports whether the directive carries no edits at all. Applying an
// empty directive is a pure no-op.
func (d *Directive) Empty() bool {
	return len(d.BuildingActivityChanges) == 0 &&
		len(d.BuildingActivitySet) == 0 &&
		len(d.PersonFlows) == 0 &&
		len(d.PeopleAdd) == 0 &&
		len(d.BuildingAdd) == 0 &&
		len(d.BuildingRemove) == 0 &&
		len(d.PeopleRemove) == 0 &&
		d.Global == nil &&
		d.Visibility == nil &&
		d.Settings == nil &&
		len(d.Effects) == 0 &&
		d.Environment == nil &&
		len(d.BuildingEvents) == 0
}

// BuildingActivityChange is a relative activity delta.
type BuildingActivityChange struct {
	BuildingName  string  `json:"buildingName"`
	ActivityDelta float64 `json:"activityDelta"` // -1..1
}

// BuildingActivitySet is an absolute activity level, applied immediately
// and bypassing convergence for that instant.
type BuildingActivitySet struct {
	BuildingName string  `json:"buildingName"`
	Level        float64 `json:"level"` // 0..1
}

// PersonFlow retargets count random people toward a destination building.
type PersonFlow struct {
	From  string `json:"from,omitempty"`
	To    string `json:"to"`
	Count int    `json:"count"`
}

// PeopleAddSpec creates count new people.
type PeopleAddSpec struct {
	Count      int            `json:"count"`
	Gender     string         `json:"gender,omitempty"` // male | female
	To         string         `json:"to,omitempty"`     // fuzzy building name
	Name       string         `json:"name,omitempty"`
	Role       string         `json:"role,omitempty"`
	Workplace  string         `json:"workplace,omitempty"`
	Department string         `json:"department,omitempty"`
	CustomData map[string]any `json:"customData,omitempty"`
}

// BuildingAddSpec creates a new custom building.
type BuildingAddSpec struct {
	Name     string      `json:"name"`
	Position *[3]float64 `json:"position,omitempty"`
	Size     *[3]float64 `json:"size,omitempty"`
	Zone     string      `json:"zone,omitempty"`
	Activity *float64    `json:"activity,omitempty"`
}

// PeopleRemoveSpec removes people by exact id, by first fuzzy name match,
// or all at once.
type PeopleRemoveSpec struct {
	Name string `json:"name,omitempty"`
	ID   *int   `json:"id,omitempty"`
	All  bool   `json:"all,omitempty"`
}

// GlobalOps are world-level knobs. ResetRandom supersedes every other
// field of the directive once triggered.
type GlobalOps struct {
	SpeedMultiplier *float64 `json:"speedMultiplier,omitempty"`
	SpeedSet        *float64 `json:"speedSet,omitempty"` // clamped 0.1..5
	ResetRandom     bool     `json:"resetRandom,omitempty"`
}

// Visibility edits the visible-buildings set.
type Visibility struct {
	Hide     []string `json:"hide,omitempty"`
	ShowOnly []string `json:"showOnly,omitempty"`
	ShowAll  bool     `json:"showAll,omitempty"`
}

// SettingsPatch overwrites display flags.
type SettingsPatch struct {
	Glow    *bool `json:"glow,omitempty"`
	Shadows *bool `json:"shadows,omitempty"`
	Labels  *bool `json:"labels,omitempty"`
}

// Effect kinds.
const (
	EffectActivitySpike = "activitySpike"
	EffectPause         = "pause"
)

// EffectSpec queues a timed reversible effect.
type EffectSpec struct {
	Type         string  `json:"type"` // activitySpike | pause
	BuildingName string  `json:"buildingName,omitempty"`
	Delta        float64 `json:"delta,omitempty"`
	DurationSec  float64 `json:"durationSec"`
}

// EnvironmentPatch shallow-merges into the current environment.
type EnvironmentPatch struct {
	Season      *string  `json:"season,omitempty"`    // hiver | printemps | ete | automne
	DayPeriod   *string  `json:"dayPeriod,omitempty"` // matin | midi | apresmidi | soir | nuit
	Weekend     *bool    `json:"weekend,omitempty"`
	GameTime    *float64 `json:"gameTime,omitempty"` // hours, [0,24)
	Temperature *float64 `json:"temperature,omitempty"`
	Condition   *string  `json:"condition,omitempty"`
}

// BuildingEventSpec appends UI event entries to a fuzzy-matched building.
type BuildingEventSpec struct {
	BuildingName string       `json:"buildingName"`
	Events       []EventEntry `json:"events"`
}

// EventEntry is one timestamped building event.
type EventEntry struct {
	Text string  `json:"text"`
	Type string  `json:"type"` // urgent | info | sale
	Time float64 `json:"time,omitempty"`
}
