// Package engine owns the authoritative world snapshot and the three
// reducers that mutate it: the per-frame tick orchestrator, the directive
// reducer, and the agent decision reducer. All writes are serialized
// through the Store; the reducers themselves are explicit state
// transitions with no ambient globals.
package engine

// Seasons, as the directives spell them.
const (
	SeasonWinter = "hiver"
	SeasonSpring = "printemps"
	SeasonSummer = "ete"
	SeasonAutumn = "automne"
)

// Day periods.
const (
	PeriodMorning   = "matin"
	PeriodNoon      = "midi"
	PeriodAfternoon = "apresmidi"
	PeriodEvening   = "soir"
	PeriodNight     = "nuit"
)

// Environment is the ambient world condition. It is a pure input to the
// activity policy; directives and the weather collaborator mutate it.
type Environment struct {
	Season      string   `json:"season"`
	DayPeriod   string   `json:"dayPeriod"`
	Weekend     bool     `json:"weekend"`
	GameTime    float64  `json:"gameTime"` // hours, wraps mod 24
	Temperature *float64 `json:"temperature,omitempty"`
	Condition   string   `json:"condition,omitempty"`
}

// DayPeriodFor maps a game hour to its period.
func DayPeriodFor(hour float64) string {
	switch {
	case hour >= 6 && hour < 11:
		return PeriodMorning
	case hour >= 11 && hour < 14:
		return PeriodNoon
	case hour >= 14 && hour < 18:
		return PeriodAfternoon
	case hour >= 18 && hour < 22:
		return PeriodEvening
	default:
		return PeriodNight
	}
}

// Scenario is the investment backdrop steering department dynamics.
type Scenario struct {
	InvestmentAI         float64 `json:"investmentAI"`         // 0..1
	InvestmentHumanities float64 `json:"investmentHumanities"` // 0..1
	LLMAgents            bool    `json:"llmAgents"`            // enables the agent decision poller
}

// Speed clamp bounds.
const (
	MinSpeed = 0.1
	MaxSpeed = 5
)

// Settings are the runtime knobs shared with the display layer. The
// display flags are inert here but part of the directive merge contract.
type Settings struct {
	Running          bool            `json:"running"`
	Speed            float64         `json:"speed"`
	Glow             bool            `json:"glow"`
	Shadows          bool            `json:"shadows"`
	Labels           bool            `json:"labels"`
	VisibleBuildings map[string]bool `json:"visibleBuildings"`
}

// MaxNews bounds the news ring.
const MaxNews = 50

// NewsItem is one entry of the rolling news feed. IDs increase
// monotonically for the life of the process.
type NewsItem struct {
	ID   int     `json:"id"`
	Text string  `json:"text"`
	Kind string  `json:"kind"` // department, agent, directive, system
	Time float64 `json:"time"` // game hour when emitted
}

// Timed effect kinds, stored as the pending reversal of an already applied
// directive effect.
const (
	EffectActivityRevert = "activityRevert"
	EffectResume         = "resume"
)

// TimedEffect is a queued reversal. Remaining counts down with tick dt and
// the effect fires exactly once, when it reaches zero.
type TimedEffect struct {
	Kind       string  `json:"kind"`
	BuildingID string  `json:"buildingId,omitempty"`
	Delta      float64 `json:"delta,omitempty"` // applied on expiry (already negated for reverts)
	Remaining  float64 `json:"remaining"`       // seconds
}

// FlashEvent is the short visual pulse on a building after a publication.
type FlashEvent struct {
	BuildingID string  `json:"buildingId"`
	Remaining  float64 `json:"remaining"` // seconds, starts at 2
}

// InteractionEvent is the transient line drawn between two department
// buildings for a collaboration or rivalry.
type InteractionEvent struct {
	FromBuildingID string  `json:"fromBuildingId"`
	ToBuildingID   string  `json:"toBuildingId"`
	Kind           string  `json:"kind"`      // collab, rivalry
	Remaining      float64 `json:"remaining"` // seconds, starts at 3
}

// MaxBuildingEvents bounds per-building UI event lists.
const MaxBuildingEvents = 20

// BuildingEvent is a UI notice attached to a building by a directive.
type BuildingEvent struct {
	Text string  `json:"text"`
	Type string  `json:"type"` // urgent, info, sale
	Time float64 `json:"time"` // game hour
}

// Metrics are the per-tick world aggregates.
type Metrics struct {
	People          int `json:"people"`
	ActiveBuildings int `json:"activeBuildings"` // activity > 0.3
	TotalOccupancy  int `json:"totalOccupancy"`
	Publications    int `json:"publications"`
	Interactions    int `json:"interactions"` // live collab/rivalry events
}

// MaxSeries bounds the down-sampled time series ring.
const MaxSeries = 180

// Sample is one time-series point, captured once per accumulated second.
type Sample struct {
	Time            float64 `json:"time"` // game hour
	InvestmentAI    float64 `json:"investmentAI"`
	InvestmentHum   float64 `json:"investmentHumanities"`
	Publications    int     `json:"publications"`
	Collaborations  int     `json:"collaborations"`
	Rivalries       int     `json:"rivalries"`
	Occupancy       int     `json:"occupancy"`
	ActiveBuildings int     `json:"activeBuildings"`
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampSpeed(v float64) float64 {
	if v < MinSpeed {
		return MinSpeed
	}
	if v > MaxSpeed {
		return MaxSpeed
	}
	return v
}
