// Schedule-driven behavior state machine. Every tick, each person that is
// not mid-conversation evaluates their schedule and emits an incremental
// decision that the orchestrator merges back into their state.
package people

import (
	"math/rand"

	"github.com/talgya/campus-city/internal/world"
)

const (
	// EnergyDecayPerTick drains traits.energy a little every update.
	// Energy never regenerates in the core; it floors at 0.
	EnergyDecayPerTick = 0.0003

	// spontaneousTransitionP lets people start a scheduled activity early
	// once in a while, independent of punctuality.
	spontaneousTransitionP = 0.01

	// Crowd-stress thresholds for the mood side channel.
	crowdOccupancy    = 20
	crowdIntroversion = 0.7

	// lowEnergy routes leisure home instead of out.
	lowEnergy = 0.3
)

// Decision is the incremental output of one behavior evaluation. Empty
// fields mean "no change"; the caller merges, never replaces.
type Decision struct {
	Activity string // new current activity, "" = unchanged
	TargetID string // new target building, "" = unchanged
	Mood     Mood   // mood for this tick, "" = unchanged
}

// Decide runs one behavior step for a person: defensive defaulting, energy
// decay, scheduled-task evaluation, and the crowd-stress mood check.
// Buildings carry last tick's occupancy, which is what the stress check
// deliberately reads. Talking people must be filtered out by the caller.
func Decide(p *Person, hour float64, buildings []*world.Building, rng *rand.Rand) Decision {
	p.EnsureDefaults()

	p.Traits.Energy -= EnergyDecayPerTick
	if p.Traits.Energy < 0 {
		p.Traits.Energy = 0
	}

	var d Decision

	task, ok := ScheduledTask(p.Schedule, hour)
	if ok && task.Activity != p.State.CurrentActivity {
		late := hour > task.Time+(1-p.Traits.Punctuality)
		if late || rng.Float64() < spontaneousTransitionP {
			d.Activity = task.Activity
			d.TargetID = resolveTarget(p, task, buildings, rng)
		}
	}

	if near := nearestBuilding(p.Position, buildings); near != nil {
		if near.Occupancy > crowdOccupancy && p.Traits.Introversion > crowdIntroversion {
			d.Mood = MoodStressed
		}
	}

	return d
}

// resolveTarget picks the building for a newly scheduled activity. An
// explicit schedule target wins; otherwise leisure and eat are resolved
// dynamically from personality and the building roster.
func resolveTarget(p *Person, task ScheduleEntry, buildings []*world.Building, rng *rand.Rand) string {
	if task.TargetID != "" {
		return task.TargetID
	}

	switch task.Activity {
	case ActivityLeisure:
		return leisureTarget(p, buildings, rng)
	case ActivityEat:
		return eatTarget(buildings, rng)
	case ActivityWork, ActivityStudy:
		if p.Workplace != "" {
			return p.Workplace
		}
	case ActivitySleep:
		return sleepTarget(p, buildings, rng)
	}
	return ""
}

// leisureTarget weighs energy and introversion: exhausted people head for
// their sleep target, introverts for the library or the park, everyone
// else for the commercial district.
func leisureTarget(p *Person, buildings []*world.Building, rng *rand.Rand) string {
	if p.Traits.Energy < lowEnergy {
		return sleepTarget(p, buildings, rng)
	}

	var quiet, lively []string
	for _, b := range buildings {
		switch {
		case b.ID == "bib" || b.ID == "parc":
			quiet = append(quiet, b.ID)
		case b.Zone == world.ZoneCommercial:
			lively = append(lively, b.ID)
		}
	}

	pool := lively
	if rng.Float64() < p.Traits.Introversion {
		pool = quiet
	}
	if len(pool) == 0 {
		pool = append(quiet, lively...)
	}
	if len(pool) == 0 {
		return ""
	}
	return pool[rng.Intn(len(pool))]
}

// eatTarget picks uniformly among the food spots.
func eatTarget(buildings []*world.Building, rng *rand.Rand) string {
	var pool []string
	for _, b := range buildings {
		switch b.ID {
		case "caf", "resto", "cafe", "mall":
			pool = append(pool, b.ID)
		}
	}
	if len(pool) == 0 {
		return ""
	}
	return pool[rng.Intn(len(pool))]
}

// sleepTarget resolves where the person sleeps: the schedule's sleep entry
// if it is pinned, otherwise a residence, otherwise nothing.
func sleepTarget(p *Person, buildings []*world.Building, rng *rand.Rand) string {
	for i := len(p.Schedule) - 1; i >= 0; i-- {
		if p.Schedule[i].Activity == ActivitySleep && p.Schedule[i].TargetID != "" {
			return p.Schedule[i].TargetID
		}
	}
	var homes []string
	for _, b := range buildings {
		if b.Zone == world.ZoneResidential {
			homes = append(homes, b.ID)
		}
	}
	if len(homes) == 0 {
		return ""
	}
	return homes[rng.Intn(len(homes))]
}

// nearestBuilding returns the building closest to a point on the XZ plane,
// or nil for an empty roster.
func nearestBuilding(pos world.Vec3, buildings []*world.Building) *world.Building {
	var best *world.Building
	bestD := 0.0
	for _, b := range buildings {
		d := world.DistSqXZ(pos, b.Position)
		if best == nil || d < bestD {
			best = b
			bestD = d
		}
	}
	return best
}

// NearestBuilding is the exported lookup used by the occupancy recompute.
func NearestBuilding(pos world.Vec3, buildings []*world.Building) *world.Building {
	return nearestBuilding(pos, buildings)
}
