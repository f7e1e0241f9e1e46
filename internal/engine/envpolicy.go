// Environment policy: pure functions from (building, environment) to the
// activity target a building converges toward, and from environment to the
// population target. No memory, no side effects; the tick applies the
// activity result through a first-order lag, never directly.
package engine

import (
	"math"

	"github.com/talgya/campus-city/internal/world"
)

// ActivityTarget returns the environment-determined activity level for a
// building. Base 0.5, additive adjustments per building id and per day
// period / weekend / season, clamped to [0,1] at the end only.
func ActivityTarget(b *world.Building, env Environment) float64 {
	t := 0.5
	period := env.DayPeriod

	switch b.ID {
	case "bib":
		switch period {
		case PeriodMorning:
			t += 0.05
		case PeriodEvening:
			t += 0.10
		case PeriodNight:
			t -= 0.30
		}
	case "adm":
		switch period {
		case PeriodMorning, PeriodAfternoon:
			t += 0.15
		case PeriodNight:
			t -= 0.20
		}
		if env.Weekend {
			t -= 0.25
		}
	case "caf":
		switch period {
		case PeriodNoon:
			t += 0.35
		case PeriodMorning:
			t += 0.05
		case PeriodNight:
			t -= 0.25
		}
	case "resto", "cafe":
		switch period {
		case PeriodNoon:
			t += 0.20
		case PeriodEvening:
			t += 0.25
		case PeriodNight:
			t -= 0.10
		}
		if env.Weekend {
			t += 0.10
		}
	case "mall":
		switch period {
		case PeriodAfternoon:
			t += 0.15
		case PeriodNight:
			t -= 0.30
		}
		if env.Weekend {
			t += 0.20
		}
		if env.Season == SeasonAutumn {
			t += 0.05
		}
	case "gym":
		switch period {
		case PeriodMorning:
			t += 0.05
		case PeriodEvening:
			t += 0.20
		case PeriodNight:
			t -= 0.20
		}
	case "res-a", "res-b":
		switch period {
		case PeriodNight:
			t += 0.35
		case PeriodEvening:
			t += 0.15
		case PeriodMorning:
			t -= 0.10
		case PeriodAfternoon:
			t -= 0.15
		}
	case "parc":
		switch period {
		case PeriodAfternoon:
			t += 0.10
		case PeriodNight:
			t -= 0.25
		}
		switch env.Season {
		case SeasonSummer:
			t += 0.20
		case SeasonWinter:
			t -= 0.20
		}
		if env.Weekend {
			t += 0.10
		}
	case "sci", "ing", "bio":
		switch period {
		case PeriodMorning:
			t += 0.15
		case PeriodAfternoon:
			t += 0.10
		case PeriodNight:
			t -= 0.30
		}
		if env.Weekend {
			t -= 0.20
		}
	case "hum", "art":
		switch period {
		case PeriodMorning, PeriodAfternoon:
			t += 0.10
		case PeriodNight:
			t -= 0.30
		}
		if env.Weekend {
			t -= 0.15
		}
	default:
		// Custom buildings fall back to zone profiles.
		t += zoneAdjust(b.Zone, env)
	}

	return clamp01(t)
}

// zoneAdjust is the profile for buildings outside the seed table.
func zoneAdjust(zone world.Zone, env Environment) float64 {
	t := 0.0
	switch zone {
	case world.ZoneCommercial:
		if env.DayPeriod == PeriodNight {
			t -= 0.20
		}
		if env.Weekend {
			t += 0.10
		}
		if env.Season == SeasonAutumn {
			t += 0.05
		}
	case world.ZoneResidential:
		switch env.DayPeriod {
		case PeriodNight:
			t += 0.30
		case PeriodMorning:
			t -= 0.10
		}
	default:
		if env.DayPeriod == PeriodNight {
			t -= 0.25
		}
		if env.Weekend {
			t -= 0.15
		}
	}
	return t
}

// MinPopulation is the floor of the population target.
const MinPopulation = 100

// TargetPopulation scales the base population by independent discount
// factors for night, weekend, and winter.
func TargetPopulation(env Environment, basePop int) int {
	target := float64(basePop)
	if env.DayPeriod == PeriodNight {
		target *= 0.85
	}
	if env.Weekend {
		target *= 0.90
	}
	if env.Season == SeasonWinter {
		target *= 0.95
	}
	if target < MinPopulation {
		target = MinPopulation
	}
	return int(math.Round(target))
}
