// Tick orchestrator: the per-frame update composing every subsystem in a
// fixed order. Later steps depend on earlier ones: occupancy follows
// movement, and the behavior machine's crowd check reads last tick's
// occupancy on purpose.
package engine

import (
	"math"
	"math/rand"

	"github.com/talgya/campus-city/internal/people"
	"github.com/talgya/campus-city/internal/world"
)

const (
	// MaxTickDelta bounds a single tick's catch-up work. Callers clamp dt
	// before handing it to Tick.
	MaxTickDelta = 0.05

	// One real second advances game time by ten minutes.
	gameMinutesPerSecond = 10

	// activityLagRate is the first-order convergence rate toward the
	// environment target. Activity approaches, never snaps.
	activityLagRate = 0.3

	// Social pairing parameters.
	socialAttemptP  = 0.05
	socialWindow    = 10
	socialRangeSq   = 2.0
	socialPairP     = 0.3
	conversationEnd = 0.01

	// Population regulation adds or removes at most ceil(20·dt) per tick.
	// Deviations within the tolerance are left alone so regulation does
	// not immediately undo small directive-driven additions or removals.
	populationRatePerSec = 20
	populationTolerance  = 5

	// arrivalEpsilon is how close to a target counts as arrived.
	arrivalEpsilon = 0.5
)

// Tick advances the world by dt seconds. An empty building roster is a
// precondition violation, not a runtime case.
func (s *State) Tick(dt float64, rng *rand.Rand) {
	if len(s.Buildings) == 0 {
		panic("engine: tick with no buildings")
	}

	// 1. Expire transient visual events.
	s.expireVisualEvents(dt)

	// 2. Department dynamics.
	s.stepDepartments(dt, rng)

	// 3. Advance game time; day period follows the clock.
	s.Env.GameTime = math.Mod(s.Env.GameTime+dt*gameMinutesPerSecond/60, 24)
	s.Env.DayPeriod = DayPeriodFor(s.Env.GameTime)

	// 4. Occasional social pairing.
	if rng.Float64() < socialAttemptP {
		s.pairConversations(rng)
	}

	// 5. Behavior state machine for everyone not mid-conversation.
	s.stepBehavior(rng)

	// 6. Building activity converges toward the environment target.
	lag := math.Min(1, dt*activityLagRate)
	for _, b := range s.Buildings {
		target := ActivityTarget(b, s.Env)
		b.Activity += (target - b.Activity) * lag
	}

	// 7. Population regulation toward the environment-derived target.
	s.regulatePopulation(dt, rng)

	// 8. Timed directive effects: decrement, revert exactly once on expiry.
	s.expireTimedEffects(dt)

	// 9. Paused worlds stop here; movement, occupancy, and metrics freeze.
	if !s.Settings.Running {
		return
	}

	// 10. Movement integration.
	s.integrateMovement(dt, rng)

	// 11. Occupancy: nearest-building assignment, recomputed from scratch.
	s.recomputeOccupancy()

	// 12. Aggregates.
	s.updateMetrics()

	// 13. Down-sampled time series, one point per accumulated second.
	s.sampleAcc += dt
	for s.sampleAcc >= 1 {
		s.sampleAcc -= 1
		s.appendSample()
	}
}

// expireVisualEvents decrements flash and interaction timers and drops the
// expired ones.
func (s *State) expireVisualEvents(dt float64) {
	n := 0
	for _, f := range s.Flashes {
		f.Remaining -= dt
		if f.Remaining > 0 {
			s.Flashes[n] = f
			n++
		}
	}
	s.Flashes = s.Flashes[:n]

	n = 0
	for _, ev := range s.Interactions {
		ev.Remaining -= dt
		if ev.Remaining > 0 {
			s.Interactions[n] = ev
			n++
		}
	}
	s.Interactions = s.Interactions[:n]
}

// pairConversations scans a bounded window of subsequent people for each
// candidate instead of all pairs. Pairing is symmetric: both enter the
// talking state referencing each other.
func (s *State) pairConversations(rng *rand.Rand) {
	for i, p := range s.People {
		if p.Talking() || p.State.CurrentActivity == people.ActivitySleep {
			continue
		}
		limit := i + socialWindow
		if limit > len(s.People)-1 {
			limit = len(s.People) - 1
		}
		for j := i + 1; j <= limit; j++ {
			q := s.People[j]
			if q.Talking() || q.State.CurrentActivity == people.ActivitySleep {
				continue
			}
			if world.DistSqXZ(p.Position, q.Position) >= socialRangeSq {
				continue
			}
			if rng.Float64() < socialPairP {
				pid, qid := p.ID, q.ID
				p.State.CurrentActivity = people.ActivityTalking
				p.State.TalkingWith = &qid
				q.State.CurrentActivity = people.ActivityTalking
				q.State.TalkingWith = &pid
			}
			break
		}
	}
}

// stepBehavior runs the behavior machine per person and merges the
// incremental decisions. Talking pairs instead roll to end the
// conversation and come out of it happy.
func (s *State) stepBehavior(rng *rand.Rand) {
	for _, p := range s.People {
		if p.Talking() {
			// The lower id rolls for the pair so the chance is per
			// conversation, not per participant.
			other := s.PersonByID(*p.State.TalkingWith)
			if other == nil {
				// Partner vanished (removed by a directive); self-heal.
				s.endConversation(p, nil)
				continue
			}
			if p.ID < other.ID && rng.Float64() < conversationEnd {
				s.endConversation(p, other)
			}
			continue
		}

		d := people.Decide(p, s.Env.GameTime, s.Buildings, rng)
		if d.Activity != "" {
			p.State.CurrentActivity = d.Activity
		}
		if d.TargetID != "" && d.TargetID != p.TargetBuildingID {
			p.TargetBuildingID = d.TargetID
			p.State.PushHistory(d.TargetID)
		}
		if d.Mood != "" {
			p.State.Mood = d.Mood
		}
	}
}

// endConversation clears the pairing on both sides and leaves the
// participants in a good mood.
func (s *State) endConversation(p, q *people.Person) {
	p.State.TalkingWith = nil
	p.State.CurrentActivity = people.ActivityIdle
	p.State.Mood = people.MoodHappy
	if q != nil {
		q.State.TalkingWith = nil
		q.State.CurrentActivity = people.ActivityIdle
		q.State.Mood = people.MoodHappy
	}
}

// regulatePopulation drifts the head count toward the environment target
// at a bounded rate. Arrivals appear near the liveliest building;
// departures take the oldest entries first.
func (s *State) regulatePopulation(dt float64, rng *rand.Rand) {
	target := TargetPopulation(s.Env, s.BasePopulation)
	diff := target - len(s.People)
	if diff >= -populationTolerance && diff <= populationTolerance {
		return
	}

	rate := int(math.Ceil(populationRatePerSec * dt))
	if rate < 1 {
		rate = 1
	}

	if diff > 0 {
		if diff > rate {
			diff = rate
		}
		hot := s.mostActiveBuilding()
		for i := 0; i < diff; i++ {
			s.Spawner.SetNextID(s.MaxPersonID() + 1)
			p := s.Spawner.Spawn(s.spawnPoint(hot, rng), s.Spawner.RandomRole(), "", s.randomResidence(rng))
			if hot != nil {
				p.TargetBuildingID = hot.ID
			}
			s.People = append(s.People, p)
		}
		return
	}

	remove := -diff
	if remove > rate {
		remove = rate
	}
	s.People = s.People[remove:]
}

// mostActiveBuilding returns the building with the highest activity.
func (s *State) mostActiveBuilding() *world.Building {
	var best *world.Building
	for _, b := range s.Buildings {
		if best == nil || b.Activity > best.Activity {
			best = b
		}
	}
	return best
}

// expireTimedEffects decrements directive effects and fires each reversal
// exactly once.
func (s *State) expireTimedEffects(dt float64) {
	n := 0
	for _, eff := range s.Effects {
		eff.Remaining -= dt
		if eff.Remaining > 0 {
			s.Effects[n] = eff
			n++
			continue
		}
		switch eff.Kind {
		case EffectActivityRevert:
			if b := s.BuildingByID(eff.BuildingID); b != nil {
				bumpActivity(b, eff.Delta)
			}
		case EffectResume:
			s.Settings.Running = true
		}
	}
	s.Effects = s.Effects[:n]
}

// integrateMovement steps every non-talking person straight toward their
// target. Stale targets self-heal to a random live building. Arrivals at
// lively buildings wander off more readily; the bored-and-leaves dynamic.
func (s *State) integrateMovement(dt float64, rng *rand.Rand) {
	for _, p := range s.People {
		if p.Talking() {
			continue
		}

		b := s.BuildingByID(p.TargetBuildingID)
		if b == nil {
			b = s.Buildings[rng.Intn(len(s.Buildings))]
			p.TargetBuildingID = b.ID
		}

		dx := b.Position.X - p.Position.X
		dz := b.Position.Z - p.Position.Z
		dist := math.Sqrt(dx*dx + dz*dz)

		if dist < arrivalEpsilon {
			if len(s.Buildings) > 1 && rng.Float64() < 0.01+b.Activity*0.05 {
				for {
					next := s.Buildings[rng.Intn(len(s.Buildings))]
					if next.ID != b.ID {
						p.TargetBuildingID = next.ID
						break
					}
				}
			}
			continue
		}

		step := p.Speed * s.Settings.Speed * dt
		if step > dist {
			step = dist
		}
		p.Position.X += dx / dist * step
		p.Position.Z += dz / dist * step
	}
}

// recomputeOccupancy resets every building to zero and assigns each person
// to their nearest building. A person far from everything still counts
// toward whichever is nearest; panels that report "people inside" rely on
// this definition.
func (s *State) recomputeOccupancy() {
	for _, b := range s.Buildings {
		b.Occupancy = 0
	}
	for _, p := range s.People {
		if b := people.NearestBuilding(p.Position, s.Buildings); b != nil {
			b.Occupancy++
		}
	}
}

// updateMetrics refreshes the aggregate counters.
func (s *State) updateMetrics() {
	m := Metrics{People: len(s.People), Interactions: len(s.Interactions)}
	for _, b := range s.Buildings {
		if b.Activity > 0.3 {
			m.ActiveBuildings++
		}
		m.TotalOccupancy += b.Occupancy
	}
	for _, d := range s.Departments {
		m.Publications += d.Publications
	}
	s.Metrics = m
}

// appendSample pushes one time-series point into the capped ring.
func (s *State) appendSample() {
	collabs, rivalries := 0, 0
	for _, d := range s.Departments {
		for _, n := range d.Collabs {
			collabs += n
		}
		for _, n := range d.Rivalries {
			rivalries += n
		}
	}
	s.Series = append(s.Series, Sample{
		Time:            s.Env.GameTime,
		InvestmentAI:    s.Scenario.InvestmentAI,
		InvestmentHum:   s.Scenario.InvestmentHumanities,
		Publications:    s.Metrics.Publications,
		Collaborations:  collabs,
		Rivalries:       rivalries,
		Occupancy:       s.Metrics.TotalOccupancy,
		ActiveBuildings: s.Metrics.ActiveBuildings,
	})
	if len(s.Series) > MaxSeries {
		s.Series = s.Series[len(s.Series)-MaxSeries:]
	}
}
