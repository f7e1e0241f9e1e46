// Directive reducer: applies one sparse bulk-edit command to the world.
// Fields run in a fixed order because later fields may depend on earlier
// mutations (a freshly added building can be referenced by visibility).
// Fuzzy lookups that miss are silent no-ops, never errors.
package engine

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/talgya/campus-city/internal/directive"
	"github.com/talgya/campus-city/internal/people"
	"github.com/talgya/campus-city/internal/world"
)

// ApplyDirective merges a directive into the state. Order of application:
//
//	 1. buildingEvents
//	 2. buildingActivityChanges
//	 3. global speed
//	 4. personFlows
//	 5. buildingActivitySet
//	 6. effects
//	 7. buildingAdd
//	 8. buildingRemove
//	 9. peopleAdd
//	10. peopleRemove
//	11. visibility
//	12. settings
//	13. environment
//	14. global.resetRandom: regenerates buildings and people wholesale,
//	    superseding every per-entity edit made above.
func (s *State) ApplyDirective(d *directive.Directive, rng *rand.Rand) {
	if d == nil {
		return
	}

	// 1. Building UI events.
	for _, spec := range d.BuildingEvents {
		b := s.FuzzyBuilding(spec.BuildingName)
		if b == nil {
			continue
		}
		for _, ev := range spec.Events {
			t := ev.Time
			if t == 0 {
				t = s.Env.GameTime
			}
			s.BuildingEvents[b.ID] = append(s.BuildingEvents[b.ID], BuildingEvent{
				Text: ev.Text,
				Type: ev.Type,
				Time: t,
			})
		}
		if n := len(s.BuildingEvents[b.ID]); n > MaxBuildingEvents {
			s.BuildingEvents[b.ID] = s.BuildingEvents[b.ID][n-MaxBuildingEvents:]
		}
	}

	// 2. Relative activity deltas.
	for _, ch := range d.BuildingActivityChanges {
		if b := s.FuzzyBuilding(ch.BuildingName); b != nil {
			bumpActivity(b, ch.ActivityDelta)
		}
	}

	// 3. Global speed.
	if d.Global != nil {
		if d.Global.SpeedMultiplier != nil {
			s.Settings.Speed = clampSpeed(s.Settings.Speed * *d.Global.SpeedMultiplier)
		}
		if d.Global.SpeedSet != nil {
			s.Settings.Speed = clampSpeed(*d.Global.SpeedSet)
		}
	}

	// 4. Person flows. Sampling may repeat people; the count is how many
	// retarget operations run, not how many distinct people move.
	for _, flow := range d.PersonFlows {
		dest := s.FuzzyBuilding(flow.To)
		if dest == nil || len(s.People) == 0 {
			continue
		}
		for i := 0; i < flow.Count; i++ {
			p := s.People[rng.Intn(len(s.People))]
			p.TargetBuildingID = dest.ID
		}
	}

	// 5. Absolute activity levels, bypassing convergence for this instant.
	for _, set := range d.BuildingActivitySet {
		if b := s.FuzzyBuilding(set.BuildingName); b != nil {
			b.Activity = clamp01(set.Level)
		}
	}

	// 6. Timed reversible effects.
	for _, eff := range d.Effects {
		switch eff.Type {
		case directive.EffectActivitySpike:
			b := s.FuzzyBuilding(eff.BuildingName)
			if b == nil {
				continue
			}
			bumpActivity(b, eff.Delta)
			s.Effects = append(s.Effects, TimedEffect{
				Kind:       EffectActivityRevert,
				BuildingID: b.ID,
				Delta:      -eff.Delta,
				Remaining:  eff.DurationSec,
			})
		case directive.EffectPause:
			s.Settings.Running = false
			s.Effects = append(s.Effects, TimedEffect{
				Kind:      EffectResume,
				Remaining: eff.DurationSec,
			})
		}
	}

	// 7. New buildings.
	for _, add := range d.BuildingAdd {
		if add.Name == "" {
			continue
		}
		size := world.Vec3{X: 6, Y: 8, Z: 6}
		if add.Size != nil {
			size = world.Vec3{X: add.Size[0], Y: add.Size[1], Z: add.Size[2]}
		}
		var pos world.Vec3
		placed := false
		if add.Position != nil {
			pos = world.Vec3{X: add.Position[0], Y: world.DisplayHeight, Z: add.Position[2]}
			placed = true
			for _, b := range s.Buildings {
				if world.OverlapsXZ(pos, size, b.Position, b.Size, world.DefaultMargin) {
					placed = false
					break
				}
			}
		}
		if !placed {
			pos = world.FindNonOverlappingPosition(size, s.Buildings, 40, 3)
		}
		activity := 0.5
		if add.Activity != nil {
			activity = clamp01(*add.Activity)
		}
		nb := &world.Building{
			ID:       world.NewBuildingID(add.Name, rng),
			Name:     add.Name,
			Position: pos,
			Size:     size,
			Activity: activity,
			Zone:     world.Zone(add.Zone),
			IsCustom: true,
		}
		s.Buildings = append(s.Buildings, nb)
		s.Settings.VisibleBuildings[nb.ID] = true
		s.PushNews(fmt.Sprintf("Nouveau bâtiment : %s", nb.Name), "directive")
	}

	// 8. Building removal, with mandatory reassignment of everyone who
	// pointed at the removed building.
	for _, ref := range d.BuildingRemove {
		b := s.ResolveBuilding(ref)
		if b == nil {
			continue
		}
		s.removeBuilding(b, rng)
	}

	// 9. New people.
	if len(d.PeopleAdd) > 0 {
		s.Spawner.SetNextID(s.MaxPersonID() + 1)
	}
	for _, add := range d.PeopleAdd {
		count := add.Count
		if count <= 0 {
			continue
		}
		dest := s.FuzzyBuilding(add.To)
		work := s.FuzzyBuilding(add.Workplace)
		role := people.Role(add.Role)
		for i := 0; i < count; i++ {
			r := role
			if r == "" {
				r = s.Spawner.RandomRole()
			}
			workID := ""
			if work != nil {
				workID = work.ID
			} else if dest != nil {
				workID = dest.ID
			}
			p := s.Spawner.Spawn(s.spawnPoint(dest, rng), r, workID, s.randomResidence(rng))
			p.IsCustom = true
			if add.Gender != "" {
				p.Gender = add.Gender
			}
			if add.Name != "" {
				p.Name = add.Name
			}
			if add.Department != "" {
				p.Department = add.Department
			}
			if dest != nil {
				p.TargetBuildingID = dest.ID
			}
			s.People = append(s.People, p)
		}
	}

	// 10. People removal.
	for _, rm := range d.PeopleRemove {
		switch {
		case rm.All:
			s.People = nil
		case rm.ID != nil:
			for i, p := range s.People {
				if p.ID == *rm.ID {
					s.People = append(s.People[:i], s.People[i+1:]...)
					break
				}
			}
		case rm.Name != "":
			if p := s.fuzzyPerson(rm.Name); p != nil {
				for i, q := range s.People {
					if q.ID == p.ID {
						s.People = append(s.People[:i], s.People[i+1:]...)
						break
					}
				}
			}
		}
	}

	// 11. Visibility.
	if v := d.Visibility; v != nil {
		if v.ShowAll {
			vis := make(map[string]bool, len(s.Buildings))
			for _, b := range s.Buildings {
				vis[b.ID] = true
			}
			s.Settings.VisibleBuildings = vis
		}
		for _, name := range v.Hide {
			if b := s.FuzzyBuilding(name); b != nil {
				delete(s.Settings.VisibleBuildings, b.ID)
			}
		}
		if len(v.ShowOnly) > 0 {
			vis := make(map[string]bool)
			for _, name := range v.ShowOnly {
				if b := s.FuzzyBuilding(name); b != nil {
					vis[b.ID] = true
				}
			}
			// Only replace when at least one name resolved.
			if len(vis) > 0 {
				s.Settings.VisibleBuildings = vis
			}
		}
	}

	// 12. Display settings.
	if st := d.Settings; st != nil {
		if st.Glow != nil {
			s.Settings.Glow = *st.Glow
		}
		if st.Shadows != nil {
			s.Settings.Shadows = *st.Shadows
		}
		if st.Labels != nil {
			s.Settings.Labels = *st.Labels
		}
	}

	// 13. Environment shallow merge.
	if e := d.Environment; e != nil {
		if e.Season != nil {
			s.Env.Season = *e.Season
		}
		if e.DayPeriod != nil {
			s.Env.DayPeriod = *e.DayPeriod
		}
		if e.Weekend != nil {
			s.Env.Weekend = *e.Weekend
		}
		if e.GameTime != nil {
			s.Env.GameTime = *e.GameTime
		}
		if e.Temperature != nil {
			temp := *e.Temperature
			s.Env.Temperature = &temp
		}
		if e.Condition != nil {
			s.Env.Condition = *e.Condition
		}
	}

	// 14. Full random reset, superseding everything above.
	if d.Global != nil && d.Global.ResetRandom {
		s.RandomizeWorld(rng)
		s.PushNews("Le campus a été régénéré", "system")
	}
}

// removeBuilding splices a building out and self-heals every reference to
// it. Dangling targets or workplaces would be a correctness violation.
func (s *State) removeBuilding(b *world.Building, rng *rand.Rand) {
	for i, cur := range s.Buildings {
		if cur.ID == b.ID {
			s.Buildings = append(s.Buildings[:i], s.Buildings[i+1:]...)
			break
		}
	}
	delete(s.Settings.VisibleBuildings, b.ID)
	delete(s.BuildingEvents, b.ID)

	if len(s.Buildings) == 0 {
		return
	}
	for _, p := range s.People {
		if p.TargetBuildingID == b.ID {
			p.TargetBuildingID = s.Buildings[rng.Intn(len(s.Buildings))].ID
		}
		if p.Workplace == b.ID {
			p.Workplace = s.Buildings[rng.Intn(len(s.Buildings))].ID
		}
	}
}

// fuzzyPerson resolves a person by name substring, first match wins.
func (s *State) fuzzyPerson(query string) *people.Person {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	for _, p := range s.People {
		if strings.Contains(strings.ToLower(p.Name), q) {
			return p
		}
	}
	return nil
}

// spawnPoint places a new person near a building, or near the origin when
// no destination is known.
func (s *State) spawnPoint(b *world.Building, rng *rand.Rand) world.Vec3 {
	center := world.Vec3{}
	if b != nil {
		center = b.Position
	}
	return world.Vec3{
		X: center.X + rng.Float64()*4 - 2,
		Y: 0,
		Z: center.Z + rng.Float64()*4 - 2,
	}
}

// randomResidence picks a residential building id for the sleep target.
func (s *State) randomResidence(rng *rand.Rand) string {
	var homes []string
	for _, b := range s.Buildings {
		if b.Zone == world.ZoneResidential {
			homes = append(homes, b.ID)
		}
	}
	if len(homes) == 0 {
		return ""
	}
	return homes[rng.Intn(len(homes))]
}
