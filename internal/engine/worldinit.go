// Fresh-world generation: the seed campus, the department and agent
// rosters, and an initial population scattered organically around the
// buildings people belong to.
package engine

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/campus-city/internal/faculty"
	"github.com/talgya/campus-city/internal/people"
	"github.com/talgya/campus-city/internal/world"
)

// WorldConfig holds generation parameters.
type WorldConfig struct {
	Seed           int64
	BasePopulation int
}

// DefaultWorldConfig returns the standard campus parameters.
func DefaultWorldConfig() WorldConfig {
	return WorldConfig{Seed: 42, BasePopulation: 500}
}

// NewState generates a fresh world.
func NewState(cfg WorldConfig) *State {
	if cfg.BasePopulation <= 0 {
		cfg.BasePopulation = 500
	}

	buildings := world.SeedBuildings()
	departments := faculty.SeedDepartments()

	vis := make(map[string]bool, len(buildings))
	for _, b := range buildings {
		vis[b.ID] = true
	}

	s := &State{
		Buildings:   buildings,
		Departments: departments,
		Agents:      faculty.SeedAgents(departments),
		Env: Environment{
			Season:    SeasonSpring,
			DayPeriod: PeriodMorning,
			GameTime:  8,
		},
		Scenario: Scenario{InvestmentAI: 0.5, InvestmentHumanities: 0.5},
		Settings: Settings{
			Running:          true,
			Speed:            1,
			Glow:             true,
			Shadows:          true,
			Labels:           true,
			VisibleBuildings: vis,
		},
		BuildingEvents: make(map[string][]BuildingEvent),
		BasePopulation: cfg.BasePopulation,
		Spawner:        people.NewSpawner(cfg.Seed),
	}

	s.spawnInitialPopulation(cfg)
	return s
}

// spawnInitialPopulation creates the starting crowd. Simplex noise drives
// the scatter so people cluster in soft organic patches around their
// buildings instead of a uniform square.
func (s *State) spawnInitialPopulation(cfg WorldConfig) {
	noise := opensimplex.NewNormalized(cfg.Seed)
	rng := rand.New(rand.NewSource(cfg.Seed + 100))

	for i := 0; i < cfg.BasePopulation; i++ {
		role := s.Spawner.RandomRole()
		work := s.workplaceFor(role, rng)
		home := s.randomResidence(rng)

		anchor := s.BuildingByID(work)
		if anchor == nil {
			anchor = s.Buildings[rng.Intn(len(s.Buildings))]
		}

		fi := float64(i)
		pos := world.Vec3{
			X: anchor.Position.X + (noise.Eval2(fi*0.13, 0.0)-0.5)*16,
			Z: anchor.Position.Z + (noise.Eval2(0.0, fi*0.17)-0.5)*16,
		}

		p := s.Spawner.Spawn(pos, role, work, home)
		s.People = append(s.People, p)
	}
}

// workplaceFor picks a plausible workplace building for a role.
func (s *State) workplaceFor(role people.Role, rng *rand.Rand) string {
	switch role {
	case people.RoleProfessor, people.RoleStudent:
		pool := []string{"sci", "ing", "bio", "hum", "art"}
		return pool[rng.Intn(len(pool))]
	case people.RoleEmployee:
		pool := []string{"adm", "bib", "caf"}
		return pool[rng.Intn(len(pool))]
	case people.RoleWorker:
		pool := []string{"mall", "resto", "cafe", "gym"}
		return pool[rng.Intn(len(pool))]
	default:
		return ""
	}
}

// RandomizeWorld regenerates buildings and people wholesale: fresh seed
// campus with random activity levels and a re-initialized population.
// Departments, agents, and settings other than visibility survive.
func (s *State) RandomizeWorld(rng *rand.Rand) {
	s.Buildings = world.SeedBuildings()
	for _, b := range s.Buildings {
		b.Activity = rng.Float64()
	}

	vis := make(map[string]bool, len(s.Buildings))
	for _, b := range s.Buildings {
		vis[b.ID] = true
	}
	s.Settings.VisibleBuildings = vis
	s.BuildingEvents = make(map[string][]BuildingEvent)

	s.People = nil
	s.Spawner = people.NewSpawner(rng.Int63())
	s.spawnInitialPopulation(WorldConfig{Seed: rng.Int63(), BasePopulation: s.BasePopulation})
}
