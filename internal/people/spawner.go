// Population spawning: seeded PRNG, deterministic name generation, and
// monotonic id assignment for people created at init or at runtime.
package people

import (
	"fmt"
	"hash/fnv"
	"math/rand"

	"github.com/talgya/campus-city/internal/world"
)

// Spawner creates people for the simulation. The same seed produces the
// same names and traits in the same order.
type Spawner struct {
	rng    *rand.Rand
	nextID int
}

// NewSpawner creates a spawner with the given seed.
func NewSpawner(seed int64) *Spawner {
	return &Spawner{
		rng:    rand.New(rand.NewSource(seed + 300)),
		nextID: 1,
	}
}

// SetNextID raises the next id to be issued (used after restoring saved
// people so new ids stay above existing ones).
func (s *Spawner) SetNextID(id int) {
	if id > s.nextID {
		s.nextID = id
	}
}

// NextID returns the id the next spawned person will receive.
func (s *Spawner) NextID() int {
	return s.nextID
}

// Spawn creates one person near the given position with role-appropriate
// defaults. workID and homeID pin the schedule when known.
func (s *Spawner) Spawn(pos world.Vec3, role Role, workID, homeID string) *Person {
	id := s.nextID
	s.nextID++

	gender := "male"
	if s.rng.Float64() < 0.5 {
		gender = "female"
	}

	// Per-id hash jitters traits deterministically so reloaded people keep
	// the same personality even when the spawner rng has moved on.
	h := IDHash(id)

	p := &Person{
		ID:       id,
		Name:     s.generateName(gender),
		Gender:   gender,
		Role:     role,
		Position: pos,
		Speed:    1.2 + s.rng.Float64(),
		Traits: Traits{
			Introversion: clamp01(0.2 + 0.6*h + 0.2*s.rng.Float64()),
			Punctuality:  clamp01(0.3 + 0.5*s.rng.Float64()),
			Energy:       0.7 + 0.3*s.rng.Float64(),
		},
		Workplace: workID,
		Schedule:  DefaultSchedule(role, workID, homeID),
		State: PersonState{
			CurrentActivity: ActivityIdle,
			Mood:            MoodNeutral,
		},
	}
	if p.TargetBuildingID = workID; p.TargetBuildingID == "" {
		p.TargetBuildingID = homeID
	}
	return p
}

// RandomRole draws a role with campus-realistic weights.
func (s *Spawner) RandomRole() Role {
	r := s.rng.Float64()
	switch {
	case r < 0.60:
		return RoleStudent
	case r < 0.75:
		return RoleEmployee
	case r < 0.85:
		return RoleProfessor
	case r < 0.95:
		return RoleWorker
	default:
		return RoleVisitor
	}
}

// IDHash maps a person id to a deterministic value in [0,1).
func IDHash(id int) float64 {
	h := fnv.New32a()
	fmt.Fprintf(h, "person-%d", id)
	return float64(h.Sum32()%10000) / 10000
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

// Name pools. Deliberately small; the campus is a small town and repeated
// surnames read naturally.
var (
	firstNamesFemale = []string{
		"Camille", "Léa", "Manon", "Chloé", "Inès", "Jade", "Louise",
		"Emma", "Sarah", "Zoé", "Clara", "Juliette", "Margaux", "Alice",
	}
	firstNamesMale = []string{
		"Lucas", "Hugo", "Nathan", "Théo", "Louis", "Gabriel", "Arthur",
		"Jules", "Adam", "Raphaël", "Paul", "Antoine", "Maxime", "Tom",
	}
	lastNames = []string{
		"Martin", "Bernard", "Dubois", "Thomas", "Robert", "Richard",
		"Petit", "Durand", "Leroy", "Moreau", "Simon", "Laurent",
		"Lefebvre", "Michel", "García", "Roux", "Fournier", "Girard",
	}
)

func (s *Spawner) generateName(gender string) string {
	pool := firstNamesMale
	if gender == "female" {
		pool = firstNamesFemale
	}
	return pool[s.rng.Intn(len(pool))] + " " + lastNames[s.rng.Intn(len(lastNames))]
}
