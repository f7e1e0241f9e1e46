// The authoritative world snapshot and its lookup helpers.
package engine

import (
	"strings"

	"github.com/talgya/campus-city/internal/faculty"
	"github.com/talgya/campus-city/internal/people"
	"github.com/talgya/campus-city/internal/world"
)

// State holds everything the simulation knows. The Store owns the only
// live instance; reducers receive it by explicit parameter.
type State struct {
	Buildings   []*world.Building     `json:"buildings"`
	People      []*people.Person      `json:"people"`
	Departments []*faculty.Department `json:"departments"`
	Agents      []*faculty.Agent      `json:"agents"`

	Env      Environment `json:"environment"`
	Scenario Scenario    `json:"scenario"`
	Settings Settings    `json:"settings"`

	News           []NewsItem                 `json:"news"`
	Effects        []TimedEffect              `json:"effects"`
	Flashes        []FlashEvent               `json:"flashes"`
	Interactions   []InteractionEvent         `json:"interactions"`
	BuildingEvents map[string][]BuildingEvent `json:"buildingEvents"`
	Series         []Sample                   `json:"series"`
	Metrics        Metrics                    `json:"metrics"`

	BasePopulation int `json:"basePopulation"`
	NextNewsID     int `json:"nextNewsId"`

	// Spawner issues monotonic person ids and deterministic names.
	Spawner *people.Spawner `json:"-"`

	sampleAcc float64
}

// BuildingByID returns the building with the given id, or nil.
func (s *State) BuildingByID(id string) *world.Building {
	for _, b := range s.Buildings {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// FuzzyBuilding resolves a building by case-insensitive substring match of
// the query inside the building name. First match wins; a miss returns nil
// and callers silently no-op.
func (s *State) FuzzyBuilding(query string) *world.Building {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	for _, b := range s.Buildings {
		if strings.Contains(strings.ToLower(b.Name), q) {
			return b
		}
	}
	return nil
}

// ResolveBuilding tries an exact id first, then a fuzzy name match.
func (s *State) ResolveBuilding(ref string) *world.Building {
	if b := s.BuildingByID(ref); b != nil {
		return b
	}
	return s.FuzzyBuilding(ref)
}

// PersonByID returns the person with the given id, or nil.
func (s *State) PersonByID(id int) *people.Person {
	for _, p := range s.People {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// DepartmentByID returns the department with the given id, or nil.
func (s *State) DepartmentByID(id string) *faculty.Department {
	for _, d := range s.Departments {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// FuzzyDepartment resolves a department by id or name substring.
func (s *State) FuzzyDepartment(query string) *faculty.Department {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	for _, d := range s.Departments {
		if d.ID == q || strings.Contains(strings.ToLower(d.Name), q) {
			return d
		}
	}
	return nil
}

// AgentByID returns the agent with the given id, or nil.
func (s *State) AgentByID(id string) *faculty.Agent {
	for _, a := range s.Agents {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// PushNews appends an item to the news ring, evicting the oldest past
// MaxNews. The cap is enforced on every mutation, not by periodic cleanup.
func (s *State) PushNews(text, kind string) {
	s.NextNewsID++
	s.News = append(s.News, NewsItem{
		ID:   s.NextNewsID,
		Text: text,
		Kind: kind,
		Time: s.Env.GameTime,
	})
	if len(s.News) > MaxNews {
		s.News = s.News[len(s.News)-MaxNews:]
	}
}

// MaxPersonID returns the highest person id currently in use.
func (s *State) MaxPersonID() int {
	max := 0
	for _, p := range s.People {
		if p.ID > max {
			max = p.ID
		}
	}
	return max
}

// bumpActivity nudges a building's activity, clamped to [0,1].
func bumpActivity(b *world.Building, delta float64) {
	b.Activity = clamp01(b.Activity + delta)
}
