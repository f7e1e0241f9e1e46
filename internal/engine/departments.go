// Department dynamics: autonomous publish/collaborate/rival events drawn
// per tick, with rates shaped by the investment scenario.
package engine

import (
	"fmt"
	"math/rand"

	"github.com/talgya/campus-city/internal/faculty"
)

// Base event rates, per simulated second.
const (
	publishRate = 0.25
	collabRate  = 0.15
	rivalRate   = 0.10
)

// Event lifetimes in seconds.
const (
	flashDuration       = 2
	interactionDuration = 3
)

// stepDepartments draws the three independent Bernoulli events for every
// department, scaled by dt.
func (s *State) stepDepartments(dt float64, rng *rand.Rand) {
	ai := s.Scenario.InvestmentAI
	hum := s.Scenario.InvestmentHumanities

	for _, d := range s.Departments {
		affinity := 0.5 + hum
		if d.AILeaning() {
			affinity = 0.5 + ai
		}

		if rng.Float64() < publishRate*affinity*dt {
			s.departmentPublish(d)
		}

		// Collaboration leans AI-heavy regardless of which department acts.
		if rng.Float64() < collabRate*(0.5+0.6*ai+0.4*hum)*dt {
			if peer := s.randomOtherDepartment(d, rng); peer != nil {
				s.departmentCollaborate(d, peer)
			}
		}

		// Rivalry feeds on AI investment and starves on humanities funding.
		if p := rivalRate * (0.5 + ai - hum) * dt; p > 0 && rng.Float64() < p {
			if peer := s.randomOtherDepartment(d, rng); peer != nil {
				s.departmentRival(d, peer)
			}
		}
	}
}

// departmentPublish records a publication: counter, home-building bump,
// 2-second flash, news item.
func (s *State) departmentPublish(d *faculty.Department) {
	d.Publications++
	if b := s.BuildingByID(d.BuildingID); b != nil {
		bumpActivity(b, 0.05)
	}
	s.Flashes = append(s.Flashes, FlashEvent{BuildingID: d.BuildingID, Remaining: flashDuration})
	s.PushNews(fmt.Sprintf("Le département %s publie un nouvel article (%d au total)", d.Name, d.Publications), "department")
}

// departmentCollaborate increments both sides symmetrically and draws a
// 3-second interaction line.
func (s *State) departmentCollaborate(d, peer *faculty.Department) {
	d.Collabs[peer.ID]++
	peer.Collabs[d.ID]++
	s.Interactions = append(s.Interactions, InteractionEvent{
		FromBuildingID: d.BuildingID,
		ToBuildingID:   peer.BuildingID,
		Kind:           "collab",
		Remaining:      interactionDuration,
	})
	s.PushNews(fmt.Sprintf("Collaboration entre %s et %s", d.Name, peer.Name), "department")
}

// departmentRival records a one-sided rivalry: only the initiator's counter
// moves, the initiator's building gains a little and the peer's loses more.
func (s *State) departmentRival(d, peer *faculty.Department) {
	d.Rivalries[peer.ID]++
	if b := s.BuildingByID(d.BuildingID); b != nil {
		bumpActivity(b, 0.02)
	}
	if b := s.BuildingByID(peer.BuildingID); b != nil {
		bumpActivity(b, -0.03)
	}
	s.Interactions = append(s.Interactions, InteractionEvent{
		FromBuildingID: d.BuildingID,
		ToBuildingID:   peer.BuildingID,
		Kind:           "rivalry",
		Remaining:      interactionDuration,
	})
	s.PushNews(fmt.Sprintf("Rivalité : %s défie %s", d.Name, peer.Name), "department")
}

// randomOtherDepartment picks a uniformly random department other than d.
func (s *State) randomOtherDepartment(d *faculty.Department, rng *rand.Rand) *faculty.Department {
	if len(s.Departments) < 2 {
		return nil
	}
	for {
		peer := s.Departments[rng.Intn(len(s.Departments))]
		if peer.ID != d.ID {
			return peer
		}
	}
}
