// Agent decision reducer: applies externally computed action batches for
// the sampled decision proxies. Every action field is independently
// optional; unknown agent ids are skipped without error.
package engine

import (
	"fmt"
	"math/rand"

	"github.com/talgya/campus-city/internal/faculty"
)

// Crowd-flavor bounds for moveTo: a random batch of people follows the
// deciding agent's lead.
const (
	moveToMinPeople = 5
	moveToMaxPeople = 10
)

// ApplyAgentActions merges one decision batch into the state.
func (s *State) ApplyAgentActions(batch []faculty.Action, rng *rand.Rand) {
	for _, act := range batch {
		ag := s.AgentByID(act.ID)
		if ag == nil {
			continue
		}

		if act.Publish {
			if d := s.DepartmentByID(ag.Department); d != nil {
				s.departmentPublish(d)
				ag.Remember("publication")
			}
		}

		if act.SeekCollabWith != "" {
			d := s.DepartmentByID(ag.Department)
			peer := s.FuzzyDepartment(act.SeekCollabWith)
			if d != nil && peer != nil && peer.ID != d.ID {
				s.departmentCollaborate(d, peer)
				ag.Remember("collab:" + peer.ID)
			}
		}

		if act.Challenge != "" {
			d := s.DepartmentByID(ag.Department)
			peer := s.FuzzyDepartment(act.Challenge)
			if d != nil && peer != nil && peer.ID != d.ID {
				s.departmentRival(d, peer)
				ag.Remember("rivalry:" + peer.ID)
			}
		}

		if act.MoveTo != "" {
			if b := s.ResolveBuilding(act.MoveTo); b != nil && len(s.People) > 0 {
				count := moveToMinPeople + rng.Intn(moveToMaxPeople-moveToMinPeople+1)
				for i := 0; i < count; i++ {
					p := s.People[rng.Intn(len(s.People))]
					p.TargetBuildingID = b.ID
				}
				ag.Remember("moveTo:" + b.ID)
			}
		}

		// Meaningful for the rector, but deliberately not enforced here;
		// the prompt layer decides who gets to propose budgets.
		if act.SetInvestments != nil {
			s.Scenario.InvestmentAI = clamp01(act.SetInvestments.AI)
			s.Scenario.InvestmentHumanities = clamp01(act.SetInvestments.Humanities)
			s.PushNews(fmt.Sprintf("Nouveaux arbitrages budgétaires : IA %.0f%%, humanités %.0f%%",
				s.Scenario.InvestmentAI*100, s.Scenario.InvestmentHumanities*100), "agent")
			ag.Remember("investments")
		}

		if act.Message != "" {
			s.PushNews(act.Message, "agent")
			ag.Remember("message")
		}
	}
}
