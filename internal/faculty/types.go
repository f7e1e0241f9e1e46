// Package faculty provides the department roster and the agent decision
// proxies. Agents are not people: an agent stands for a role inside a
// department and only exists to receive externally computed decisions.
package faculty

// Department is one academic department. The set is fixed at world init
// and never changes at runtime.
type Department struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	BuildingID   string         `json:"building_id"`
	Publications int            `json:"publications"`
	Collabs      map[string]int `json:"collaborations"` // peer department id → event count
	Rivalries    map[string]int `json:"rivalries"`
}

// AILeaning reports whether the department benefits from AI investment;
// everything else leans humanities.
func (d *Department) AILeaning() bool {
	return d.ID == "engineering" || d.ID == "biology"
}

// SeedDepartments returns the fixed department set, homed on the seed
// campus buildings.
func SeedDepartments() []*Department {
	mk := func(id, name, buildingID string) *Department {
		return &Department{
			ID:         id,
			Name:       name,
			BuildingID: buildingID,
			Collabs:    make(map[string]int),
			Rivalries:  make(map[string]int),
		}
	}
	return []*Department{
		mk("engineering", "Ingénierie", "ing"),
		mk("biology", "Biologie", "bio"),
		mk("humanities", "Humanités", "hum"),
		mk("arts", "Arts", "art"),
	}
}

// MemorySize bounds an agent's event-tag memory.
const MemorySize = 10

// Biases weight an agent's stochastic leanings, each 0..1.
type Biases struct {
	Research   float64 `json:"research"`
	Collab     float64 `json:"collab"`
	Rivalry    float64 `json:"rivalry"`
	AI         float64 `json:"ai"`
	Humanities float64 `json:"humanities"`
}

// Agent is a sampled decision proxy for a role within a department. Its
// decisions are computed externally (LLM or local fallback) and applied by
// the decision reducer.
type Agent struct {
	ID         string   `json:"id"`
	Role       string   `json:"role"` // prof, student, rector
	Department string   `json:"department,omitempty"`
	Biases     Biases   `json:"biases"`
	Memory     []string `json:"memory,omitempty"` // last ~10 event tags
}

// Remember appends an event tag to the agent's bounded memory.
func (a *Agent) Remember(tag string) {
	a.Memory = append(a.Memory, tag)
	if len(a.Memory) > MemorySize {
		a.Memory = a.Memory[len(a.Memory)-MemorySize:]
	}
}

// SeedAgents returns the default agent roster: one professor and one
// student per department, plus the rector.
func SeedAgents(departments []*Department) []*Agent {
	var out []*Agent
	for _, d := range departments {
		ai, hum := 0.3, 0.7
		if d.AILeaning() {
			ai, hum = 0.7, 0.3
		}
		out = append(out,
			&Agent{
				ID:         "prof-" + d.ID,
				Role:       "prof",
				Department: d.ID,
				Biases:     Biases{Research: 0.7, Collab: 0.5, Rivalry: 0.3, AI: ai, Humanities: hum},
			},
			&Agent{
				ID:         "student-" + d.ID,
				Role:       "student",
				Department: d.ID,
				Biases:     Biases{Research: 0.3, Collab: 0.7, Rivalry: 0.2, AI: ai, Humanities: hum},
			},
		)
	}
	out = append(out, &Agent{
		ID:     "rector",
		Role:   "rector",
		Biases: Biases{Research: 0.5, Collab: 0.6, Rivalry: 0.2, AI: 0.5, Humanities: 0.5},
	})
	return out
}

// Action is one externally computed decision for an agent. Every field is
// independently optional; absent fields are simply not applied.
type Action struct {
	ID             string       `json:"id"`
	Publish        bool         `json:"publish,omitempty"`
	SeekCollabWith string       `json:"seekCollabWith,omitempty"` // department id
	Challenge      string       `json:"challenge,omitempty"`      // department id
	MoveTo         string       `json:"moveTo,omitempty"`         // building id
	Message        string       `json:"message,omitempty"`
	SetInvestments *Investments `json:"setInvestments,omitempty"`
}

// Investments is the rector-level budget split.
type Investments struct {
	AI         float64 `json:"ai"`
	Humanities float64 `json:"humanities"`
}
