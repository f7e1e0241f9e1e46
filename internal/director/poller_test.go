package director

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/talgya/campus-city/internal/engine"
	"github.com/talgya/campus-city/internal/faculty"
)

func sampledAgents() []faculty.Agent {
	return []faculty.Agent{
		{ID: "prof-engineering", Role: "prof", Department: "engineering",
			Biases: faculty.Biases{Research: 0.7, Collab: 0.5, Rivalry: 0.3}},
		{ID: "student-arts", Role: "student", Department: "arts",
			Biases: faculty.Biases{Research: 0.3, Collab: 0.7, Rivalry: 0.2}},
		{ID: "rector", Role: "rector",
			Biases: faculty.Biases{Research: 0.5, Collab: 0.6, Rivalry: 0.2}},
	}
}

func TestSanitizeDropsUnknownAgents(t *testing.T) {
	batch := []faculty.Action{
		{ID: "prof-engineering", Publish: true},
		{ID: "prof-invente", Publish: true},
	}
	out := Sanitize(batch, sampledAgents())
	if len(out) != 1 || out[0].ID != "prof-engineering" {
		t.Errorf("sanitized batch: %+v", out)
	}
}

func TestSanitizeStripsNonRectorInvestments(t *testing.T) {
	batch := []faculty.Action{
		{ID: "prof-engineering", SetInvestments: &faculty.Investments{AI: 1, Humanities: 0}},
		{ID: "rector", SetInvestments: &faculty.Investments{AI: 0.8, Humanities: 0.2}},
	}
	out := Sanitize(batch, sampledAgents())
	if len(out) != 2 {
		t.Fatalf("batch length %d", len(out))
	}
	if out[0].SetInvestments != nil {
		t.Error("professor kept investment powers")
	}
	if out[1].SetInvestments == nil {
		t.Error("rector lost investment powers")
	}
}

func TestSanitizeTruncatesMessages(t *testing.T) {
	long := strings.Repeat("a", maxMessageLen+50)
	out := Sanitize([]faculty.Action{{ID: "student-arts", Message: long}}, sampledAgents())
	if len(out) != 1 {
		t.Fatal("action dropped")
	}
	if len(out[0].Message) != maxMessageLen {
		t.Errorf("message length %d, want %d", len(out[0].Message), maxMessageLen)
	}
}

func TestFallbackBatchStaysWithinSample(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	sampled := sampledAgents()
	known := map[string]bool{}
	for _, a := range sampled {
		known[a.ID] = true
	}

	for round := 0; round < 200; round++ {
		for _, act := range FallbackBatch(rng, sampled) {
			if !known[act.ID] {
				t.Fatalf("fallback invented agent %q", act.ID)
			}
			set := 0
			if act.Publish {
				set++
			}
			if act.SeekCollabWith != "" {
				if act.SeekCollabWith == agentByID(sampled, act.ID).Department {
					t.Fatalf("agent %s collaborates with itself", act.ID)
				}
				set++
			}
			if act.Challenge != "" {
				if act.Challenge == agentByID(sampled, act.ID).Department {
					t.Fatalf("agent %s challenges itself", act.ID)
				}
				set++
			}
			if set != 1 {
				t.Fatalf("fallback action carries %d fields: %+v", set, act)
			}
		}
	}
}

func TestFallbackBatchProducesActions(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	total := 0
	for round := 0; round < 100; round++ {
		total += len(FallbackBatch(rng, sampledAgents()))
	}
	if total == 0 {
		t.Error("fallback never produced an action across 100 rounds")
	}
}

func TestSummarizeMentionsWorld(t *testing.T) {
	s := engine.NewState(engine.WorldConfig{Seed: 7, BasePopulation: 120})
	temp := 21.5
	s.Env.Temperature = &temp
	s.Env.Condition = "ensoleillé"

	out := Summarize(s)

	for _, want := range []string{"printemps", "Sciences", "Ingénierie", "ensoleillé"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func agentByID(sampled []faculty.Agent, id string) faculty.Agent {
	for _, a := range sampled {
		if a.ID == id {
			return a
		}
	}
	return faculty.Agent{}
}
