package director

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/talgya/campus-city/internal/engine"
	"github.com/talgya/campus-city/internal/faculty"
	"github.com/talgya/campus-city/internal/llm"
)

const agentSystem = `You direct a handful of academic agents on a simulated French campus. Each agent is a professor, a student, or the rector, with biases toward research, collaboration, and rivalry.

For each agent listed, decide zero or one thing they do this round, in character. Respond with ONLY a JSON array, one object per agent that acts (agents may stay idle by being omitted):

[{"id": "prof-engineering", "publish": true}]

Fields per object (all optional except id):
- "publish": true - the agent's department publishes
- "seekCollabWith": "<department id>" - propose a collaboration
- "challenge": "<department id>" - open a rivalry move
- "moveTo": "<building id or name>" - draw a small crowd toward a building
- "message": "<short French sentence>" - a campus news line in the agent's voice
- "setInvestments": {"ai": 0..1, "humanities": 0..1} - rector only

Stay modest: at most one field per agent besides id, and most rounds most agents do nothing.`

const maxMessageLen = 200

// Poller periodically samples agents, asks the model for their decisions,
// and applies the resulting batch. Batches are keyed by the store
// generation so a toggle or reset drops in-flight results.
type Poller struct {
	Store     *engine.Store
	Client    *llm.Client
	BatchSize int
	Interval  time.Duration

	rng *rand.Rand
}

// NewPoller creates an agent decision poller. client may be nil; the
// local fallback then produces decisions instead.
func NewPoller(store *engine.Store, client *llm.Client, batchSize int, interval time.Duration) *Poller {
	if batchSize <= 0 {
		batchSize = 3
	}
	if interval <= 0 {
		interval = 20 * time.Second
	}
	return &Poller{
		Store:     store,
		Client:    client,
		BatchSize: batchSize,
		Interval:  interval,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run polls until the context is cancelled. Rounds are skipped while the
// llmAgents scenario toggle is off.
func (p *Poller) Run(ctx context.Context) {
	slog.Info("agent poller started", "interval", p.Interval, "batch", p.BatchSize, "llm", p.Client.Enabled())
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("agent poller stopped")
			return
		case <-ticker.C:
			p.pollOnce()
		}
	}
}

// pollOnce runs one decision round.
func (p *Poller) pollOnce() {
	generation := p.Store.Generation()

	var (
		enabled bool
		sampled []faculty.Agent
		summary string
	)
	p.Store.View(func(s *engine.State) {
		enabled = s.Scenario.LLMAgents
		if !enabled {
			return
		}
		for _, i := range p.rng.Perm(len(s.Agents))[:min(p.BatchSize, len(s.Agents))] {
			sampled = append(sampled, *s.Agents[i])
		}
		summary = Summarize(s)
	})
	if !enabled || len(sampled) == 0 {
		return
	}

	var batch []faculty.Action
	var err error
	if p.Client.Enabled() {
		batch, err = DecideBatch(p.Client, sampled, summary)
		if err != nil {
			slog.Warn("agent decision round failed, falling back", "error", err)
			batch = FallbackBatch(p.rng, sampled)
		}
	} else {
		batch = FallbackBatch(p.rng, sampled)
	}

	batch = Sanitize(batch, sampled)
	if len(batch) == 0 {
		return
	}
	if !p.Store.ApplyAgentActions(batch, generation) {
		slog.Debug("stale agent batch dropped", "generation", generation)
	}
}

// DecideBatch asks the model for one decision batch.
func DecideBatch(client *llm.Client, sampled []faculty.Agent, summary string) ([]faculty.Action, error) {
	var b strings.Builder
	b.WriteString(summary)
	b.WriteString("\n## Agents this round\n")
	for _, a := range sampled {
		fmt.Fprintf(&b, "- %s (role %s", a.ID, a.Role)
		if a.Department != "" {
			fmt.Fprintf(&b, ", department %s", a.Department)
		}
		fmt.Fprintf(&b, ", biases research %.1f collab %.1f rivalry %.1f", a.Biases.Research, a.Biases.Collab, a.Biases.Rivalry)
		if len(a.Memory) > 0 {
			fmt.Fprintf(&b, ", recent: %s", strings.Join(a.Memory, " "))
		}
		b.WriteString(")\n")
	}

	text, err := client.Complete(agentSystem, b.String(), 512)
	if err != nil {
		return nil, err
	}

	var batch []faculty.Action
	if err := json.Unmarshal([]byte(llm.ExtractJSON(text)), &batch); err != nil {
		return nil, fmt.Errorf("parse agent batch: %w", err)
	}
	return batch, nil
}

// FallbackBatch generates decisions from the agents' biases alone. It
// keeps department dynamics lively without an API key.
func FallbackBatch(rng *rand.Rand, sampled []faculty.Agent) []faculty.Action {
	peers := []string{"engineering", "biology", "humanities", "arts"}
	var batch []faculty.Action
	for _, a := range sampled {
		act := faculty.Action{ID: a.ID}
		roll := rng.Float64()
		switch {
		case roll < a.Biases.Research*0.3:
			act.Publish = true
		case roll < a.Biases.Research*0.3+a.Biases.Collab*0.2:
			act.SeekCollabWith = randomPeer(rng, peers, a.Department)
		case roll < a.Biases.Research*0.3+a.Biases.Collab*0.2+a.Biases.Rivalry*0.1:
			act.Challenge = randomPeer(rng, peers, a.Department)
		default:
			continue
		}
		batch = append(batch, act)
	}
	return batch
}

func randomPeer(rng *rand.Rand, peers []string, own string) string {
	for {
		peer := peers[rng.Intn(len(peers))]
		if peer != own {
			return peer
		}
	}
}

// Sanitize enforces the guardrails the model cannot be trusted with:
// only sampled agents act, investments stay rector-only, and messages
// are bounded.
func Sanitize(batch []faculty.Action, sampled []faculty.Agent) []faculty.Action {
	byID := make(map[string]faculty.Agent, len(sampled))
	for _, a := range sampled {
		byID[a.ID] = a
	}

	n := 0
	for _, act := range batch {
		agent, ok := byID[act.ID]
		if !ok {
			slog.Warn("agent batch names unknown agent", "id", act.ID)
			continue
		}
		if act.SetInvestments != nil && agent.Role != "rector" {
			act.SetInvestments = nil
		}
		if len(act.Message) > maxMessageLen {
			act.Message = act.Message[:maxMessageLen]
		}
		batch[n] = act
		n++
	}
	return batch[:n]
}
