// Command director runs the agent decision loop against a remote
// campussim API. It observes the world, asks the model what the sampled
// agents do, and posts the batch to the admin endpoint.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/talgya/campus-city/internal/director"
	"github.com/talgya/campus-city/internal/faculty"
	"github.com/talgya/campus-city/internal/llm"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	apiURL := envOrDefault("CAMPUS_API_URL", "http://localhost:8420")
	adminKey := os.Getenv("CAMPUS_ADMIN_KEY")
	anthropicKey := os.Getenv("ANTHROPIC_API_KEY")
	intervalSec := envIntOrDefault("DIRECTOR_INTERVAL", 20)
	batchSize := envIntOrDefault("DIRECTOR_BATCH", 3)

	if adminKey == "" {
		slog.Error("CAMPUS_ADMIN_KEY is required")
		os.Exit(1)
	}

	interval := time.Duration(intervalSec) * time.Second
	llmClient := llm.NewClient(anthropicKey, os.Getenv("DIRECTOR_MODEL"))
	if !llmClient.Enabled() {
		slog.Warn("ANTHROPIC_API_KEY not set; using local fallback decisions")
	}

	slog.Info("campus director starting", "api_url", apiURL, "interval", interval, "batch", batchSize)

	d := &remoteDirector{
		apiURL:   strings.TrimRight(apiURL, "/"),
		adminKey: adminKey,
		llm:      llmClient,
		batch:    batchSize,
		http:     &http.Client{Timeout: 15 * time.Second},
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	d.waitForAPI()
	d.runCycle()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			d.runCycle()
		case sig := <-sigCh:
			slog.Info("received signal, shutting down", "signal", sig)
			fmt.Println("Director stopped.")
			return
		}
	}
}

type remoteDirector struct {
	apiURL   string
	adminKey string
	llm      *llm.Client
	batch    int
	http     *http.Client
	rng      *rand.Rand
}

// waitForAPI blocks until the status endpoint answers. Process managers
// only guarantee process start, not HTTP readiness.
func (d *remoteDirector) waitForAPI() {
	slog.Info("waiting for campussim API...")
	for {
		resp, err := d.http.Get(d.apiURL + "/api/v1/status")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(5 * time.Second)
	}
}

// runCycle executes one observe, decide, act round.
func (d *remoteDirector) runCycle() {
	var status struct {
		Generation string `json:"generation"`
		Scenario   struct {
			LLMAgents bool `json:"llmAgents"`
		} `json:"scenario"`
	}
	if err := d.getJSON("/api/v1/status", &status); err != nil {
		slog.Error("status fetch failed", "error", err)
		return
	}
	if !status.Scenario.LLMAgents {
		slog.Debug("llmAgents disabled, skipping round")
		return
	}

	var agents []faculty.Agent
	if err := d.getJSON("/api/v1/agents", &agents); err != nil {
		slog.Error("agents fetch failed", "error", err)
		return
	}
	if len(agents) == 0 {
		return
	}

	sampled := make([]faculty.Agent, 0, d.batch)
	for _, i := range d.rng.Perm(len(agents))[:min(d.batch, len(agents))] {
		sampled = append(sampled, agents[i])
	}

	var batch []faculty.Action
	if d.llm.Enabled() {
		summary, err := d.summary()
		if err != nil {
			slog.Error("world summary failed", "error", err)
			return
		}
		batch, err = director.DecideBatch(d.llm, sampled, summary)
		if err != nil {
			slog.Warn("decision round failed, falling back", "error", err)
			batch = director.FallbackBatch(d.rng, sampled)
		}
	} else {
		batch = director.FallbackBatch(d.rng, sampled)
	}

	batch = director.Sanitize(batch, sampled)
	if len(batch) == 0 {
		slog.Info("round complete, no actions")
		return
	}

	// The generation captured before deciding travels with the batch, so
	// a toggle or reset that happened mid-decision voids the result.
	if err := d.postActions(batch, status.Generation); err != nil {
		slog.Error("action post failed", "error", err)
		return
	}
	slog.Info("round complete", "actions", len(batch))
}

// summary composes the prompt context from the public endpoints.
func (d *remoteDirector) summary() (string, error) {
	var buildings []struct {
		ID        string  `json:"id"`
		Name      string  `json:"name"`
		Activity  float64 `json:"activity"`
		Occupancy int     `json:"occupancy"`
	}
	if err := d.getJSON("/api/v1/buildings", &buildings); err != nil {
		return "", err
	}
	var departments []faculty.Department
	if err := d.getJSON("/api/v1/departments", &departments); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("## Bâtiments\n")
	for _, bld := range buildings {
		fmt.Fprintf(&b, "- %s (%s) : activité %.2f, occupation %d\n", bld.Name, bld.ID, bld.Activity, bld.Occupancy)
	}
	b.WriteString("\n## Départements\n")
	for _, dep := range departments {
		fmt.Fprintf(&b, "- %s : %d publications\n", dep.Name, dep.Publications)
	}
	return b.String(), nil
}

func (d *remoteDirector) getJSON(path string, out any) error {
	resp, err := d.http.Get(d.apiURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s: %d: %s", path, resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (d *remoteDirector) postActions(batch []faculty.Action, generation string) error {
	payload, err := json.Marshal(map[string]any{"actions": batch, "generation": generation})
	if err != nil {
		return err
	}
	req, err := http.NewRequest("POST", d.apiURL+"/api/v1/agent-actions", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.adminKey)

	resp, err := d.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("POST agent-actions: %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
