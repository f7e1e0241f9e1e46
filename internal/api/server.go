// Package api serves the campus world over HTTP. GET endpoints are
// public read-only views; POST endpoints are the admin control plane and
// require a bearer token.
package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/campus-city/internal/directive"
	"github.com/talgya/campus-city/internal/engine"
	"github.com/talgya/campus-city/internal/faculty"
	"github.com/talgya/campus-city/internal/llm"
	"github.com/talgya/campus-city/internal/persistence"
)

// Server serves the world state over HTTP.
type Server struct {
	Store    *engine.Store
	LLM      *llm.Client
	DB       *persistence.DB
	Addr     string
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	// CORSOrigins are the allowed frontend origins besides localhost.
	CORSOrigins []string
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	// The prompt endpoint consumes LLM calls; keep it on a short leash.
	promptLimiter := NewRateLimiter(30, time.Hour)

	mux := http.NewServeMux()

	// Public endpoints.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/state", s.handleState)
	mux.HandleFunc("/api/v1/buildings", s.handleBuildings)
	mux.HandleFunc("/api/v1/people", s.handlePeople)
	mux.HandleFunc("/api/v1/departments", s.handleDepartments)
	mux.HandleFunc("/api/v1/agents", s.handleAgents)
	mux.HandleFunc("/api/v1/news", s.handleNews)
	mux.HandleFunc("/api/v1/series", s.handleSeries)

	// Renderer stream.
	mux.HandleFunc("/api/v1/stream", s.handleStream)

	// Admin endpoints.
	mux.HandleFunc("/api/v1/directive", s.adminOnly(s.handleDirective))
	mux.HandleFunc("/api/v1/prompt", s.adminOnly(RateLimitMiddleware(promptLimiter, s.handlePrompt)))
	mux.HandleFunc("/api/v1/agent-actions", s.adminOnly(s.handleAgentActions))
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/scenario", s.adminOnly(s.handleScenario))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(s.handleSnapshot))

	slog.Info("HTTP API starting", "addr", s.Addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := s.corsMiddleware(mux)
		if err := http.ListenAndServe(s.Addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware allows the configured frontend origins plus localhost
// dev servers.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	allowed := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	for _, origin := range s.CORSOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowed[origin] = true
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request carries the admin token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly requires bearer token auth on POST requests; GET passes
// through for endpoints serving both.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no admin key set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var status map[string]any
	s.Store.View(func(st *engine.State) {
		status = map[string]any{
			"name":        "Campus",
			"gameTime":    st.Env.GameTime,
			"season":      st.Env.Season,
			"dayPeriod":   st.Env.DayPeriod,
			"weekend":     st.Env.Weekend,
			"running":     st.Settings.Running,
			"speed":       st.Settings.Speed,
			"population":  len(st.People),
			"buildings":   len(st.Buildings),
			"departments": len(st.Departments),
			"metrics":     st.Metrics,
			"scenario":    st.Scenario,
		}
		if st.Env.Temperature != nil {
			status["temperature"] = *st.Env.Temperature
			status["condition"] = st.Env.Condition
		}
	})
	// Remote directors capture the generation before deciding so a batch
	// computed across a scenario toggle or reset gets discarded.
	status["generation"] = s.Store.Generation()
	writeJSON(w, status)
}

// handleState returns the full renderer payload, the same frame the
// websocket stream pushes.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	var raw []byte
	s.Store.View(func(st *engine.State) {
		raw, _ = json.Marshal(buildFrame(st))
	})
	w.Header().Set("Content-Type", "application/json")
	w.Write(raw)
}

func (s *Server) handleBuildings(w http.ResponseWriter, r *http.Request) {
	s.viewJSON(w, func(st *engine.State) any { return st.Buildings })
}

func (s *Server) handlePeople(w http.ResponseWriter, r *http.Request) {
	limit := 200
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 2000 {
			limit = n
		}
	}
	s.viewJSON(w, func(st *engine.State) any {
		if len(st.People) > limit {
			return st.People[:limit]
		}
		return st.People
	})
}

func (s *Server) handleDepartments(w http.ResponseWriter, r *http.Request) {
	s.viewJSON(w, func(st *engine.State) any { return st.Departments })
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	s.viewJSON(w, func(st *engine.State) any { return st.Agents })
}

// viewJSON marshals a projection of the state under the store lock, so
// the response never sees a half-applied mutation.
func (s *Server) viewJSON(w http.ResponseWriter, project func(*engine.State) any) {
	var raw []byte
	var err error
	s.Store.View(func(st *engine.State) {
		raw, err = json.Marshal(project(st))
	})
	if err != nil {
		http.Error(w, "encode failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(raw)
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	// since= lets clients poll incrementally by last seen id.
	since := -1
	if v := r.URL.Query().Get("since"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			since = n
		}
	}

	out := []engine.NewsItem{}
	s.Store.View(func(st *engine.State) {
		for _, item := range st.News {
			if item.ID > since {
				out = append(out, item)
			}
		}
	})
	writeJSON(w, out)
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	out := []engine.Sample{}
	s.Store.View(func(st *engine.State) {
		out = append(out, st.Series...)
	})
	writeJSON(w, out)
}

// handleDirective applies a raw directive document. The body is
// validated against the directive schema before it touches the world.
func (s *Server) handleDirective(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
		return
	}

	d, err := directive.Parse(raw)
	if err != nil {
		http.Error(w, "invalid directive: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.applyDirective(d)
	writeJSON(w, map[string]any{"applied": true})
}

// handlePrompt resolves a natural-language request into a directive via
// the model, then applies it.
func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.LLM.Enabled() {
		http.Error(w, "LLM not configured", http.StatusServiceUnavailable)
		return
	}

	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		http.Error(w, `invalid json, expected {"prompt": ...}`, http.StatusBadRequest)
		return
	}

	var summary string
	s.Store.View(func(st *engine.State) {
		summary = buildingSummary(st)
	})

	d, err := s.LLM.ResolveDirective(req.Prompt, summary)
	if err != nil {
		slog.Error("prompt resolution failed", "error", err)
		http.Error(w, "prompt resolution failed", http.StatusBadGateway)
		return
	}

	s.applyDirective(d)
	writeJSON(w, map[string]any{"applied": true, "directive": d})
}

// applyDirective runs the reducer and rotates the agent-poll generation
// when the directive throws the world away.
func (s *Server) applyDirective(d *directive.Directive) {
	s.Store.ApplyDirective(d)
	if d.Global != nil && d.Global.ResetRandom {
		s.Store.InvalidateGeneration()
	}
}

// buildingSummary is the compact roster the directive resolver needs to
// map fuzzy names.
func buildingSummary(st *engine.State) string {
	var b strings.Builder
	b.WriteString("Bâtiments : ")
	for i, bld := range st.Buildings {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(bld.Name)
		b.WriteString(" (")
		b.WriteString(bld.ID)
		b.WriteString(")")
	}
	b.WriteString("\nEnvironnement : ")
	b.WriteString(st.Env.Season)
	b.WriteString(", ")
	b.WriteString(st.Env.DayPeriod)
	return b.String()
}

// handleAgentActions applies an externally computed decision batch. The
// generation token guards against batches computed before a reset.
func (s *Server) handleAgentActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Generation string           `json:"generation"`
		Actions    []faculty.Action `json:"actions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	// A batch without a generation cannot be checked against the current
	// world, so it is rejected like a stale one.
	applied := req.Generation != "" && s.Store.ApplyAgentActions(req.Actions, req.Generation)
	writeJSON(w, map[string]any{"applied": applied})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < engine.MinSpeed || req.Speed > engine.MaxSpeed {
			http.Error(w, "speed out of range", http.StatusBadRequest)
			return
		}
		s.Store.Mutate(func(st *engine.State) {
			st.Settings.Speed = req.Speed
		})
		slog.Info("speed changed", "speed", req.Speed)
	}

	var speed float64
	s.Store.View(func(st *engine.State) {
		speed = st.Settings.Speed
	})
	writeJSON(w, map[string]float64{"speed": speed})
}

// handleScenario adjusts the investment sliders and the llmAgents flag.
// Flipping llmAgents rotates the poll generation so in-flight decision
// batches die on arrival.
func (s *Server) handleScenario(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			InvestmentAI         *float64 `json:"investmentAI"`
			InvestmentHumanities *float64 `json:"investmentHumanities"`
			LLMAgents            *bool    `json:"llmAgents"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		toggled := false
		s.Store.Mutate(func(st *engine.State) {
			if req.InvestmentAI != nil {
				st.Scenario.InvestmentAI = clamp01(*req.InvestmentAI)
			}
			if req.InvestmentHumanities != nil {
				st.Scenario.InvestmentHumanities = clamp01(*req.InvestmentHumanities)
			}
			if req.LLMAgents != nil && *req.LLMAgents != st.Scenario.LLMAgents {
				st.Scenario.LLMAgents = *req.LLMAgents
				toggled = true
			}
		})
		if toggled {
			s.Store.InvalidateGeneration()
		}
	}

	var scenario engine.Scenario
	s.Store.View(func(st *engine.State) {
		scenario = st.Scenario
	})
	writeJSON(w, scenario)
}

// handleSnapshot persists the custom entities and a full-state snapshot.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	var saveErr error
	s.Store.View(func(st *engine.State) {
		if saveErr = s.DB.SaveCustom(st.Buildings, st.People); saveErr != nil {
			return
		}
		saveErr = s.DB.SaveSnapshot(st)
	})
	if saveErr != nil {
		slog.Error("snapshot failed", "error", saveErr)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}

	slog.Info("world snapshot saved")
	writeJSON(w, map[string]any{"saved": true})
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

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
