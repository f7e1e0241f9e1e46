package api

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/talgya/campus-city/internal/engine"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	state := engine.NewState(engine.WorldConfig{Seed: 7, BasePopulation: 120})
	store := engine.NewStore(state, rand.New(rand.NewSource(7)))
	return &Server{Store: store, Addr: ":0", AdminKey: "secret"}
}

func TestHandleStatus(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["name"] != "Campus" {
		t.Errorf("name %v", got["name"])
	}
	if got["population"].(float64) != 120 {
		t.Errorf("population %v", got["population"])
	}
	if got["season"] != "printemps" || got["dayPeriod"] != "matin" {
		t.Errorf("environment: %v / %v", got["season"], got["dayPeriod"])
	}
	if _, present := got["temperature"]; present {
		t.Error("temperature reported without a weather feed")
	}
	if gen, _ := got["generation"].(string); gen != s.Store.Generation() {
		t.Errorf("generation %v, want the store token", got["generation"])
	}
}

func TestHandleNewsSince(t *testing.T) {
	s := newTestServer(t)
	s.Store.Mutate(func(st *engine.State) {
		st.PushNews("un", "system")
		st.PushNews("deux", "system")
		st.PushNews("trois", "system")
	})

	rec := httptest.NewRecorder()
	s.handleNews(rec, httptest.NewRequest(http.MethodGet, "/api/v1/news?since=2", nil))

	var items []engine.NewsItem
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 1 || items[0].Text != "trois" {
		t.Errorf("incremental news: %+v", items)
	}
}

func TestHandlePeopleLimit(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.handlePeople(rec, httptest.NewRequest(http.MethodGet, "/api/v1/people?limit=10", nil))

	var got []json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 10 {
		t.Errorf("people returned %d, want 10", len(got))
	}
}

func TestAdminOnly(t *testing.T) {
	s := newTestServer(t)
	handler := s.adminOnly(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	post := func(auth string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/directive", strings.NewReader("{}"))
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		rec := httptest.NewRecorder()
		handler(rec, req)
		return rec.Code
	}

	if code := post(""); code != http.StatusUnauthorized {
		t.Errorf("no token: %d", code)
	}
	if code := post("Bearer mauvais"); code != http.StatusUnauthorized {
		t.Errorf("wrong token: %d", code)
	}
	if code := post("Bearer secret"); code != http.StatusOK {
		t.Errorf("good token: %d", code)
	}

	// GET passes without auth for mixed endpoints.
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/speed", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET status %d", rec.Code)
	}

	// No key configured disables the POST plane entirely.
	s.AdminKey = ""
	if code := post("Bearer secret"); code != http.StatusForbidden {
		t.Errorf("disabled admin: %d", code)
	}
}

func TestHandleDirectiveApplies(t *testing.T) {
	s := newTestServer(t)
	body := `{"buildingActivitySet": [{"buildingName": "Gymnase", "level": 0.9}]}`

	rec := httptest.NewRecorder()
	s.handleDirective(rec, httptest.NewRequest(http.MethodPost, "/api/v1/directive", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	s.Store.View(func(st *engine.State) {
		if got := st.BuildingByID("gym").Activity; got != 0.9 {
			t.Errorf("gym activity %v, want 0.9", got)
		}
	})
}

func TestHandleDirectiveRejectsInvalid(t *testing.T) {
	s := newTestServer(t)
	body := `{"environment": {"season": "winter"}}`

	rec := httptest.NewRecorder()
	s.handleDirective(rec, httptest.NewRequest(http.MethodPost, "/api/v1/directive", strings.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status %d, want 400", rec.Code)
	}
}

func TestHandleDirectiveResetRotatesGeneration(t *testing.T) {
	s := newTestServer(t)
	before := s.Store.Generation()

	rec := httptest.NewRecorder()
	s.handleDirective(rec, httptest.NewRequest(http.MethodPost, "/api/v1/directive",
		strings.NewReader(`{"global": {"resetRandom": true}}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if s.Store.Generation() == before {
		t.Error("reset did not rotate the agent generation")
	}
}

func TestHandleSpeed(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleSpeed(rec, httptest.NewRequest(http.MethodPost, "/api/v1/speed",
		strings.NewReader(`{"speed": 2.5}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var got map[string]float64
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got["speed"] != 2.5 {
		t.Errorf("speed %v", got["speed"])
	}

	rec = httptest.NewRecorder()
	s.handleSpeed(rec, httptest.NewRequest(http.MethodPost, "/api/v1/speed",
		strings.NewReader(`{"speed": 50}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("out-of-range speed: %d", rec.Code)
	}
}

func TestHandleScenarioToggleRotatesGeneration(t *testing.T) {
	s := newTestServer(t)
	before := s.Store.Generation()

	rec := httptest.NewRecorder()
	s.handleScenario(rec, httptest.NewRequest(http.MethodPost, "/api/v1/scenario",
		strings.NewReader(`{"llmAgents": true, "investmentAI": 1.4}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}

	var scenario engine.Scenario
	json.Unmarshal(rec.Body.Bytes(), &scenario)
	if !scenario.LLMAgents {
		t.Error("llmAgents not enabled")
	}
	if scenario.InvestmentAI != 1 {
		t.Errorf("investmentAI %v, want clamp at 1", scenario.InvestmentAI)
	}
	if s.Store.Generation() == before {
		t.Error("toggle did not rotate the agent generation")
	}

	// Setting the same value again is not a toggle.
	mid := s.Store.Generation()
	rec = httptest.NewRecorder()
	s.handleScenario(rec, httptest.NewRequest(http.MethodPost, "/api/v1/scenario",
		strings.NewReader(`{"llmAgents": true}`)))
	if s.Store.Generation() != mid {
		t.Error("no-op toggle rotated the generation")
	}
}

func TestHandleAgentActionsGeneration(t *testing.T) {
	s := newTestServer(t)

	post := func(body string) map[string]any {
		rec := httptest.NewRecorder()
		s.handleAgentActions(rec, httptest.NewRequest(http.MethodPost, "/api/v1/agent-actions",
			strings.NewReader(body)))
		if rec.Code != http.StatusOK {
			t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
		}
		var got map[string]any
		json.Unmarshal(rec.Body.Bytes(), &got)
		return got
	}

	// The current generation applies.
	got := post(`{"generation": "` + s.Store.Generation() + `", "actions": [{"id": "prof-engineering", "publish": true}]}`)
	if got["applied"] != true {
		t.Errorf("current-generation batch not applied: %v", got)
	}

	// A missing generation is rejected: the batch cannot be checked
	// against the current world.
	got = post(`{"actions": [{"id": "prof-engineering", "publish": true}]}`)
	if got["applied"] != false {
		t.Errorf("generation-less batch applied: %v", got)
	}

	// A stale token is rejected without error.
	got = post(`{"generation": "perime", "actions": [{"id": "rector", "publish": true}]}`)
	if got["applied"] != false {
		t.Errorf("stale batch applied: %v", got)
	}
}

func TestCORSMiddleware(t *testing.T) {
	s := newTestServer(t)
	s.CORSOrigins = []string{"https://campus.example.org"}
	handler := s.corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	check := func(origin string, wantHeader bool) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
		req.Header.Set("Origin", origin)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		got := rec.Header().Get("Access-Control-Allow-Origin")
		if wantHeader && got != origin {
			t.Errorf("origin %s: allow header %q", origin, got)
		}
		if !wantHeader && got != "" {
			t.Errorf("origin %s unexpectedly allowed", origin)
		}
	}

	check("http://localhost:5173", true)
	check("https://campus.example.org", true)
	check("https://evil.example.org", false)

	// Preflight short-circuits.
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/directive", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status %d, want 204", rec.Code)
	}
}
