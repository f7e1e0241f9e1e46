// Command campussim runs the campus world simulation and its HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/talgya/campus-city/internal/api"
	"github.com/talgya/campus-city/internal/config"
	"github.com/talgya/campus-city/internal/director"
	"github.com/talgya/campus-city/internal/engine"
	"github.com/talgya/campus-city/internal/llm"
	"github.com/talgya/campus-city/internal/people"
	"github.com/talgya/campus-city/internal/persistence"
	"github.com/talgya/campus-city/internal/weather"
)

const autosaveInterval = 5 * time.Minute

func main() {
	configPath := flag.String("config", "", "path to config YAML (optional)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	// ── Database ──────────────────────────────────────────────────────
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Load or Generate World ────────────────────────────────────────
	state := loadOrGenerate(db, cfg)

	store := engine.NewStore(state, rand.New(rand.NewSource(time.Now().UnixNano())))
	loop := engine.NewLoop(store)

	// ── LLM Client ───────────────────────────────────────────────────
	llmClient := llm.NewClient(cfg.LLM.APIKey, cfg.LLM.Model)
	if llmClient.Enabled() {
		slog.Info("LLM client enabled", "model", cfg.LLM.Model)
	} else {
		slog.Warn("ANTHROPIC_API_KEY not set; prompt endpoint disabled, agents use local fallback")
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		slog.Warn("no admin key set; admin POST endpoints will be disabled")
	}
	apiServer := &api.Server{
		Store:       store,
		LLM:         llmClient,
		DB:          db,
		Addr:        cfg.Addr,
		AdminKey:    cfg.AdminKey,
		CORSOrigins: cfg.CORSOrigins,
	}
	apiServer.Start()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Weather Feed ──────────────────────────────────────────────────
	if cfg.WeatherEnabled() {
		go runWeather(ctx, store, weather.NewClient(cfg.Weather.Latitude, cfg.Weather.Longitude),
			time.Duration(cfg.Weather.IntervalSec)*time.Second)
	}

	// ── Agent Poller ──────────────────────────────────────────────────
	poller := director.NewPoller(store, llmClient, cfg.LLM.AgentBatchSize,
		time.Duration(cfg.LLM.PollSec)*time.Second)
	go poller.Run(ctx)

	// ── Autosave ──────────────────────────────────────────────────────
	go runAutosave(ctx, store, db)

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		cancel()
		loop.Stop()
	}()

	var population, buildings int
	store.View(func(s *engine.State) {
		population = len(s.People)
		buildings = len(s.Buildings)
	})
	fmt.Printf("\nLe campus est vivant : %d personnes, %d bâtiments.\n", population, buildings)
	fmt.Printf("API: http://localhost%s/api/v1/status\n", cfg.Addr)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	loop.Run()

	slog.Info("final save...")
	save(store, db)
	fmt.Println("Simulation stopped. World state saved.")
}

// metaSeedKey stores the seed the persisted world was generated under.
const metaSeedKey = "seed"

// loadOrGenerate restores the latest snapshot when one exists, merges the
// persisted custom entities otherwise, and falls back to a fresh world.
func loadOrGenerate(db *persistence.DB, cfg config.Config) *engine.State {
	worldCfg := engine.WorldConfig{Seed: cfg.Seed, BasePopulation: cfg.BasePopulation}
	seedStr := strconv.FormatInt(cfg.Seed, 10)

	// A snapshot taken under a different seed is a different world; a
	// changed seed means the operator wants a fresh one. Custom entities
	// still carry over below.
	stored, metaErr := db.GetMeta(metaSeedKey)
	if metaErr == nil && stored != seedStr {
		slog.Info("seed changed, ignoring snapshot", "stored", stored, "seed", cfg.Seed)
	} else if state, err := db.LoadSnapshot(); err == nil {
		// Runtime-only pieces are not part of the snapshot.
		state.Spawner = people.NewSpawner(cfg.Seed)
		state.Spawner.SetNextID(state.MaxPersonID() + 1)
		if state.BuildingEvents == nil {
			state.BuildingEvents = make(map[string][]engine.BuildingEvent)
		}
		if state.BasePopulation <= 0 {
			state.BasePopulation = cfg.BasePopulation
		}
		for _, p := range state.People {
			p.EnsureDefaults()
		}
		slog.Info("world restored from snapshot",
			"people", len(state.People), "buildings", len(state.Buildings))
		return state
	} else if !errors.Is(err, persistence.ErrNoSnapshot) {
		slog.Warn("snapshot unreadable, regenerating", "error", err)
	}

	state := engine.NewState(worldCfg)

	if db.HasCustomState() {
		buildings, persons, err := db.LoadCustom()
		if err != nil {
			slog.Error("custom state load failed", "error", err)
		} else {
			state.Buildings = append(state.Buildings, buildings...)
			for _, b := range buildings {
				state.Settings.VisibleBuildings[b.ID] = true
			}
			// Restored ids may collide with the regenerated baseline when
			// the population was regulated between saves; reassign those.
			taken := make(map[int]bool, len(state.People)+len(persons))
			for _, p := range state.People {
				taken[p.ID] = true
			}
			var collided []*people.Person
			for _, p := range persons {
				if taken[p.ID] {
					collided = append(collided, p)
					continue
				}
				taken[p.ID] = true
			}
			nextID := state.MaxPersonID() + 1
			for _, p := range collided {
				for taken[nextID] {
					nextID++
				}
				p.ID = nextID
				taken[nextID] = true
			}
			state.People = append(state.People, persons...)
			state.Spawner.SetNextID(state.MaxPersonID() + 1)
			slog.Info("custom entities restored",
				"buildings", len(buildings), "people", len(persons))
		}
	}

	if err := db.SetMeta(metaSeedKey, seedStr); err != nil {
		slog.Warn("seed meta save failed", "error", err)
	}

	slog.Info("world generated",
		"seed", cfg.Seed, "people", len(state.People), "buildings", len(state.Buildings))
	return state
}

// runWeather periodically merges real conditions into the environment.
func runWeather(ctx context.Context, store *engine.Store, client *weather.Client, interval time.Duration) {
	slog.Info("weather feed started", "interval", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	apply := func() {
		conditions, err := client.Fetch()
		if err != nil {
			slog.Warn("weather fetch failed", "error", err)
			return
		}
		store.Mutate(func(s *engine.State) {
			temp := conditions.Temp
			s.Env.Temperature = &temp
			s.Env.Condition = conditions.Condition
		})
	}

	apply()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			apply()
		}
	}
}

// runAutosave persists the world on a fixed cadence.
func runAutosave(ctx context.Context, store *engine.Store, db *persistence.DB) {
	ticker := time.NewTicker(autosaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			save(store, db)
		}
	}
}

func save(store *engine.Store, db *persistence.DB) {
	store.View(func(s *engine.State) {
		if err := db.SaveCustom(s.Buildings, s.People); err != nil {
			slog.Error("custom save failed", "error", err)
			return
		}
		if err := db.SaveSnapshot(s); err != nil {
			slog.Error("snapshot save failed", "error", err)
		}
	})
}
