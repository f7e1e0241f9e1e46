package engine

import (
	"math"
	"math/rand"
	"testing"

	"github.com/talgya/campus-city/internal/people"
	"github.com/talgya/campus-city/internal/world"
)

// bareState builds a minimal deterministic world: one building, no
// departments, so the only randomness in a tick is population spawning.
func bareState(activity float64) *State {
	b := &world.Building{
		ID: "sci", Name: "Sciences",
		Size:     world.Vec3{X: 10, Y: 12, Z: 8},
		Activity: activity,
		Zone:     world.ZoneCampus,
	}
	return &State{
		Buildings: []*world.Building{b},
		Env:       Environment{Season: SeasonSpring, DayPeriod: PeriodMorning, GameTime: 8},
		Settings: Settings{
			Running: true, Speed: 1,
			VisibleBuildings: map[string]bool{"sci": true},
		},
		BuildingEvents: make(map[string][]BuildingEvent),
		BasePopulation: 100,
		Spawner:        people.NewSpawner(1),
	}
}

func TestTickPanicsWithoutBuildings(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("tick on an empty world should panic")
		}
	}()
	s := &State{}
	s.Tick(0.05, rand.New(rand.NewSource(1)))
}

func TestTickAdvancesGameTime(t *testing.T) {
	s := bareState(0.5)
	s.Tick(0.05, rand.New(rand.NewSource(1)))

	// One tick of 0.05s advances game time by 0.05*10/60 hours.
	want := 8 + 0.05*10.0/60
	if math.Abs(s.Env.GameTime-want) > 1e-9 {
		t.Errorf("game time %v, want %v", s.Env.GameTime, want)
	}
	if s.Env.DayPeriod != PeriodMorning {
		t.Errorf("day period %q, want matin", s.Env.DayPeriod)
	}
}

func TestActivityConvergesTowardTarget(t *testing.T) {
	s := bareState(0)
	rng := rand.New(rand.NewSource(1))

	// sci in the morning targets 0.65; one tick covers lag dt*0.3.
	target := ActivityTarget(s.Buildings[0], s.Env)
	if target != 0.65 {
		t.Fatalf("target = %v, want 0.65", target)
	}

	s.Tick(0.05, rng)
	want := target * 0.05 * 0.3
	if got := s.Buildings[0].Activity; math.Abs(got-want) > 1e-9 {
		t.Errorf("activity after one tick = %v, want %v", got, want)
	}

	// Iterating approaches the target from below without overshoot.
	for i := 0; i < 5000; i++ {
		s.Env.GameTime = 8 // hold the period fixed
		s.Tick(0.05, rng)
	}
	a := s.Buildings[0].Activity
	if a <= 0.6 || a > target+1e-9 {
		t.Errorf("activity after many ticks = %v, want close to %v from below", a, target)
	}
}

func TestOccupancySumsToPopulation(t *testing.T) {
	s := NewState(WorldConfig{Seed: 7, BasePopulation: 120})
	rng := rand.New(rand.NewSource(7))

	s.Tick(0.05, rng)

	sum := 0
	for _, b := range s.Buildings {
		sum += b.Occupancy
	}
	if sum != len(s.People) {
		t.Errorf("occupancy sum %d, want population %d", sum, len(s.People))
	}
	if s.Metrics.TotalOccupancy != sum {
		t.Errorf("metrics occupancy %d, want %d", s.Metrics.TotalOccupancy, sum)
	}
	if s.Metrics.People != len(s.People) {
		t.Errorf("metrics people %d, want %d", s.Metrics.People, len(s.People))
	}
}

func TestPausedTickFreezesMovementAndMetrics(t *testing.T) {
	s := NewState(WorldConfig{Seed: 7, BasePopulation: 120})
	rng := rand.New(rand.NewSource(7))
	s.Settings.Running = false

	positions := make([]world.Vec3, len(s.People))
	for i, p := range s.People {
		positions[i] = p.Position
	}
	metrics := s.Metrics
	before := s.Env.GameTime

	s.Tick(0.05, rng)

	for i, p := range s.People {
		if i < len(positions) && p.Position != positions[i] {
			t.Fatalf("person %d moved while paused", p.ID)
		}
	}
	if s.Metrics != metrics {
		t.Errorf("metrics changed while paused: %+v", s.Metrics)
	}
	// The clock and the behavior layer keep going.
	if s.Env.GameTime == before {
		t.Error("game time should advance while paused")
	}
}

func TestNewsRingCap(t *testing.T) {
	s := bareState(0.5)
	for i := 0; i < MaxNews+10; i++ {
		s.PushNews("actualité", "system")
	}
	if len(s.News) != MaxNews {
		t.Fatalf("news length %d, want %d", len(s.News), MaxNews)
	}
	// IDs stay monotonic across evictions.
	for i := 1; i < len(s.News); i++ {
		if s.News[i].ID != s.News[i-1].ID+1 {
			t.Fatalf("non-monotonic news ids at %d: %d then %d", i, s.News[i-1].ID, s.News[i].ID)
		}
	}
	if s.News[len(s.News)-1].ID != MaxNews+10 {
		t.Errorf("last id %d, want %d", s.News[len(s.News)-1].ID, MaxNews+10)
	}
}

func TestSeriesRingCap(t *testing.T) {
	s := bareState(0.5)
	for i := 0; i < MaxSeries+20; i++ {
		s.appendSample()
	}
	if len(s.Series) != MaxSeries {
		t.Errorf("series length %d, want %d", len(s.Series), MaxSeries)
	}
}

func TestRegulatePopulationRateBound(t *testing.T) {
	s := NewState(WorldConfig{Seed: 7, BasePopulation: 200})
	rng := rand.New(rand.NewSource(7))

	// Small deviations inside the tolerance band are left alone.
	s.People = s.People[:197]
	s.regulatePopulation(1.0, rng)
	if len(s.People) != 197 {
		t.Errorf("population after in-tolerance step = %d, want 197", len(s.People))
	}

	// Deficit: at most ceil(20*dt) arrivals per call.
	s.People = s.People[:100]
	s.regulatePopulation(1.0, rng)
	if len(s.People) != 120 {
		t.Errorf("population after growth step = %d, want 120", len(s.People))
	}

	// Surplus: bounded removals, oldest first.
	s.BasePopulation = 50 // target floors at MinPopulation
	first := s.People[0].ID
	s.regulatePopulation(1.0, rng)
	if len(s.People) != 100 {
		t.Errorf("population after shrink step = %d, want 100", len(s.People))
	}
	if s.People[0].ID == first {
		t.Error("shrink should drop the oldest entries first")
	}
}

func TestTargetPopulation(t *testing.T) {
	cases := []struct {
		name string
		env  Environment
		base int
		want int
	}{
		{"baseline", Environment{DayPeriod: PeriodMorning}, 500, 500},
		{"night", Environment{DayPeriod: PeriodNight}, 500, 425},
		{"weekend", Environment{DayPeriod: PeriodMorning, Weekend: true}, 500, 450},
		{"winter night weekend", Environment{DayPeriod: PeriodNight, Weekend: true, Season: SeasonWinter}, 500, 363},
		{"floor", Environment{DayPeriod: PeriodNight}, 80, 100},
	}
	for _, tc := range cases {
		if got := TargetPopulation(tc.env, tc.base); got != tc.want {
			t.Errorf("%s: TargetPopulation = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestDayPeriodFor(t *testing.T) {
	cases := []struct {
		hour float64
		want string
	}{
		{6, PeriodMorning},
		{10.9, PeriodMorning},
		{11, PeriodNoon},
		{14, PeriodAfternoon},
		{18, PeriodEvening},
		{22, PeriodNight},
		{3, PeriodNight},
	}
	for _, tc := range cases {
		if got := DayPeriodFor(tc.hour); got != tc.want {
			t.Errorf("DayPeriodFor(%v) = %q, want %q", tc.hour, got, tc.want)
		}
	}
}

func TestTimedEffectActivityRevertFiresOnce(t *testing.T) {
	s := bareState(0.8)
	s.Effects = []TimedEffect{{
		Kind:       EffectActivityRevert,
		BuildingID: "sci",
		Delta:      -0.3,
		Remaining:  0.04,
	}}

	s.expireTimedEffects(0.05)
	if got := s.Buildings[0].Activity; math.Abs(got-0.5) > 1e-9 {
		t.Errorf("activity after revert = %v, want 0.5", got)
	}
	if len(s.Effects) != 0 {
		t.Fatalf("effect not removed after firing")
	}

	s.expireTimedEffects(0.05)
	if got := s.Buildings[0].Activity; math.Abs(got-0.5) > 1e-9 {
		t.Errorf("revert fired twice, activity = %v", got)
	}
}

func TestTimedEffectResume(t *testing.T) {
	s := bareState(0.5)
	s.Settings.Running = false
	s.Effects = []TimedEffect{{Kind: EffectResume, Remaining: 0.08}}

	s.expireTimedEffects(0.05)
	if s.Settings.Running {
		t.Fatal("resumed before the effect expired")
	}
	s.expireTimedEffects(0.05)
	if !s.Settings.Running {
		t.Fatal("pause effect did not resume the world")
	}
	if len(s.Effects) != 0 {
		t.Error("expired effect still queued")
	}
}

func TestConversationSelfHealsWhenPartnerVanishes(t *testing.T) {
	s := NewState(WorldConfig{Seed: 7, BasePopulation: 120})
	rng := rand.New(rand.NewSource(7))

	p := s.People[0]
	ghost := 999999
	p.State.CurrentActivity = people.ActivityTalking
	p.State.TalkingWith = &ghost

	s.stepBehavior(rng)

	if p.State.TalkingWith != nil {
		t.Fatal("dangling conversation partner not cleared")
	}
	if p.State.CurrentActivity == people.ActivityTalking {
		t.Error("person still talking to a removed partner")
	}
}

func TestEndConversationLeavesBothHappy(t *testing.T) {
	s := NewState(WorldConfig{Seed: 7, BasePopulation: 120})
	p, q := s.People[0], s.People[1]
	pid, qid := p.ID, q.ID
	p.State.CurrentActivity = people.ActivityTalking
	p.State.TalkingWith = &qid
	q.State.CurrentActivity = people.ActivityTalking
	q.State.TalkingWith = &pid

	s.endConversation(p, q)

	for _, x := range []*people.Person{p, q} {
		if x.State.TalkingWith != nil || x.State.CurrentActivity != people.ActivityIdle {
			t.Fatalf("person %d not released: %+v", x.ID, x.State)
		}
		if x.State.Mood != people.MoodHappy {
			t.Errorf("person %d mood %q, want happy", x.ID, x.State.Mood)
		}
	}
}

func TestDepartmentPublishSideEffects(t *testing.T) {
	s := NewState(WorldConfig{Seed: 7, BasePopulation: 120})
	d := s.DepartmentByID("engineering")
	if d == nil {
		t.Fatal("missing engineering department")
	}
	before := s.BuildingByID(d.BuildingID).Activity

	s.departmentPublish(d)

	if d.Publications != 1 {
		t.Errorf("publications = %d, want 1", d.Publications)
	}
	if got := s.BuildingByID(d.BuildingID).Activity; got <= before {
		t.Errorf("home building activity did not rise: %v -> %v", before, got)
	}
	if len(s.Flashes) != 1 || s.Flashes[0].BuildingID != d.BuildingID {
		t.Errorf("expected one flash on %s, got %+v", d.BuildingID, s.Flashes)
	}
	if len(s.News) != 1 || s.News[0].Kind != "department" {
		t.Errorf("expected one department news item, got %+v", s.News)
	}
}

func TestDepartmentCollaborationIsSymmetric(t *testing.T) {
	s := NewState(WorldConfig{Seed: 7, BasePopulation: 120})
	d := s.DepartmentByID("engineering")
	peer := s.DepartmentByID("arts")

	s.departmentCollaborate(d, peer)

	if d.Collabs["arts"] != 1 || peer.Collabs["engineering"] != 1 {
		t.Errorf("collab counters not symmetric: %v / %v", d.Collabs, peer.Collabs)
	}

	s.departmentRival(d, peer)
	if d.Rivalries["arts"] != 1 {
		t.Errorf("initiator rivalry counter = %d, want 1", d.Rivalries["arts"])
	}
	if peer.Rivalries["engineering"] != 0 {
		t.Error("rivalry should be one-sided")
	}
}
