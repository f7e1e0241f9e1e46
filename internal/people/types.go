// Package people provides the person data model, the schedule-driven
// behavior state machine, and the population spawner.
package people

import (
	"github.com/talgya/campus-city/internal/world"
)

// Role is a person's position on the campus.
type Role string

const (
	RoleStudent   Role = "student"
	RoleEmployee  Role = "employee"
	RoleProfessor Role = "professor"
	RoleVisitor   Role = "visitor"
	RoleWorker    Role = "worker"
)

// Mood is the coarse emotional state shown to observers.
type Mood string

const (
	MoodHappy    Mood = "happy"
	MoodTired    Mood = "tired"
	MoodStressed Mood = "stressed"
	MoodNeutral  Mood = "neutral"
)

// Traits are stable personality parameters, each roughly 0..1.
// Energy decays over the day and never regenerates here; whatever restores
// it (sleep, vacations) is outside the simulation core.
type Traits struct {
	Introversion float64 `json:"introversion"`
	Punctuality  float64 `json:"punctuality"`
	Energy       float64 `json:"energy"`
}

// ScheduleEntry is one block of a person's day. Time is an hour in [0,24);
// TargetID optionally pins the activity to a specific building.
type ScheduleEntry struct {
	Time     float64 `json:"time"`
	Activity string  `json:"activity"`
	TargetID string  `json:"target_id,omitempty"`
}

// HistorySize bounds the visited-buildings ring.
const HistorySize = 5

// PersonState is the mutable behavioral state.
type PersonState struct {
	CurrentActivity string   `json:"current_activity"`
	Mood            Mood     `json:"mood"`
	TalkingWith     *int     `json:"talking_with,omitempty"` // symmetric pairing by person id
	History         []string `json:"history,omitempty"`      // last 5 visited building ids, oldest first
}

// PushHistory appends a building id to the visited ring, evicting the
// oldest entry past HistorySize.
func (st *PersonState) PushHistory(buildingID string) {
	st.History = append(st.History, buildingID)
	if len(st.History) > HistorySize {
		st.History = st.History[len(st.History)-HistorySize:]
	}
}

// Person is one inhabitant of the campus city.
type Person struct {
	ID               int             `json:"id"`
	Name             string          `json:"name"`
	Gender           string          `json:"gender,omitempty"`
	Role             Role            `json:"role"`
	Position         world.Vec3      `json:"position"`
	TargetBuildingID string          `json:"target_building_id"`
	Speed            float64         `json:"speed"`
	Workplace        string          `json:"workplace,omitempty"`  // building id
	Department       string          `json:"department,omitempty"` // department id
	Traits           Traits          `json:"traits"`
	Schedule         []ScheduleEntry `json:"schedule"`
	State            PersonState     `json:"state"`
	IsCustom         bool            `json:"is_custom,omitempty"` // true for directive-created people
}

// Talking reports whether the person is currently in a conversation.
// Talking people skip schedule evaluation and movement.
func (p *Person) Talking() bool {
	return p.State.CurrentActivity == ActivityTalking && p.State.TalkingWith != nil
}

// EnsureDefaults backfills traits, schedule, and state on legacy or
// externally created records so the behavior machine never faults.
func (p *Person) EnsureDefaults() {
	if p.Traits == (Traits{}) {
		p.Traits = Traits{Introversion: 0.5, Punctuality: 0.5, Energy: 1}
	}
	if p.Speed <= 0 {
		p.Speed = 1.5
	}
	if len(p.Schedule) == 0 {
		p.Schedule = DefaultSchedule(p.Role, p.Workplace, "")
	}
	if p.State.CurrentActivity == "" {
		p.State.CurrentActivity = ActivityIdle
	}
	if p.State.Mood == "" {
		p.State.Mood = MoodNeutral
	}
}
