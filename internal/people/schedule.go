// Role-appropriate default schedules. Every schedule ends with a sleep
// entry so the scheduled-task fallback always lands somewhere sensible.
package people

// Activity labels. The set is open-ended, since directives and the
// decision reducer may introduce new labels, but these are the ones the
// behavior machine produces itself.
const (
	ActivityWork    = "work"
	ActivityStudy   = "study"
	ActivityEat     = "eat"
	ActivitySleep   = "sleep"
	ActivityLeisure = "leisure"
	ActivityIdle    = "idle"
	ActivityTalking = "talking"
)

// DefaultSchedule builds a daily schedule for a role. workID pins the
// work/study blocks to a building when known; homeID pins sleep.
func DefaultSchedule(role Role, workID, homeID string) []ScheduleEntry {
	switch role {
	case RoleProfessor:
		return []ScheduleEntry{
			{Time: 8, Activity: ActivityWork, TargetID: workID},
			{Time: 12, Activity: ActivityEat},
			{Time: 13.5, Activity: ActivityWork, TargetID: workID},
			{Time: 18, Activity: ActivityLeisure},
			{Time: 22, Activity: ActivitySleep, TargetID: homeID},
		}
	case RoleEmployee:
		return []ScheduleEntry{
			{Time: 8.5, Activity: ActivityWork, TargetID: workID},
			{Time: 12, Activity: ActivityEat},
			{Time: 13, Activity: ActivityWork, TargetID: workID},
			{Time: 17.5, Activity: ActivityLeisure},
			{Time: 23, Activity: ActivitySleep, TargetID: homeID},
		}
	case RoleWorker:
		return []ScheduleEntry{
			{Time: 7, Activity: ActivityWork, TargetID: workID},
			{Time: 12.5, Activity: ActivityEat},
			{Time: 13.5, Activity: ActivityWork, TargetID: workID},
			{Time: 19, Activity: ActivityLeisure},
			{Time: 22.5, Activity: ActivitySleep, TargetID: homeID},
		}
	case RoleVisitor:
		return []ScheduleEntry{
			{Time: 10, Activity: ActivityLeisure},
			{Time: 13, Activity: ActivityEat},
			{Time: 15, Activity: ActivityLeisure},
			{Time: 21, Activity: ActivitySleep, TargetID: homeID},
		}
	default: // students
		return []ScheduleEntry{
			{Time: 8, Activity: ActivityStudy, TargetID: workID},
			{Time: 12, Activity: ActivityEat},
			{Time: 14, Activity: ActivityStudy},
			{Time: 18, Activity: ActivityLeisure},
			{Time: 23, Activity: ActivitySleep, TargetID: homeID},
		}
	}
}

// ScheduledTask returns the entry governing the given hour: the last entry
// whose four-hour window [time, time+4) contains the hour, falling back to
// the final entry (conventionally sleep). ok is false only for an empty
// schedule, which produces no decision this tick.
func ScheduledTask(schedule []ScheduleEntry, hour float64) (ScheduleEntry, bool) {
	if len(schedule) == 0 {
		return ScheduleEntry{}, false
	}
	for i := len(schedule) - 1; i >= 0; i-- {
		s := schedule[i]
		if hour >= s.Time && hour < s.Time+4 {
			return s, true
		}
	}
	return schedule[len(schedule)-1], true
}
