// Package director runs the LLM-driven side of the campus: it polls
// faculty agents for decisions and summarizes the world for prompts. A
// rule-based fallback keeps agents alive when no API key is configured.
package director

import (
	"fmt"
	"strings"

	"github.com/talgya/campus-city/internal/engine"
)

// Summarize builds a concise world description for model prompts: the
// environment line, every building with activity and occupancy, and the
// department standings.
func Summarize(s *engine.State) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Campus (%s, %s, %02.0fh%02.0f",
		s.Env.Season, s.Env.DayPeriod,
		float64(int(s.Env.GameTime)), (s.Env.GameTime-float64(int(s.Env.GameTime)))*60)
	if s.Env.Weekend {
		b.WriteString(", weekend")
	}
	b.WriteString(")\n")
	if s.Env.Temperature != nil {
		fmt.Fprintf(&b, "Météo : %.1f°C, %s\n", *s.Env.Temperature, s.Env.Condition)
	}
	fmt.Fprintf(&b, "Population : %d | Investissement IA %.2f / Humanités %.2f\n\n",
		len(s.People), s.Scenario.InvestmentAI, s.Scenario.InvestmentHumanities)

	b.WriteString("## Bâtiments\n")
	for _, bld := range s.Buildings {
		fmt.Fprintf(&b, "- %s (%s) : activité %.2f, occupation %d\n",
			bld.Name, bld.ID, bld.Activity, bld.Occupancy)
	}
	b.WriteString("\n## Départements\n")
	for _, d := range s.Departments {
		fmt.Fprintf(&b, "- %s : %d publications", d.Name, d.Publications)
		if len(d.Collabs) > 0 {
			var parts []string
			for peer, n := range d.Collabs {
				parts = append(parts, fmt.Sprintf("%s×%d", peer, n))
			}
			fmt.Fprintf(&b, ", collaborations %s", strings.Join(parts, " "))
		}
		if len(d.Rivalries) > 0 {
			var parts []string
			for peer, n := range d.Rivalries {
				parts = append(parts, fmt.Sprintf("%s×%d", peer, n))
			}
			fmt.Fprintf(&b, ", rivalités %s", strings.Join(parts, " "))
		}
		b.WriteString("\n")
	}

	return b.String()
}
