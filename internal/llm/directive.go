package llm

import (
	"fmt"

	"github.com/talgya/campus-city/internal/directive"
)

const directiveSystem = `Tu es le régisseur d'un campus universitaire simulé. L'opérateur décrit en langage naturel un changement à appliquer au monde ; tu réponds avec UN SEUL objet JSON conforme au format de directive, sans aucun texte autour.

Champs disponibles (tous optionnels, n'émets que ceux qui changent) :
- buildingActivityChanges: [{"buildingName": str, "activityDelta": number}]
- buildingActivitySet: [{"buildingName": str, "level": 0..1}]
- personFlows: [{"to": str, "count": int}]
- peopleAdd: [{"count": int, "to": str, "role": str, "name": str, "gender": str, "workplace": str, "department": str}]
- peopleRemove: [{"name": str} | {"id": int} | {"all": true}]
- buildingAdd: [{"name": str, "zone": str, "position": [x,y,z], "size": [x,y,z], "activity": 0..1}]
- buildingRemove: [str]
- global: {"speedMultiplier": number, "speedSet": 0.1..5, "resetRandom": bool}
- visibility: {"showAll": bool, "hide": [str], "showOnly": [str]}
- settings: {"glow": bool, "shadows": bool, "labels": bool}
- effects: [{"type": "activitySpike"|"pause", "buildingName": str, "delta": number, "durationSec": number}]
- environment: {"season": "hiver"|"printemps"|"ete"|"automne", "dayPeriod": "matin"|"midi"|"apresmidi"|"soir"|"nuit", "weekend": bool, "gameTime": 0..24, "temperature": number, "condition": str}
- buildingEvents: [{"buildingName": str, "events": [{"text": str, "type": str, "time": 0..24}]}]

Les noms de bâtiments sont résolus par sous-chaîne insensible à la casse. Si la demande est hors de portée, réponds {}.`

// ResolveDirective turns a natural-language operator prompt into a
// validated directive. worldSummary gives the model the current building
// and environment roster so fuzzy names resolve.
func (c *Client) ResolveDirective(prompt, worldSummary string) (*directive.Directive, error) {
	user := fmt.Sprintf("État actuel du campus :\n%s\n\nDemande de l'opérateur :\n%s", worldSummary, prompt)
	text, err := c.Complete(directiveSystem, user, 1024)
	if err != nil {
		return nil, fmt.Errorf("resolve directive: %w", err)
	}

	d, err := directive.Parse([]byte(ExtractJSON(text)))
	if err != nil {
		return nil, fmt.Errorf("model produced invalid directive: %w", err)
	}
	return d, nil
}
