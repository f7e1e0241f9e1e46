// JSON Schema validation for incoming directives. Malformed shapes are
// rejected here, at the collaborator boundary, so the reducer itself never
// sees them. Unknown fields pass through and are ignored downstream.
package directive

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema is the authoritative wire schema for Directive.
const Schema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "buildingActivityChanges": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["buildingName", "activityDelta"],
        "properties": {
          "buildingName": {"type": "string"},
          "activityDelta": {"type": "number", "minimum": -1, "maximum": 1}
        }
      }
    },
    "buildingActivitySet": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["buildingName", "level"],
        "properties": {
          "buildingName": {"type": "string"},
          "level": {"type": "number", "minimum": 0, "maximum": 1}
        }
      }
    },
    "personFlows": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["to", "count"],
        "properties": {
          "from": {"type": "string"},
          "to": {"type": "string"},
          "count": {"type": "integer", "minimum": 1}
        }
      }
    },
    "peopleAdd": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["count"],
        "properties": {
          "count": {"type": "integer", "minimum": 1},
          "gender": {"enum": ["male", "female"]},
          "to": {"type": "string"},
          "name": {"type": "string"},
          "role": {"type": "string"},
          "workplace": {"type": "string"},
          "department": {"type": "string"},
          "customData": {"type": "object"}
        }
      }
    },
    "buildingAdd": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name"],
        "properties": {
          "name": {"type": "string"},
          "position": {"type": "array", "items": {"type": "number"}, "minItems": 3, "maxItems": 3},
          "size": {"type": "array", "items": {"type": "number"}, "minItems": 3, "maxItems": 3},
          "zone": {"type": "string"},
          "activity": {"type": "number", "minimum": 0, "maximum": 1}
        }
      }
    },
    "buildingRemove": {"type": "array", "items": {"type": "string"}},
    "peopleRemove": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "id": {"type": "integer"},
          "all": {"type": "boolean"}
        }
      }
    },
    "global": {
      "type": "object",
      "properties": {
        "speedMultiplier": {"type": "number", "exclusiveMinimum": 0},
        "speedSet": {"type": "number", "minimum": 0.1, "maximum": 5},
        "resetRandom": {"type": "boolean"}
      }
    },
    "visibility": {
      "type": "object",
      "properties": {
        "hide": {"type": "array", "items": {"type": "string"}},
        "showOnly": {"type": "array", "items": {"type": "string"}},
        "showAll": {"type": "boolean"}
      }
    },
    "settings": {
      "type": "object",
      "properties": {
        "glow": {"type": "boolean"},
        "shadows": {"type": "boolean"},
        "labels": {"type": "boolean"}
      }
    },
    "effects": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["type", "durationSec"],
        "properties": {
          "type": {"enum": ["activitySpike", "pause"]},
          "buildingName": {"type": "string"},
          "delta": {"type": "number"},
          "durationSec": {"type": "number", "exclusiveMinimum": 0}
        }
      }
    },
    "environment": {
      "type": "object",
      "properties": {
        "season": {"enum": ["hiver", "printemps", "ete", "automne"]},
        "dayPeriod": {"enum": ["matin", "midi", "apresmidi", "soir", "nuit"]},
        "weekend": {"type": "boolean"},
        "gameTime": {"type": "number", "minimum": 0, "exclusiveMaximum": 24},
        "temperature": {"type": "number"},
        "condition": {"type": "string"}
      }
    },
    "buildingEvents": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["buildingName", "events"],
        "properties": {
          "buildingName": {"type": "string"},
          "events": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["text", "type"],
              "properties": {
                "text": {"type": "string"},
                "type": {"enum": ["urgent", "info", "sale"]},
                "time": {"type": "number"}
              }
            }
          }
        }
      }
    }
  }
}`

var compiled = jsonschema.MustCompileString("directive.schema.json", Schema)

// Parse validates raw directive JSON against the schema and decodes it.
// A schema violation is the caller's cue to degrade to a no-op.
func Parse(raw []byte) (*Directive, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode directive: %w", err)
	}
	if err := compiled.Validate(v); err != nil {
		return nil, fmt.Errorf("validate directive: %w", err)
	}
	var d Directive
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("decode directive: %w", err)
	}
	return &d, nil
}
