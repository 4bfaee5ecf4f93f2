package hubspot

import (
	"encoding/json"
	"fmt"
)

// Template is one source template in whatever shape the producing endpoint
// returned it. Raw keeps the full payload because the markup lives under a
// different field name per endpoint generation.
type Template struct {
	ID   string
	Name string
	Raw  map[string]interface{}
}

// templateFromRaw extracts the stable identifier and display name from an
// endpoint item. Legacy endpoints use numeric ids and a "label" display name.
func templateFromRaw(raw map[string]interface{}) Template {
	t := Template{Raw: raw}

	switch id := raw["id"].(type) {
	case string:
		t.ID = id
	case float64:
		t.ID = fmt.Sprintf("%.0f", id)
	case json.Number:
		t.ID = id.String()
	}

	if name, ok := raw["name"].(string); ok && name != "" {
		t.Name = name
	} else if label, ok := raw["label"].(string); ok {
		t.Name = label
	}

	return t
}
