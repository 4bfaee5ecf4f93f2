package migration

import (
	"fmt"

	"template-migrator/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
)

// requestSchema validates the migration request body before the
// orchestrator runs. sfmcCredentials is all-or-nothing: a partial triple
// is rejected here rather than half-consulting the credential store.
var requestSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"userId"},
	"properties": map[string]interface{}{
		"userId": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
		},
		"hubspotToken": map[string]interface{}{
			"type": "string",
		},
		"sfmcCredentials": map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"clientId", "clientSecret", "subdomain"},
			"properties": map[string]interface{}{
				"clientId":     map[string]interface{}{"type": "string", "minLength": 1},
				"clientSecret": map[string]interface{}{"type": "string", "minLength": 1},
				"subdomain":    map[string]interface{}{"type": "string", "minLength": 1},
			},
		},
		"limit": map[string]interface{}{
			"type":    "integer",
			"minimum": 1,
		},
		"folderId": map[string]interface{}{
			"type": "string",
		},
		"customTemplates": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type":     "object",
				"required": []interface{}{"name"},
				"properties": map[string]interface{}{
					"id":      map[string]interface{}{"type": "string"},
					"name":    map[string]interface{}{"type": "string", "minLength": 1},
					"content": map[string]interface{}{"type": "string"},
					"html":    map[string]interface{}{"type": "string"},
				},
			},
		},
	},
	"additionalProperties": false,
}

// ValidateRequest checks a decoded request body against the schema.
func ValidateRequest(body map[string]interface{}) error {
	schemaLoader := gojsonschema.NewGoLoader(requestSchema)
	documentLoader := gojsonschema.NewGoLoader(body)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return errors.NewValidationFailedError(fmt.Sprintf("schema evaluation failed: %s", err.Error()))
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return errors.NewValidationFailedError(fmt.Sprintf("%v", errs))
	}

	return nil
}
