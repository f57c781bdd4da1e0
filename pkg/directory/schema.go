package directory

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// JSONSchema returns the JSON schema of the users file. Each entry under
// "users" is either a string (the info text) or a record.
func JSONSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}

	schema := reflector.Reflect(&FileSpec{})
	schema.Version = "https://json-schema.org/draft/2020-12/schema"
	schema.Title = "fingered users file"

	if users, ok := schema.Properties.Get("users"); ok && users.AdditionalProperties != nil {
		record := users.AdditionalProperties
		users.AdditionalProperties = &jsonschema.Schema{
			AnyOf: []*jsonschema.Schema{{Type: "string"}, record},
		}
	}

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to generate users schema: %w", err)
	}
	return data, nil
}
