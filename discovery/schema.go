package discovery

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	validator "github.com/santhosh-tekuri/jsonschema/v6"
)

// SchemaName names the structured output in provider requests.
const SchemaName = "mcp_servers"

// schemaJSON is the structured output contract of the discovery run:
// one required "data" array of {url, name, description} strings, with no
// additional properties at either level.
const schemaJSON = `{
  "type": "object",
  "properties": {
    "data": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "url": {"type": "string"},
          "name": {"type": "string"},
          "description": {"type": "string"}
        },
        "required": ["url", "name", "description"],
        "additionalProperties": false
      }
    }
  },
  "required": ["data"],
  "additionalProperties": false
}`

// Schema returns a fresh copy of the discovery output schema, titled SchemaName.
func Schema() *jsonschema.Schema {
	var schema jsonschema.Schema
	if err := json.Unmarshal([]byte(schemaJSON), &schema); err != nil {
		panic(fmt.Sprintf("discovery: invalid schema: %v", err))
	}
	schema.Title = SchemaName
	return &schema
}

var compiledSchema = sync.OnceValues(func() (*validator.Schema, error) {
	doc, err := validator.UnmarshalJSON(strings.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}
	c := validator.NewCompiler()
	if err := c.AddResource("mcp_servers.json", doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	return c.Compile("mcp_servers.json")
})

// validatePayload validates a decoded payload against the discovery schema.
func validatePayload(payload any) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}
	return schema.Validate(payload)
}
