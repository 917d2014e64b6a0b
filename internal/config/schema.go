package config

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

// configSchema is the compiled JSON Schema for verdant.yaml files.
var configSchema *jsonschema.Schema

const configSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "grid_intensity": { "type": "number", "minimum": 0 },
    "country_iso_code": { "type": "string" },
    "timeout_seconds": { "type": "integer", "minimum": 1 },
    "max_tokens": { "type": "integer", "minimum": 1 },
    "database": { "type": "string" },
    "server_port": { "type": "integer", "minimum": 1, "maximum": 65535 },
    "providers": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "kind"],
        "properties": {
          "name": { "type": "string", "minLength": 1 },
          "kind": { "enum": ["openai", "simulated"] },
          "model": { "type": "string" },
          "base_url": { "type": "string" },
          "api_key_env": { "type": "string" },
          "energy_per_token": { "type": "number", "minimum": 0 },
          "cost_per_token": { "type": "number", "minimum": 0 },
          "max_tokens": { "type": "integer", "minimum": 1 },
          "options": { "type": "object" }
        },
        "additionalProperties": false
      }
    }
  },
  "additionalProperties": false
}`

func init() {
	configSchema = mustCompileSchema(configSchemaJSON, "verdant.schema.json")
}

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// ValidateBytes validates raw verdant.yaml content against the schema and
// returns human-readable error strings. An empty slice means the document
// conforms.
func ValidateBytes(data []byte) []string {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return []string{fmt.Sprintf("invalid YAML: %v", err)}
	}
	if doc == nil {
		return []string{"config is empty"}
	}

	if err := configSchema.Validate(toJSONValue(doc)); err != nil {
		if verr, ok := err.(*jsonschema.ValidationError); ok {
			return flattenValidationError(verr)
		}
		return []string{err.Error()}
	}
	return nil
}

// flattenValidationError walks the validation error tree and collects the
// leaf causes, which carry the specific messages.
func flattenValidationError(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := "/"
		if len(verr.InstanceLocation) > 0 {
			loc = ""
			for _, seg := range verr.InstanceLocation {
				loc += "/" + seg
			}
		}
		return []string{fmt.Sprintf("%s: %s", loc, verr.ErrorKind.LocalizedString(defaultPrinter))}
	}
	var out []string
	for _, cause := range verr.Causes {
		out = append(out, flattenValidationError(cause)...)
	}
	return out
}

// toJSONValue converts yaml.v3 output into the value shapes the schema
// validator expects (map[string]any keys, no map[any]any).
func toJSONValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = toJSONValue(val)
		}
		return m
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprintf("%v", k)] = toJSONValue(val)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, val := range t {
			s[i] = toJSONValue(val)
		}
		return s
	case int:
		return json.Number(fmt.Sprintf("%d", t))
	case int64:
		return json.Number(fmt.Sprintf("%d", t))
	case float64:
		return json.Number(fmt.Sprintf("%g", t))
	default:
		return v
	}
}
