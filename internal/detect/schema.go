package detect

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// detectorSchema is the JSON Schema for detector pack files.
const detectorSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "Detector Pack",
  "description": "veil detector pack configuration",
  "type": "object",
  "required": ["recognizers"],
  "additionalProperties": false,
  "properties": {
    "recognizers": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "supported_entity", "patterns"],
        "additionalProperties": false,
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "supported_entity": {"type": "string", "pattern": "^[A-Z0-9_]+$"},
          "category": {"type": "string", "enum": ["structural", "heuristic"]},
          "enabled": {"type": "boolean"},
          "patterns": {
            "type": "array",
            "minItems": 1,
            "items": {
              "type": "object",
              "required": ["name", "regex"],
              "additionalProperties": false,
              "properties": {
                "name": {"type": "string", "minLength": 1},
                "regex": {"type": "string", "minLength": 1}
              }
            }
          }
        }
      }
    },
    "deny_list": {"type": "array", "items": {"type": "string"}},
    "keywords": {"type": "array", "items": {"type": "string"}}
  }
}`

// ValidateSchema validates detector pack YAML bytes against the JSON
// schema. The YAML is first converted to JSON because gojsonschema
// operates on JSON.
func ValidateSchema(yamlBytes []byte) error {
	var raw interface{}
	if err := yaml.Unmarshal(yamlBytes, &raw); err != nil {
		return fmt.Errorf("parsing YAML for schema validation: %w", err)
	}

	// yaml.v3 unmarshals map keys as string, but nested maps must also use
	// string keys for JSON marshalling.
	normalized := normalizeYAML(raw)

	jsonBytes, err := json.Marshal(normalized)
	if err != nil {
		return fmt.Errorf("converting YAML to JSON: %w", err)
	}

	schemaLoader := gojsonschema.NewStringLoader(detectorSchema)
	documentLoader := gojsonschema.NewBytesLoader(jsonBytes)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	if !result.Valid() {
		var errMsg string
		for _, verr := range result.Errors() {
			errMsg += fmt.Sprintf("- %s\n", verr)
		}
		return fmt.Errorf("schema validation errors:\n%s", errMsg)
	}

	return nil
}

// normalizeYAML recursively converts map[interface{}]interface{} to
// map[string]interface{} so the structure marshals cleanly to JSON.
func normalizeYAML(v interface{}) interface{} {
	switch val := v.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(val))
		for k, item := range val {
			m[fmt.Sprintf("%v", k)] = normalizeYAML(item)
		}
		return m
	case map[string]interface{}:
		m := make(map[string]interface{}, len(val))
		for k, item := range val {
			m[k] = normalizeYAML(item)
		}
		return m
	case []interface{}:
		for i, item := range val {
			val[i] = normalizeYAML(item)
		}
		return val
	default:
		return v
	}
}
