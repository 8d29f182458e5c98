package assessment

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

const documentSchemaURL = "schema://assessment.json"

// documentSchema describes the accepted shape of an assessment document.
// Condition operators are left open so documents written by newer versions
// still load.
var documentSchema = map[string]any{
	"type":     "object",
	"required": []any{"jobId", "title", "sections"},
	"properties": map[string]any{
		"id":          map[string]any{"type": "string"},
		"jobId":       map[string]any{"type": "string", "minLength": 1},
		"title":       map[string]any{"type": "string", "minLength": 1},
		"description": map[string]any{"type": "string"},
		"sections": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items":    map[string]any{"$ref": "#/$defs/section"},
		},
	},
	"$defs": map[string]any{
		"section": map[string]any{
			"type":     "object",
			"required": []any{"id", "questions"},
			"properties": map[string]any{
				"id":          map[string]any{"type": "string", "minLength": 1},
				"title":       map[string]any{"type": "string"},
				"description": map[string]any{"type": "string"},
				"order":       map[string]any{"type": "integer"},
				"questions": map[string]any{
					"type":  "array",
					"items": map[string]any{"$ref": "#/$defs/question"},
				},
			},
		},
		"question": map[string]any{
			"type":     "object",
			"required": []any{"id", "type", "title"},
			"properties": map[string]any{
				"id":    map[string]any{"type": "string", "minLength": 1},
				"type":  map[string]any{"enum": questionTypeEnum()},
				"title": map[string]any{"type": "string"},
				"description": map[string]any{
					"type": "string",
				},
				"required": map[string]any{"type": "boolean"},
				"order":    map[string]any{"type": "integer"},
				"options": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":     "object",
						"required": []any{"id", "label"},
						"properties": map[string]any{
							"id":    map[string]any{"type": "string", "minLength": 1},
							"label": map[string]any{"type": "string"},
							"value": map[string]any{"type": "string"},
							"order": map[string]any{"type": "integer"},
						},
					},
				},
				"validation": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"minLength":     map[string]any{"type": "integer", "minimum": 0},
						"maxLength":     map[string]any{"type": "integer", "minimum": 0},
						"min":           map[string]any{"type": "number"},
						"max":           map[string]any{"type": "number"},
						"pattern":       map[string]any{"type": "string"},
						"customMessage": map[string]any{"type": "string"},
					},
				},
				"conditionalLogic": map[string]any{
					"type":     "object",
					"required": []any{"dependsOn", "condition"},
					"properties": map[string]any{
						"dependsOn": map[string]any{"type": "string", "minLength": 1},
						"condition": map[string]any{"type": "string", "minLength": 1},
						"value":     map[string]any{"type": "string"},
					},
				},
			},
		},
	},
}

func questionTypeEnum() []any {
	types := AllQuestionTypes()
	out := make([]any, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

var (
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
	compileOnce       sync.Once
)

func getCompiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The compiler wants a parsed JSON value, so round-trip the Go map.
		b, err := json.Marshal(documentSchema)
		if err != nil {
			compiledSchemaErr = fmt.Errorf("marshal document schema: %w", err)
			return
		}
		var def any
		if err := json.Unmarshal(b, &def); err != nil {
			compiledSchemaErr = fmt.Errorf("parse document schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(documentSchemaURL, def); err != nil {
			compiledSchemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compiledSchemaErr = c.Compile(documentSchemaURL)
	})
	return compiledSchema, compiledSchemaErr
}

// ParseJSON decodes an assessment document. The document is checked
// against the document schema before it is decoded; option values are
// regenerated from their labels.
func ParseJSON(data []byte) (*Assessment, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	sch, err := getCompiledSchema()
	if err != nil {
		return nil, fmt.Errorf("compile document schema: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return nil, fmt.Errorf("document does not match schema: %w", err)
	}

	var a Assessment
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode assessment: %w", err)
	}
	normalizeOptions(&a)
	return &a, nil
}

// ParseYAML decodes a YAML assessment document with the same rules as
// ParseJSON.
func ParseYAML(data []byte) (*Assessment, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("convert YAML to JSON: %w", err)
	}
	return ParseJSON(b)
}

func normalizeOptions(a *Assessment) {
	for si := range a.Sections {
		for qi := range a.Sections[si].Questions {
			q := &a.Sections[si].Questions[qi]
			for oi := range q.Options {
				q.Options[oi].Value = OptionValue(q.Options[oi].Label)
			}
		}
	}
}
