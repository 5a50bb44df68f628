package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ActivitySchema describes the subset of a Bot Framework activity the bot
// relies on. Message activities must name their conversation.
const ActivitySchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["type"],
	"properties": {
		"type":       {"type": "string", "minLength": 1},
		"id":         {"type": "string"},
		"serviceUrl": {"type": "string"},
		"text":       {"type": "string"},
		"from":         {"$ref": "#/definitions/account"},
		"recipient":    {"$ref": "#/definitions/account"},
		"conversation": {"$ref": "#/definitions/account"},
		"membersAdded": {"type": "array", "items": {"$ref": "#/definitions/account"}}
	},
	"anyOf": [
		{"properties": {"type": {"not": {"enum": ["message"]}}}},
		{
			"required": ["conversation"],
			"properties": {
				"conversation": {
					"required": ["id"],
					"properties": {"id": {"type": "string", "minLength": 1}}
				}
			}
		}
	],
	"definitions": {
		"account": {
			"type": "object",
			"properties": {
				"id":   {"type": "string"},
				"name": {"type": "string"}
			}
		}
	}
}`

// ResolveAnswerVariablesSchema describes the variables of a resolve-answer
// job.
const ResolveAnswerVariablesSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["utterance"],
	"properties": {
		"utterance":      {"type": "string"},
		"fallback":       {"type": "string"},
		"deploymentName": {"type": "string"},
		"language":       {"type": "string"}
	}
}`

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Error joins all validation errors into one line.
func (r *ValidationResult) Error() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Field + ": " + e.Message
	}
	return strings.Join(msgs, "; ")
}

// Validator checks JSON documents against one compiled schema. It is safe
// for concurrent use.
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles schema.
func NewValidator(schema string) (*Validator, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: compiled}, nil
}

// MustNewValidator is NewValidator for schemas known at compile time.
func MustNewValidator(schema string) *Validator {
	v, err := NewValidator(schema)
	if err != nil {
		panic(err)
	}
	return v
}

// ValidateJSON validates a raw JSON document. A document that is not JSON
// is reported as a single INVALID_JSON error.
func (v *Validator) ValidateJSON(document []byte) *ValidationResult {
	return v.validate(gojsonschema.NewBytesLoader(document))
}

// ValidateInput validates an already decoded document.
func (v *Validator) ValidateInput(input map[string]interface{}) *ValidationResult {
	return v.validate(gojsonschema.NewGoLoader(input))
}

func (v *Validator) validate(loader gojsonschema.JSONLoader) *ValidationResult {
	result, err := v.schema.Validate(loader)
	if err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "(root)",
				Message: err.Error(),
				Code:    "INVALID_JSON",
			}},
		}
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out
}
