package schema

import (
	"errors"
	"fmt"

	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// ErrBadDocument is returned when a schema document itself cannot be decoded.
var ErrBadDocument = errors.New("schema: cannot decode schema document")

// Named custom checks a Rule may reference.
const (
	// CheckProbabilitySum demands a numeric array summing to 1 within tolerance.
	CheckProbabilitySum = "probability_sum"
	// CheckUniqueLabels demands array items carrying pairwise distinct "label"s.
	CheckUniqueLabels = "unique_labels"
)

// sumTolerance bounds acceptable drift of a probability vector's sum from 1.
const sumTolerance = 1e-6

// Rule is one field's validation contract. Zero-valued aspects are skipped:
// a Rule{} accepts anything present, and only Required makes absence an error.
type Rule struct {
	// Type names the expected shape: "number", "integer", "string",
	// "boolean", "array" or "object". Empty accepts any type.
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
	// Required makes the field's absence a violation.
	Required bool `json:"required,omitempty" yaml:"required,omitempty"`
	// Min/Max bound numeric values inclusively.
	Min *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	// Enum restricts the value to a fixed set.
	Enum []interface{} `json:"enum,omitempty" yaml:"enum,omitempty"`
	// Const pins the value exactly.
	Const interface{} `json:"const,omitempty" yaml:"const,omitempty"`
	// OneOf accepts the value when at least one alternative rule passes.
	OneOf []Rule `json:"one_of,omitempty" yaml:"one_of,omitempty"`
	// Items applies to every element of an array value.
	Items *Rule `json:"items,omitempty" yaml:"items,omitempty"`
	// Fields applies to the named members of an object value.
	Fields map[string]Rule `json:"fields,omitempty" yaml:"fields,omitempty"`
	// Check names a custom rule (CheckProbabilitySum, CheckUniqueLabels).
	Check string `json:"check,omitempty" yaml:"check,omitempty"`
}

// Document is a complete externally authored schema: a rule per top-level
// field of the data document it validates.
type Document struct {
	Title  string          `json:"title,omitempty" yaml:"title,omitempty"`
	Fields map[string]Rule `json:"fields" yaml:"fields"`
}

// DocumentFromJSON decodes a schema document from JSON.
func DocumentFromJSON(data []byte) (Document, error) {
	var doc Document
	if err := gojson.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrBadDocument, err)
	}

	return doc, nil
}

// DocumentFromYAML decodes a schema document from YAML.
func DocumentFromYAML(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrBadDocument, err)
	}

	return doc, nil
}
