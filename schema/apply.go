package schema

import (
	"fmt"
	"math"
	"reflect"
)

// Apply validates data against the document and returns every violation.
// The walk never stops early: all findings from all fields come back in one
// Issues list. Order across top-level fields follows map iteration and is
// not stable, but every finding is present exactly once.
func (d Document) Apply(data map[string]interface{}) Issues {
	var iss Issues
	for name, rule := range d.Fields {
		path := "/" + name
		value, present := data[name]
		if !present {
			if rule.Required {
				iss = Append(iss, Issue{
					Path:    path,
					Code:    CodeRequired,
					Message: "required field is missing",
				})
			}

			continue
		}
		iss = applyRule(iss, path, rule, value)
	}

	return iss
}

// applyRule evaluates every aspect of rule against value, appending one issue
// per violated aspect. Aspects that do not apply to the value's type are
// skipped silently; the type aspect itself reports the mismatch.
func applyRule(iss Issues, path string, rule Rule, value interface{}) Issues {
	if rule.Type != "" && !typeMatches(rule.Type, value) {
		iss = Append(iss, Issue{
			Path:    path,
			Code:    CodeInvalidType,
			Message: fmt.Sprintf("expected %s", rule.Type),
			Params:  map[string]interface{}{"expected": rule.Type},
		})
	}

	if f, ok := asFloat(value); ok {
		if rule.Min != nil && f < *rule.Min {
			iss = Append(iss, Issue{
				Path:    path,
				Code:    CodeTooSmall,
				Message: fmt.Sprintf("value %g below minimum %g", f, *rule.Min),
				Params:  map[string]interface{}{"min": *rule.Min, "got": f},
			})
		}
		if rule.Max != nil && f > *rule.Max {
			iss = Append(iss, Issue{
				Path:    path,
				Code:    CodeTooBig,
				Message: fmt.Sprintf("value %g above maximum %g", f, *rule.Max),
				Params:  map[string]interface{}{"max": *rule.Max, "got": f},
			})
		}
	}

	if len(rule.Enum) > 0 && !containsLoose(rule.Enum, value) {
		iss = Append(iss, Issue{
			Path:    path,
			Code:    CodeInvalidEnum,
			Message: fmt.Sprintf("value %v not in enum", value),
			Params:  map[string]interface{}{"allowed": rule.Enum},
		})
	}

	if rule.Const != nil && !equalLoose(rule.Const, value) {
		iss = Append(iss, Issue{
			Path:    path,
			Code:    CodeConstMismatch,
			Message: fmt.Sprintf("value %v must equal %v", value, rule.Const),
			Params:  map[string]interface{}{"want": rule.Const},
		})
	}

	if len(rule.OneOf) > 0 {
		matched := false
		for _, alt := range rule.OneOf {
			if len(applyRule(nil, path, alt, value)) == 0 {
				matched = true

				break
			}
		}
		if !matched {
			iss = Append(iss, Issue{
				Path:    path,
				Code:    CodeOneOfFailed,
				Message: fmt.Sprintf("value matches none of %d alternatives", len(rule.OneOf)),
			})
		}
	}

	if rule.Items != nil {
		if arr, ok := value.([]interface{}); ok {
			for i, item := range arr {
				iss = applyRule(iss, fmt.Sprintf("%s/%d", path, i), *rule.Items, item)
			}
		}
	}

	if len(rule.Fields) > 0 {
		if obj, ok := value.(map[string]interface{}); ok {
			for name, sub := range rule.Fields {
				subPath := path + "/" + name
				subValue, present := obj[name]
				if !present {
					if sub.Required {
						iss = Append(iss, Issue{
							Path:    subPath,
							Code:    CodeRequired,
							Message: "required field is missing",
						})
					}

					continue
				}
				iss = applyRule(iss, subPath, sub, subValue)
			}
		}
	}

	if rule.Check != "" {
		iss = applyCheck(iss, path, rule.Check, value)
	}

	return iss
}

// applyCheck runs a named custom rule.
func applyCheck(iss Issues, path, check string, value interface{}) Issues {
	switch check {
	case CheckProbabilitySum:
		arr, ok := value.([]interface{})
		if !ok {
			return Append(iss, Issue{
				Path:    path,
				Code:    CodeInvalidType,
				Message: "probability_sum requires an array of numbers",
			})
		}
		sum := 0.0
		for i, item := range arr {
			f, numeric := asFloat(item)
			if !numeric {
				return Append(iss, Issue{
					Path:    fmt.Sprintf("%s/%d", path, i),
					Code:    CodeInvalidType,
					Message: "probability entries must be numbers",
				})
			}
			sum += f
		}
		if math.Abs(sum-1) > sumTolerance {
			iss = Append(iss, Issue{
				Path:    path,
				Code:    CodeProbabilitySum,
				Message: fmt.Sprintf("probabilities sum to %g, want 1", sum),
				Params:  map[string]interface{}{"sum": sum},
			})
		}
	case CheckUniqueLabels:
		arr, ok := value.([]interface{})
		if !ok {
			return iss
		}
		seen := make(map[string]int, len(arr))
		for i, item := range arr {
			obj, isObj := item.(map[string]interface{})
			if !isObj {
				continue
			}
			label, isStr := obj["label"].(string)
			if !isStr {
				continue
			}
			if first, dup := seen[label]; dup {
				iss = Append(iss, Issue{
					Path:    fmt.Sprintf("%s/%d/label", path, i),
					Code:    CodeDuplicateLabel,
					Message: fmt.Sprintf("label %q already used at index %d", label, first),
					Params:  map[string]interface{}{"label": label, "first_index": first},
				})
			} else {
				seen[label] = i
			}
		}
	default:
		iss = Append(iss, Issue{
			Path:    path,
			Code:    CodeUnknownCheck,
			Message: fmt.Sprintf("schema names unknown check %q", check),
		})
	}

	return iss
}

// typeMatches reports whether value has the shape named by t.
func typeMatches(t string, value interface{}) bool {
	switch t {
	case "number":
		_, ok := asFloat(value)

		return ok
	case "integer":
		f, ok := asFloat(value)

		return ok && f == math.Trunc(f)
	case "string":
		_, ok := value.(string)

		return ok
	case "boolean":
		_, ok := value.(bool)

		return ok
	case "array":
		_, ok := value.([]interface{})

		return ok
	case "object":
		_, ok := value.(map[string]interface{})

		return ok
	}

	return false
}

// asFloat widens the numeric shapes JSON and YAML decoders produce.
func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}

	return 0, false
}

// equalLoose compares scalars with numeric widening, falling back to deep
// equality for anything else.
func equalLoose(a, b interface{}) bool {
	fa, okA := asFloat(a)
	fb, okB := asFloat(b)
	if okA && okB {
		return fa == fb
	}

	return reflect.DeepEqual(a, b)
}

// containsLoose reports membership of value in set under equalLoose.
func containsLoose(set []interface{}, value interface{}) bool {
	for _, item := range set {
		if equalLoose(item, value) {
			return true
		}
	}

	return false
}
