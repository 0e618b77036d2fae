package sampler

import (
	"errors"
	"fmt"

	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/auralab/stimseq/dist"
)

// ErrBadFieldSpec is returned when a raw value cannot be decoded as a field
// specification: it is neither a number, nor {"value": x}, nor a {"dist": ...}
// object.
var ErrBadFieldSpec = errors.New("sampler: field spec must be a number, {value: x}, or {dist: ...}")

// SpecKind discriminates the two arms of the FieldSpec sum type.
type SpecKind int

const (
	// ScalarSpec is a fixed value; resolution returns it unchanged.
	ScalarSpec SpecKind = iota
	// DistributionSpec draws from a distribution under a caching scope.
	DistributionSpec
)

// FieldSpec is the parsed form of a numeric-field specification. Exactly one
// arm is populated, selected by Kind: Value for ScalarSpec, Dist and Scope
// for DistributionSpec.
//
// Documents decode into FieldSpec once, via ParseFieldSpec or the JSON/YAML
// unmarshalers; validation happens at that point so resolution never fails
// on a malformed spec.
type FieldSpec struct {
	Kind  SpecKind
	Value float64
	Dist  dist.Params
	Scope Scope
}

// Scalar returns a fixed-value spec.
func Scalar(v float64) FieldSpec {
	return FieldSpec{Kind: ScalarSpec, Value: v}
}

// Distribution returns a distribution spec with the given caching scope.
func Distribution(p dist.Params, scope Scope) FieldSpec {
	return FieldSpec{Kind: DistributionSpec, Dist: p, Scope: scope}
}

// ParseFieldSpec decodes one raw document value into a FieldSpec.
//
// Accepted shapes:
//
//	3000                                 — bare number, fixed value
//	{"value": 3000}                      — explicit fixed value
//	{"dist": "uniform", "min": 2, ...}   — distribution; "scope" defaults
//	                                       to per_trial when absent
//
// The distribution parameters are validated here, so a returned spec is
// always resolvable. Returns ErrBadFieldSpec for unrecognized shapes and
// the dist package sentinels for invalid parameters.
func ParseFieldSpec(raw interface{}) (FieldSpec, error) {
	if v, ok := toFloat(raw); ok {
		return Scalar(v), nil
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return FieldSpec{}, wrapf(ErrBadFieldSpec, "got %T", raw)
	}
	if tok, present := m["dist"]; present {
		return parseDistSpec(m, tok)
	}
	if v, present := m["value"]; present {
		f, ok := toFloat(v)
		if !ok {
			return FieldSpec{}, wrapf(ErrBadFieldSpec, "value is %T, want number", v)
		}
		return Scalar(f), nil
	}
	return FieldSpec{}, wrapf(ErrBadFieldSpec, "object has neither dist nor value")
}

// parseDistSpec assembles and validates the distribution arm.
func parseDistSpec(m map[string]interface{}, tok interface{}) (FieldSpec, error) {
	name, ok := tok.(string)
	if !ok {
		return FieldSpec{}, wrapf(ErrBadFieldSpec, "dist is %T, want string", tok)
	}
	kind, err := dist.ParseKind(name)
	if err != nil {
		return FieldSpec{}, err
	}
	p := dist.Params{Kind: kind}
	if p.Min, err = floatField(m, "min"); err != nil {
		return FieldSpec{}, err
	}
	if p.Max, err = floatField(m, "max"); err != nil {
		return FieldSpec{}, err
	}
	if p.Mean, err = floatField(m, "mean"); err != nil {
		return FieldSpec{}, err
	}
	if p.Std, err = floatField(m, "std"); err != nil {
		return FieldSpec{}, err
	}
	if p.ClipMin, err = optFloatField(m, "clip_min"); err != nil {
		return FieldSpec{}, err
	}
	if p.ClipMax, err = optFloatField(m, "clip_max"); err != nil {
		return FieldSpec{}, err
	}
	if p.Categories, err = floatListField(m, "categories"); err != nil {
		return FieldSpec{}, err
	}
	if p.Probabilities, err = floatListField(m, "probabilities"); err != nil {
		return FieldSpec{}, err
	}
	scope := PerTrial
	if tok, present := m["scope"]; present {
		s, ok := tok.(string)
		if !ok {
			return FieldSpec{}, wrapf(ErrInvalidScope, "scope is %T, want string", tok)
		}
		if scope, err = ParseScope(s); err != nil {
			return FieldSpec{}, err
		}
	}
	if err = dist.Validate(p); err != nil {
		return FieldSpec{}, err
	}
	return Distribution(p, scope), nil
}

// Validate re-checks a spec after hand construction. Parsed specs are
// already valid; Sampler calls this only when validation is enabled.
func (f FieldSpec) Validate() error {
	switch f.Kind {
	case ScalarSpec:
		return nil
	case DistributionSpec:
		if f.Scope < PerTrial || f.Scope > PerSession {
			return wrapf(ErrInvalidScope, "%d", int(f.Scope))
		}
		return dist.Validate(f.Dist)
	default:
		return wrapf(ErrBadFieldSpec, "unknown spec kind %d", int(f.Kind))
	}
}

// Moments reports the analytic mean and variance of a spec: zero variance
// for fixed values, the distribution's closed form otherwise.
func Moments(f FieldSpec) (dist.Moments, error) {
	if f.Kind == ScalarSpec {
		return dist.Moments{Mean: f.Value, Variance: 0}, nil
	}
	return dist.ComputeMoments(f.Dist)
}

// UnmarshalJSON decodes either a bare number or a spec object.
func (f *FieldSpec) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := gojson.Unmarshal(data, &raw); err != nil {
		return wrapf(ErrBadFieldSpec, "%v", err)
	}
	spec, err := ParseFieldSpec(raw)
	if err != nil {
		return err
	}
	*f = spec
	return nil
}

// MarshalJSON emits the canonical document form: a bare number for fixed
// values, an object with dist token, parameters, and scope otherwise.
func (f FieldSpec) MarshalJSON() ([]byte, error) {
	if f.Kind == ScalarSpec {
		return gojson.Marshal(f.Value)
	}
	return gojson.Marshal(f.docForm())
}

// UnmarshalYAML decodes either a bare number or a spec object.
func (f *FieldSpec) UnmarshalYAML(value *yaml.Node) error {
	var raw interface{}
	if err := value.Decode(&raw); err != nil {
		return wrapf(ErrBadFieldSpec, "%v", err)
	}
	spec, err := ParseFieldSpec(raw)
	if err != nil {
		return err
	}
	*f = spec
	return nil
}

// MarshalYAML emits the same canonical form as MarshalJSON.
func (f FieldSpec) MarshalYAML() (interface{}, error) {
	if f.Kind == ScalarSpec {
		return f.Value, nil
	}
	return f.docForm(), nil
}

// docForm builds the document representation of the distribution arm,
// including only the parameters meaningful for the kind.
func (f FieldSpec) docForm() map[string]interface{} {
	out := map[string]interface{}{
		"dist":  f.Dist.Kind.String(),
		"scope": f.Scope.String(),
	}
	switch f.Dist.Kind {
	case dist.Uniform, dist.LogUniform:
		out["min"] = f.Dist.Min
		out["max"] = f.Dist.Max
	case dist.Normal:
		out["mean"] = f.Dist.Mean
		out["std"] = f.Dist.Std
		if f.Dist.ClipMin != nil {
			out["clip_min"] = *f.Dist.ClipMin
		}
		if f.Dist.ClipMax != nil {
			out["clip_max"] = *f.Dist.ClipMax
		}
	case dist.Categorical:
		out["categories"] = f.Dist.Categories
		if f.Dist.Probabilities != nil {
			out["probabilities"] = f.Dist.Probabilities
		}
	}
	return out
}

// floatField extracts an optional numeric key; absence yields zero.
func floatField(m map[string]interface{}, key string) (float64, error) {
	raw, present := m[key]
	if !present {
		return 0, nil
	}
	v, ok := toFloat(raw)
	if !ok {
		return 0, wrapf(ErrBadFieldSpec, "%s is %T, want number", key, raw)
	}
	return v, nil
}

// optFloatField extracts an optional numeric key as a pointer; absence
// yields nil.
func optFloatField(m map[string]interface{}, key string) (*float64, error) {
	raw, present := m[key]
	if !present {
		return nil, nil
	}
	v, ok := toFloat(raw)
	if !ok {
		return nil, wrapf(ErrBadFieldSpec, "%s is %T, want number", key, raw)
	}
	return &v, nil
}

// floatListField extracts an optional numeric array; absence yields nil.
func floatListField(m map[string]interface{}, key string) ([]float64, error) {
	raw, present := m[key]
	if !present {
		return nil, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, wrapf(ErrBadFieldSpec, "%s is %T, want array", key, raw)
	}
	out := make([]float64, len(list))
	for i, item := range list {
		v, ok := toFloat(item)
		if !ok {
			return nil, wrapf(ErrBadFieldSpec, "%s[%d] is %T, want number", key, i, item)
		}
		out[i] = v
	}
	return out, nil
}

// toFloat widens the numeric types produced by the JSON and YAML decoders.
func toFloat(v interface{}) (float64, bool) {
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
	default:
		return 0, false
	}
}

// wrapf attaches detail to a sentinel while keeping errors.Is working.
func wrapf(sentinel error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{sentinel}, args...)...)
}
