package stimgen

import (
	"errors"
	"fmt"
	"sort"

	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/auralab/stimseq/sampler"
)

// ErrBadDefinition is returned when a stimulus definition or library
// document cannot be decoded.
var ErrBadDefinition = errors.New("stimgen: cannot decode stimulus definition")

// EnvelopeSpec is the declarative attack/release envelope. Ramp durations
// are numeric field specs, so they may themselves be distributions.
type EnvelopeSpec struct {
	AttackMs  sampler.FieldSpec
	ReleaseMs sampler.FieldSpec
	Shape     RampShape
}

// Definition is one stimulus description as authored in a library
// document. Reserved keys (type, level_mode, routing, envelope, seed) are
// decoded structurally; every other key is a numeric field spec collected
// into Fields.
//
// A definition is read-only to the rendering pipeline.
type Definition struct {
	Type      Type
	Fields    map[string]sampler.FieldSpec
	LevelMode LevelMode
	Routing   Routing
	Envelope  *EnvelopeSpec
	// Seed pins generator-local randomness (noise). When nil, a seed is
	// drawn from the session's streams at parameter-resolution time.
	Seed *int64
}

// UnmarshalJSON decodes the document form of a definition.
func (d *Definition) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := gojson.Unmarshal(data, &raw); err != nil {
		return wrapf(ErrBadDefinition, "%v", err)
	}
	def, err := definitionFromRaw(raw)
	if err != nil {
		return err
	}
	*d = def
	return nil
}

// UnmarshalYAML decodes the document form of a definition.
func (d *Definition) UnmarshalYAML(value *yaml.Node) error {
	var raw map[string]interface{}
	if err := value.Decode(&raw); err != nil {
		return wrapf(ErrBadDefinition, "%v", err)
	}
	def, err := definitionFromRaw(raw)
	if err != nil {
		return err
	}
	*d = def
	return nil
}

// definitionFromRaw splits a decoded document map into the structural keys
// and the free-form numeric fields.
func definitionFromRaw(raw map[string]interface{}) (Definition, error) {
	def := Definition{Fields: make(map[string]sampler.FieldSpec)}
	sawType := false
	var err error
	for key, val := range raw {
		switch key {
		case "type":
			tok, ok := val.(string)
			if !ok {
				return def, wrapf(ErrBadDefinition, "type is %T, want string", val)
			}
			if def.Type, err = ParseType(tok); err != nil {
				return def, err
			}
			sawType = true
		case "level_mode":
			tok, ok := val.(string)
			if !ok {
				return def, wrapf(ErrBadDefinition, "level_mode is %T, want string", val)
			}
			if def.LevelMode, err = ParseLevelMode(tok); err != nil {
				return def, err
			}
		case "routing":
			if def.Routing, err = routingFromRaw(val); err != nil {
				return def, err
			}
		case "envelope":
			if def.Envelope, err = envelopeFromRaw(val); err != nil {
				return def, err
			}
		case "seed":
			f, ok := asFloat(val)
			if !ok {
				return def, wrapf(ErrBadDefinition, "seed is %T, want integer", val)
			}
			seed := int64(f)
			def.Seed = &seed
		default:
			spec, specErr := sampler.ParseFieldSpec(val)
			if specErr != nil {
				return def, wrapf(ErrBadDefinition, "field %s: %v", key, specErr)
			}
			def.Fields[key] = spec
		}
	}
	if !sawType {
		return def, wrapf(ErrBadDefinition, "definition has no type")
	}
	return def, nil
}

func routingFromRaw(val interface{}) (Routing, error) {
	m, ok := val.(map[string]interface{})
	if !ok {
		return Routing{}, wrapf(ErrBadDefinition, "routing is %T, want object", val)
	}
	list, ok := m["channels"].([]interface{})
	if !ok {
		return Routing{}, wrapf(ErrBadDefinition, "routing.channels is %T, want array", m["channels"])
	}
	r := Routing{Channels: make([]int, len(list))}
	for i, item := range list {
		f, ok := asFloat(item)
		if !ok {
			return Routing{}, wrapf(ErrBadDefinition, "routing.channels[%d] is %T, want integer", i, item)
		}
		r.Channels[i] = int(f)
	}
	if err := r.Validate(); err != nil {
		return Routing{}, err
	}
	return r, nil
}

func envelopeFromRaw(val interface{}) (*EnvelopeSpec, error) {
	m, ok := val.(map[string]interface{})
	if !ok {
		return nil, wrapf(ErrBadDefinition, "envelope is %T, want object", val)
	}
	env := EnvelopeSpec{
		AttackMs:  sampler.Scalar(0),
		ReleaseMs: sampler.Scalar(0),
	}
	var err error
	if raw, present := m["attack_ms"]; present {
		if env.AttackMs, err = sampler.ParseFieldSpec(raw); err != nil {
			return nil, wrapf(ErrBadDefinition, "envelope.attack_ms: %v", err)
		}
	}
	if raw, present := m["release_ms"]; present {
		if env.ReleaseMs, err = sampler.ParseFieldSpec(raw); err != nil {
			return nil, wrapf(ErrBadDefinition, "envelope.release_ms: %v", err)
		}
	}
	shape := ""
	if raw, present := m["shape"]; present {
		tok, ok := raw.(string)
		if !ok {
			return nil, wrapf(ErrBadDefinition, "envelope.shape is %T, want string", raw)
		}
		shape = tok
	}
	if env.Shape, err = ParseRampShape(shape); err != nil {
		return nil, err
	}
	return &env, nil
}

// Library is a read-only mapping from stimulus reference to definition.
type Library map[string]Definition

// LibraryFromJSON decodes a library document of the form
// {"ref": {definition}, ...}. Decode errors name the offending reference.
func LibraryFromJSON(data []byte) (Library, error) {
	var raw map[string]gojson.RawMessage
	if err := gojson.Unmarshal(data, &raw); err != nil {
		return nil, wrapf(ErrBadDefinition, "%v", err)
	}
	lib := make(Library, len(raw))
	for ref, doc := range raw {
		var def Definition
		if err := gojson.Unmarshal(doc, &def); err != nil {
			return nil, fmt.Errorf("%s: %w", ref, err)
		}
		lib[ref] = def
	}
	return lib, nil
}

// LibraryFromYAML decodes a library document of the same shape as
// LibraryFromJSON.
func LibraryFromYAML(data []byte) (Library, error) {
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, wrapf(ErrBadDefinition, "%v", err)
	}
	lib := make(Library, len(raw))
	for ref, node := range raw {
		var def Definition
		if err := node.Decode(&def); err != nil {
			return nil, fmt.Errorf("%s: %w", ref, err)
		}
		lib[ref] = def
	}
	return lib, nil
}

// Lookup resolves a stimulus reference, failing with ErrUnknownStimulus
// when the library has no such entry.
func (l Library) Lookup(ref string) (Definition, error) {
	def, ok := l[ref]
	if !ok {
		return Definition{}, wrapf(ErrUnknownStimulus, "%q", ref)
	}
	return def, nil
}

// Refs lists the library's stimulus references in sorted order.
func (l Library) Refs() []string {
	refs := make([]string, 0, len(l))
	for ref := range l {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}
