package sampler

import (
	"fmt"

	"github.com/auralab/stimseq/dist"
	"github.com/auralab/stimseq/randstream"
)

// streamPrefix namespaces parameter streams inside the stream manager, so a
// parameter called "level" can never collide with an unrelated stream that
// happens to share the name.
const streamPrefix = "param_"

// options collects the tunables applied by NewSampler.
type options struct {
	validate bool
}

// Option adjusts sampler construction.
type Option func(*options)

// WithValidation toggles per-call spec validation. It is on by default;
// turn it off for hot paths that resolve specs already checked at parse
// time.
func WithValidation(enabled bool) Option {
	return func(o *options) { o.validate = enabled }
}

// Sampler resolves FieldSpecs into concrete values.
//
// Each parameter name owns a dedicated RNG stream (streamPrefix + name), so
// the order in which different parameters are resolved has no effect on any
// of their draw sequences. Cached scopes are delegated to the ScopeCache;
// on a cache hit the parameter's stream is not touched at all, not even to
// derive its seed.
type Sampler struct {
	streams  *randstream.Manager
	scopes   *ScopeCache
	validate bool
}

// NewSampler wires a sampler to its stream manager and scope cache.
// Both collaborators are required; passing nil panics.
func NewSampler(streams *randstream.Manager, scopes *ScopeCache, opts ...Option) *Sampler {
	if streams == nil {
		panic("sampler: nil stream manager")
	}
	if scopes == nil {
		panic("sampler: nil scope cache")
	}
	o := options{validate: true}
	for _, opt := range opts {
		opt(&o)
	}
	return &Sampler{streams: streams, scopes: scopes, validate: o.validate}
}

// Scopes exposes the scope cache so callers can announce context switches.
func (s *Sampler) Scopes() *ScopeCache { return s.scopes }

// Sample resolves one value for the parameter called name.
//
// Steps:
//  1. Validate the spec (unless disabled via WithValidation(false)).
//  2. Fixed values return immediately.
//  3. Distributions draw through the scope cache: per_trial draws fresh,
//     per_block and per_session replay the pinned value when one exists.
//
// Returns the spec's validation error, or any sampling error, unchanged.
func (s *Sampler) Sample(spec FieldSpec, name string) (float64, error) {
	if s.validate {
		if err := spec.Validate(); err != nil {
			return 0, err
		}
	}
	if spec.Kind == ScalarSpec {
		return spec.Value, nil
	}
	draw := func() (float64, error) {
		// Stream derivation stays inside the closure: a cache hit must
		// leave the manager's derivation counter untouched.
		vals, err := dist.Sample(spec.Dist, s.streams.Stream(streamPrefix+name), 1)
		if err != nil {
			return 0, err
		}
		return vals[0], nil
	}
	return s.scopes.GetOrSample(name, spec.Scope, draw)
}

// SampleN resolves n values for the parameter called name.
//
// Fixed values broadcast. Per-trial distributions draw n independent values
// from the parameter's stream. Cached scopes resolve a single value through
// Sample and broadcast it, so the per-block/per-session pinning guarantee
// holds for vector requests too.
//
// Returns dist.ErrBadCount when n < 1.
func (s *Sampler) SampleN(spec FieldSpec, name string, n int) ([]float64, error) {
	if n < 1 {
		return nil, wrapf(dist.ErrBadCount, "n=%d", n)
	}
	if s.validate {
		if err := spec.Validate(); err != nil {
			return nil, err
		}
	}
	if spec.Kind == DistributionSpec && spec.Scope == PerTrial {
		return dist.Sample(spec.Dist, s.streams.Stream(streamPrefix+name), n)
	}
	v, err := s.Sample(spec, name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out, nil
}

// SampleStruct resolves a nested parameter struct.
//
// Values are handled by shape:
//   - a map carrying "dist" or "value" is parsed as a field spec and
//     resolved via Sample;
//   - an already-parsed FieldSpec is resolved directly;
//   - any other map recurses, extending the dotted path;
//   - everything else passes through unchanged.
//
// The dotted path (prefix + "." + key) names the RNG stream and the cache
// entry for each resolved field, so "envelope.attack_ms" and a top-level
// "attack_ms" stay independent. Map iteration order does not matter: every
// field draws from its own stream and caches under its own name.
//
// Returns a fresh map; the input is never mutated.
func (s *Sampler) SampleStruct(params map[string]interface{}, prefix string) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(params))
	for key, raw := range params {
		name := dotted(prefix, key)
		switch v := raw.(type) {
		case FieldSpec:
			val, err := s.Sample(v, name)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			out[key] = val
		case map[string]interface{}:
			if isFieldSpec(v) {
				spec, err := ParseFieldSpec(v)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", name, err)
				}
				val, err := s.Sample(spec, name)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", name, err)
				}
				out[key] = val
				break
			}
			sub, err := s.SampleStruct(v, name)
			if err != nil {
				return nil, err
			}
			out[key] = sub
		default:
			out[key] = raw
		}
	}
	return out, nil
}

// isFieldSpec reports whether a map is a field spec rather than a nested
// parameter struct.
func isFieldSpec(m map[string]interface{}) bool {
	if _, ok := m["dist"]; ok {
		return true
	}
	_, ok := m["value"]
	return ok
}

// dotted joins a path prefix and a key.
func dotted(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
