// Package sampler resolves declarative numeric-field specifications into
// concrete values.
//
// A numeric field spec is either a fixed scalar (bare number or {"value": x})
// or a distribution ({"dist": "uniform", "min": ..., "max": ...,
// "scope": "per_block"}). Specs decode once, at parse time, into the
// explicit FieldSpec sum type; every later use works with the validated
// form instead of re-inspecting raw documents.
//
// Three collaborators do the actual work:
//
//   - randstream.Manager issues one deterministic stream per parameter name
//     ("param_" + name), so the draw sequence of one parameter never
//     disturbs another's; resolution order across parameters cannot change
//     results.
//   - dist provides the pure distribution math.
//   - ScopeCache implements the caching scopes: per_trial draws fresh on
//     every call, per_block holds a value until the block context changes,
//     per_session holds it until the session context changes.
//
// Sampler ties them together: Sample resolves one field, SampleN broadcasts
// or draws n values, and SampleStruct recursively resolves nested parameter
// structs with dotted path names ("envelope.attack_ms") serving as both
// stream names and cache keys.
//
// A Sampler and its ScopeCache belong to one session and are not safe for
// concurrent use.
package sampler
