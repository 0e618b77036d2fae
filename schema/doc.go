// Package schema evaluates externally authored validation schemas against
// experiment documents (trial plans, stimulus definitions, parameter sets)
// before anything reaches sampling or compilation.
//
// A schema Document declares per-field rules (required, type, numeric range,
// enum, const, one_of alternatives, array items, nested fields) plus named
// custom checks (probability vectors summing to 1, unique trial labels).
// Apply walks the data once and returns EVERY violation as an Issues list
// rather than stopping at the first, so callers can report everything wrong
// in a single pass.
//
// Issues implements error; callers branch with schema.AsIssues and inspect
// Path (JSON-Pointer style, e.g. /trials/2/label) and Code. Documents load
// from JSON or YAML.
package schema
