// Package session ties the sequence-building pipeline together behind one
// object. A Session owns the seed-derived stream registry, the scope-aware
// parameter sampler, and the sample-rate clock, and satisfies the render
// context every stimulus generator consumes.
//
// One Session corresponds to one experimental session: per-session
// parameters pin for its whole lifetime, and BeginBlock announces block
// transitions so per-block parameters re-draw. CompilePlan runs the full
// plan → element table → SequenceFile pipeline and stamps the result with
// the session's identifier.
//
// Two Sessions created with the same master seed compile byte-identical
// sequences; the generated session ID never feeds any random stream.
package session
