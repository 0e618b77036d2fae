// Package dist provides pure, stateless samplers and analytic moments for
// the distribution kinds a numeric field spec may declare: uniform, normal
// (optionally clipped), log-uniform, and categorical.
//
// Every sampler is a pure function of (Params, *rand.Rand, n): all state
// lives in the caller-supplied stream, so identical streams yield identical
// draws. Parameter contracts are enforced before any drawing happens:
//
//	Uniform      min < max
//	Normal       std ≥ 0
//	LogUniform   0 < min < max
//	Categorical  len(categories) == len(probabilities) > 0,
//	             probabilities non-negative, summing to 1 within tolerance
//
// Violations surface as sentinel errors (ErrBadSupport, ErrNegativeStd,
// ErrBadLogSupport, ErrLengthMismatch, ...) matched with errors.Is; samplers
// never panic.
//
// ComputeMoments returns the analytic mean/variance for validation previews
// without consuming any randomness.
package dist
