// Package randstream manages named, deterministic pseudo-random streams
// derived from a single master seed.
//
// Every stream is addressed by name ("param_frequency_hz", "noise_carrier",
// ...). The first request for a name derives a 64-bit seed by hashing the
// name together with the master seed and mixing in an internal counter; the
// counter advances by a fixed linear-congruential step after every
// derivation, so two names that collide in the hash still receive distinct
// seeds. The derived seed is cached for the lifetime of the Manager, which
// makes every stream reproducible and individually resettable.
//
// Guarantees:
//
//   - Stream(name) called twice returns the same stateful stream, which
//     keeps advancing between calls.
//   - ResetStream(name) rewinds a stream to its originally derived seed;
//     draws after the reset replay the draws made after creation exactly.
//   - SeedRecord() exposes the master seed and every derived seed for
//     reproducibility audits.
//   - ClearAll() forgets all streams but keeps the master seed, so a fresh
//     derivation pass reproduces the same seeds in the same request order.
//
// A Manager is owned by one experiment session and is not safe for
// concurrent use; sessions that compile in parallel must each own their own
// Manager.
package randstream
