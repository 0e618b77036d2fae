// Package compiler renders an element table into a playable sequence.
//
// Compile walks the table in order, renders each row's stimulus through
// the stimgen registry, and mixes the audio additively into one shared
// buffer; overlapping elements superpose rather than replace each other.
// Alongside the audio it writes a TTL marker track (a short pulse of the
// element's code at every onset), an event list, a per-trial summary, and
// a provenance manifest whose audio_hash is the SHA-256 of the final
// buffer.
//
// The whole computation is synchronous and strictly ordered: rows mix in
// table order so floating-point summation, and therefore the hash, is
// reproducible bit for bit from one master seed.
//
// Structural failures (unknown stimulus reference, unsupported type) abort
// with no artifact. Synthesis-level problems degrade gracefully: an
// element reaching past the buffer is truncated under the default lenient
// policy and recorded as a warning, or turned into an error by
// WithTruncationPolicy(TruncateStrict).
//
// Write and Read persist a SequenceFile in a single binary container that
// keeps the audio, TTL, and event columns as raw little-endian datasets,
// so a round trip is bit-exact.
package compiler
