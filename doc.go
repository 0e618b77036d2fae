// Package stimseq compiles experiment descriptions into deterministic,
// sample-accurate stimulus sequences, audio plus hardware trigger
// markers, for auditory behavioral and neurophysiology rigs.
//
// 🚀 What is stimseq?
//
//	A seed-to-waveform pipeline where every random choice is replayable:
//		• Named RNG streams: one master seed, per-purpose derived streams
//		• Distributions: uniform, normal (clipped), log-uniform, categorical
//		• Scoped sampling: parameters re-drawn per trial, per block, or per session
//		• Stimulus generators: tones, band-passed noise, click trains, silence
//		• Trial patterns: absolutely-timed element tables with response windows
//		• Sequence compiler: mixed audio, TTL pulse track, events, provenance manifest
//
// ✨ Why choose stimseq?
//
//   - Reproducible by construction – one master seed regenerates every sample
//   - Declarative – stimulus libraries and trial plans load from JSON or YAML
//   - Auditable – seed records and content hashes travel with each sequence
//   - Pure Go – no external DSP or audio toolchain required
//
// Under the hood, everything is organized under eight subpackages:
//
//	randstream/ — master-seed manager and named deterministic RNG streams
//	dist/       — distribution parameters, draws and analytic moments
//	sampler/    — field specs, scope caches, struct-level parameter sampling
//	schema/     — declarative validation with path-addressed issue lists
//	stimgen/    — stimulus definitions, generators and the render pipeline
//	pattern/    — trial plans flattened into absolute element tables
//	compiler/   — sequence compilation and the binary container format
//	session/    — the top-level handle tying seeds, scopes and compiles together
//
// Quick sketch of one compiled trial:
//
//	audio  ──[tone 1 kHz]─────────────[silence]──
//	ttl    ──▇▇────────────────────────────────── (10-sample code pulse)
//	events    └ sample_index, trial, element, code
//
// Dive into examples/ for an oddball paradigm built end to end, block-wise
// roving standards, and seed-record replay.
//
//	go get github.com/auralab/stimseq
package stimseq
