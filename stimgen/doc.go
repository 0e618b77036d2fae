// Package stimgen synthesizes stimulus audio from declarative definitions.
//
// A Definition describes one stimulus: its type (tone, bandpass_noise,
// click_train, silence), type-specific numeric fields that may be fixed
// values or distribution specs, channel routing, and an optional
// attack/release envelope. Definitions are owned by a read-only Library
// keyed by stimulus reference.
//
// Rendering happens in two steps with a shared Context between them:
//
//  1. SampleParameters resolves every numeric field through
//     Context.SampleField into a Realized parameter set. All randomness
//     (distribution draws and the noise seed) is captured here.
//  2. Generate maps the Realized set to audio. It is pure: identical
//     realized parameters and sample rate produce identical samples,
//     regardless of call order.
//
// Each generator follows the same synthesis order: raw waveform, then
// envelope ramps, then level scaling, then clipping to [-1, 1], then
// channel routing. The envelope precedes level scaling so ramp shape never
// depends on amplitude. Metadata reports peak, RMS, a SHA-256 hash of the
// routed buffer, and any warnings (clipping, skipped ramps, missing
// calibration).
//
// Generators register themselves in a package-level table; adding a
// stimulus type means adding one file and one Type constant, not editing a
// dispatch switch.
package stimgen
