package stimgen

import (
	"fmt"
	"math/rand"
)

func init() { register(noiseGen{}) }

// noiseGen renders Gaussian noise shaped by a 4th-order Butterworth
// bandpass, filtered forward and backward so the passband keeps zero phase.
//
// Fields: low_freq_hz, high_freq_hz, duration_ms (required), level
// (default 1), rms_target (optional; renormalizes after level scaling).
// The noise seed comes from the definition when pinned, otherwise from the
// session's noise_seed stream, captured here so Generate stays pure.
type noiseGen struct{}

func (noiseGen) Type() Type { return BandpassNoise }

func (noiseGen) SampleParameters(def Definition, ctx Context) (Realized, error) {
	r, err := realizeCommon(def, ctx,
		[]string{"low_freq_hz", "high_freq_hz", "duration_ms"},
		map[string]float64{"level": 1})
	if err != nil {
		return Realized{}, err
	}
	if def.Seed != nil {
		r.Seed = *def.Seed
	} else {
		r.Seed = ctx.RNGStream(noiseSeedStream).Int63()
	}
	return r, nil
}

func (noiseGen) Generate(r Realized, ctx Context) (Buffer, Metadata, error) {
	low, err := r.value("low_freq_hz")
	if err != nil {
		return Buffer{}, Metadata{}, err
	}
	high, err := r.value("high_freq_hz")
	if err != nil {
		return Buffer{}, Metadata{}, err
	}
	durMs, err := r.value("duration_ms")
	if err != nil {
		return Buffer{}, Metadata{}, err
	}
	n := ctx.MsToSamples(durMs)
	if n <= 0 {
		return Buffer{}, Metadata{}, wrapf(ErrBadParam, "duration_ms=%g renders no samples", durMs)
	}
	sections, err := butterBandpass(low, high, ctx.FsHz())
	if err != nil {
		return Buffer{}, Metadata{}, err
	}

	rng := rand.New(rand.NewSource(r.Seed))
	x := make([]float64, n)
	for i := range x {
		x[i] = rng.NormFloat64()
	}
	zeroPhase(sections, x)

	var warnings []string
	if r.Envelope != nil {
		attack := ctx.MsToSamples(r.Envelope.AttackMs)
		release := ctx.MsToSamples(r.Envelope.ReleaseMs)
		warnings = append(warnings, applyEnvelope(x, attack, release, r.Envelope.Shape)...)
	}

	level := r.Values["level"]
	gain, levelWarns, err := levelGain(level, r.Level)
	if err != nil {
		return Buffer{}, Metadata{}, err
	}
	warnings = append(warnings, levelWarns...)
	for i := range x {
		x[i] *= gain
	}

	// RMS renormalization runs after level scaling, so the target is the
	// final delivered power.
	if target, ok := r.Values["rms_target"]; ok {
		if target <= 0 {
			return Buffer{}, Metadata{}, wrapf(ErrBadParam, "rms_target=%g, want > 0", target)
		}
		if current := rms(x); current > 0 {
			scale := target / current
			for i := range x {
				x[i] *= scale
			}
		} else {
			warnings = append(warnings, fmt.Sprintf(
				"rms_target %g requested on an all-zero signal; left unscaled", target))
		}
	}
	return finishMono(x, r, warnings)
}
