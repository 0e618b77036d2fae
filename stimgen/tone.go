package stimgen

import "math"

func init() { register(toneGen{}) }

// toneGen renders a pure sinusoid.
//
// Fields: frequency_hz (required), duration_ms (required), phase_deg
// (default 0), level (default 1).
type toneGen struct{}

func (toneGen) Type() Type { return Tone }

func (toneGen) SampleParameters(def Definition, ctx Context) (Realized, error) {
	return realizeCommon(def, ctx,
		[]string{"frequency_hz", "duration_ms"},
		map[string]float64{"phase_deg": 0, "level": 1})
}

func (toneGen) Generate(r Realized, ctx Context) (Buffer, Metadata, error) {
	freq, err := r.value("frequency_hz")
	if err != nil {
		return Buffer{}, Metadata{}, err
	}
	durMs, err := r.value("duration_ms")
	if err != nil {
		return Buffer{}, Metadata{}, err
	}
	phaseDeg, err := r.value("phase_deg")
	if err != nil {
		return Buffer{}, Metadata{}, err
	}
	if freq <= 0 {
		return Buffer{}, Metadata{}, wrapf(ErrBadParam, "frequency_hz=%g, want > 0", freq)
	}
	n := ctx.MsToSamples(durMs)
	if n <= 0 {
		return Buffer{}, Metadata{}, wrapf(ErrBadParam, "duration_ms=%g renders no samples", durMs)
	}

	omega := 2 * math.Pi * freq / ctx.FsHz()
	phase := phaseDeg * math.Pi / 180
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(omega*float64(i) + phase)
	}
	return shapeMono(x, r, ctx, nil)
}
