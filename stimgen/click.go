package stimgen

import "math"

func init() { register(clickGen{}) }

// clickGen renders a train of rectangular pulses. Click onsets sit at
// multiples of the inter-onset interval 1000/click_rate_hz ms; the
// envelope, when present, shapes the whole train rather than each click.
//
// Fields: n_clicks, click_rate_hz, click_duration_ms (required), level
// (default 1).
type clickGen struct{}

func (clickGen) Type() Type { return ClickTrain }

func (clickGen) SampleParameters(def Definition, ctx Context) (Realized, error) {
	return realizeCommon(def, ctx,
		[]string{"n_clicks", "click_rate_hz", "click_duration_ms"},
		map[string]float64{"level": 1})
}

func (clickGen) Generate(r Realized, ctx Context) (Buffer, Metadata, error) {
	nClicksF, err := r.value("n_clicks")
	if err != nil {
		return Buffer{}, Metadata{}, err
	}
	rate, err := r.value("click_rate_hz")
	if err != nil {
		return Buffer{}, Metadata{}, err
	}
	clickMs, err := r.value("click_duration_ms")
	if err != nil {
		return Buffer{}, Metadata{}, err
	}
	nClicks := int(math.Round(nClicksF))
	switch {
	case nClicks < 1:
		return Buffer{}, Metadata{}, wrapf(ErrBadParam, "n_clicks=%g, want >= 1", nClicksF)
	case rate <= 0:
		return Buffer{}, Metadata{}, wrapf(ErrBadParam, "click_rate_hz=%g, want > 0", rate)
	case clickMs <= 0:
		return Buffer{}, Metadata{}, wrapf(ErrBadParam, "click_duration_ms=%g, want > 0", clickMs)
	}

	periodMs := 1000 / rate
	totalMs := float64(nClicks-1)*periodMs + clickMs
	n := ctx.MsToSamples(totalMs)
	if n <= 0 {
		return Buffer{}, Metadata{}, wrapf(ErrBadParam, "train of %g ms renders no samples", totalMs)
	}
	clickSamples := ctx.MsToSamples(clickMs)
	if clickSamples < 1 {
		clickSamples = 1
	}

	x := make([]float64, n)
	for k := 0; k < nClicks; k++ {
		onset := ctx.MsToSamples(float64(k) * periodMs)
		for i := onset; i < onset+clickSamples && i < n; i++ {
			x[i] = 1
		}
	}
	return shapeMono(x, r, ctx, nil)
}
