package stimgen

func init() { register(silenceGen{}) }

// silenceGen renders an all-zero buffer at the channel count implied by
// the routing. Envelope and level are irrelevant on zeros and skipped.
//
// Fields: duration_ms (required).
type silenceGen struct{}

func (silenceGen) Type() Type { return Silence }

func (silenceGen) SampleParameters(def Definition, ctx Context) (Realized, error) {
	return realizeCommon(def, ctx, []string{"duration_ms"}, nil)
}

func (silenceGen) Generate(r Realized, ctx Context) (Buffer, Metadata, error) {
	durMs, err := r.value("duration_ms")
	if err != nil {
		return Buffer{}, Metadata{}, err
	}
	n := ctx.MsToSamples(durMs)
	if n <= 0 {
		return Buffer{}, Metadata{}, wrapf(ErrBadParam, "duration_ms=%g renders no samples", durMs)
	}
	buf := NewBuffer(n, r.Routing.ChannelCount())
	meta := Metadata{Hash: HashAudio(buf.Data)}
	return buf, meta, nil
}
