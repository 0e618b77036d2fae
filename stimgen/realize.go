package stimgen

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
)

// noiseSeedStream feeds generator-local seeds for definitions that do not
// pin one explicitly.
const noiseSeedStream = "noise_seed"

// realizeCommon resolves a definition into a Realized set: every authored
// field is sampled through the context, required fields are checked,
// absent optional fields take their defaults, and the envelope's ramp
// durations are resolved under their dotted names.
func realizeCommon(def Definition, ctx Context, required []string, defaults map[string]float64) (Realized, error) {
	if err := def.Routing.Validate(); err != nil {
		return Realized{}, err
	}
	vals := make(map[string]float64, len(def.Fields)+len(defaults))
	for name, spec := range def.Fields {
		v, err := ctx.SampleField(spec, name)
		if err != nil {
			return Realized{}, fmt.Errorf("%s: %w", name, err)
		}
		vals[name] = v
	}
	for _, name := range required {
		if _, ok := vals[name]; !ok {
			return Realized{}, wrapf(ErrMissingField, "%s (%s)", name, def.Type)
		}
	}
	for name, v := range defaults {
		if _, ok := vals[name]; !ok {
			vals[name] = v
		}
	}
	env, err := realizeEnvelope(def.Envelope, ctx)
	if err != nil {
		return Realized{}, err
	}
	return Realized{
		Type:     def.Type,
		Values:   vals,
		Level:    def.LevelMode,
		Routing:  def.Routing,
		Envelope: env,
	}, nil
}

// realizeEnvelope samples the ramp durations. The dotted names keep the
// envelope's streams and cache entries apart from top-level fields.
func realizeEnvelope(env *EnvelopeSpec, ctx Context) (*RealizedEnvelope, error) {
	if env == nil {
		return nil, nil
	}
	attack, err := ctx.SampleField(env.AttackMs, "envelope.attack_ms")
	if err != nil {
		return nil, fmt.Errorf("envelope.attack_ms: %w", err)
	}
	release, err := ctx.SampleField(env.ReleaseMs, "envelope.release_ms")
	if err != nil {
		return nil, fmt.Errorf("envelope.release_ms: %w", err)
	}
	if attack < 0 || release < 0 {
		return nil, wrapf(ErrBadParam, "envelope ramps must be >= 0, got attack=%g release=%g", attack, release)
	}
	return &RealizedEnvelope{AttackMs: attack, ReleaseMs: release, Shape: env.Shape}, nil
}

// shapeMono applies the shared tail of every generator: envelope, level,
// clipping, routing. It returns the routed buffer and the metadata built
// from the mono signal.
func shapeMono(x []float64, r Realized, ctx Context, warnings []string) (Buffer, Metadata, error) {
	if r.Envelope != nil {
		attack := ctx.MsToSamples(r.Envelope.AttackMs)
		release := ctx.MsToSamples(r.Envelope.ReleaseMs)
		warnings = append(warnings, applyEnvelope(x, attack, release, r.Envelope.Shape)...)
	}
	level, ok := r.Values["level"]
	if !ok {
		level = 1
	}
	gain, levelWarns, err := levelGain(level, r.Level)
	if err != nil {
		return Buffer{}, Metadata{}, err
	}
	warnings = append(warnings, levelWarns...)
	for i := range x {
		x[i] *= gain
	}
	return finishMono(x, r, warnings)
}

// finishMono clips, routes, and assembles metadata. Generators that manage
// their own gain staging (noise with an RMS target) call it directly.
func finishMono(x []float64, r Realized, warnings []string) (Buffer, Metadata, error) {
	peak, clipped := clipUnit(x)
	if clipped {
		warnings = append(warnings, fmt.Sprintf(
			"peak %.4f exceeded full scale; output clipped", peak))
	}
	buf := route(x, r.Routing)
	meta := Metadata{
		Peak:     peak,
		RMS:      rms(x),
		Hash:     HashAudio(buf.Data),
		Clipped:  clipped,
		Warnings: warnings,
	}
	return buf, meta, nil
}

// rms computes the root-mean-square of x, 0 for an empty signal.
func rms(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

// HashAudio returns the hex SHA-256 over the samples' little-endian
// float32 bytes. The compiler uses the same convention for the manifest's
// audio hash, so per-stimulus and whole-sequence hashes are comparable
// artifacts.
func HashAudio(data []float32) string {
	h := sha256.New()
	var word [4]byte
	for _, v := range data {
		binary.LittleEndian.PutUint32(word[:], math.Float32bits(v))
		h.Write(word[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// asFloat widens the numeric types produced by the JSON and YAML decoders.
func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// wrapf attaches detail to a sentinel while keeping errors.Is working.
func wrapf(sentinel error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{sentinel}, args...)...)
}
