package stimgen

import (
	"errors"
	"math/rand"

	"github.com/auralab/stimseq/sampler"
)

var (
	// ErrUnknownType is returned when no generator is registered for a
	// stimulus type token.
	ErrUnknownType = errors.New("stimgen: unsupported stimulus type")

	// ErrUnknownStimulus is returned by Library.Lookup for a reference the
	// library does not contain.
	ErrUnknownStimulus = errors.New("stimgen: stimulus_ref not in library")

	// ErrMissingField is returned when a definition lacks a numeric field
	// its generator requires.
	ErrMissingField = errors.New("stimgen: required parameter missing")

	// ErrBadParam is returned for realized parameters outside their valid
	// range (non-positive duration, negative ramp, click count < 1, ...).
	ErrBadParam = errors.New("stimgen: parameter out of range")

	// ErrBadBand is returned when bandpass edges do not satisfy
	// 0 < low < high < nyquist.
	ErrBadBand = errors.New("stimgen: bandpass edges must satisfy 0 < low < high < nyquist")

	// ErrBadRouting is returned for routing lists with negative channel
	// indices.
	ErrBadRouting = errors.New("stimgen: routing channels must be non-negative")
)

// Type identifies a stimulus generator. The set is closed: every Type has
// exactly one registered generator.
type Type int

const (
	// Tone is a sinusoid with optional phase offset.
	Tone Type = iota
	// BandpassNoise is Gaussian noise shaped by a Butterworth bandpass.
	BandpassNoise
	// ClickTrain is a series of rectangular pulses at a fixed rate.
	ClickTrain
	// Silence is an all-zero buffer.
	Silence
)

var typeNames = [...]string{"tone", "bandpass_noise", "click_train", "silence"}

// String returns the document token for t, or "unknown" for out-of-range
// values.
func (t Type) String() string {
	if t < Tone || t > Silence {
		return "unknown"
	}
	return typeNames[t]
}

// ParseType maps a document token to its Type. Unrecognized tokens fail
// with ErrUnknownType.
func ParseType(token string) (Type, error) {
	for i, name := range typeNames {
		if name == token {
			return Type(i), nil
		}
	}
	return 0, wrapf(ErrUnknownType, "%q", token)
}

// Context is the environment a generator renders in. The surrounding
// session provides it; generators themselves hold no state.
type Context interface {
	// FsHz reports the output sample rate.
	FsHz() float64
	// SampleField resolves one numeric field spec under the given
	// parameter name.
	SampleField(spec sampler.FieldSpec, name string) (float64, error)
	// RNGStream returns the named deterministic stream.
	RNGStream(name string) *rand.Rand
	// MsToSamples converts milliseconds to a whole sample count,
	// round(ms*fs/1000).
	MsToSamples(ms float64) int
	// SamplesToMs converts a sample count back to milliseconds.
	SamplesToMs(n int) float64
}

// Realized is a fully resolved parameter set: every numeric field is a
// concrete value and all randomness has been captured. Generate consumes
// it without touching the session's streams again.
type Realized struct {
	Type     Type
	Values   map[string]float64
	Level    LevelMode
	Routing  Routing
	Envelope *RealizedEnvelope
	// Seed drives generator-local randomness (noise synthesis). It is
	// fixed at resolution time so Generate stays order-independent.
	Seed int64
}

// value fetches a resolved field, failing with ErrMissingField when a
// hand-built Realized omits it.
func (r Realized) value(name string) (float64, error) {
	v, ok := r.Values[name]
	if !ok {
		return 0, wrapf(ErrMissingField, "%s", name)
	}
	return v, nil
}

// RealizedEnvelope is an envelope with concrete ramp durations.
type RealizedEnvelope struct {
	AttackMs  float64
	ReleaseMs float64
	Shape     RampShape
}

// Buffer holds multi-channel audio in interleaved frame order:
// Data[frame*Channels + ch].
type Buffer struct {
	Data     []float32
	Channels int
}

// NewBuffer allocates a zeroed buffer of frames x channels samples.
func NewBuffer(frames, channels int) Buffer {
	return Buffer{Data: make([]float32, frames*channels), Channels: channels}
}

// Frames reports the per-channel sample count.
func (b Buffer) Frames() int {
	if b.Channels == 0 {
		return 0
	}
	return len(b.Data) / b.Channels
}

// Metadata describes one rendered stimulus: signal statistics, a
// provenance hash of the routed buffer, and any synthesis warnings.
type Metadata struct {
	Peak     float64  `json:"peak"`
	RMS      float64  `json:"rms"`
	Hash     string   `json:"hash"`
	Clipped  bool     `json:"clipped,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Generator is one stimulus variant. Implementations are stateless; both
// methods may be called any number of times in any order.
type Generator interface {
	// Type reports which stimulus type this generator renders.
	Type() Type
	// SampleParameters resolves a definition's fields into a Realized set,
	// drawing through ctx. This is the only step that touches RNG streams.
	SampleParameters(def Definition, ctx Context) (Realized, error)
	// Generate renders audio from a Realized set. Identical input and
	// sample rate yield identical samples.
	Generate(r Realized, ctx Context) (Buffer, Metadata, error)
}

// registry maps each Type to its generator. Entries are added by the
// generator files' init functions.
var registry = map[Type]Generator{}

func register(g Generator) { registry[g.Type()] = g }

// For returns the generator registered for t, or ErrUnknownType.
func For(t Type) (Generator, error) {
	g, ok := registry[t]
	if !ok {
		return nil, wrapf(ErrUnknownType, "%s", t)
	}
	return g, nil
}

// Render resolves and generates a definition in one call: dispatch by
// type, SampleParameters, then Generate.
func Render(def Definition, ctx Context) (Buffer, Metadata, error) {
	g, err := For(def.Type)
	if err != nil {
		return Buffer{}, Metadata{}, err
	}
	r, err := g.SampleParameters(def, ctx)
	if err != nil {
		return Buffer{}, Metadata{}, err
	}
	return g.Generate(r, ctx)
}
