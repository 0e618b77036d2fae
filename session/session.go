package session

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	gojson "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/auralab/stimseq/compiler"
	"github.com/auralab/stimseq/pattern"
	"github.com/auralab/stimseq/randstream"
	"github.com/auralab/stimseq/sampler"
	"github.com/auralab/stimseq/stimgen"
)

// ErrBadSampleRate is returned by New for a non-positive sample rate.
var ErrBadSampleRate = errors.New("session: sample rate must be positive")

// options collects the tunables applied by New.
type options struct {
	id       string
	validate bool
}

// Option adjusts a Session at construction time.
type Option func(*options)

// WithID overrides the generated session identifier. Useful when replaying
// a recorded session whose ID must be preserved.
func WithID(id string) Option {
	return func(o *options) { o.id = id }
}

// WithValidation toggles field-spec validation on the underlying sampler;
// it is enabled by default.
func WithValidation(enabled bool) Option {
	return func(o *options) { o.validate = enabled }
}

// Session is the top-level handle for building one experimental session's
// stimulus sequence. It implements stimgen.Context, so a Session can be
// passed directly to stimgen.Render and compiler.Compile.
//
// Session is not safe for concurrent use; drive one session from one
// goroutine, or create independent Sessions.
type Session struct {
	id      string
	fs      float64
	streams *randstream.Manager
	fields  *sampler.Sampler
	scopes  *sampler.ScopeCache
}

// New creates a Session rooted at masterSeed, clocked at fsHz. The session
// identifier defaults to a fresh UUID; it tags provenance records only and
// has no effect on sampling.
func New(masterSeed int64, fsHz float64, opts ...Option) (*Session, error) {
	if fsHz <= 0 {
		return nil, fmt.Errorf("%w: fs_hz=%g", ErrBadSampleRate, fsHz)
	}
	o := options{id: uuid.New().String(), validate: true}
	for _, opt := range opts {
		opt(&o)
	}

	streams := randstream.New(masterSeed)
	scopes := sampler.NewScopeCache()
	return &Session{
		id:      o.id,
		fs:      fsHz,
		streams: streams,
		fields:  sampler.NewSampler(streams, scopes, sampler.WithValidation(o.validate)),
		scopes:  scopes,
	}, nil
}

// ID reports the session identifier.
func (s *Session) ID() string { return s.id }

// FsHz reports the session's sample rate.
func (s *Session) FsHz() float64 { return s.fs }

// MasterSeed reports the seed every stream of this session derives from.
func (s *Session) MasterSeed() int64 { return s.streams.MasterSeed() }

// SampleField resolves one field spec under the session's scope cache.
func (s *Session) SampleField(spec sampler.FieldSpec, name string) (float64, error) {
	return s.fields.Sample(spec, name)
}

// RNGStream returns the named deterministic stream, deriving it on first
// use.
func (s *Session) RNGStream(name string) *rand.Rand {
	return s.streams.Stream(name)
}

// MsToSamples converts milliseconds to a whole sample count at the
// session's rate, rounding to nearest.
func (s *Session) MsToSamples(ms float64) int {
	return int(math.Round(ms * s.fs / 1000))
}

// SamplesToMs converts a sample count back to milliseconds.
func (s *Session) SamplesToMs(n int) float64 {
	return float64(n) / s.fs * 1000
}

// BeginBlock announces a block transition: per-block parameters re-draw on
// next use, per-session parameters stay pinned. Re-announcing the current
// block is a no-op.
func (s *Session) BeginBlock(id string) error {
	return s.scopes.SetContext(sampler.BlockContext, id)
}

// BeginSession announces a session-context switch: every pinned per-block
// and per-session value drops and the block context empties. The Session's
// own identifier is unaffected; create a new Session when the identity
// itself changes.
func (s *Session) BeginSession(id string) error {
	return s.scopes.SetContext(sampler.SessionContext, id)
}

// BlockID reports the current block identifier, or "" before the first
// BeginBlock.
func (s *Session) BlockID() string { return s.scopes.BlockID() }

// Reset rewinds the session to its just-created state: all derived streams,
// cached seeds, and pinned parameter values are dropped while the master
// seed and identifier stay. A compile after Reset reproduces the first
// compile of a fresh session with the same master seed.
func (s *Session) Reset() {
	s.streams.ClearAll()
	s.scopes.ClearAll()
}

// CompilePlan builds plan into an element table and compiles it against
// lib, stamping the result with the session ID. Extra options are applied
// after the ID stamp and may override it.
func (s *Session) CompilePlan(plan pattern.TrialPlan, lib stimgen.Library, opts ...compiler.Option) (*compiler.SequenceFile, error) {
	table, err := pattern.Build(plan)
	if err != nil {
		return nil, err
	}

	return s.CompileTable(table, lib, opts...)
}

// CompileTable compiles an already-built element table against lib with
// the session as render context.
func (s *Session) CompileTable(table pattern.ElementTable, lib stimgen.Library, opts ...compiler.Option) (*compiler.SequenceFile, error) {
	all := make([]compiler.Option, 0, len(opts)+1)
	all = append(all, compiler.WithSessionID(s.id))
	all = append(all, opts...)

	return compiler.Compile(table, lib, s, all...)
}

// Record is the exportable provenance snapshot of a session: its identity,
// clock, and the complete seed state needed to regenerate every stimulus.
type Record struct {
	SessionID string                `json:"session_id"`
	FsHz      float64               `json:"fs_hz"`
	Seeds     randstream.SeedRecord `json:"seeds"`
}

// Record snapshots the session's provenance.
func (s *Session) Record() Record {
	return Record{SessionID: s.id, FsHz: s.fs, Seeds: s.streams.SeedRecord()}
}

// RecordJSON renders the provenance snapshot as an indented JSON document,
// the form written next to compiled sequence files.
func (s *Session) RecordJSON() ([]byte, error) {
	return gojson.MarshalIndent(s.Record(), "", "  ")
}
