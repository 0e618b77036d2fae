package compiler

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/auralab/stimseq/pattern"
	"github.com/auralab/stimseq/stimgen"
)

const (
	// MinBufferMs is the floor on the allocated timeline; an empty table
	// still yields this much silence.
	MinBufferMs = 1000.0
	// TailPaddingMs extends the buffer past the last element's end.
	TailPaddingMs = 100.0
	// TTLPulseSamples is the width of each marker pulse on the TTL track.
	TTLPulseSamples = 10
	// ManifestVersion stamps the provenance record's schema.
	ManifestVersion = "1.0"

	// defaultChannels applies when the table is empty and no routing can
	// be consulted.
	defaultChannels = 2
)

var (
	// ErrBadSampleRate is returned when the context reports a non-positive
	// sample rate.
	ErrBadSampleRate = errors.New("compiler: sample rate must be positive")

	// ErrTruncated is returned under TruncateStrict when an element's
	// audio reaches past the allocated buffer.
	ErrTruncated = errors.New("compiler: element exceeds buffer")
)

// TruncationPolicy decides what happens when an element's audio reaches
// past the buffer's end.
type TruncationPolicy int

const (
	// TruncateLenient trims the write to fit and records a warning.
	TruncateLenient TruncationPolicy = iota
	// TruncateStrict aborts the compile with ErrTruncated.
	TruncateStrict
)

// options collects the tunables applied by Compile.
type options struct {
	truncation TruncationPolicy
	sessionID  string
	verbose    bool
}

// Option adjusts a single Compile call.
type Option func(*options)

// WithTruncationPolicy selects the overflow behavior; the default is
// TruncateLenient.
func WithTruncationPolicy(p TruncationPolicy) Option {
	return func(o *options) { o.truncation = p }
}

// WithSessionID stamps the manifest with the owning session's identifier.
func WithSessionID(id string) Option {
	return func(o *options) { o.sessionID = id }
}

// WithVerbose prints one placement line per row via fmt.Printf.
func WithVerbose(enabled bool) Option {
	return func(o *options) { o.verbose = enabled }
}

// Event marks one element onset on the compiled timeline. Field widths
// match the container's event datasets.
type Event struct {
	SampleIndex  int64   `json:"sample_index"`
	TimeMs       float64 `json:"time_ms"`
	TrialIndex   int64   `json:"trial_index"`
	ElementIndex int64   `json:"element_index"`
	Code         uint8   `json:"code"`
}

// TrialRow summarizes one trial of the compiled sequence: the label of its
// first element and how many elements it contributed. Omission trials
// place no elements and so do not appear.
type TrialRow struct {
	TrialIndex int    `json:"trial_index"`
	Label      string `json:"label"`
	NElements  int    `json:"n_elements"`
}

// Manifest is the provenance record of a compiled sequence. CompiledAt is
// informational and excluded from equality comparisons.
type Manifest struct {
	Version         string  `json:"version"`
	FsHz            float64 `json:"fs_hz"`
	NChannels       int     `json:"n_channels"`
	NTrials         int     `json:"n_trials"`
	NElements       int     `json:"n_elements"`
	DurationSamples int     `json:"duration_samples"`
	DurationMs      float64 `json:"duration_ms"`
	CompiledAt      string  `json:"compiled_at"`
	AudioHash       string  `json:"audio_hash"`
	SessionID       string  `json:"session_id,omitempty"`
}

// SequenceFile is the compiled artifact: interleaved audio, the TTL
// marker track, event and trial tables, the element table it was built
// from, and the manifest. It is produced once and never mutated;
// recompiling yields a fresh instance.
type SequenceFile struct {
	Audio        stimgen.Buffer
	TTL          []uint8
	Events       []Event
	TrialTable   []TrialRow
	ElementTable []pattern.Row
	Manifest     Manifest
	// Warnings aggregates every non-fatal finding: clipping, skipped
	// ramps, missing calibration, truncated writes.
	Warnings []string
}

// Compile renders an element table into a SequenceFile.
//
// Steps:
//  1. Size the buffer: the last element end plus TailPaddingMs, floored to
//     MinBufferMs (an empty table allocates exactly MinBufferMs), rounded
//     up to whole samples.
//  2. Take the channel count from the first row's stimulus routing, or
//     defaultChannels for an empty table.
//  3. For each row in order: look up the stimulus (ErrUnknownStimulus is
//     fatal), render it (ErrUnknownType is fatal), mix the audio
//     additively at round(onset_ms*fs/1000), pulse the TTL code for
//     TTLPulseSamples, and append an event. Overflow past the buffer
//     follows the truncation policy.
//  4. Group rows into the trial table, hash the audio, and assemble the
//     manifest.
//
// The sample rate comes from ctx.FsHz; it must be positive.
func Compile(table pattern.ElementTable, lib stimgen.Library, ctx stimgen.Context, opts ...Option) (*SequenceFile, error) {
	o := options{truncation: TruncateLenient}
	for _, opt := range opts {
		opt(&o)
	}
	fs := ctx.FsHz()
	if fs <= 0 {
		return nil, wrapf(ErrBadSampleRate, "fs_hz=%g", fs)
	}

	durationMs := MinBufferMs
	if len(table.Rows) > 0 {
		maxEnd := 0.0
		for _, row := range table.Rows {
			if end := row.EndMs(); end > maxEnd {
				maxEnd = end
			}
		}
		if padded := maxEnd + TailPaddingMs; padded > durationMs {
			durationMs = padded
		}
	}
	samples := int(math.Ceil(durationMs * fs / 1000))

	channels := defaultChannels
	if len(table.Rows) > 0 {
		first, err := lib.Lookup(table.Rows[0].StimulusRef)
		if err != nil {
			return nil, fmt.Errorf("row 0: %w", err)
		}
		channels = first.Routing.ChannelCount()
	}

	audio := make([]float32, samples*channels)
	ttl := make([]uint8, samples)
	events := make([]Event, 0, len(table.Rows))
	var warnings []string
	if o.verbose {
		fmt.Printf("compile: %d samples at %g Hz, %d channels, %d rows\n",
			samples, fs, channels, len(table.Rows))
	}

	for i, row := range table.Rows {
		def, err := lib.Lookup(row.StimulusRef)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		buf, meta, err := stimgen.Render(def, ctx)
		if err != nil {
			return nil, fmt.Errorf("row %d (%s): %w", i, row.StimulusRef, err)
		}
		for _, w := range meta.Warnings {
			warnings = append(warnings, fmt.Sprintf("row %d (%s): %s", i, row.StimulusRef, w))
		}

		onset := ctx.MsToSamples(row.AbsoluteOnsetMs)
		frames := buf.Frames()
		if onset+frames > samples {
			if o.truncation == TruncateStrict {
				return nil, wrapf(ErrTruncated,
					"row %d (%s): %d frames at sample %d exceed buffer of %d",
					i, row.StimulusRef, frames, onset, samples)
			}
			kept := samples - onset
			if kept < 0 {
				kept = 0
			}
			warnings = append(warnings, fmt.Sprintf(
				"row %d (%s): truncated %d of %d frames at buffer end",
				i, row.StimulusRef, frames-kept, frames))
			frames = kept
		}

		mixCh := buf.Channels
		if mixCh > channels {
			warnings = append(warnings, fmt.Sprintf(
				"row %d (%s): stimulus routes %d channels, sequence has %d; extra channels dropped",
				i, row.StimulusRef, buf.Channels, channels))
			mixCh = channels
		}
		for f := 0; f < frames; f++ {
			for ch := 0; ch < mixCh; ch++ {
				audio[(onset+f)*channels+ch] += buf.Data[f*buf.Channels+ch]
			}
		}

		code := uint8(i + 1)
		if row.TTLCode != nil {
			code = uint8(*row.TTLCode)
		}
		for p := onset; p < onset+TTLPulseSamples && p < samples; p++ {
			ttl[p] = code
		}
		if o.verbose {
			fmt.Printf("compile: row %d (%s) trial %d at sample %d, %d frames, code %d\n",
				i, row.StimulusRef, row.TrialIndex, onset, frames, code)
		}
		events = append(events, Event{
			SampleIndex:  int64(onset),
			TimeMs:       row.AbsoluteOnsetMs,
			TrialIndex:   int64(row.TrialIndex),
			ElementIndex: int64(row.ElementIndex),
			Code:         code,
		})
	}

	trialTable := groupTrials(table.Rows)
	seq := &SequenceFile{
		Audio:        stimgen.Buffer{Data: audio, Channels: channels},
		TTL:          ttl,
		Events:       events,
		TrialTable:   trialTable,
		ElementTable: append([]pattern.Row(nil), table.Rows...),
		Manifest: Manifest{
			Version:         ManifestVersion,
			FsHz:            fs,
			NChannels:       channels,
			NTrials:         len(trialTable),
			NElements:       len(table.Rows),
			DurationSamples: samples,
			DurationMs:      float64(samples) / fs * 1000,
			CompiledAt:      time.Now().UTC().Format(time.RFC3339Nano),
			AudioHash:       stimgen.HashAudio(audio),
			SessionID:       o.sessionID,
		},
		Warnings: warnings,
	}
	return seq, nil
}

// groupTrials folds rows into per-trial summaries, keeping first-appearance
// order and labeling each trial by its first element.
func groupTrials(rows []pattern.Row) []TrialRow {
	var out []TrialRow
	at := make(map[int]int)
	for _, row := range rows {
		if idx, seen := at[row.TrialIndex]; seen {
			out[idx].NElements++
			continue
		}
		at[row.TrialIndex] = len(out)
		out = append(out, TrialRow{TrialIndex: row.TrialIndex, Label: row.Label, NElements: 1})
	}
	return out
}

// wrapf attaches detail to a sentinel while keeping errors.Is working.
func wrapf(sentinel error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{sentinel}, args...)...)
}
