package compiler_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auralab/stimseq/compiler"
	"github.com/auralab/stimseq/pattern"
	"github.com/auralab/stimseq/sampler"
	"github.com/auralab/stimseq/stimgen"
)

// compiledFixture builds a small but fully featured sequence: custom TTL
// code, an omission trial, and a clipping warning.
func compiledFixture(t *testing.T) *compiler.SequenceFile {
	t.Helper()
	code := 9
	plan := pattern.TrialPlan{NTrials: 3, ITIMs: 250, Trials: []pattern.Trial{
		{TrialIndex: 0, Label: "standard", Elements: []pattern.Element{
			{StimulusRef: "tone_a", ScheduledOnsetMs: 0, DurationMs: 100},
		}},
		{TrialIndex: 1, Label: "omission"},
		{TrialIndex: 2, Label: "deviant", Elements: []pattern.Element{
			{StimulusRef: "tone_hot", ScheduledOnsetMs: 0, DurationMs: 100, TTLCode: &code},
		}},
	}}
	table := mustBuild(t, plan)

	lib := testLibrary()
	lib["tone_hot"] = stimgen.Definition{
		Type: stimgen.Tone,
		Fields: map[string]sampler.FieldSpec{
			"frequency_hz": sampler.Scalar(2000),
			"duration_ms":  sampler.Scalar(100),
			"level":        sampler.Scalar(1.5),
		},
	}

	seq, err := compiler.Compile(table, lib, newCtx(10000, 5),
		compiler.WithSessionID("fixture-session"))
	require.NoError(t, err)
	require.NotEmpty(t, seq.Warnings, "the hot tone must have clipped")
	return seq
}

func TestContainer_RoundTrip(t *testing.T) {
	seq := compiledFixture(t)

	var buf bytes.Buffer
	require.NoError(t, compiler.Write(&buf, seq))

	got, err := compiler.Read(&buf)
	require.NoError(t, err)

	assert.Equal(t, seq.Audio.Data, got.Audio.Data, "audio samples are bit-exact")
	assert.Equal(t, seq.Audio.Channels, got.Audio.Channels)
	assert.Equal(t, seq.TTL, got.TTL)
	assert.Equal(t, seq.Events, got.Events)
	assert.Equal(t, seq.TrialTable, got.TrialTable)
	assert.Equal(t, seq.ElementTable, got.ElementTable)
	assert.Equal(t, seq.Warnings, got.Warnings)
	assert.Equal(t, seq.Manifest, got.Manifest, "every manifest field survives, timestamp included")
	assert.Equal(t, stimgen.HashAudio(got.Audio.Data), got.Manifest.AudioHash,
		"reloaded audio still matches its recorded hash")
}

func TestContainer_RoundTripEmptySequence(t *testing.T) {
	seq, err := compiler.Compile(pattern.ElementTable{}, testLibrary(), newCtx(10000, 1))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, compiler.Write(&buf, seq))
	got, err := compiler.Read(&buf)
	require.NoError(t, err)

	assert.Equal(t, seq.Audio.Data, got.Audio.Data)
	assert.Equal(t, seq.Events, got.Events)
	assert.Empty(t, got.TrialTable)
	assert.Equal(t, seq.Manifest, got.Manifest)
}

func TestContainer_FileRoundTrip(t *testing.T) {
	seq := compiledFixture(t)
	path := filepath.Join(t.TempDir(), "session.stsq")

	require.NoError(t, compiler.WriteFile(path, seq))
	got, err := compiler.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, seq.Audio.Data, got.Audio.Data)
	assert.Equal(t, seq.TTL, got.TTL)
	assert.Equal(t, seq.Manifest, got.Manifest)
}

func TestContainer_RejectsForeignBytes(t *testing.T) {
	_, err := compiler.Read(bytes.NewReader([]byte("RIFF....WAVEfmt ")))
	assert.ErrorIs(t, err, compiler.ErrBadContainer)

	_, err = compiler.Read(bytes.NewReader(nil))
	assert.ErrorIs(t, err, compiler.ErrBadContainer, "empty stream is rejected at the magic")
}

func TestContainer_RejectsTruncatedPayload(t *testing.T) {
	seq := compiledFixture(t)
	var buf bytes.Buffer
	require.NoError(t, compiler.Write(&buf, seq))

	chopped := buf.Bytes()[:buf.Len()-10]
	_, err := compiler.Read(bytes.NewReader(chopped))
	assert.ErrorIs(t, err, compiler.ErrBadContainer)
}

func TestContainer_RejectsUnknownDataset(t *testing.T) {
	seq, err := compiler.Compile(pattern.ElementTable{}, testLibrary(), newCtx(10000, 1))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, compiler.Write(&buf, seq))

	// Corrupting the declared dataset name must fail shape dispatch.
	raw := bytes.Replace(buf.Bytes(), []byte(`"/ttl"`), []byte(`"/tlt"`), 1)
	_, err = compiler.Read(bytes.NewReader(raw))
	assert.ErrorIs(t, err, compiler.ErrBadContainer)
}
