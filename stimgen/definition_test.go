package stimgen_test

import (
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auralab/stimseq/dist"
	"github.com/auralab/stimseq/sampler"
	"github.com/auralab/stimseq/stimgen"
)

func TestDefinition_JSONDecode(t *testing.T) {
	doc := []byte(`{
		"type": "tone",
		"frequency_hz": {"dist": "loguniform", "min": 500, "max": 8000, "scope": "per_block"},
		"duration_ms": 300,
		"level": -10,
		"level_mode": "dB_FS",
		"routing": {"channels": [0, 1]},
		"envelope": {"attack_ms": 5, "release_ms": {"dist": "uniform", "min": 5, "max": 15}, "shape": "cosine"},
		"seed": 99
	}`)

	var def stimgen.Definition
	require.NoError(t, gojson.Unmarshal(doc, &def))

	assert.Equal(t, stimgen.Tone, def.Type)
	assert.Equal(t, stimgen.DBFSLevel, def.LevelMode)
	assert.Equal(t, []int{0, 1}, def.Routing.Channels)
	require.NotNil(t, def.Seed)
	assert.Equal(t, int64(99), *def.Seed)

	freq := def.Fields["frequency_hz"]
	assert.Equal(t, sampler.DistributionSpec, freq.Kind)
	assert.Equal(t, dist.LogUniform, freq.Dist.Kind)
	assert.Equal(t, sampler.PerBlock, freq.Scope)
	assert.Equal(t, sampler.Scalar(300), def.Fields["duration_ms"])
	assert.Equal(t, sampler.Scalar(-10), def.Fields["level"])

	require.NotNil(t, def.Envelope)
	assert.Equal(t, sampler.Scalar(5), def.Envelope.AttackMs)
	assert.Equal(t, sampler.DistributionSpec, def.Envelope.ReleaseMs.Kind)
	assert.Equal(t, stimgen.Cosine, def.Envelope.Shape)
}

func TestDefinition_DecodeErrors(t *testing.T) {
	var def stimgen.Definition

	err := gojson.Unmarshal([]byte(`{"frequency_hz": 1000}`), &def)
	assert.ErrorIs(t, err, stimgen.ErrBadDefinition, "type is required")

	err = gojson.Unmarshal([]byte(`{"type": "chirp"}`), &def)
	assert.ErrorIs(t, err, stimgen.ErrUnknownType)

	err = gojson.Unmarshal([]byte(`{"type": "tone", "frequency_hz": "high"}`), &def)
	assert.ErrorIs(t, err, stimgen.ErrBadDefinition)
	assert.Contains(t, err.Error(), "frequency_hz")

	err = gojson.Unmarshal([]byte(`{"type": "tone", "routing": {"channels": [-1]}}`), &def)
	assert.ErrorIs(t, err, stimgen.ErrBadRouting)

	err = gojson.Unmarshal([]byte(`{"type": "tone", "envelope": {"shape": "sawtooth"}}`), &def)
	assert.ErrorIs(t, err, stimgen.ErrUnknownShape)

	err = gojson.Unmarshal([]byte(`{"type": "tone", "level_mode": "volts"}`), &def)
	assert.ErrorIs(t, err, stimgen.ErrUnknownLevelMode)
}

func TestLibrary_JSONLoadAndLookup(t *testing.T) {
	doc := []byte(`{
		"standard_tone": {"type": "tone", "frequency_hz": 1000, "duration_ms": 100},
		"masker": {"type": "bandpass_noise", "low_freq_hz": 500, "high_freq_hz": 4000, "duration_ms": 200},
		"gap": {"type": "silence", "duration_ms": 500}
	}`)

	lib, err := stimgen.LibraryFromJSON(doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"gap", "masker", "standard_tone"}, lib.Refs())

	def, err := lib.Lookup("masker")
	require.NoError(t, err)
	assert.Equal(t, stimgen.BandpassNoise, def.Type)

	_, err = lib.Lookup("probe")
	assert.ErrorIs(t, err, stimgen.ErrUnknownStimulus)
}

func TestLibrary_YAMLLoad(t *testing.T) {
	doc := []byte(`
clicks:
  type: click_train
  n_clicks: 10
  click_rate_hz: 40
  click_duration_ms: 1
  routing:
    channels: [1]
target:
  type: tone
  frequency_hz:
    dist: uniform
    min: 2000
    max: 4000
  duration_ms: 150
`)
	lib, err := stimgen.LibraryFromYAML(doc)
	require.NoError(t, err)

	clicks, err := lib.Lookup("clicks")
	require.NoError(t, err)
	assert.Equal(t, stimgen.ClickTrain, clicks.Type)
	assert.Equal(t, []int{1}, clicks.Routing.Channels)
	assert.Equal(t, sampler.Scalar(10), clicks.Fields["n_clicks"])

	target, err := lib.Lookup("target")
	require.NoError(t, err)
	assert.Equal(t, sampler.DistributionSpec, target.Fields["frequency_hz"].Kind)
}

func TestLibrary_DecodeErrorNamesTheReference(t *testing.T) {
	doc := []byte(`{"broken": {"type": "tone", "frequency_hz": {"dist": "uniform", "min": 9, "max": 1}}}`)
	_, err := stimgen.LibraryFromJSON(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestParseHelpers_RoundTrips(t *testing.T) {
	for _, token := range []string{"linear", "cosine", "exponential"} {
		shape, err := stimgen.ParseRampShape(token)
		require.NoError(t, err)
		assert.Equal(t, token, shape.String())
	}
	shape, err := stimgen.ParseRampShape("")
	require.NoError(t, err)
	assert.Equal(t, stimgen.Linear, shape, "empty shape defaults to linear")

	for _, token := range []string{"linear_0_1", "dB_FS", "dB_SPL"} {
		mode, err := stimgen.ParseLevelMode(token)
		require.NoError(t, err)
		assert.Equal(t, token, mode.String())
	}
	mode, err := stimgen.ParseLevelMode("")
	require.NoError(t, err)
	assert.Equal(t, stimgen.LinearLevel, mode, "empty mode defaults to linear")
}
