package stimgen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auralab/stimseq/sampler"
	"github.com/auralab/stimseq/stimgen"
)

func clickDef(nClicks, rateHz, clickMs float64) stimgen.Definition {
	return stimgen.Definition{
		Type: stimgen.ClickTrain,
		Fields: map[string]sampler.FieldSpec{
			"n_clicks":          sampler.Scalar(nClicks),
			"click_rate_hz":     sampler.Scalar(rateHz),
			"click_duration_ms": sampler.Scalar(clickMs),
		},
	}
}

func TestClickTrain_OnsetsAndWidths(t *testing.T) {
	// 10 Hz rate at 10 kHz: 1000-sample inter-onset interval, 50-sample
	// clicks, total (3-1)*100 ms + 5 ms = 205 ms = 2050 samples.
	ctx := newCtx(10000, 1)
	buf, meta, err := stimgen.Render(clickDef(3, 10, 5), ctx)
	require.NoError(t, err)
	require.Equal(t, 2050, buf.Frames())

	left := channel(buf, 0)
	for _, onset := range []int{0, 1000, 2000} {
		assert.Equal(t, 1.0, left[onset], "click at sample %d", onset)
		assert.Equal(t, 1.0, left[onset+49], "click at %d spans 50 samples", onset)
		if onset+50 < len(left) {
			assert.Zero(t, left[onset+50], "silence resumes after click at %d", onset)
		}
	}
	assert.Zero(t, left[500], "inter-click gap is silent")
	assert.InDelta(t, 1, meta.Peak, 1e-9)
}

func TestClickTrain_EnvelopeShapesWholeTrain(t *testing.T) {
	ctx := newCtx(10000, 1)
	def := clickDef(3, 10, 5)
	def.Envelope = &stimgen.EnvelopeSpec{
		AttackMs:  sampler.Scalar(150),
		ReleaseMs: sampler.Scalar(0),
		Shape:     stimgen.Linear,
	}

	buf, meta, err := stimgen.Render(def, ctx)
	require.NoError(t, err)
	require.Empty(t, meta.Warnings)

	left := channel(buf, 0)
	assert.Zero(t, left[0], "train-wide attack silences the first click's onset")
	assert.Less(t, left[1000], 1.0, "second click sits inside the attack ramp")
	assert.Equal(t, 1.0, left[2000], "third click starts after the ramp at full amplitude")
}

func TestClickTrain_ParameterGuards(t *testing.T) {
	ctx := newCtx(10000, 1)

	_, _, err := stimgen.Render(clickDef(0, 10, 5), ctx)
	assert.ErrorIs(t, err, stimgen.ErrBadParam, "n_clicks below 1")

	_, _, err = stimgen.Render(clickDef(3, 0, 5), ctx)
	assert.ErrorIs(t, err, stimgen.ErrBadParam, "zero click rate")

	_, _, err = stimgen.Render(clickDef(3, 10, 0), ctx)
	assert.ErrorIs(t, err, stimgen.ErrBadParam, "zero click duration")
}
