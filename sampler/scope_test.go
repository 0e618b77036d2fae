package sampler_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auralab/stimseq/sampler"
)

// counterSource hands out 1, 2, 3, ... so tests can tell a fresh draw from
// a cache replay.
func counterSource() func() (float64, error) {
	n := 0.0
	return func() (float64, error) {
		n++
		return n, nil
	}
}

func TestParseScope_RoundTrip(t *testing.T) {
	for _, token := range []string{"per_trial", "per_block", "per_session"} {
		s, err := sampler.ParseScope(token)
		require.NoError(t, err, "token %q must parse", token)
		assert.Equal(t, token, s.String(), "String must round-trip the token")
	}

	_, err := sampler.ParseScope("per_minute")
	assert.ErrorIs(t, err, sampler.ErrInvalidScope, "unknown token must fail")
}

func TestScopeCache_PerTrialAlwaysSamples(t *testing.T) {
	c := sampler.NewScopeCache()
	draw := counterSource()

	for want := 1.0; want <= 3; want++ {
		got, err := c.GetOrSample("x", sampler.PerTrial, draw)
		require.NoError(t, err)
		assert.Equal(t, want, got, "per_trial must invoke the closure every call")
	}
}

func TestScopeCache_PerBlockPinsUntilNewBlock(t *testing.T) {
	c := sampler.NewScopeCache()
	require.NoError(t, c.SetContext(sampler.BlockContext, "b1"))
	draw := counterSource()

	first, err := c.GetOrSample("x", sampler.PerBlock, draw)
	require.NoError(t, err)
	assert.Equal(t, 1.0, first)

	again, err := c.GetOrSample("x", sampler.PerBlock, draw)
	require.NoError(t, err)
	assert.Equal(t, first, again, "same block must replay the pinned value")

	// Re-announcing the current block is a no-op.
	require.NoError(t, c.SetContext(sampler.BlockContext, "b1"))
	again, err = c.GetOrSample("x", sampler.PerBlock, draw)
	require.NoError(t, err)
	assert.Equal(t, first, again, "re-entering the same block must keep the pin")

	// A different block drops the pin.
	require.NoError(t, c.SetContext(sampler.BlockContext, "b2"))
	next, err := c.GetOrSample("x", sampler.PerBlock, draw)
	require.NoError(t, err)
	assert.Equal(t, 2.0, next, "new block must force a fresh draw")
}

func TestScopeCache_SessionSwitchClearsEverything(t *testing.T) {
	c := sampler.NewScopeCache()
	require.NoError(t, c.SetContext(sampler.BlockContext, "b1"))
	draw := counterSource()

	_, err := c.GetOrSample("blockVal", sampler.PerBlock, draw)
	require.NoError(t, err)
	_, err = c.GetOrSample("sessionVal", sampler.PerSession, draw)
	require.NoError(t, err)

	require.NoError(t, c.SetContext(sampler.SessionContext, "s2"))
	assert.Empty(t, c.BlockID(), "session switch must forget the block")

	b, err := c.GetOrSample("blockVal", sampler.PerBlock, draw)
	require.NoError(t, err)
	s, err := c.GetOrSample("sessionVal", sampler.PerSession, draw)
	require.NoError(t, err)
	assert.Equal(t, 3.0, b, "block pin must be gone after session switch")
	assert.Equal(t, 4.0, s, "session pin must be gone after session switch")
}

func TestScopeCache_SessionPinSurvivesBlockSwitches(t *testing.T) {
	c := sampler.NewScopeCache()
	draw := counterSource()

	v, err := c.GetOrSample("iti", sampler.PerSession, draw)
	require.NoError(t, err)

	for _, block := range []string{"b1", "b2", "b3"} {
		require.NoError(t, c.SetContext(sampler.BlockContext, block))
		got, err := c.GetOrSample("iti", sampler.PerSession, draw)
		require.NoError(t, err)
		assert.Equal(t, v, got, "block %q must not disturb a per_session pin", block)
	}
}

func TestScopeCache_ClearBlockKeepsSessionAndBlockID(t *testing.T) {
	c := sampler.NewScopeCache()
	require.NoError(t, c.SetContext(sampler.BlockContext, "b1"))
	draw := counterSource()

	_, err := c.GetOrSample("b", sampler.PerBlock, draw)
	require.NoError(t, err)
	s1, err := c.GetOrSample("s", sampler.PerSession, draw)
	require.NoError(t, err)

	c.ClearBlockCache()

	b2, err := c.GetOrSample("b", sampler.PerBlock, draw)
	require.NoError(t, err)
	s2, err := c.GetOrSample("s", sampler.PerSession, draw)
	require.NoError(t, err)
	assert.Equal(t, 3.0, b2, "block pin must be redrawn after ClearBlockCache")
	assert.Equal(t, s1, s2, "session pin must survive ClearBlockCache")
	assert.Equal(t, "b1", c.BlockID(), "block identifier must survive ClearBlockCache")
}

func TestScopeCache_SampleErrorIsNotCached(t *testing.T) {
	c := sampler.NewScopeCache()
	boom := errors.New("boom")
	calls := 0
	flaky := func() (float64, error) {
		calls++
		if calls == 1 {
			return 0, boom
		}
		return 42, nil
	}

	_, err := c.GetOrSample("x", sampler.PerBlock, flaky)
	assert.ErrorIs(t, err, boom, "first call must surface the sampling error")

	got, err := c.GetOrSample("x", sampler.PerBlock, flaky)
	require.NoError(t, err)
	assert.Equal(t, 42.0, got, "a failed draw must not be pinned")
}

func TestScopeCache_UnknownKindAndScope(t *testing.T) {
	c := sampler.NewScopeCache()

	err := c.SetContext(sampler.ContextKind(99), "x")
	assert.ErrorIs(t, err, sampler.ErrInvalidContextKind)

	_, err = c.GetOrSample("x", sampler.Scope(99), counterSource())
	assert.ErrorIs(t, err, sampler.ErrInvalidScope)
}
