package stimgen

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnknownShape is returned for an unrecognized envelope shape token.
var ErrUnknownShape = errors.New("stimgen: unknown envelope shape")

// expRampCurvature fixes the time constant of the exponential ramp. The
// ramp is (1-exp(-c*t))/(1-exp(-c)) for t in [0,1], so it starts at 0 and
// ends at exactly 1.
const expRampCurvature = 5.0

// RampShape selects the attack/release ramp curve.
type RampShape int

const (
	// Linear ramps amplitude proportionally to time.
	Linear RampShape = iota
	// Cosine uses a raised-cosine edge (smooth at both ends).
	Cosine
	// Exponential rises steeply then saturates; the release mirrors it.
	Exponential
)

var shapeNames = [...]string{"linear", "cosine", "exponential"}

// String returns the document token for s, or "unknown" for out-of-range
// values.
func (s RampShape) String() string {
	if s < Linear || s > Exponential {
		return "unknown"
	}
	return shapeNames[s]
}

// ParseRampShape maps a token to its RampShape; the empty token means
// Linear. Unrecognized tokens fail with ErrUnknownShape.
func ParseRampShape(token string) (RampShape, error) {
	if token == "" {
		return Linear, nil
	}
	for i, name := range shapeNames {
		if name == token {
			return RampShape(i), nil
		}
	}
	return 0, wrapf(ErrUnknownShape, "%q", token)
}

// applyEnvelope shapes x in place with attack and release ramps of the
// given sample lengths. When the two ramps together exceed the signal the
// envelope is skipped entirely and a warning is returned; the signal is
// left untouched.
func applyEnvelope(x []float64, attack, release int, shape RampShape) []string {
	if attack <= 0 && release <= 0 {
		return nil
	}
	if attack+release > len(x) {
		return []string{fmt.Sprintf(
			"envelope skipped: ramps cover %d samples but signal has %d",
			attack+release, len(x))}
	}
	for i := 0; i < attack; i++ {
		x[i] *= rampGain(i, attack, shape)
	}
	for i := 0; i < release; i++ {
		x[len(x)-1-i] *= rampGain(i, release, shape)
	}
	return nil
}

// rampGain evaluates the ramp at sample i of a k-sample fade-in. Release
// ramps call it with the distance from the signal's end, which mirrors the
// curve. A single-sample ramp is a unit gain.
func rampGain(i, k int, shape RampShape) float64 {
	if k <= 1 {
		return 1
	}
	t := float64(i) / float64(k-1)
	switch shape {
	case Cosine:
		return 0.5 * (1 - math.Cos(math.Pi*t))
	case Exponential:
		return (1 - math.Exp(-expRampCurvature*t)) / (1 - math.Exp(-expRampCurvature))
	default:
		return t
	}
}
