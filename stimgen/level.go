package stimgen

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnknownLevelMode is returned for an unrecognized level mode token.
var ErrUnknownLevelMode = errors.New("stimgen: unknown level mode")

// LevelMode selects how a definition's level field maps to a gain factor.
type LevelMode int

const (
	// LinearLevel scales the signal by the level value directly.
	LinearLevel LevelMode = iota
	// DBFSLevel interprets the level as decibels relative to full scale.
	DBFSLevel
	// DBSPLLevel is sound-pressure level. Without a calibration reference
	// it degrades to dB_FS semantics and records a warning.
	DBSPLLevel
)

var levelModeNames = [...]string{"linear_0_1", "dB_FS", "dB_SPL"}

// String returns the document token for m, or "unknown" for out-of-range
// values.
func (m LevelMode) String() string {
	if m < LinearLevel || m > DBSPLLevel {
		return "unknown"
	}
	return levelModeNames[m]
}

// ParseLevelMode maps a token to its LevelMode; the empty token means
// LinearLevel. Unrecognized tokens fail with ErrUnknownLevelMode.
func ParseLevelMode(token string) (LevelMode, error) {
	if token == "" {
		return LinearLevel, nil
	}
	for i, name := range levelModeNames {
		if name == token {
			return LevelMode(i), nil
		}
	}
	return 0, wrapf(ErrUnknownLevelMode, "%q", token)
}

// levelGain converts a level value to a linear gain factor under the given
// mode. dB_SPL adds a calibration warning since no reference is wired in.
func levelGain(level float64, mode LevelMode) (float64, []string, error) {
	switch mode {
	case LinearLevel:
		return level, nil, nil
	case DBFSLevel:
		return math.Pow(10, level/20), nil, nil
	case DBSPLLevel:
		warn := fmt.Sprintf(
			"level %g dB_SPL without calibration reference; applied as dB_FS", level)
		return math.Pow(10, level/20), []string{warn}, nil
	default:
		return 0, nil, wrapf(ErrUnknownLevelMode, "%d", int(mode))
	}
}

// clipUnit clamps x to [-1, 1] in place, reporting the pre-clip peak and
// whether anything was clamped.
func clipUnit(x []float64) (peak float64, clipped bool) {
	for i, v := range x {
		if a := math.Abs(v); a > peak {
			peak = a
		}
		if v > 1 {
			x[i] = 1
			clipped = true
		} else if v < -1 {
			x[i] = -1
			clipped = true
		}
	}
	return peak, clipped
}
