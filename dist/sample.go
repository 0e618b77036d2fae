package dist

import (
	"math"
	"math/rand"
)

// Sample validates p and draws n values from the caller-supplied stream.
// It is pure with respect to everything except the stream: identical stream
// state and parameters produce identical draws.
//
// Returns ErrNilStream / ErrBadCount for call-shape violations, or the
// parameter sentinel matching the first violated contract (see Validate).
func Sample(p Params, stream *rand.Rand, n int) ([]float64, error) {
	if stream == nil {
		return nil, ErrNilStream
	}
	if n < 1 {
		return nil, ErrBadCount
	}
	if err := Validate(p); err != nil {
		return nil, err
	}

	out := make([]float64, n)
	switch p.Kind {
	case Uniform:
		for i := range out {
			out[i] = p.Min + stream.Float64()*(p.Max-p.Min)
		}
	case Normal:
		for i := range out {
			v := p.Mean + p.Std*stream.NormFloat64()
			out[i] = clip(v, p.ClipMin, p.ClipMax)
		}
	case LogUniform:
		logMin, logMax := math.Log(p.Min), math.Log(p.Max)
		for i := range out {
			out[i] = math.Exp(logMin + stream.Float64()*(logMax-logMin))
		}
	case Categorical:
		probs := normalized(p.Probabilities)
		for i := range out {
			out[i] = p.Categories[pickIndex(probs, stream.Float64())]
		}
	}

	return out, nil
}

// Validate checks p against its kind's parameter contract and returns the
// sentinel of the first violation, wrapped with the offending values.
func Validate(p Params) error {
	switch p.Kind {
	case Uniform:
		if !(p.Min < p.Max) {
			return wrapf(ErrBadSupport, "min=%g max=%g", p.Min, p.Max)
		}
	case Normal:
		if p.Std < 0 {
			return wrapf(ErrNegativeStd, "std=%g", p.Std)
		}
	case LogUniform:
		if p.Min <= 0 || !(p.Min < p.Max) {
			return wrapf(ErrBadLogSupport, "min=%g max=%g", p.Min, p.Max)
		}
	case Categorical:
		if len(p.Categories) == 0 {
			return ErrEmptyCategories
		}
		if len(p.Categories) != len(p.Probabilities) {
			return wrapf(ErrLengthMismatch, "%d categories vs %d probabilities",
				len(p.Categories), len(p.Probabilities))
		}
		sum := 0.0
		for _, pr := range p.Probabilities {
			if pr < 0 || math.IsNaN(pr) || math.IsInf(pr, 0) {
				return wrapf(ErrBadProbabilities, "entry %g", pr)
			}
			sum += pr
		}
		if math.Abs(sum-1) > probSumTolerance {
			return wrapf(ErrBadProbabilities, "sum=%g", sum)
		}
	default:
		return ErrUnknownKind
	}

	return nil
}

// pickIndex performs inverse-CDF selection: the first index whose cumulative
// probability reaches u. Floating-point drift in the cumulative sum is guarded
// by falling through to the last index.
func pickIndex(probs []float64, u float64) int {
	cum := 0.0
	for i, p := range probs {
		cum += p
		if u <= cum {
			return i
		}
	}

	return len(probs) - 1
}

// normalized rescales probs to sum exactly 1. Validate has already bounded the
// drift, so the division is safe.
func normalized(probs []float64) []float64 {
	sum := 0.0
	for _, p := range probs {
		sum += p
	}
	out := make([]float64, len(probs))
	for i, p := range probs {
		out[i] = p / sum
	}

	return out
}

// clip bounds v to the optional closed interval [lo, hi].
func clip(v float64, lo, hi *float64) float64 {
	if lo != nil && v < *lo {
		return *lo
	}
	if hi != nil && v > *hi {
		return *hi
	}

	return v
}
