package dist

import "math"

// ComputeMoments returns the analytic mean and variance of p without drawing
// any samples. It is used for validation previews, never for generation.
//
// Per kind:
//   - Uniform:     mean (min+max)/2, variance (max-min)²/12.
//   - Normal:      mean, std² (clipping bounds are ignored; the preview
//     describes the unclipped distribution).
//   - LogUniform:  geometric mean exp((ln min + ln max)/2); the variance is
//     the log-space variance (ln max - ln min)²/12, a scale-free spread
//     approximation.
//   - Categorical: probability-weighted mean and variance over the value set
//     (probabilities renormalized to sum 1).
func ComputeMoments(p Params) (Moments, error) {
	if err := Validate(p); err != nil {
		return Moments{}, err
	}

	switch p.Kind {
	case Uniform:
		span := p.Max - p.Min

		return Moments{Mean: (p.Min + p.Max) / 2, Variance: span * span / 12}, nil
	case Normal:
		return Moments{Mean: p.Mean, Variance: p.Std * p.Std}, nil
	case LogUniform:
		logMin, logMax := math.Log(p.Min), math.Log(p.Max)
		logSpan := logMax - logMin

		return Moments{
			Mean:     math.Exp((logMin + logMax) / 2),
			Variance: logSpan * logSpan / 12,
		}, nil
	case Categorical:
		probs := normalized(p.Probabilities)
		mean := 0.0
		for i, v := range p.Categories {
			mean += probs[i] * v
		}
		variance := 0.0
		for i, v := range p.Categories {
			d := v - mean
			variance += probs[i] * d * d
		}

		return Moments{Mean: mean, Variance: variance}, nil
	}

	return Moments{}, ErrUnknownKind
}
