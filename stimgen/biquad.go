package stimgen

import (
	"math"
	"math/cmplx"
)

// biquad is one second-order filter section with a normalized a0 of 1,
// evaluated in direct form II transposed.
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
}

// apply filters x in place with fresh internal state.
func (q biquad) apply(x []float64) {
	var z1, z2 float64
	for i, v := range x {
		y := q.b0*v + z1
		z1 = q.b1*v - q.a1*y + z2
		z2 = q.b2*v - q.a2*y
		x[i] = y
	}
}

// butterBandpass designs a 4th-order digital Butterworth bandpass as two
// cascaded biquad sections.
//
// Construction:
//  1. Prewarp the band edges: w = tan(pi*f/fs).
//  2. Map the order-2 Butterworth lowpass prototype pole exp(i*3pi/4)
//     through the lowpass-to-bandpass substitution S -> (s^2+w0^2)/(bw*s),
//     yielding two analog pole pairs around the center w0 = sqrt(w1*w2).
//  3. Bilinear-transform each pole, z = (1+s)/(1-s). The transformed zeros
//     land at z = +1 and z = -1, so every section's numerator is 1 - z^-2.
//  4. Normalize the cascade to unit magnitude at the center frequency,
//     splitting the factor evenly across sections.
//
// Returns ErrBadBand unless 0 < lowHz < highHz < fs/2.
func butterBandpass(lowHz, highHz, fs float64) ([2]biquad, error) {
	var out [2]biquad
	if !(0 < lowHz && lowHz < highHz && highHz < fs/2) {
		return out, wrapf(ErrBadBand, "low=%g high=%g fs=%g", lowHz, highHz, fs)
	}

	w1 := math.Tan(math.Pi * lowHz / fs)
	w2 := math.Tan(math.Pi * highHz / fs)
	bw := w2 - w1
	w0 := math.Sqrt(w1 * w2)

	// Upper-half prototype pole; its conjugate partner is implied by the
	// real section coefficients.
	proto := complex(-math.Sqrt2/2, math.Sqrt2/2)
	pb := proto * complex(bw, 0)
	disc := cmplx.Sqrt(pb*pb - complex(4*w0*w0, 0))
	for i, s := range [2]complex128{(pb + disc) / 2, (pb - disc) / 2} {
		z := (1 + s) / (1 - s)
		out[i] = biquad{b0: 1, b2: -1, a1: -2 * real(z), a2: real(z)*real(z) + imag(z)*imag(z)}
	}

	theta := 2 * math.Atan(w0)
	gain := math.Sqrt(1 / (out[0].magnitudeAt(theta) * out[1].magnitudeAt(theta)))
	for i := range out {
		out[i].b0 *= gain
		out[i].b2 *= gain
	}
	return out, nil
}

// magnitudeAt evaluates |H(e^{j*theta})| for one section.
func (q biquad) magnitudeAt(theta float64) float64 {
	e1 := cmplx.Exp(complex(0, -theta))
	e2 := e1 * e1
	num := complex(q.b0, 0) + complex(q.b1, 0)*e1 + complex(q.b2, 0)*e2
	den := 1 + complex(q.a1, 0)*e1 + complex(q.a2, 0)*e2
	return cmplx.Abs(num / den)
}

// zeroPhase runs the cascade forward, then backward, cancelling the phase
// response. Both passes start from zero state.
func zeroPhase(sections [2]biquad, x []float64) {
	for _, s := range sections {
		s.apply(x)
	}
	reverse(x)
	for _, s := range sections {
		s.apply(x)
	}
	reverse(x)
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
