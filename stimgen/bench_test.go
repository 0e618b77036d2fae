package stimgen_test

import (
	"testing"

	"github.com/auralab/stimseq/sampler"
	"github.com/auralab/stimseq/stimgen"
)

// BenchmarkRender_Tone measures the plain sine path: 100 ms at 48 kHz with
// cosine ramps, fixed parameters so no RNG stream is touched.
func BenchmarkRender_Tone(b *testing.B) {
	def := stimgen.Definition{
		Type: stimgen.Tone,
		Fields: map[string]sampler.FieldSpec{
			"frequency_hz": sampler.Scalar(1000),
			"duration_ms":  sampler.Scalar(100),
			"level":        sampler.Scalar(0.5),
		},
		Envelope: &stimgen.EnvelopeSpec{
			AttackMs:  sampler.Scalar(5),
			ReleaseMs: sampler.Scalar(5),
			Shape:     stimgen.Cosine,
		},
	}
	ctx := newCtx(48000, 1)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := stimgen.Render(def, ctx); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkRender_BandpassNoise measures the expensive path: Gaussian fill
// plus the zero-phase Butterworth cascade over 300 ms at 48 kHz.
func BenchmarkRender_BandpassNoise(b *testing.B) {
	def := stimgen.Definition{
		Type: stimgen.BandpassNoise,
		Fields: map[string]sampler.FieldSpec{
			"low_freq_hz":  sampler.Scalar(1000),
			"high_freq_hz": sampler.Scalar(3000),
			"duration_ms":  sampler.Scalar(300),
			"rms_target":   sampler.Scalar(0.1),
		},
	}
	ctx := newCtx(48000, 1)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := stimgen.Render(def, ctx); err != nil {
			b.Fatal(err)
		}
	}
}
