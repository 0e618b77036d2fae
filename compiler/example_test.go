package compiler_test

import (
	"fmt"

	"github.com/auralab/stimseq/compiler"
	"github.com/auralab/stimseq/pattern"
	"github.com/auralab/stimseq/stimgen"
)

// ExampleCompile compiles an empty element table: the sequence still
// allocates the one-second minimum buffer at the context's rate.
func ExampleCompile() {
	seq, err := compiler.Compile(pattern.ElementTable{}, stimgen.Library{}, newCtx(48000, 1))
	if err != nil {
		fmt.Println("error:", err)

		return
	}
	m := seq.Manifest
	fmt.Printf("%d samples, %d channels, %.0f ms\n", m.DurationSamples, m.NChannels, m.DurationMs)
	// Output:
	// 48000 samples, 2 channels, 1000 ms
}
