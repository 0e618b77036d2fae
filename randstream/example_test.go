package randstream_test

import (
	"fmt"

	"github.com/auralab/stimseq/randstream"
)

// ExampleManager_ResetStream replays a stream's draw sequence from its
// originally derived seed.
func ExampleManager_ResetStream() {
	mgr := randstream.New(42)
	first := mgr.Stream("noise_seed").Int63()
	second := mgr.Stream("noise_seed").Int63()

	if err := mgr.ResetStream("noise_seed"); err != nil {
		fmt.Println("error:", err)

		return
	}
	fmt.Println(first == mgr.Stream("noise_seed").Int63())
	fmt.Println(second == mgr.Stream("noise_seed").Int63())
	// Output:
	// true
	// true
}
