package sampler_test

import (
	"fmt"

	"github.com/auralab/stimseq/sampler"
)

// ExampleParseFieldSpec decodes the two shapes a stimulus parameter can
// take: a bare scalar and a scoped distribution.
func ExampleParseFieldSpec() {
	scalar, err := sampler.ParseFieldSpec(0.5)
	if err != nil {
		fmt.Println("error:", err)

		return
	}
	fmt.Println(scalar.Kind == sampler.ScalarSpec, scalar.Value)

	roving, err := sampler.ParseFieldSpec(map[string]interface{}{
		"dist": "loguniform", "min": 500.0, "max": 4000.0, "scope": "per_block",
	})
	if err != nil {
		fmt.Println("error:", err)

		return
	}
	fmt.Println(roving.Kind == sampler.DistributionSpec, roving.Dist.Kind, roving.Scope)
	// Output:
	// true 0.5
	// true loguniform per_block
}
