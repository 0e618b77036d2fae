package dist

import (
	"errors"
	"fmt"
)

// Sentinel errors for distribution parameter contracts.
var (
	// ErrUnknownKind indicates an unrecognized distribution kind token.
	ErrUnknownKind = errors.New("dist: unknown distribution kind")
	// ErrBadSupport indicates min ≥ max for a uniform distribution.
	ErrBadSupport = errors.New("dist: min must be strictly below max")
	// ErrNegativeStd indicates a negative standard deviation.
	ErrNegativeStd = errors.New("dist: std must be non-negative")
	// ErrBadLogSupport indicates non-positive or inverted log-uniform bounds.
	ErrBadLogSupport = errors.New("dist: loguniform requires 0 < min < max")
	// ErrLengthMismatch indicates categories and probabilities differ in length.
	ErrLengthMismatch = errors.New("dist: categories and probabilities must have equal length")
	// ErrEmptyCategories indicates a categorical with no categories.
	ErrEmptyCategories = errors.New("dist: at least one category is required")
	// ErrBadProbabilities indicates negative entries or a probability mass that
	// does not sum to 1 within tolerance.
	ErrBadProbabilities = errors.New("dist: probabilities must be non-negative and sum to 1")
	// ErrBadCount indicates a non-positive number of requested draws.
	ErrBadCount = errors.New("dist: draw count must be positive")
	// ErrNilStream indicates a nil random stream was supplied.
	ErrNilStream = errors.New("dist: random stream is required")
)

// probSumTolerance bounds the acceptable drift of a probability-vector sum
// from exactly 1 before validation rejects it. Sampling always renormalizes.
const probSumTolerance = 1e-6

// Kind identifies a supported distribution family. The set is closed: parsing
// an unknown token fails with ErrUnknownKind rather than degrading silently.
type Kind int

const (
	// Uniform draws min + u*(max-min) with u ~ U(0,1).
	Uniform Kind = iota
	// Normal draws mean + std*z with z ~ N(0,1), optionally clipped post-hoc.
	Normal
	// LogUniform draws uniformly in log(min)..log(max), then exponentiates.
	LogUniform
	// Categorical draws one of a finite value set by inverse-CDF lookup.
	Categorical
)

// kindNames maps Kind to its wire token; order must match the const block.
var kindNames = [...]string{"uniform", "normal", "loguniform", "categorical"}

// String returns the wire token for k ("uniform", "normal", ...).
func (k Kind) String() string {
	if k < Uniform || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}

	return kindNames[k]
}

// ParseKind maps a wire token onto its Kind. Unknown tokens fail with
// ErrUnknownKind.
func ParseKind(token string) (Kind, error) {
	for i, name := range kindNames {
		if name == token {
			return Kind(i), nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, token)
}

// Params bundles the parameters of one distribution. Only the fields relevant
// to Kind are consulted; the rest stay at their zero values.
type Params struct {
	Kind Kind

	// Uniform / LogUniform support.
	Min float64
	Max float64

	// Normal location/scale plus optional post-hoc clipping bounds.
	Mean    float64
	Std     float64
	ClipMin *float64
	ClipMax *float64

	// Categorical value set and its probability mass.
	Categories    []float64
	Probabilities []float64
}

// Moments carries the analytic first two moments of a distribution.
type Moments struct {
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
}

// wrapf attaches formatted context to a sentinel while preserving errors.Is.
func wrapf(sentinel error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{sentinel}, args...)...)
}
