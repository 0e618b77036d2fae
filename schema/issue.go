package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes emitted by the rule engine.
const (
	CodeRequired       = "required"
	CodeInvalidType    = "invalid_type"
	CodeTooSmall       = "too_small"
	CodeTooBig         = "too_big"
	CodeInvalidEnum    = "invalid_enum"
	CodeConstMismatch  = "const_mismatch"
	CodeOneOfFailed    = "one_of_failed"
	CodeUnknownCheck   = "unknown_check"
	CodeProbabilitySum = "probability_sum"
	CodeDuplicateLabel = "duplicate_label"
	CodeBadReference   = "bad_reference"
)

// Issue is a single validation finding, addressed by a JSON-Pointer-style
// path into the offending document.
type Issue struct {
	Path    string                 `json:"path"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

// Issues aggregates every finding from one validation pass and implements
// error. An empty Issues value means the document passed.
type Issues []Issue

// Error summarizes the first few issues, e.g.
// "invalid_type at /trials/0/iti_ms; required at /n_trials; ... (total 5)".
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := len(iss)
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s at %s", iss[i].Code, iss[i].Path)
	}
	if len(iss) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(iss))
	}

	return b.String()
}

// Err returns iss as an error, or nil when no issue was recorded. Validation
// entry points end with `return iss.Err()` so an all-clear pass yields a true
// nil error value.
func (iss Issues) Err() error {
	if len(iss) == 0 {
		return nil
	}

	return iss
}

// Append extends dst, allocating it on first use.
func Append(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}

	return append(dst, more...)
}

// AsIssues extracts an Issues list from err via errors.As.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}

	return nil, false
}
