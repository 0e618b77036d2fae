package pattern

import (
	"errors"

	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// ErrBadPlan is returned when a trial plan document cannot be decoded.
var ErrBadPlan = errors.New("pattern: cannot decode trial plan")

// Element is one scheduled stimulus presentation inside a trial. Onset is
// relative to the trial's start.
type Element struct {
	StimulusRef      string  `json:"stimulus_ref" yaml:"stimulus_ref"`
	ScheduledOnsetMs float64 `json:"scheduled_onset_ms" yaml:"scheduled_onset_ms"`
	DurationMs       float64 `json:"duration_ms" yaml:"duration_ms"`
	Role             string  `json:"role,omitempty" yaml:"role,omitempty"`
	Symbol           string  `json:"symbol,omitempty" yaml:"symbol,omitempty"`
	// TTLCode overrides the compiler's default marker (the 1-based row
	// index) for this element.
	TTLCode *int `json:"ttl_code,omitempty" yaml:"ttl_code,omitempty"`
}

// Trial is an ordered group of elements sharing a label. An empty element
// list is an omission (catch) trial.
type Trial struct {
	TrialIndex int       `json:"trial_index" yaml:"trial_index"`
	Label      string    `json:"label" yaml:"label"`
	Elements   []Element `json:"elements" yaml:"elements"`
}

// TrialPlan is the externally authored sequence description consumed by
// Build. It is read-only to this package.
type TrialPlan struct {
	NTrials      int     `json:"n_trials" yaml:"n_trials"`
	ITIMs        float64 `json:"iti_ms" yaml:"iti_ms"`
	RefractoryMs float64 `json:"refractory_ms,omitempty" yaml:"refractory_ms,omitempty"`
	Trials       []Trial `json:"trials" yaml:"trials"`
}

// Row is one element with its absolute position in the sequence. Rows are
// immutable once built.
type Row struct {
	TrialIndex      int     `json:"trial_index"`
	ElementIndex    int     `json:"element_index"`
	StimulusRef     string  `json:"stimulus_ref"`
	AbsoluteOnsetMs float64 `json:"absolute_onset_ms"`
	DurationMs      float64 `json:"duration_ms"`
	Label           string  `json:"label"`
	Role            string  `json:"role,omitempty"`
	Symbol          string  `json:"symbol,omitempty"`
	TTLCode         *int    `json:"ttl_code,omitempty"`
}

// EndMs reports where the element's audio ends on the absolute timeline.
func (r Row) EndMs() float64 { return r.AbsoluteOnsetMs + r.DurationMs }

// ElementTable is Build's output: the ordered rows plus each trial's
// window duration (its longest element end plus the refractory period;
// zero for omissions). The windows feed timing-feasibility checks, they do
// not include the ITI.
type ElementTable struct {
	Rows      []Row     `json:"rows"`
	WindowsMs []float64 `json:"windows_ms"`
}

// PlanFromJSON decodes a trial plan document.
func PlanFromJSON(data []byte) (TrialPlan, error) {
	var plan TrialPlan
	if err := gojson.Unmarshal(data, &plan); err != nil {
		return TrialPlan{}, wrapf(ErrBadPlan, "%v", err)
	}
	return plan, nil
}

// PlanFromYAML decodes a trial plan document.
func PlanFromYAML(data []byte) (TrialPlan, error) {
	var plan TrialPlan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return TrialPlan{}, wrapf(ErrBadPlan, "%v", err)
	}
	return plan, nil
}
