package pattern

import (
	"fmt"
	"sort"

	"github.com/auralab/stimseq/schema"
)

// CodeElementOverlap marks two elements of one trial whose time windows
// intersect. Reported by CheckFeasibility, never by Build.
const CodeElementOverlap = "element_overlap"

// Build expands a trial plan into an absolutely-timed element table.
//
// Steps:
//  1. Validate the plan's structure. Every violation is collected; on any
//     issue the build aborts with the aggregate and no partial table.
//  2. Walk the trials behind a single cursor. Omissions advance the cursor
//     by iti_ms and emit nothing. Otherwise each element becomes a row at
//     trial_start + scheduled_onset_ms, and the cursor moves past the
//     trial's longest element end, the refractory period, and the ITI.
//
// Returns the table, or the aggregated schema.Issues describing the plan's
// structural problems.
func Build(plan TrialPlan) (ElementTable, error) {
	if err := validatePlan(plan).Err(); err != nil {
		return ElementTable{}, err
	}

	table := ElementTable{
		Rows:      make([]Row, 0, countElements(plan)),
		WindowsMs: make([]float64, 0, len(plan.Trials)),
	}
	cursor := 0.0
	for _, trial := range plan.Trials {
		trialStart := cursor
		if len(trial.Elements) == 0 {
			table.WindowsMs = append(table.WindowsMs, 0)
			cursor += plan.ITIMs
			continue
		}
		window := 0.0
		for j, el := range trial.Elements {
			table.Rows = append(table.Rows, Row{
				TrialIndex:      trial.TrialIndex,
				ElementIndex:    j,
				StimulusRef:     el.StimulusRef,
				AbsoluteOnsetMs: trialStart + el.ScheduledOnsetMs,
				DurationMs:      el.DurationMs,
				Label:           trial.Label,
				Role:            el.Role,
				Symbol:          el.Symbol,
				TTLCode:         el.TTLCode,
			})
			if end := el.ScheduledOnsetMs + el.DurationMs; end > window {
				window = end
			}
		}
		window += plan.RefractoryMs
		table.WindowsMs = append(table.WindowsMs, window)
		cursor = trialStart + window + plan.ITIMs
	}
	return table, nil
}

// validatePlan aggregates every structural violation of the plan.
func validatePlan(plan TrialPlan) schema.Issues {
	var issues schema.Issues
	if plan.NTrials < 0 {
		issues = schema.Append(issues, schema.Issue{
			Path: "/n_trials", Code: schema.CodeTooSmall,
			Message: fmt.Sprintf("n_trials is %d, want >= 0", plan.NTrials),
		})
	}
	if plan.ITIMs < 0 {
		issues = schema.Append(issues, schema.Issue{
			Path: "/iti_ms", Code: schema.CodeTooSmall,
			Message: fmt.Sprintf("iti_ms is %g, want >= 0", plan.ITIMs),
		})
	}
	if plan.RefractoryMs < 0 {
		issues = schema.Append(issues, schema.Issue{
			Path: "/refractory_ms", Code: schema.CodeTooSmall,
			Message: fmt.Sprintf("refractory_ms is %g, want >= 0", plan.RefractoryMs),
		})
	}
	if plan.NTrials >= 0 && plan.NTrials != len(plan.Trials) {
		issues = schema.Append(issues, schema.Issue{
			Path: "/n_trials", Code: schema.CodeConstMismatch,
			Message: fmt.Sprintf("n_trials is %d but the plan lists %d trials", plan.NTrials, len(plan.Trials)),
			Params:  map[string]interface{}{"expected": len(plan.Trials)},
		})
	}
	for i, trial := range plan.Trials {
		if trial.TrialIndex != i {
			issues = schema.Append(issues, schema.Issue{
				Path: fmt.Sprintf("/trials/%d/trial_index", i), Code: schema.CodeConstMismatch,
				Message: fmt.Sprintf("trial_index is %d, want %d", trial.TrialIndex, i),
				Params:  map[string]interface{}{"expected": i},
			})
		}
		if trial.Label == "" {
			issues = schema.Append(issues, schema.Issue{
				Path: fmt.Sprintf("/trials/%d/label", i), Code: schema.CodeRequired,
				Message: "label is required",
			})
		}
		for j, el := range trial.Elements {
			at := fmt.Sprintf("/trials/%d/elements/%d", i, j)
			if el.StimulusRef == "" {
				issues = schema.Append(issues, schema.Issue{
					Path: at + "/stimulus_ref", Code: schema.CodeRequired,
					Message: "stimulus_ref is required",
				})
			}
			if el.ScheduledOnsetMs < 0 {
				issues = schema.Append(issues, schema.Issue{
					Path: at + "/scheduled_onset_ms", Code: schema.CodeTooSmall,
					Message: fmt.Sprintf("scheduled_onset_ms is %g, want >= 0", el.ScheduledOnsetMs),
				})
			}
			if el.DurationMs <= 0 {
				issues = schema.Append(issues, schema.Issue{
					Path: at + "/duration_ms", Code: schema.CodeTooSmall,
					Message: fmt.Sprintf("duration_ms is %g, want > 0", el.DurationMs),
				})
			}
			if el.TTLCode != nil && (*el.TTLCode < 0 || *el.TTLCode > 255) {
				issues = schema.Append(issues, schema.Issue{
					Path: at + "/ttl_code", Code: schema.CodeTooBig,
					Message: fmt.Sprintf("ttl_code is %d, want 0..255", *el.TTLCode),
				})
			}
		}
	}
	return issues
}

// CheckFeasibility reports every pair of elements within one trial whose
// time windows intersect. Overlap is legal for compilation (audio mixes
// additively); protocols that need disjoint timing run this check on the
// built table.
func CheckFeasibility(table ElementTable) schema.Issues {
	byTrial := make(map[int][]Row)
	for _, row := range table.Rows {
		byTrial[row.TrialIndex] = append(byTrial[row.TrialIndex], row)
	}
	trials := make([]int, 0, len(byTrial))
	for idx := range byTrial {
		trials = append(trials, idx)
	}
	sort.Ints(trials)

	var issues schema.Issues
	for _, idx := range trials {
		rows := byTrial[idx]
		sort.Slice(rows, func(a, b int) bool {
			if rows[a].AbsoluteOnsetMs != rows[b].AbsoluteOnsetMs {
				return rows[a].AbsoluteOnsetMs < rows[b].AbsoluteOnsetMs
			}
			return rows[a].ElementIndex < rows[b].ElementIndex
		})
		for k := 1; k < len(rows); k++ {
			prev, cur := rows[k-1], rows[k]
			if cur.AbsoluteOnsetMs < prev.EndMs() {
				issues = schema.Append(issues, schema.Issue{
					Path: fmt.Sprintf("/trials/%d/elements/%d", idx, cur.ElementIndex),
					Code: CodeElementOverlap,
					Message: fmt.Sprintf(
						"element %d (onset %g ms) starts before element %d ends (%g ms)",
						cur.ElementIndex, cur.AbsoluteOnsetMs, prev.ElementIndex, prev.EndMs()),
					Params: map[string]interface{}{"overlaps": prev.ElementIndex},
				})
			}
		}
	}
	return issues
}

// CheckReferences reports every row whose stimulus_ref fails the resolver.
// Run it before compiling to catch all missing library entries in one pass
// instead of failing on the first one mid-compile.
func CheckReferences(table ElementTable, known func(ref string) bool) schema.Issues {
	var issues schema.Issues
	for _, row := range table.Rows {
		if known(row.StimulusRef) {
			continue
		}
		issues = schema.Append(issues, schema.Issue{
			Path: fmt.Sprintf("/trials/%d/elements/%d/stimulus_ref", row.TrialIndex, row.ElementIndex),
			Code: schema.CodeBadReference,
			Message: fmt.Sprintf("stimulus_ref %q is not in the library",
				row.StimulusRef),
			Params: map[string]interface{}{"ref": row.StimulusRef},
		})
	}
	return issues
}

func countElements(plan TrialPlan) int {
	n := 0
	for _, trial := range plan.Trials {
		n += len(trial.Elements)
	}
	return n
}

// wrapf attaches detail to a sentinel while keeping errors.Is working.
func wrapf(sentinel error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{sentinel}, args...)...)
}
