// Package pattern expands a trial plan into a flat, absolutely-timed
// element table.
//
// Build walks the plan once, left to right, moving a single time cursor:
// each trial starts where the cursor stands, its elements land at
// trial_start + scheduled_onset_ms, and the cursor then advances past the
// trial's longest element, the refractory period, and the inter-trial
// interval. An omission trial (no elements) emits no rows but still
// advances the cursor by the ITI, so catch trials keep the rhythm of the
// sequence.
//
// Structural validation runs before any row is emitted and aggregates
// every violation into one schema.Issues value, so a malformed plan
// reports all of its problems in a single pass and never yields a partial
// table.
//
// Build guarantees monotonically non-decreasing trial starts but does not
// reject overlapping elements within a trial; superposition is legal at
// compile time. CheckFeasibility reports such overlaps separately for
// callers that want disjoint timing.
package pattern
