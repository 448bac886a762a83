// Package validation checks phase-normalized datasets in two tiers.
//
// Tier 1 (RangeValidator) compares every column against generic anatomical ranges
// keyed by base variable name and fails a column when too many samples fall outside.
// Tier 2 (PatternValidator) applies the task-specific rules of a rules.Table at phase
// checkpoints and checks the expected shape of each variable within the rule's phase
// window. Data-quality problems are returned as Failure values; only structural and
// configuration problems are returned as errors.
package validation
