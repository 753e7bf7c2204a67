// Package tune searches controller parameters and scripts batches of runs.
//
// A [Grid] enumerates parameter combinations; [Search] scores each one with
// an [Evaluator], usually the mean return of a short seeded ensemble.
// A [Scenario] is a YAML list of runs, each starting from a preset.
package tune
