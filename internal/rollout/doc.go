// Package rollout plays cart-pole episodes: a [Runner] drives one
// environment with one controller, feeding every transition to metrics
// and observers, and an [Ensemble] runs independent seeded episodes in
// parallel.
package rollout
