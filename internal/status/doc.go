// Package status reports uncommitted-change state across selected projects.
//
// It is a thin consumer of the forall executor: every project runs a fixed
// porcelain git inspection through the same bounded pool, inheriting the
// non-interleaving output guarantees.
package status
