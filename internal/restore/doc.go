// Package restore returns projects to the state of the last repo sync.
//
// A parallel scan phase finds projects that deviate from the sync branch
// (uncommitted changes or local commits), then a confirmed restore phase
// discards those deviations project by project. Restoring is destructive, so
// the scan and the mutation are strictly separated and a confirmation prompt
// guards the mutation.
package restore
