// Package selection resolves which on-disk projects are in scope for a run.
//
// Selector combines the workspace project list with optional manifest and
// group filters, preserving the on-disk project order and deduplicating by
// path. Disk presence is authoritative: a project declared in a manifest but
// missing from the project list is silently dropped.
package selection
