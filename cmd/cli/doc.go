// Package cli constructs the repoutils command-line interface, wiring the
// Cobra command hierarchy, configuration loader, and structured logging
// primitives. It exposes helpers to build the combined application as well as
// the standalone repo-forall, repo-status, and repo-restore front ends.
package cli
