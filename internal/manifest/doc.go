// Package manifest parses repo-tool manifest XML files.
//
// A manifest declares the canonical project set for a workspace together with
// group memberships. Loader resolves <include> elements recursively and
// derives the implicit group memberships the repo tool grants every project.
// Manifest parsing is strict: a manifest the operator explicitly supplied is
// authoritative, and a partial result would silently select the wrong
// projects.
package manifest
