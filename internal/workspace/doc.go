// Package workspace locates repo-tool workspaces on disk and reads the
// bookkeeping data the repo tool maintains under the .repo folder.
//
// It exposes WorkspaceLocator for resolving the workspace root from any
// nested directory and ProjectListReader for parsing .repo/project.list into
// ordered Project records.
package workspace
