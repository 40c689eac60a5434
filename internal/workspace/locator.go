package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	repoFolderNameConstant             = ".repo"
	manifestsFolderNameConstant        = "manifests"
	projectListFileNameConstant        = "project.list"
	checkedOutManifestFileNameConstant = "manifest.xml"
	workspaceNotFoundTemplateConstant  = "no %s folder found above %s: %w"
)

// ErrNoRepoWorkspace indicates the starting directory is not inside a
// repo-tool workspace.
var ErrNoRepoWorkspace = errors.New("not a repo workspace")

// WorkspaceLocator resolves the repo-tool workspace root from a directory.
type WorkspaceLocator struct{}

// NewWorkspaceLocator constructs a WorkspaceLocator.
func NewWorkspaceLocator() *WorkspaceLocator {
	return &WorkspaceLocator{}
}

// FindRoot walks from the starting directory toward the filesystem root and
// returns the first directory containing a .repo folder.
func (locator *WorkspaceLocator) FindRoot(startingDirectory string) (string, error) {
	absoluteStartingDirectory, absoluteError := filepath.Abs(startingDirectory)
	if absoluteError != nil {
		return "", absoluteError
	}

	candidateDirectory := absoluteStartingDirectory
	for {
		repoFolderInformation, statError := os.Stat(filepath.Join(candidateDirectory, repoFolderNameConstant))
		if statError == nil && repoFolderInformation.IsDir() {
			return candidateDirectory, nil
		}

		parentDirectory := filepath.Dir(candidateDirectory)
		if parentDirectory == candidateDirectory {
			return "", fmt.Errorf(workspaceNotFoundTemplateConstant, repoFolderNameConstant, absoluteStartingDirectory, ErrNoRepoWorkspace)
		}
		candidateDirectory = parentDirectory
	}
}

// RepoFolder returns the .repo folder path for a workspace root.
func RepoFolder(workspaceRoot string) string {
	return filepath.Join(workspaceRoot, repoFolderNameConstant)
}

// ManifestsFolder returns the .repo/manifests folder path for a workspace root.
func ManifestsFolder(workspaceRoot string) string {
	return filepath.Join(RepoFolder(workspaceRoot), manifestsFolderNameConstant)
}

// ProjectListPath returns the bookkeeping file path for a workspace root.
func ProjectListPath(workspaceRoot string) string {
	return filepath.Join(RepoFolder(workspaceRoot), projectListFileNameConstant)
}

// CheckedOutManifestPath returns the manifest the repo tool checked out for
// the workspace.
func CheckedOutManifestPath(workspaceRoot string) string {
	return filepath.Join(RepoFolder(workspaceRoot), checkedOutManifestFileNameConstant)
}
