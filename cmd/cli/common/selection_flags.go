package common

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/temirov/repoutils/internal/selection"
	"github.com/temirov/repoutils/internal/workspace"
)

const (
	workingDirectoryFlagNameConstant        = "cwd"
	workingDirectoryFlagShorthandConstant   = "C"
	workingDirectoryFlagDescriptionConstant = "change working directory before locating the workspace"
	manifestFlagNameConstant                = "manifest"
	manifestFlagShorthandConstant           = "m"
	manifestFlagDescriptionConstant         = "ignore projects which are not defined in the given manifest file(s)"
	groupFlagNameConstant                   = "group"
	groupFlagShorthandConstant              = "g"
	groupFlagDescriptionConstant            = "ignore projects which are not part of the given group(s)"
	verboseFlagNameConstant                 = "verbose"
	verboseFlagShorthandConstant            = "v"
	verboseFlagDescriptionConstant          = "verbose output, e.g. print local path before executing command"
)

// SelectionFlagValues carries the project-selection flags every front end
// shares.
type SelectionFlagValues struct {
	WorkingDirectory string
	ManifestPaths    []string
	GroupNames       []string
	Verbose          bool
}

// RegisterSelectionFlags attaches the shared selection flags to a command.
func RegisterSelectionFlags(command *cobra.Command, flagValues *SelectionFlagValues) {
	command.Flags().StringVarP(&flagValues.WorkingDirectory, workingDirectoryFlagNameConstant, workingDirectoryFlagShorthandConstant, "", workingDirectoryFlagDescriptionConstant)
	command.Flags().StringArrayVarP(&flagValues.ManifestPaths, manifestFlagNameConstant, manifestFlagShorthandConstant, nil, manifestFlagDescriptionConstant)
	command.Flags().StringArrayVarP(&flagValues.GroupNames, groupFlagNameConstant, groupFlagShorthandConstant, nil, groupFlagDescriptionConstant)
	command.Flags().BoolVarP(&flagValues.Verbose, verboseFlagNameConstant, verboseFlagShorthandConstant, false, verboseFlagDescriptionConstant)
}

// ResolveWorkspaceRoot locates the workspace root starting from the --cwd
// flag or the process working directory.
func (flagValues SelectionFlagValues) ResolveWorkspaceRoot() (string, error) {
	startingDirectory := flagValues.WorkingDirectory
	if len(startingDirectory) == 0 {
		processWorkingDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return "", workingDirectoryError
		}
		startingDirectory = processWorkingDirectory
	}
	return workspace.NewWorkspaceLocator().FindRoot(startingDirectory)
}

// SelectionCriteria converts the flag values into selection criteria.
func (flagValues SelectionFlagValues) SelectionCriteria() selection.Criteria {
	return selection.Criteria{ManifestPaths: flagValues.ManifestPaths, Groups: flagValues.GroupNames}
}
