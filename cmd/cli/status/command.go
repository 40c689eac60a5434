package status

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/repoutils/cmd/cli/common"
	"github.com/temirov/repoutils/internal/forall"
	"github.com/temirov/repoutils/internal/status"
)

const (
	commandUseConstant                       = "status"
	commandShortDescriptionConstant          = "Report which projects carry uncommitted changes"
	commandLongDescriptionConstant           = "status inspects every selected project and reports whether its working tree is clean or dirty."
	selectedProjectsTemplateConstant         = "Selected %d projects\n"
	selectProjectsErrorTemplateConstant      = "unable to select projects: %w"
	workspaceResolutionErrorTemplateConstant = "unable to locate workspace: %w"
	statusErrorsTemplateConstant             = "%d projects could not be inspected"
)

// CommandBuilder assembles the status command.
type CommandBuilder struct {
	LoggerProvider               common.LoggerProvider
	RunExecutor                  forall.ShellRunner
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	CommandUseName               string
}

// Build constructs the status command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	flagValues := &common.SelectionFlagValues{}

	command := &cobra.Command{
		Use:   builder.commandUse(),
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, flagValues)
		},
	}

	common.RegisterSelectionFlags(command, flagValues)

	return command, nil
}

func (builder *CommandBuilder) commandUse() string {
	if len(builder.CommandUseName) > 0 {
		return builder.CommandUseName
	}
	return commandUseConstant
}

func (builder *CommandBuilder) run(command *cobra.Command, flagValues *common.SelectionFlagValues) error {
	configuration := CommandConfiguration{}
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	workspaceRoot, workspaceError := flagValues.ResolveWorkspaceRoot()
	if workspaceError != nil {
		return fmt.Errorf(workspaceResolutionErrorTemplateConstant, workspaceError)
	}

	logger := common.ResolveLogger(builder.LoggerProvider)
	selector := common.ResolveSelector(logger)
	selectedProjects, selectionError := selector.Select(workspaceRoot, flagValues.SelectionCriteria())
	if selectionError != nil {
		return fmt.Errorf(selectProjectsErrorTemplateConstant, selectionError)
	}
	fmt.Fprintf(command.OutOrStdout(), selectedProjectsTemplateConstant, len(selectedProjects))

	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}
	runExecutor, executorError := common.ResolveRunExecutor(builder.RunExecutor, logger, humanReadableLogging)
	if executorError != nil {
		return executorError
	}

	statusService, serviceError := status.NewService(runExecutor, command.OutOrStdout(), logger)
	if serviceError != nil {
		return serviceError
	}

	summary := statusService.Run(
		command.Context(),
		workspaceRoot,
		selectedProjects,
		status.Options{Verbose: flagValues.Verbose, WorkerCount: configuration.WorkerCount},
	)
	if summary.ErrorCount > 0 {
		return fmt.Errorf(statusErrorsTemplateConstant, summary.ErrorCount)
	}
	return nil
}
