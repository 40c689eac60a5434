package restore

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/repoutils/cmd/cli/common"
	"github.com/temirov/repoutils/internal/forall"
	"github.com/temirov/repoutils/internal/restore"
)

const (
	commandUseConstant                       = "restore"
	commandShortDescriptionConstant          = "Restore every selected project to the last repo sync state"
	commandLongDescriptionConstant           = "restore discards uncommitted changes and local commits in every selected project, returning each working tree to the state of the last repo sync."
	dryRunFlagNameConstant                   = "dry-run"
	dryRunFlagShorthandConstant              = "d"
	dryRunFlagDescriptionConstant            = "only scan for deviations without restoring anything"
	assumeYesFlagNameConstant                = "yes"
	assumeYesFlagShorthandConstant           = "y"
	assumeYesFlagDescriptionConstant         = "restore without asking for confirmation"
	selectedProjectsTemplateConstant         = "Selected %d projects\n"
	selectProjectsErrorTemplateConstant      = "unable to select projects: %w"
	workspaceResolutionErrorTemplateConstant = "unable to locate workspace: %w"
)

// CommandBuilder assembles the restore command.
type CommandBuilder struct {
	LoggerProvider               common.LoggerProvider
	RunExecutor                  forall.ShellRunner
	GitExecutor                  restore.GitExecutor
	Prompter                     restore.ConfirmationPrompter
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	CommandUseName               string
}

// Build constructs the restore command.
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
	command.Flags().BoolP(dryRunFlagNameConstant, dryRunFlagShorthandConstant, false, dryRunFlagDescriptionConstant)
	command.Flags().BoolP(assumeYesFlagNameConstant, assumeYesFlagShorthandConstant, false, assumeYesFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) commandUse() string {
	if len(builder.CommandUseName) > 0 {
		return builder.CommandUseName
	}
	return commandUseConstant
}

func (builder *CommandBuilder) run(command *cobra.Command, flagValues *common.SelectionFlagValues) error {
	configuration := builder.resolveConfiguration(command)

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

	gitExecutor := builder.GitExecutor
	if gitExecutor == nil {
		shellExecutor, shellExecutorError := common.ResolveShellExecutor(logger, humanReadableLogging)
		if shellExecutorError != nil {
			return shellExecutorError
		}
		gitExecutor = shellExecutor
	}

	prompter := builder.Prompter
	if prompter == nil {
		prompter = restore.NewIOConfirmationPrompter(command.InOrStdin(), command.OutOrStdout())
	}

	restoreService, serviceError := restore.NewService(runExecutor, gitExecutor, prompter, command.OutOrStdout(), logger)
	if serviceError != nil {
		return serviceError
	}

	return restoreService.Run(
		command.Context(),
		workspaceRoot,
		selectedProjects,
		restore.Options{
			Verbose:     flagValues.Verbose,
			DryRun:      configuration.DryRun,
			AssumeYes:   configuration.AssumeYes,
			WorkerCount: configuration.WorkerCount,
		},
	)
}

func (builder *CommandBuilder) resolveConfiguration(command *cobra.Command) CommandConfiguration {
	configuration := CommandConfiguration{}
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	if command.Flags().Changed(dryRunFlagNameConstant) {
		flagValue, flagError := command.Flags().GetBool(dryRunFlagNameConstant)
		if flagError == nil {
			configuration.DryRun = flagValue
		}
	}
	if command.Flags().Changed(assumeYesFlagNameConstant) {
		flagValue, flagError := command.Flags().GetBool(assumeYesFlagNameConstant)
		if flagError == nil {
			configuration.AssumeYes = flagValue
		}
	}
	return configuration
}
