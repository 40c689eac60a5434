package forall

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/repoutils/cmd/cli/common"
	"github.com/temirov/repoutils/internal/forall"
)

const (
	commandUseConstant                       = "forall [flags] -- command [args...]"
	commandShortDescriptionConstant          = "Execute a shell command in every selected project"
	commandLongDescriptionConstant           = "forall runs the given shell command in each project of the workspace, in parallel, and reports per-project output without interleaving."
	failFastFlagNameConstant                 = "fail-fast"
	failFastFlagShorthandConstant            = "f"
	failFastFlagDescriptionConstant          = "stop launching commands after the first failure"
	printProjectPathFlagNameConstant         = "print-project-path"
	printProjectPathFlagShorthandConstant    = "p"
	printProjectPathFlagDescriptionConstant  = "print the project path before each command's output"
	selectedProjectsTemplateConstant         = "Selected %d projects\n"
	executionsFailedErrorTemplateConstant    = "%d of %d executions failed"
	selectProjectsErrorTemplateConstant      = "unable to select projects: %w"
	workspaceResolutionErrorTemplateConstant = "unable to locate workspace: %w"
)

// CommandBuilder assembles the forall command.
type CommandBuilder struct {
	LoggerProvider               common.LoggerProvider
	RunExecutor                  forall.ShellRunner
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	CommandUseName               string
}

// Build constructs the forall command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	flagValues := &common.SelectionFlagValues{}

	command := &cobra.Command{
		Use:   builder.commandUse(),
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, arguments, flagValues)
		},
	}

	common.RegisterSelectionFlags(command, flagValues)
	command.Flags().BoolP(failFastFlagNameConstant, failFastFlagShorthandConstant, false, failFastFlagDescriptionConstant)
	command.Flags().BoolP(printProjectPathFlagNameConstant, printProjectPathFlagShorthandConstant, false, printProjectPathFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) commandUse() string {
	if len(builder.CommandUseName) > 0 {
		return builder.CommandUseName
	}
	return commandUseConstant
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string, flagValues *common.SelectionFlagValues) error {
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

	commandSpecification := forall.CommandSpec{CommandLine: strings.Join(arguments, " ")}
	report := runExecutor.Execute(
		command.Context(),
		workspaceRoot,
		selectedProjects,
		commandSpecification,
		forall.Options{FailFast: configuration.FailFast, WorkerCount: configuration.WorkerCount},
	)

	renderer := forall.NewReportRenderer(command.OutOrStdout())
	renderer.Render(report, forall.RenderOptions{PrintProjectPath: configuration.PrintProjectPath || flagValues.Verbose})

	if report.Failed() {
		failedCount := report.CountByOutcome(forall.OutcomeFailed) + report.CountByOutcome(forall.OutcomeError)
		return fmt.Errorf(executionsFailedErrorTemplateConstant, failedCount, len(selectedProjects))
	}
	return nil
}

func (builder *CommandBuilder) resolveConfiguration(command *cobra.Command) CommandConfiguration {
	configuration := CommandConfiguration{}
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	if command.Flags().Changed(failFastFlagNameConstant) {
		flagValue, flagError := command.Flags().GetBool(failFastFlagNameConstant)
		if flagError == nil {
			configuration.FailFast = flagValue
		}
	}
	if command.Flags().Changed(printProjectPathFlagNameConstant) {
		flagValue, flagError := command.Flags().GetBool(printProjectPathFlagNameConstant)
		if flagError == nil {
			configuration.PrintProjectPath = flagValue
		}
	}
	return configuration
}
