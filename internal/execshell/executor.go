package execshell

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

const (
	commandStartedLogMessageConstant   = "external command started"
	commandCompletedLogMessageConstant = "external command completed"
	commandFailedLogMessageConstant    = "external command failed"
	logFieldCommandLabelConstant       = "command"
	logFieldExitCodeConstant           = "exit_code"
	logFieldFailureConstant            = "failure"
)

// CommandName identifies a supported executable.
type CommandName string

// Supported executables.
const (
	CommandGit   CommandName = "git"
	CommandShell CommandName = "sh"
)

// CommandDetails describes one invocation of an executable.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
}

// ShellCommand combines a CommandName with invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable results of executing a command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner represents the ability to run shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// Configuration sentinels returned by NewShellExecutor.
var (
	ErrLoggerNotConfigured        = errors.New("logger not configured")
	ErrCommandRunnerNotConfigured = errors.New("command runner not configured")
)

// CommandFailedError reports a command that ran to completion with a non-zero
// exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command.
func (failure CommandFailedError) Error() string {
	return BuildFailureMessage(failure.Command, failure.Result)
}

// CommandExecutionError reports a command that could not be executed at all.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (failure CommandExecutionError) Error() string {
	return BuildExecutionFailureMessage(failure.Command, failure.Cause)
}

// Unwrap exposes the underlying failure.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}

// ShellExecutor runs external commands with logging and lifecycle events.
type ShellExecutor struct {
	logger        *zap.Logger
	commandRunner CommandRunner
	eventObserver CommandEventObserver
}

// NewShellExecutor constructs a ShellExecutor around the provided runner. An
// optional event observer receives command lifecycle notifications.
func NewShellExecutor(logger *zap.Logger, commandRunner CommandRunner, eventObservers ...CommandEventObserver) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if commandRunner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	var eventObserver CommandEventObserver = noopCommandEventObserver{}
	for _, candidateObserver := range eventObservers {
		if candidateObserver != nil {
			eventObserver = candidateObserver
		}
	}

	return &ShellExecutor{logger: logger, commandRunner: commandRunner, eventObserver: eventObserver}, nil
}

// Execute runs the supplied command and classifies its outcome. A non-zero
// exit code yields the captured result together with a CommandFailedError; a
// spawn failure yields a CommandExecutionError.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	commandLabel := formatCommandLabel(command)

	executor.logger.Debug(commandStartedLogMessageConstant, zap.String(logFieldCommandLabelConstant, commandLabel))
	executor.eventObserver.CommandStarted(command)

	executionResult, runError := executor.commandRunner.Run(executionContext, command)
	if runError != nil {
		executor.eventObserver.CommandExecutionFailed(command, runError)
		executor.logger.Debug(
			commandFailedLogMessageConstant,
			zap.String(logFieldCommandLabelConstant, commandLabel),
			zap.Error(runError),
		)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	executor.eventObserver.CommandCompleted(command, executionResult)

	if executionResult.ExitCode != 0 {
		executor.logger.Debug(
			commandFailedLogMessageConstant,
			zap.String(logFieldCommandLabelConstant, commandLabel),
			zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
		)
		return executionResult, CommandFailedError{Command: command, Result: executionResult}
	}

	executor.logger.Debug(
		commandCompletedLogMessageConstant,
		zap.String(logFieldCommandLabelConstant, commandLabel),
		zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
	)
	return executionResult, nil
}

// ExecuteGit runs git with the provided details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// ExecuteShell runs sh with the provided details.
func (executor *ShellExecutor) ExecuteShell(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandShell, Details: details})
}
