package execshell_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/repoutils/internal/execshell"
)

const (
	testCommandArgumentConstant     = "--version"
	testWorkingDirectoryConstant    = "."
	testStandardOutputConstant      = "output"
	testStandardErrorOutputConstant = "failure"
)

type recordingCommandRunner struct {
	executionResult  execshell.ExecutionResult
	executionError   error
	recordedCommands []execshell.ShellCommand
}

func (runner *recordingCommandRunner) Run(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.recordedCommands = append(runner.recordedCommands, command)
	return runner.executionResult, runner.executionError
}

type recordingEventObserver struct {
	startedCommands   []execshell.ShellCommand
	completedCommands []execshell.ShellCommand
	failedCommands    []execshell.ShellCommand
}

func (observer *recordingEventObserver) CommandStarted(command execshell.ShellCommand) {
	observer.startedCommands = append(observer.startedCommands, command)
}

func (observer *recordingEventObserver) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	observer.completedCommands = append(observer.completedCommands, command)
}

func (observer *recordingEventObserver) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	observer.failedCommands = append(observer.failedCommands, command)
}

func TestShellExecutorInitializationValidation(testInstance *testing.T) {
	testCases := []struct {
		name        string
		logger      *zap.Logger
		runner      execshell.CommandRunner
		expectError error
	}{
		{name: "LoggerValidation", logger: nil, runner: &recordingCommandRunner{}, expectError: execshell.ErrLoggerNotConfigured},
		{name: "RunnerValidation", logger: zap.NewNop(), runner: nil, expectError: execshell.ErrCommandRunnerNotConfigured},
		{name: "SuccessfulInitialization", logger: zap.NewNop(), runner: &recordingCommandRunner{}},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			executor, initializationError := execshell.NewShellExecutor(testCase.logger, testCase.runner)

			if testCase.expectError != nil {
				require.Nil(subtestInstance, executor)
				require.ErrorIs(subtestInstance, initializationError, testCase.expectError)
				return
			}
			require.NoError(subtestInstance, initializationError)
			require.NotNil(subtestInstance, executor)
		})
	}
}

func TestShellExecutorExecuteClassifiesOutcomes(testInstance *testing.T) {
	spawnFailure := errors.New("spawn failed")

	testCases := []struct {
		name            string
		executionResult execshell.ExecutionResult
		executionError  error
		expectFailed    bool
		expectExecution bool
	}{
		{
			name:            "Success",
			executionResult: execshell.ExecutionResult{StandardOutput: testStandardOutputConstant},
		},
		{
			name:            "FailureExitCode",
			executionResult: execshell.ExecutionResult{StandardError: testStandardErrorOutputConstant, ExitCode: 1},
			expectFailed:    true,
		},
		{
			name:            "RunnerError",
			executionError:  spawnFailure,
			expectExecution: true,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			commandRunner := &recordingCommandRunner{executionResult: testCase.executionResult, executionError: testCase.executionError}
			executor, initializationError := execshell.NewShellExecutor(zap.NewNop(), commandRunner)
			require.NoError(subtestInstance, initializationError)

			command := execshell.ShellCommand{
				Name:    execshell.CommandGit,
				Details: execshell.CommandDetails{Arguments: []string{testCommandArgumentConstant}, WorkingDirectory: testWorkingDirectoryConstant},
			}

			executionResult, executionError := executor.Execute(context.Background(), command)

			require.Len(subtestInstance, commandRunner.recordedCommands, 1)
			require.Equal(subtestInstance, command, commandRunner.recordedCommands[0])

			switch {
			case testCase.expectFailed:
				var failedError execshell.CommandFailedError
				require.ErrorAs(subtestInstance, executionError, &failedError)
				require.Equal(subtestInstance, testCase.executionResult, executionResult)
				require.Equal(subtestInstance, testCase.executionResult, failedError.Result)
			case testCase.expectExecution:
				var executionFailure execshell.CommandExecutionError
				require.ErrorAs(subtestInstance, executionError, &executionFailure)
				require.ErrorIs(subtestInstance, executionError, spawnFailure)
			default:
				require.NoError(subtestInstance, executionError)
				require.Equal(subtestInstance, testCase.executionResult, executionResult)
			}
		})
	}
}

func TestShellExecutorWrappersSetCommandName(testInstance *testing.T) {
	commandRunner := &recordingCommandRunner{}
	executor, initializationError := execshell.NewShellExecutor(zap.NewNop(), commandRunner)
	require.NoError(testInstance, initializationError)

	_, gitError := executor.ExecuteGit(context.Background(), execshell.CommandDetails{Arguments: []string{testCommandArgumentConstant}})
	require.NoError(testInstance, gitError)

	_, shellError := executor.ExecuteShell(context.Background(), execshell.CommandDetails{Arguments: []string{"-c", "true"}})
	require.NoError(testInstance, shellError)

	require.Len(testInstance, commandRunner.recordedCommands, 2)
	require.Equal(testInstance, execshell.CommandGit, commandRunner.recordedCommands[0].Name)
	require.Equal(testInstance, execshell.CommandShell, commandRunner.recordedCommands[1].Name)
}

func TestShellExecutorNotifiesEventObserver(testInstance *testing.T) {
	testCases := []struct {
		name              string
		executionResult   execshell.ExecutionResult
		executionError    error
		expectedCompleted int
		expectedFailed    int
	}{
		{name: "CompletedEvent", executionResult: execshell.ExecutionResult{}, expectedCompleted: 1},
		{name: "FailureStillCompletes", executionResult: execshell.ExecutionResult{ExitCode: 1}, expectedCompleted: 1},
		{name: "ExecutionFailureEvent", executionError: errors.New("spawn failed"), expectedFailed: 1},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			commandRunner := &recordingCommandRunner{executionResult: testCase.executionResult, executionError: testCase.executionError}
			eventObserver := &recordingEventObserver{}
			executor, initializationError := execshell.NewShellExecutor(zap.NewNop(), commandRunner, eventObserver)
			require.NoError(subtestInstance, initializationError)

			executor.ExecuteShell(context.Background(), execshell.CommandDetails{Arguments: []string{"-c", "true"}})

			require.Len(subtestInstance, eventObserver.startedCommands, 1)
			require.Len(subtestInstance, eventObserver.completedCommands, testCase.expectedCompleted)
			require.Len(subtestInstance, eventObserver.failedCommands, testCase.expectedFailed)
		})
	}
}
