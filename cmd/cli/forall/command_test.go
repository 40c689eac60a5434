package forall_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	forallcmd "github.com/temirov/repoutils/cmd/cli/forall"
	"github.com/temirov/repoutils/internal/execshell"
	"github.com/temirov/repoutils/internal/workspace"
)

const (
	projectListContentConstant = "project-a\nproject-b\n"
	commandOutputConstant      = "HEAD is clean\n"
)

type stubShellRunner struct {
	mutex              sync.Mutex
	failingDirectories map[string]struct{}
	recordedDetails    []execshell.CommandDetails
}

func (runner *stubShellRunner) ExecuteShell(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	runner.mutex.Lock()
	runner.recordedDetails = append(runner.recordedDetails, details)
	runner.mutex.Unlock()
	if _, shouldFail := runner.failingDirectories[details.WorkingDirectory]; shouldFail {
		failedResult := execshell.ExecutionResult{StandardError: "boom\n", ExitCode: 1}
		return execshell.ExecutionResult{}, execshell.CommandFailedError{
			Command: execshell.ShellCommand{Name: execshell.CommandShell, Details: details},
			Result:  failedResult,
		}
	}
	return execshell.ExecutionResult{StandardOutput: commandOutputConstant}, nil
}

func buildWorkspaceFixture(testInstance *testing.T) string {
	testInstance.Helper()
	workspaceRoot := testInstance.TempDir()
	require.NoError(testInstance, os.MkdirAll(workspace.RepoFolder(workspaceRoot), 0o755))
	require.NoError(testInstance, os.WriteFile(workspace.ProjectListPath(workspaceRoot), []byte(projectListContentConstant), 0o644))
	return workspaceRoot
}

func TestForallCommandRunsAcrossSelectedProjects(testInstance *testing.T) {
	workspaceRoot := buildWorkspaceFixture(testInstance)
	shellRunner := &stubShellRunner{}

	commandBuilder := &forallcmd.CommandBuilder{RunExecutor: shellRunner}
	command, buildError := commandBuilder.Build()
	require.NoError(testInstance, buildError)

	var outputBuffer bytes.Buffer
	command.SetOut(&outputBuffer)
	command.SetErr(&outputBuffer)
	command.SetArgs([]string{"--cwd", workspaceRoot, "git", "describe", "--always"})

	require.NoError(testInstance, command.Execute())

	require.Len(testInstance, shellRunner.recordedDetails, 2)
	require.Equal(testInstance, []string{"-c", "git describe --always"}, shellRunner.recordedDetails[0].Arguments)
	require.Equal(
		testInstance,
		"Selected 2 projects\n"+commandOutputConstant+commandOutputConstant+"\nDone: 2/2 executions succeeded, 0 failed\n",
		outputBuffer.String(),
	)
}

func TestForallCommandPrintsProjectPathsWhenRequested(testInstance *testing.T) {
	workspaceRoot := buildWorkspaceFixture(testInstance)
	shellRunner := &stubShellRunner{}

	commandBuilder := &forallcmd.CommandBuilder{RunExecutor: shellRunner}
	command, buildError := commandBuilder.Build()
	require.NoError(testInstance, buildError)

	var outputBuffer bytes.Buffer
	command.SetOut(&outputBuffer)
	command.SetErr(&outputBuffer)
	command.SetArgs([]string{"--cwd", workspaceRoot, "--print-project-path", "git", "describe"})

	require.NoError(testInstance, command.Execute())

	require.Contains(testInstance, outputBuffer.String(), "project-a:\n")
	require.Contains(testInstance, outputBuffer.String(), "project-b:\n")
}

func TestForallCommandReportsFailures(testInstance *testing.T) {
	workspaceRoot := buildWorkspaceFixture(testInstance)
	shellRunner := &stubShellRunner{failingDirectories: map[string]struct{}{
		filepath.Join(workspaceRoot, "project-a"): {},
	}}

	commandBuilder := &forallcmd.CommandBuilder{RunExecutor: shellRunner}
	command, buildError := commandBuilder.Build()
	require.NoError(testInstance, buildError)

	var outputBuffer bytes.Buffer
	command.SetOut(&outputBuffer)
	command.SetErr(&outputBuffer)
	command.SetArgs([]string{"--cwd", workspaceRoot, "git", "describe"})

	executionError := command.Execute()

	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "1 of 2 executions failed")
	require.Contains(testInstance, outputBuffer.String(), "project-a:\nboom\n")
}

func TestForallCommandRequiresCommandTokens(testInstance *testing.T) {
	workspaceRoot := buildWorkspaceFixture(testInstance)

	commandBuilder := &forallcmd.CommandBuilder{RunExecutor: &stubShellRunner{}}
	command, buildError := commandBuilder.Build()
	require.NoError(testInstance, buildError)

	var outputBuffer bytes.Buffer
	command.SetOut(&outputBuffer)
	command.SetErr(&outputBuffer)
	command.SetArgs([]string{"--cwd", workspaceRoot})

	require.Error(testInstance, command.Execute())
}
