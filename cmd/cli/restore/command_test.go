package restore_test

import (
	"bytes"
	"context"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	restorecmd "github.com/temirov/repoutils/cmd/cli/restore"
	"github.com/temirov/repoutils/internal/execshell"
	"github.com/temirov/repoutils/internal/workspace"
)

const projectListContentConstant = "project-a\n"

type scanShellRunner struct {
	mutex            sync.Mutex
	porcelainOutput  string
	localCommitCount string
}

func (runner *scanShellRunner) ExecuteShell(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	runner.mutex.Lock()
	defer runner.mutex.Unlock()
	if strings.Contains(details.Arguments[1], "rev-list") {
		return execshell.ExecutionResult{StandardOutput: runner.localCommitCount}, nil
	}
	return execshell.ExecutionResult{StandardOutput: runner.porcelainOutput}, nil
}

type manifestGitExecutor struct {
	upstreamBranch string
	gitInvocations []execshell.CommandDetails
}

func (executor *manifestGitExecutor) ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.gitInvocations = append(executor.gitInvocations, details)
	return execshell.ExecutionResult{}, nil
}

func (executor *manifestGitExecutor) ExecuteShell(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return execshell.ExecutionResult{StandardOutput: executor.upstreamBranch}, nil
}

type scriptedPrompter struct {
	confirmed bool
	prompted  bool
}

func (prompter *scriptedPrompter) Confirm(prompt string) (bool, error) {
	prompter.prompted = true
	return prompter.confirmed, nil
}

func buildWorkspaceFixture(testInstance *testing.T) string {
	testInstance.Helper()
	workspaceRoot := testInstance.TempDir()
	require.NoError(testInstance, os.MkdirAll(workspace.RepoFolder(workspaceRoot), 0o755))
	require.NoError(testInstance, os.WriteFile(workspace.ProjectListPath(workspaceRoot), []byte(projectListContentConstant), 0o644))
	return workspaceRoot
}

func TestRestoreCommandDryRunOnlyScans(testInstance *testing.T) {
	workspaceRoot := buildWorkspaceFixture(testInstance)
	gitExecutor := &manifestGitExecutor{upstreamBranch: "master\n"}
	prompter := &scriptedPrompter{confirmed: true}

	commandBuilder := &restorecmd.CommandBuilder{
		RunExecutor: &scanShellRunner{porcelainOutput: " M main.go\n", localCommitCount: "0"},
		GitExecutor: gitExecutor,
		Prompter:    prompter,
	}
	command, buildError := commandBuilder.Build()
	require.NoError(testInstance, buildError)

	var outputBuffer bytes.Buffer
	command.SetOut(&outputBuffer)
	command.SetErr(&outputBuffer)
	command.SetArgs([]string{"--cwd", workspaceRoot, "--dry-run"})

	require.NoError(testInstance, command.Execute())

	require.False(testInstance, prompter.prompted)
	require.Empty(testInstance, gitExecutor.gitInvocations)
	require.Contains(testInstance, outputBuffer.String(), "project-a: uncommitted changes\n")
	require.Contains(testInstance, outputBuffer.String(), "1/1 git repos deviate from the last repo sync")
	require.Contains(testInstance, outputBuffer.String(), "Nothing to be done, bye\n")
}

func TestRestoreCommandConfirmedRestore(testInstance *testing.T) {
	workspaceRoot := buildWorkspaceFixture(testInstance)
	gitExecutor := &manifestGitExecutor{upstreamBranch: "master\n"}
	prompter := &scriptedPrompter{confirmed: true}

	commandBuilder := &restorecmd.CommandBuilder{
		RunExecutor: &scanShellRunner{porcelainOutput: "", localCommitCount: "2"},
		GitExecutor: gitExecutor,
		Prompter:    prompter,
	}
	command, buildError := commandBuilder.Build()
	require.NoError(testInstance, buildError)

	var outputBuffer bytes.Buffer
	command.SetOut(&outputBuffer)
	command.SetErr(&outputBuffer)
	command.SetArgs([]string{"--cwd", workspaceRoot})

	require.NoError(testInstance, command.Execute())

	require.True(testInstance, prompter.prompted)
	require.Len(testInstance, gitExecutor.gitInvocations, 2)
	require.Equal(testInstance, []string{"clean", "-fd"}, gitExecutor.gitInvocations[0].Arguments)
	require.Equal(testInstance, []string{"reset", "--hard", "m/master"}, gitExecutor.gitInvocations[1].Arguments)
	require.Contains(testInstance, outputBuffer.String(), "project-a: found local commit(s)\n")
	require.Contains(testInstance, outputBuffer.String(), "Restoring project-a\n")
	require.Contains(testInstance, outputBuffer.String(), "Restoring done\n")
}

func TestRestoreCommandDeclinedPromptSkipsRestore(testInstance *testing.T) {
	workspaceRoot := buildWorkspaceFixture(testInstance)
	gitExecutor := &manifestGitExecutor{upstreamBranch: "master\n"}
	prompter := &scriptedPrompter{confirmed: false}

	commandBuilder := &restorecmd.CommandBuilder{
		RunExecutor: &scanShellRunner{porcelainOutput: " M main.go\n", localCommitCount: "0"},
		GitExecutor: gitExecutor,
		Prompter:    prompter,
	}
	command, buildError := commandBuilder.Build()
	require.NoError(testInstance, buildError)

	var outputBuffer bytes.Buffer
	command.SetOut(&outputBuffer)
	command.SetErr(&outputBuffer)
	command.SetArgs([]string{"--cwd", workspaceRoot})

	require.NoError(testInstance, command.Execute())

	require.True(testInstance, prompter.prompted)
	require.Empty(testInstance, gitExecutor.gitInvocations)
	require.Contains(testInstance, outputBuffer.String(), "Skipping restoring of dirty repos\n")
}

func TestRestoreCommandAssumeYesSkipsPrompt(testInstance *testing.T) {
	workspaceRoot := buildWorkspaceFixture(testInstance)
	gitExecutor := &manifestGitExecutor{upstreamBranch: "master\n"}
	prompter := &scriptedPrompter{confirmed: false}

	commandBuilder := &restorecmd.CommandBuilder{
		RunExecutor: &scanShellRunner{porcelainOutput: " M main.go\n", localCommitCount: "0"},
		GitExecutor: gitExecutor,
		Prompter:    prompter,
	}
	command, buildError := commandBuilder.Build()
	require.NoError(testInstance, buildError)

	var outputBuffer bytes.Buffer
	command.SetOut(&outputBuffer)
	command.SetErr(&outputBuffer)
	command.SetArgs([]string{"--cwd", workspaceRoot, "--yes"})

	require.NoError(testInstance, command.Execute())

	require.False(testInstance, prompter.prompted)
	require.Len(testInstance, gitExecutor.gitInvocations, 2)
}
