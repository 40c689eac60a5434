package forall

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/repoutils/internal/execshell"
	"github.com/temirov/repoutils/internal/workspace"
)

const (
	shellCommandFlagConstant               = "-c"
	projectPathEnvironmentVariableConstant = "REPO_PATH"
	unitStartedMessageConstant             = "project command started"
	unitFinishedMessageConstant            = "project command finished"
	unitSkippedMessageConstant             = "project command skipped after earlier failure"
	logFieldProjectPathConstant            = "project_path"
	logFieldOutcomeConstant                = "outcome"
	logFieldDurationConstant               = "duration"
)

// CommandSpec is the data-only description of the work to run per project.
type CommandSpec struct {
	// CommandLine is handed to `sh -c` in each project's working directory.
	CommandLine string
	// EnvironmentVariables are set for every child in addition to REPO_PATH.
	EnvironmentVariables map[string]string
}

// Options tunes one Execute invocation.
type Options struct {
	// FailFast stops starting new units after the first failed unit.
	FailFast bool
	// WorkerCount bounds the pool; values below one select the host
	// parallelism.
	WorkerCount int
}

// Outcome classifies one project's unit of work.
type Outcome int

// Unit outcomes.
const (
	// OutcomeSucceeded marks a unit whose command exited zero.
	OutcomeSucceeded Outcome = iota
	// OutcomeFailed marks a unit whose command exited non-zero or died on a
	// signal.
	OutcomeFailed
	// OutcomeSkipped marks a unit never started because fail-fast tripped.
	OutcomeSkipped
	// OutcomeError marks a unit whose command could not be spawned.
	OutcomeError
)

// String names the outcome for reports and logs.
func (outcome Outcome) String() string {
	switch outcome {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "error"
	}
}

// ProjectResult captures one project's execution outcome.
type ProjectResult struct {
	Project        workspace.Project
	Outcome        Outcome
	ExitCode       int
	StandardOutput string
	StandardError  string
	Failure        error
	Duration       time.Duration
}

// RunReport aggregates the per-project results of one run in selection order.
type RunReport struct {
	Results []ProjectResult
}

// Failed reports whether any unit of work failed or errored.
func (report RunReport) Failed() bool {
	for _, result := range report.Results {
		if result.Outcome == OutcomeFailed || result.Outcome == OutcomeError {
			return true
		}
	}
	return false
}

// CountByOutcome tallies results with the given outcome.
func (report RunReport) CountByOutcome(outcome Outcome) int {
	matchingCount := 0
	for _, result := range report.Results {
		if result.Outcome == outcome {
			matchingCount++
		}
	}
	return matchingCount
}

// ShellRunner is the subset of shell execution the executor needs.
type ShellRunner interface {
	ExecuteShell(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Executor fans a command out across projects through a bounded worker pool.
type Executor struct {
	shellRunner ShellRunner
	logger      *zap.Logger
}

// ErrShellRunnerNotConfigured indicates NewExecutor received no runner.
var ErrShellRunnerNotConfigured = errors.New("shell runner not configured")

// NewExecutor constructs an Executor around the provided shell runner.
func NewExecutor(shellRunner ShellRunner, logger *zap.Logger) (*Executor, error) {
	if shellRunner == nil {
		return nil, ErrShellRunnerNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{shellRunner: shellRunner, logger: logger}, nil
}

// Execute runs the command once per project and returns per-project results
// in selection order. Units run concurrently; the pool is bounded so large
// selections cannot exhaust the host. In-flight children are never killed:
// fail-fast only prevents units from starting.
func (executor *Executor) Execute(executionContext context.Context, workspaceRoot string, projects []workspace.Project, spec CommandSpec, options Options) RunReport {
	projectResults := make([]ProjectResult, len(projects))
	for projectIndex, project := range projects {
		projectResults[projectIndex] = ProjectResult{Project: project, Outcome: OutcomeSkipped}
	}

	var failureObserved atomic.Bool
	projectIndexes := make(chan int)
	var workerGroup sync.WaitGroup

	for workerNumber := 0; workerNumber < resolveWorkerCount(options.WorkerCount, len(projects)); workerNumber++ {
		workerGroup.Add(1)
		go func() {
			defer workerGroup.Done()
			for projectIndex := range projectIndexes {
				if options.FailFast && failureObserved.Load() {
					executor.logger.Debug(
						unitSkippedMessageConstant,
						zap.String(logFieldProjectPathConstant, projectResults[projectIndex].Project.Path),
					)
					continue
				}

				projectResults[projectIndex] = executor.runUnit(executionContext, workspaceRoot, projectResults[projectIndex].Project, spec)
				if projectResults[projectIndex].Outcome != OutcomeSucceeded {
					failureObserved.Store(true)
				}
			}
		}()
	}

	for projectIndex := range projects {
		projectIndexes <- projectIndex
	}
	close(projectIndexes)
	workerGroup.Wait()

	return RunReport{Results: projectResults}
}

// runUnit executes the command for one project and classifies the outcome.
func (executor *Executor) runUnit(executionContext context.Context, workspaceRoot string, project workspace.Project, spec CommandSpec) ProjectResult {
	environmentVariables := map[string]string{projectPathEnvironmentVariableConstant: project.Path}
	for environmentKey, environmentValue := range spec.EnvironmentVariables {
		environmentVariables[environmentKey] = environmentValue
	}

	commandDetails := execshell.CommandDetails{
		Arguments:            []string{shellCommandFlagConstant, spec.CommandLine},
		WorkingDirectory:     filepath.Join(workspaceRoot, project.Path),
		EnvironmentVariables: environmentVariables,
	}

	executor.logger.Debug(unitStartedMessageConstant, zap.String(logFieldProjectPathConstant, project.Path))

	startedAt := time.Now()
	executionResult, executionError := executor.shellRunner.ExecuteShell(executionContext, commandDetails)
	unitDuration := time.Since(startedAt)

	result := ProjectResult{
		Project:        project,
		Outcome:        OutcomeSucceeded,
		ExitCode:       executionResult.ExitCode,
		StandardOutput: executionResult.StandardOutput,
		StandardError:  executionResult.StandardError,
		Duration:       unitDuration,
	}

	if executionError != nil {
		commandFailed := execshell.CommandFailedError{}
		if errors.As(executionError, &commandFailed) {
			result.Outcome = OutcomeFailed
			result.ExitCode = commandFailed.Result.ExitCode
			result.StandardOutput = commandFailed.Result.StandardOutput
			result.StandardError = commandFailed.Result.StandardError
		} else {
			result.Outcome = OutcomeError
			result.Failure = executionError
		}
	}

	executor.logger.Debug(
		unitFinishedMessageConstant,
		zap.String(logFieldProjectPathConstant, project.Path),
		zap.String(logFieldOutcomeConstant, result.Outcome.String()),
		zap.Duration(logFieldDurationConstant, unitDuration),
	)

	return result
}

// resolveWorkerCount bounds the pool by host parallelism and selection size.
func resolveWorkerCount(requestedWorkerCount int, projectCount int) int {
	workerCount := requestedWorkerCount
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	if workerCount > projectCount {
		workerCount = projectCount
	}
	if workerCount < 1 {
		workerCount = 1
	}
	return workerCount
}
