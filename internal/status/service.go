package status

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/repoutils/internal/forall"
	"github.com/temirov/repoutils/internal/utils"
	"github.com/temirov/repoutils/internal/workspace"
)

const (
	porcelainStatusCommandConstant = "git status --porcelain"
	dirtyLineTemplateConstant      = "%s: dirty\n"
	cleanLineTemplateConstant      = "%s: clean\n"
	errorLineTemplateConstant      = "%s: error: %s\n"
	summaryTemplateConstant        = "\n%d/%d repositories dirty\n"
)

// ProjectState classifies one project's working tree.
type ProjectState int

// Project states.
const (
	StateClean ProjectState = iota
	StateDirty
	StateError
)

// String names the state for reports.
func (state ProjectState) String() string {
	switch state {
	case StateClean:
		return "clean"
	case StateDirty:
		return "dirty"
	default:
		return "error"
	}
}

// ProjectStatus pairs a project with its classified state.
type ProjectStatus struct {
	Project workspace.Project
	State   ProjectState
	Detail  string
}

// Summary aggregates a status run.
type Summary struct {
	Statuses   []ProjectStatus
	DirtyCount int
	ErrorCount int
}

// Options tunes one status run.
type Options struct {
	// Verbose also reports clean projects.
	Verbose bool
	// WorkerCount bounds the pool; values below one select the host
	// parallelism.
	WorkerCount int
}

// RunExecutor fans a fixed command out across projects.
type RunExecutor interface {
	Execute(executionContext context.Context, workspaceRoot string, projects []workspace.Project, spec forall.CommandSpec, options forall.Options) forall.RunReport
}

// ErrRunExecutorNotConfigured indicates NewService received no executor.
var ErrRunExecutorNotConfigured = errors.New("run executor not configured")

// Service checks uncommitted-change status across projects.
type Service struct {
	runExecutor  RunExecutor
	outputWriter io.Writer
	logger       *zap.Logger
}

// NewService constructs a status Service.
func NewService(runExecutor RunExecutor, outputWriter io.Writer, logger *zap.Logger) (*Service, error) {
	if runExecutor == nil {
		return nil, ErrRunExecutorNotConfigured
	}
	if outputWriter == nil {
		outputWriter = os.Stdout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{runExecutor: runExecutor, outputWriter: utils.NewFlushingWriter(outputWriter), logger: logger}, nil
}

// Run inspects every project and reports dirty and erroring ones, or every
// project when verbose is requested. Failures never abort the run; they are
// classified per project.
func (service *Service) Run(executionContext context.Context, workspaceRoot string, projects []workspace.Project, options Options) Summary {
	report := service.runExecutor.Execute(
		executionContext,
		workspaceRoot,
		projects,
		forall.CommandSpec{CommandLine: porcelainStatusCommandConstant},
		forall.Options{WorkerCount: options.WorkerCount},
	)

	summary := Summary{Statuses: make([]ProjectStatus, 0, len(report.Results))}
	for _, result := range report.Results {
		projectStatus := classifyResult(result)
		summary.Statuses = append(summary.Statuses, projectStatus)

		switch projectStatus.State {
		case StateDirty:
			summary.DirtyCount++
			fmt.Fprintf(service.outputWriter, dirtyLineTemplateConstant, projectStatus.Project.Path)
		case StateError:
			summary.ErrorCount++
			fmt.Fprintf(service.outputWriter, errorLineTemplateConstant, projectStatus.Project.Path, projectStatus.Detail)
		case StateClean:
			if options.Verbose {
				fmt.Fprintf(service.outputWriter, cleanLineTemplateConstant, projectStatus.Project.Path)
			}
		}
	}

	fmt.Fprintf(service.outputWriter, summaryTemplateConstant, summary.DirtyCount, len(projects))
	return summary
}

// classifyResult maps an execution result onto a working-tree state. Any
// porcelain output means uncommitted changes.
func classifyResult(result forall.ProjectResult) ProjectStatus {
	projectStatus := ProjectStatus{Project: result.Project}

	switch result.Outcome {
	case forall.OutcomeSucceeded:
		if len(strings.TrimSpace(result.StandardOutput)) > 0 {
			projectStatus.State = StateDirty
			projectStatus.Detail = result.StandardOutput
		}
	case forall.OutcomeFailed:
		projectStatus.State = StateError
		projectStatus.Detail = strings.TrimSpace(result.StandardError)
	default:
		projectStatus.State = StateError
		if result.Failure != nil {
			projectStatus.Detail = result.Failure.Error()
		}
	}

	return projectStatus
}
