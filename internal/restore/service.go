package restore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/repoutils/internal/execshell"
	"github.com/temirov/repoutils/internal/forall"
	"github.com/temirov/repoutils/internal/utils"
	"github.com/temirov/repoutils/internal/workspace"
)

const (
	porcelainStatusCommandConstant     = "git status --porcelain"
	localCommitCountCommandTemplate    = "git rev-list --count %s..HEAD"
	syncBranchLookupCommandConstant    = `git for-each-ref --format '%(upstream:lstrip=-1)' "$(git symbolic-ref -q HEAD)"`
	syncBranchPrefixConstant           = "m/"
	shellCommandFlagConstant           = "-c"
	gitCleanSubcommandConstant         = "clean"
	gitCleanForceFlagConstant          = "-fd"
	gitResetSubcommandConstant         = "reset"
	gitResetHardFlagConstant           = "--hard"
	uncommittedChangesLineTemplate     = "%s: uncommitted changes\n"
	localCommitsLineTemplateConstant   = "%s: found local commit(s)\n"
	cleanLineTemplateConstant          = "%s: clean\n"
	scanErrorLineTemplateConstant      = "%s: error: %s\n"
	scanSummaryTemplateConstant        = "\n%d/%d git repos deviate from the last repo sync\n\n"
	nothingToRestoreMessageConstant    = "Nothing to be done, bye\n"
	restoreDeclinedMessageConstant     = "Skipping restoring of dirty repos\n"
	restoringProjectTemplateConstant   = "Restoring %s\n"
	restoringFinishedMessageConstant   = "Restoring done\n"
	confirmationPromptConstant         = "DANGER: do you want to restore state from last repo sync? local-only data will be lost! [y/N] "
	syncBranchLookupErrorTemplate      = "unable to determine last repo sync branch: %w"
	syncBranchEmptyMessageConstant     = "manifest repository reports no upstream branch"
	restoreFailedErrorTemplateConstant = "failed to restore %s: %w"
	scanFailedErrorTemplateConstant    = "%d projects could not be scanned"
)

// Options tunes one restore run.
type Options struct {
	// Verbose also reports clean projects during the scan.
	Verbose bool
	// DryRun stops after the scan without mutating anything.
	DryRun bool
	// AssumeYes skips the confirmation prompt.
	AssumeYes bool
	// WorkerCount bounds the scan pool; values below one select the host
	// parallelism.
	WorkerCount int
}

// Candidate is one project's scan result.
type Candidate struct {
	Project            workspace.Project
	UncommittedChanges bool
	LocalCommitCount   int
	ScanFailure        error
}

// Deviates reports whether the project differs from the last repo sync.
func (candidate Candidate) Deviates() bool {
	return candidate.UncommittedChanges || candidate.LocalCommitCount > 0
}

// RunExecutor fans a fixed command out across projects.
type RunExecutor interface {
	Execute(executionContext context.Context, workspaceRoot string, projects []workspace.Project, spec forall.CommandSpec, options forall.Options) forall.RunReport
}

// GitExecutor runs git and shell commands for the restore phase.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteShell(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Configuration sentinels returned by NewService.
var (
	ErrRunExecutorNotConfigured = errors.New("run executor not configured")
	ErrGitExecutorNotConfigured = errors.New("git executor not configured")
)

// Service restores projects to the last repo sync state.
type Service struct {
	runExecutor  RunExecutor
	gitExecutor  GitExecutor
	prompter     ConfirmationPrompter
	outputWriter io.Writer
	logger       *zap.Logger
}

// NewService constructs a restore Service. A nil prompter declines every
// confirmation, which keeps accidental mutation impossible.
func NewService(runExecutor RunExecutor, gitExecutor GitExecutor, prompter ConfirmationPrompter, outputWriter io.Writer, logger *zap.Logger) (*Service, error) {
	if runExecutor == nil {
		return nil, ErrRunExecutorNotConfigured
	}
	if gitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if outputWriter == nil {
		outputWriter = os.Stdout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		runExecutor:  runExecutor,
		gitExecutor:  gitExecutor,
		prompter:     prompter,
		outputWriter: utils.NewFlushingWriter(outputWriter),
		logger:       logger,
	}, nil
}

// Run scans the projects for deviations from the last repo sync and, after
// confirmation, restores the deviating ones.
func (service *Service) Run(executionContext context.Context, workspaceRoot string, projects []workspace.Project, options Options) error {
	syncBranchName, lookupError := service.lookupSyncBranch(executionContext, workspaceRoot)
	if lookupError != nil {
		return lookupError
	}

	candidates := service.scan(executionContext, workspaceRoot, projects, syncBranchName, options)

	deviatingCandidates := make([]Candidate, 0, len(candidates))
	scanFailureCount := 0
	for _, candidate := range candidates {
		if candidate.ScanFailure != nil {
			scanFailureCount++
			continue
		}
		if candidate.Deviates() {
			deviatingCandidates = append(deviatingCandidates, candidate)
		}
	}

	fmt.Fprintf(service.outputWriter, scanSummaryTemplateConstant, len(deviatingCandidates), len(projects))

	if options.DryRun || len(deviatingCandidates) == 0 {
		fmt.Fprint(service.outputWriter, nothingToRestoreMessageConstant)
		if scanFailureCount > 0 {
			return fmt.Errorf(scanFailedErrorTemplateConstant, scanFailureCount)
		}
		return nil
	}

	confirmed, confirmationError := service.confirmRestore(options)
	if confirmationError != nil {
		return confirmationError
	}
	if !confirmed {
		fmt.Fprint(service.outputWriter, restoreDeclinedMessageConstant)
		return nil
	}

	for _, candidate := range deviatingCandidates {
		if restoreError := service.restoreProject(executionContext, workspaceRoot, candidate.Project, syncBranchName); restoreError != nil {
			return fmt.Errorf(restoreFailedErrorTemplateConstant, candidate.Project.Path, restoreError)
		}
	}

	fmt.Fprint(service.outputWriter, restoringFinishedMessageConstant)
	if scanFailureCount > 0 {
		return fmt.Errorf(scanFailedErrorTemplateConstant, scanFailureCount)
	}
	return nil
}

// lookupSyncBranch resolves the remote branch tracking the last repo sync.
// The repo tool records it as the upstream of the checked-out manifest
// branch, surfaced locally under the m/ prefix.
func (service *Service) lookupSyncBranch(executionContext context.Context, workspaceRoot string) (string, error) {
	lookupResult, lookupError := service.gitExecutor.ExecuteShell(executionContext, execshell.CommandDetails{
		Arguments:        []string{shellCommandFlagConstant, syncBranchLookupCommandConstant},
		WorkingDirectory: workspace.ManifestsFolder(workspaceRoot),
	})
	if lookupError != nil {
		return "", fmt.Errorf(syncBranchLookupErrorTemplate, lookupError)
	}

	upstreamBranchName := strings.TrimSpace(lookupResult.StandardOutput)
	if len(upstreamBranchName) == 0 {
		return "", fmt.Errorf(syncBranchLookupErrorTemplate, errors.New(syncBranchEmptyMessageConstant))
	}

	return syncBranchPrefixConstant + upstreamBranchName, nil
}

// scan runs the two fixed inspections across every project and combines the
// per-project results. Scan failures are recorded per project, never fatal.
func (service *Service) scan(executionContext context.Context, workspaceRoot string, projects []workspace.Project, syncBranchName string, options Options) []Candidate {
	poolOptions := forall.Options{WorkerCount: options.WorkerCount}

	statusReport := service.runExecutor.Execute(
		executionContext,
		workspaceRoot,
		projects,
		forall.CommandSpec{CommandLine: porcelainStatusCommandConstant},
		poolOptions,
	)
	localCommitReport := service.runExecutor.Execute(
		executionContext,
		workspaceRoot,
		projects,
		forall.CommandSpec{CommandLine: fmt.Sprintf(localCommitCountCommandTemplate, syncBranchName)},
		poolOptions,
	)

	candidates := make([]Candidate, len(projects))
	for projectIndex, project := range projects {
		candidate := Candidate{Project: project}

		statusResult := statusReport.Results[projectIndex]
		commitResult := localCommitReport.Results[projectIndex]

		switch {
		case statusResult.Outcome != forall.OutcomeSucceeded:
			candidate.ScanFailure = resultFailure(statusResult)
		case commitResult.Outcome != forall.OutcomeSucceeded:
			candidate.ScanFailure = resultFailure(commitResult)
		default:
			candidate.UncommittedChanges = len(strings.TrimSpace(statusResult.StandardOutput)) > 0
			localCommitCount, parseError := strconv.Atoi(strings.TrimSpace(commitResult.StandardOutput))
			if parseError != nil {
				candidate.ScanFailure = parseError
			} else {
				candidate.LocalCommitCount = localCommitCount
			}
		}

		candidates[projectIndex] = candidate
		service.reportCandidate(candidate, options)
	}

	return candidates
}

func (service *Service) reportCandidate(candidate Candidate, options Options) {
	if candidate.ScanFailure != nil {
		fmt.Fprintf(service.outputWriter, scanErrorLineTemplateConstant, candidate.Project.Path, candidate.ScanFailure)
		return
	}
	if candidate.UncommittedChanges {
		fmt.Fprintf(service.outputWriter, uncommittedChangesLineTemplate, candidate.Project.Path)
	}
	if candidate.LocalCommitCount > 0 {
		fmt.Fprintf(service.outputWriter, localCommitsLineTemplateConstant, candidate.Project.Path)
	}
	if options.Verbose && !candidate.Deviates() {
		fmt.Fprintf(service.outputWriter, cleanLineTemplateConstant, candidate.Project.Path)
	}
}

func (service *Service) confirmRestore(options Options) (bool, error) {
	if options.AssumeYes {
		return true, nil
	}
	if service.prompter == nil {
		return false, nil
	}
	return service.prompter.Confirm(confirmationPromptConstant)
}

// restoreProject discards local changes and resets the project to the sync
// branch.
func (service *Service) restoreProject(executionContext context.Context, workspaceRoot string, project workspace.Project, syncBranchName string) error {
	fmt.Fprintf(service.outputWriter, restoringProjectTemplateConstant, project.Path)

	projectDirectory := filepath.Join(workspaceRoot, project.Path)

	if _, cleanError := service.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitCleanSubcommandConstant, gitCleanForceFlagConstant},
		WorkingDirectory: projectDirectory,
	}); cleanError != nil {
		return cleanError
	}

	if _, resetError := service.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitResetSubcommandConstant, gitResetHardFlagConstant, syncBranchName},
		WorkingDirectory: projectDirectory,
	}); resetError != nil {
		return resetError
	}

	return nil
}

func resultFailure(result forall.ProjectResult) error {
	if result.Failure != nil {
		return result.Failure
	}
	return errors.New(strings.TrimSpace(result.StandardError))
}
