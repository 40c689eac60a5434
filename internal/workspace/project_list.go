package workspace

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

const (
	projectListMissingTemplateConstant   = "no %s in %s found: %w"
	projectListOpenErrorTemplateConstant = "unable to open project list %s: %w"
	projectListScanErrorTemplateConstant = "unable to read project list %s: %w"
	projectNameSeparatorConstant         = ":"
	malformedLineWarningMessageConstant  = "skipping malformed project list line"
	duplicatePathWarningMessageConstant  = "skipping duplicate project list entry"
	logFieldProjectListPathConstant      = "project_list"
	logFieldLineNumberConstant           = "line_number"
	logFieldLineContentConstant          = "line"
	logFieldProjectPathConstant          = "project_path"
)

// ProjectListReader parses .repo/project.list into ordered Project records.
//
// The bookkeeping file is machine-written but not user-maintained, so parsing
// is permissive: blank or malformed lines are skipped with a warning instead
// of failing the run.
type ProjectListReader struct {
	logger *zap.Logger
}

// NewProjectListReader constructs a reader using the provided logger for
// partial-data warnings.
func NewProjectListReader(logger *zap.Logger) *ProjectListReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectListReader{logger: logger}
}

// ReadProjects returns the projects recorded for the workspace in file order,
// deduplicated by path.
func (reader *ProjectListReader) ReadProjects(workspaceRoot string) ([]Project, error) {
	projectListPath := ProjectListPath(workspaceRoot)

	projectListFile, openError := os.Open(projectListPath)
	if openError != nil {
		if os.IsNotExist(openError) {
			return nil, fmt.Errorf(projectListMissingTemplateConstant, projectListFileNameConstant, RepoFolder(workspaceRoot), ErrNoRepoWorkspace)
		}
		return nil, fmt.Errorf(projectListOpenErrorTemplateConstant, projectListPath, openError)
	}
	defer projectListFile.Close()

	seenPaths := make(map[string]struct{})
	var projects []Project

	lineNumber := 0
	lineScanner := bufio.NewScanner(projectListFile)
	for lineScanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(lineScanner.Text())
		if len(line) == 0 {
			continue
		}

		projectPath, projectName := splitProjectListLine(line)
		if len(projectPath) == 0 {
			reader.logger.Warn(
				malformedLineWarningMessageConstant,
				zap.String(logFieldProjectListPathConstant, projectListPath),
				zap.Int(logFieldLineNumberConstant, lineNumber),
				zap.String(logFieldLineContentConstant, line),
			)
			continue
		}

		if _, alreadySeen := seenPaths[projectPath]; alreadySeen {
			reader.logger.Warn(
				duplicatePathWarningMessageConstant,
				zap.String(logFieldProjectListPathConstant, projectListPath),
				zap.Int(logFieldLineNumberConstant, lineNumber),
				zap.String(logFieldProjectPathConstant, projectPath),
			)
			continue
		}

		seenPaths[projectPath] = struct{}{}
		projects = append(projects, Project{Path: projectPath, Name: projectName})
	}

	if scanError := lineScanner.Err(); scanError != nil {
		return nil, fmt.Errorf(projectListScanErrorTemplateConstant, projectListPath, scanError)
	}

	return projects, nil
}

// splitProjectListLine splits a `path` or `path : name` record into its parts.
func splitProjectListLine(line string) (string, string) {
	projectPath, projectName, separatorFound := strings.Cut(line, projectNameSeparatorConstant)
	if !separatorFound {
		return strings.TrimSpace(line), ""
	}
	return strings.TrimSpace(projectPath), strings.TrimSpace(projectName)
}
