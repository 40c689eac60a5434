package selection

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/repoutils/internal/manifest"
	"github.com/temirov/repoutils/internal/workspace"
)

const (
	manifestFilterAppliedMessageConstant = "applied manifest filter"
	groupFilterAppliedMessageConstant    = "applied group filter"
	logFieldManifestCountConstant        = "manifest_count"
	logFieldGroupNamesConstant           = "groups"
	logFieldSelectedCountConstant        = "selected_count"
)

// Criteria describes the optional filters narrowing a selection.
type Criteria struct {
	// ManifestPaths lists manifest files whose union forms an allow-list.
	// Relative paths resolve against the workspace's .repo/manifests folder.
	ManifestPaths []string
	// Groups keeps only projects whose effective groups intersect it.
	Groups []string
}

// ProjectListReader reads the workspace bookkeeping file.
type ProjectListReader interface {
	ReadProjects(workspaceRoot string) ([]workspace.Project, error)
}

// ManifestLoader parses manifest files into a project allow-list.
type ManifestLoader interface {
	Load(manifestPaths []string) (*manifest.Manifest, error)
}

// Selector produces the ordered set of in-scope projects for a workspace.
type Selector struct {
	projectListReader ProjectListReader
	manifestLoader    ManifestLoader
	logger            *zap.Logger
}

// NewSelector constructs a Selector with default collaborators.
func NewSelector(logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{
		projectListReader: workspace.NewProjectListReader(logger),
		manifestLoader:    manifest.NewLoader(),
		logger:            logger,
	}
}

// NewSelectorWithCollaborators constructs a Selector with explicit
// collaborators, primarily for testing.
func NewSelectorWithCollaborators(projectListReader ProjectListReader, manifestLoader ManifestLoader, logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{projectListReader: projectListReader, manifestLoader: manifestLoader, logger: logger}
}

// Select resolves the in-scope projects for the workspace.
//
// Projects are returned in project-list order. When manifests are supplied
// the on-disk list is intersected with their union; group filtering uses the
// effective groups recorded there. A group filter without a manifest filter
// consults the manifest the repo tool checked out for the workspace, since
// group membership is only knowable from manifest data.
func (selector *Selector) Select(workspaceRoot string, criteria Criteria) ([]workspace.Project, error) {
	selectedProjects, readError := selector.projectListReader.ReadProjects(workspaceRoot)
	if readError != nil {
		return nil, readError
	}
	if len(selectedProjects) == 0 {
		return nil, nil
	}

	manifestFilterRequested := len(criteria.ManifestPaths) > 0
	groupFilterRequested := len(criteria.Groups) > 0

	var loadedManifest *manifest.Manifest
	switch {
	case manifestFilterRequested:
		resolvedManifestPaths := make([]string, 0, len(criteria.ManifestPaths))
		for _, manifestPath := range criteria.ManifestPaths {
			resolvedManifestPaths = append(resolvedManifestPaths, resolveManifestPath(workspaceRoot, manifestPath))
		}

		aggregatedManifest, loadError := selector.manifestLoader.Load(resolvedManifestPaths)
		if loadError != nil {
			return nil, loadError
		}
		loadedManifest = aggregatedManifest
	case groupFilterRequested:
		checkedOutManifest, loadError := selector.manifestLoader.Load([]string{workspace.CheckedOutManifestPath(workspaceRoot)})
		if loadError != nil {
			return nil, loadError
		}
		loadedManifest = checkedOutManifest
	}

	if loadedManifest != nil {
		selectedProjects = annotateFromManifest(selectedProjects, loadedManifest, manifestFilterRequested)
		if manifestFilterRequested {
			selector.logger.Debug(
				manifestFilterAppliedMessageConstant,
				zap.Int(logFieldManifestCountConstant, len(criteria.ManifestPaths)),
				zap.Int(logFieldSelectedCountConstant, len(selectedProjects)),
			)
		}
	}

	if groupFilterRequested {
		selectedProjects = filterByGroups(selectedProjects, criteria.Groups)
		selector.logger.Debug(
			groupFilterAppliedMessageConstant,
			zap.Strings(logFieldGroupNamesConstant, criteria.Groups),
			zap.Int(logFieldSelectedCountConstant, len(selectedProjects)),
		)
	}

	return selectedProjects, nil
}

// resolveManifestPath resolves relative manifest arguments against the
// workspace's .repo/manifests folder, mirroring the repo tool's convention.
func resolveManifestPath(workspaceRoot string, manifestPath string) string {
	if filepath.IsAbs(manifestPath) {
		return manifestPath
	}
	return filepath.Join(workspace.ManifestsFolder(workspaceRoot), manifestPath)
}

// annotateFromManifest attaches effective groups from manifest declarations.
// When the manifest acts as an allow-list, undeclared projects are dropped;
// otherwise they are kept without group data.
func annotateFromManifest(projects []workspace.Project, loadedManifest *manifest.Manifest, manifestActsAsAllowList bool) []workspace.Project {
	annotatedProjects := make([]workspace.Project, 0, len(projects))
	for _, project := range projects {
		manifestEntry, declaredInManifest := loadedManifest.FindProject(project.Path)
		if !declaredInManifest {
			if manifestActsAsAllowList {
				continue
			}
			annotatedProjects = append(annotatedProjects, project)
			continue
		}

		annotatedProject := project
		annotatedProject.Groups = manifestEntry.Groups
		if len(annotatedProject.Name) == 0 {
			annotatedProject.Name = manifestEntry.Name
		}
		annotatedProjects = append(annotatedProjects, annotatedProject)
	}
	return annotatedProjects
}

// filterByGroups keeps projects whose effective groups intersect the request.
func filterByGroups(projects []workspace.Project, requestedGroups []string) []workspace.Project {
	filteredProjects := make([]workspace.Project, 0, len(projects))
	for _, project := range projects {
		if project.InAnyGroup(requestedGroups) {
			filteredProjects = append(filteredProjects, project)
		}
	}
	return filteredProjects
}
