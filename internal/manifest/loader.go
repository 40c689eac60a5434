package manifest

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	manifestOpenErrorTemplateConstant    = "unable to open manifest %s: %w"
	manifestDecodeErrorTemplateConstant  = "unable to parse manifest %s: %w"
	manifestIncludeErrorTemplateConstant = "unable to resolve include %s: %w"
	manifestParseErrorTemplateConstant   = "manifest %s: %v"
	implicitDefaultGroupNameConstant     = "default"
	groupListCommaSeparatorConstant      = ','
	groupListSpaceSeparatorConstant      = ' '
)

// ProjectEntry is one project declaration with its effective groups.
type ProjectEntry struct {
	Name   string
	Path   string
	Groups []string
}

// Manifest is the union of project declarations loaded from one or more
// manifest files, keyed by project path.
type Manifest struct {
	Projects  []ProjectEntry
	pathIndex map[string]int
}

// ParseError reports a manifest file that could not be read or decoded.
type ParseError struct {
	ManifestPath string
	Cause        error
}

// Error describes the failed manifest.
func (parseError ParseError) Error() string {
	return fmt.Sprintf(manifestParseErrorTemplateConstant, parseError.ManifestPath, parseError.Cause)
}

// Unwrap exposes the underlying failure.
func (parseError ParseError) Unwrap() error {
	return parseError.Cause
}

// FindProject returns the declaration for a project path.
func (manifest *Manifest) FindProject(projectPath string) (ProjectEntry, bool) {
	entryIndex, entryPresent := manifest.pathIndex[projectPath]
	if !entryPresent {
		return ProjectEntry{}, false
	}
	return manifest.Projects[entryIndex], true
}

// ContainsProject reports whether a project path is declared.
func (manifest *Manifest) ContainsProject(projectPath string) bool {
	_, entryPresent := manifest.pathIndex[projectPath]
	return entryPresent
}

func (manifest *Manifest) appendEntry(entry ProjectEntry) {
	if manifest.pathIndex == nil {
		manifest.pathIndex = make(map[string]int)
	}
	if _, alreadyDeclared := manifest.pathIndex[entry.Path]; alreadyDeclared {
		return
	}
	manifest.pathIndex[entry.Path] = len(manifest.Projects)
	manifest.Projects = append(manifest.Projects, entry)
}

type xmlManifestDocument struct {
	XMLName  xml.Name            `xml:"manifest"`
	Projects []xmlProjectElement `xml:"project"`
	Includes []xmlIncludeElement `xml:"include"`
}

type xmlProjectElement struct {
	Name   string `xml:"name,attr"`
	Path   string `xml:"path,attr"`
	Groups string `xml:"groups,attr"`
}

type xmlIncludeElement struct {
	Name string `xml:"name,attr"`
}

// Loader reads manifest XML files.
type Loader struct{}

// NewLoader constructs a manifest Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every supplied manifest file and returns the union of their
// declared projects. Any unreadable or malformed file yields a ParseError.
func (loader *Loader) Load(manifestPaths []string) (*Manifest, error) {
	aggregatedManifest := &Manifest{}
	for _, manifestPath := range manifestPaths {
		if loadError := loader.loadInto(aggregatedManifest, manifestPath, map[string]struct{}{}); loadError != nil {
			return nil, loadError
		}
	}
	return aggregatedManifest, nil
}

// loadInto parses one manifest file and its includes into the aggregate.
// visitedPaths guards against include cycles.
func (loader *Loader) loadInto(aggregatedManifest *Manifest, manifestPath string, visitedPaths map[string]struct{}) error {
	normalizedPath := filepath.Clean(manifestPath)
	if _, alreadyVisited := visitedPaths[normalizedPath]; alreadyVisited {
		return nil
	}
	visitedPaths[normalizedPath] = struct{}{}

	manifestFile, openError := os.Open(normalizedPath)
	if openError != nil {
		return ParseError{ManifestPath: normalizedPath, Cause: fmt.Errorf(manifestOpenErrorTemplateConstant, normalizedPath, openError)}
	}
	defer manifestFile.Close()

	var decodedDocument xmlManifestDocument
	if decodeError := xml.NewDecoder(manifestFile).Decode(&decodedDocument); decodeError != nil {
		return ParseError{ManifestPath: normalizedPath, Cause: fmt.Errorf(manifestDecodeErrorTemplateConstant, normalizedPath, decodeError)}
	}

	for _, projectElement := range decodedDocument.Projects {
		aggregatedManifest.appendEntry(ProjectEntry{
			Name:   projectElement.Name,
			Path:   projectElement.Path,
			Groups: deriveEffectiveGroups(projectElement),
		})
	}

	for _, includeElement := range decodedDocument.Includes {
		includedPath := filepath.Join(filepath.Dir(normalizedPath), includeElement.Name)
		if includeError := loader.loadInto(aggregatedManifest, includedPath, visitedPaths); includeError != nil {
			return ParseError{ManifestPath: normalizedPath, Cause: fmt.Errorf(manifestIncludeErrorTemplateConstant, includeElement.Name, includeError)}
		}
	}

	return nil
}

// deriveEffectiveGroups unions the explicit groups attribute with the
// implicit memberships the repo tool grants every project: the synthetic
// "default" group and a group named after the project itself.
func deriveEffectiveGroups(projectElement xmlProjectElement) []string {
	explicitGroups := strings.FieldsFunc(projectElement.Groups, func(separatorCandidate rune) bool {
		return separatorCandidate == groupListCommaSeparatorConstant || separatorCandidate == groupListSpaceSeparatorConstant
	})

	effectiveGroups := make([]string, 0, len(explicitGroups)+2)
	seenGroups := make(map[string]struct{}, len(explicitGroups)+2)
	appendGroup := func(groupName string) {
		if len(groupName) == 0 {
			return
		}
		if _, alreadyPresent := seenGroups[groupName]; alreadyPresent {
			return
		}
		seenGroups[groupName] = struct{}{}
		effectiveGroups = append(effectiveGroups, groupName)
	}

	for _, explicitGroup := range explicitGroups {
		appendGroup(explicitGroup)
	}
	appendGroup(implicitDefaultGroupNameConstant)
	appendGroup(projectElement.Name)

	return effectiveGroups
}
