package workspace

// Project identifies one git checkout managed by the repo tool.
type Project struct {
	// Path is the project location relative to the workspace root and serves
	// as the project identity within a workspace.
	Path string
	// Name is the declared project name when the bookkeeping file or a
	// manifest records one; it may be empty.
	Name string
	// Groups lists the effective group memberships resolved from manifest
	// data. The slice is nil when no manifest has been consulted.
	Groups []string
}

// InAnyGroup reports whether the project belongs to at least one of the
// requested groups.
func (project Project) InAnyGroup(requestedGroups []string) bool {
	for _, projectGroup := range project.Groups {
		for _, requestedGroup := range requestedGroups {
			if projectGroup == requestedGroup {
				return true
			}
		}
	}
	return false
}
