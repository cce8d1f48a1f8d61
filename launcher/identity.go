package launcher

import (
	"path/filepath"

	"github.com/google/uuid"
	"github.com/kizaaku/climonitor/protocol"
)

// Identity is the launcher's process-scoped identity, per spec.md §3.
type Identity = protocol.Identity

// NewIdentity constructs an Identity for one launcher process. projectName,
// when empty, defaults to the basename of workingDir.
func NewIdentity(toolKind, workingDir, projectName string) Identity {
	if projectName == "" {
		projectName = filepath.Base(workingDir)
	}
	return Identity{
		LauncherID:  uuid.NewString(),
		WorkingDir:  workingDir,
		ToolKind:    toolKind,
		ProjectName: projectName,
	}
}
