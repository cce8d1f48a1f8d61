package launcher

import "testing"

func TestNewIdentityDefaultsProjectNameToWorkingDirBasename(t *testing.T) {
	id := NewIdentity("claude", "/home/user/projects/widget", "")

	if id.ProjectName != "widget" {
		t.Fatalf("expected project name %q, got %q", "widget", id.ProjectName)
	}
	if id.ToolKind != "claude" {
		t.Fatalf("expected tool kind %q, got %q", "claude", id.ToolKind)
	}
	if id.WorkingDir != "/home/user/projects/widget" {
		t.Fatalf("unexpected working dir %q", id.WorkingDir)
	}
	if id.LauncherID == "" {
		t.Fatalf("expected a non-empty launcher id")
	}
}

func TestNewIdentityHonorsExplicitProjectName(t *testing.T) {
	id := NewIdentity("gemini", "/home/user/projects/widget", "my-project")

	if id.ProjectName != "my-project" {
		t.Fatalf("expected explicit project name to win, got %q", id.ProjectName)
	}
}

func TestNewIdentityGeneratesDistinctIDs(t *testing.T) {
	a := NewIdentity("claude", "/tmp/a", "")
	b := NewIdentity("claude", "/tmp/a", "")

	if a.LauncherID == b.LauncherID {
		t.Fatalf("expected distinct launcher ids across calls, got %q twice", a.LauncherID)
	}
}
