package ptywrap

import "testing"

func TestResolveToolUnknownKind(t *testing.T) {
	if _, err := ResolveTool("not-a-real-tool"); err == nil {
		t.Fatalf("expected error for unknown tool kind")
	}
}

func TestResolveToolLooksUpKnownKinds(t *testing.T) {
	for _, kind := range []string{"claude", "gemini"} {
		// The binary may not be installed in the test environment; what
		// matters is that a known kind doesn't fail with "unknown tool
		// kind" before even attempting the PATH search.
		_, err := ResolveTool(kind)
		if err != nil && err.Error() == "ptywrap: unknown tool kind \""+kind+"\"" {
			t.Fatalf("known kind %q misclassified as unknown", kind)
		}
	}
}
