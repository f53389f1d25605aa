package version

import (
	"strings"
	"testing"
)

func TestGetUsesLinkerValues(t *testing.T) {
	old := Version
	Version = "v1.4.0"
	defer func() { Version = old }()

	if got := Get().Version; got != "v1.4.0" {
		t.Errorf("Version = %q, want v1.4.0", got)
	}
	if !strings.HasPrefix(Short(), "v1.4.0") {
		t.Errorf("Short() = %q, want v1.4.0 prefix", Short())
	}
}

func TestGitCommitShortened(t *testing.T) {
	old := GitCommit
	GitCommit = "0123456789abcdef"
	defer func() { GitCommit = old }()

	if got := Get().GitCommit; got != "0123456" {
		t.Errorf("GitCommit = %q, want 0123456", got)
	}
}
