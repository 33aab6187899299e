package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	result := String()

	for _, want := range []string{"prdgen version", Version, "commit " + Commit, "built " + BuildTime} {
		if !strings.Contains(result, want) {
			t.Errorf("String() = %q, should contain %q", result, want)
		}
	}
}

func TestDefaultValues(t *testing.T) {
	if Version != "dev" {
		t.Errorf("Version = %q, want 'dev'", Version)
	}
	if BuildTime != "unknown" {
		t.Errorf("BuildTime = %q, want 'unknown'", BuildTime)
	}
}

func TestGet(t *testing.T) {
	info := Get()
	if info.Version != Version || info.GoVersion != runtime.Version() {
		t.Errorf("Get() = %+v", info)
	}
}
