package cmd

import (
	"runtime"
	"runtime/debug"
	"strings"
	"testing"
)

func withVersion(t *testing.T, version string, info *debug.BuildInfo) {
	t.Helper()
	oldVersion, oldRead := Version, readBuildInfo
	Version = version
	readBuildInfo = func() (*debug.BuildInfo, bool) { return info, info != nil }
	t.Cleanup(func() {
		Version = oldVersion
		readBuildInfo = oldRead
	})
}

func TestResolvedVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
		info    *debug.BuildInfo
		want    string
	}{
		{"ldflags wins", "v1.2.0", &debug.BuildInfo{Main: debug.Module{Version: "v0.9.0"}}, "v1.2.0"},
		{"go install version", "dev", &debug.BuildInfo{Main: debug.Module{Version: "v0.9.0"}}, "v0.9.0"},
		{"local build", "dev", &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, "dev"},
		{"no build info", "dev", nil, "dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withVersion(t, tt.version, tt.info)
			if got := resolvedVersion(); got != tt.want {
				t.Errorf("resolvedVersion() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVersionCmd(t *testing.T) {
	withVersion(t, "v1.2.0", nil)

	out := captureStdout(t, func() { versionCmd.Run(versionCmd, nil) })
	if !strings.HasPrefix(out, "cdm v1.2.0\n") {
		t.Errorf("unexpected first line: %q", out)
	}
	if !strings.Contains(out, runtime.Version()) {
		t.Errorf("output should include the Go version: %q", out)
	}
}
