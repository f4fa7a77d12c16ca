package version

import (
	"runtime/debug"
	"testing"
)

func TestCurrentPrefersStampedVersion(t *testing.T) {
	old := buildVersion
	buildVersion = " v1.2.3 "
	t.Cleanup(func() { buildVersion = old })

	if got := Current(); got != "v1.2.3" {
		t.Fatalf("expected stamped version, got %q", got)
	}
}

func TestFromBuildInfo(t *testing.T) {
	vcs := func(modified string) []debug.BuildSetting {
		return []debug.BuildSetting{
			{Key: "vcs.revision", Value: "1234567890abcdef"},
			{Key: "vcs.time", Value: "2025-01-02T03:04:05Z"},
			{Key: "vcs.modified", Value: modified},
		}
	}
	cases := []struct {
		name string
		info *debug.BuildInfo
		want string
	}{
		{name: "nil", info: nil, want: unknown},
		{name: "module version", info: &debug.BuildInfo{Main: debug.Module{Version: "v0.3.0"}}, want: "v0.3.0"},
		{name: "clean checkout", info: &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}, Settings: vcs("false")}, want: "v0.0.0-20250102030405-1234567890ab"},
		{name: "dirty checkout", info: &debug.BuildInfo{Settings: vcs("true")}, want: "v0.0.0-20250102030405-1234567890ab+dirty"},
		{name: "no vcs", info: &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, want: unknown},
	}
	for _, tc := range cases {
		if got := fromBuildInfo(tc.info); got != tc.want {
			t.Fatalf("%s: fromBuildInfo = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestModuleFallsBack(t *testing.T) {
	if Module() == "" {
		t.Fatalf("expected a module path")
	}
}
