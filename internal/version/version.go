// Package version reports what build of ahalaj is running.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

const (
	modulePath = "pkt.systems/ahalaj"
	unknown    = "v0.0.0-unknown"
)

// buildVersion is stamped with
// -ldflags "-X pkt.systems/ahalaj/internal/version.buildVersion=v1.2.3".
var buildVersion string

// Current returns the stamped version, the module version, or a
// pseudo-version derived from VCS settings, in that order.
func Current() string {
	if v := strings.TrimSpace(buildVersion); v != "" {
		return v
	}
	info, _ := debug.ReadBuildInfo()
	return fromBuildInfo(info)
}

// Module returns the main module path.
func Module() string {
	if info, ok := debug.ReadBuildInfo(); ok && strings.TrimSpace(info.Main.Path) != "" {
		return info.Main.Path
	}
	return modulePath
}

func fromBuildInfo(info *debug.BuildInfo) string {
	if info == nil {
		return unknown
	}
	if v := strings.TrimSpace(info.Main.Version); v != "" && v != "(devel)" {
		return v
	}
	settings := make(map[string]string, len(info.Settings))
	for _, setting := range info.Settings {
		settings[setting.Key] = setting.Value
	}
	revision := settings["vcs.revision"]
	stamp, err := time.Parse(time.RFC3339, settings["vcs.time"])
	if revision == "" || err != nil {
		return unknown
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	v := fmt.Sprintf("v0.0.0-%s-%s", stamp.UTC().Format("20060102150405"), revision)
	if settings["vcs.modified"] == "true" {
		v += "+dirty"
	}
	return v
}
