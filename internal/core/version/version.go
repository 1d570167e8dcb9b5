// Package version reports the build version of a relay binary
package version

import "runtime/debug"

// BuildInfo holds version information about a build
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns build information for service. version, commit and date are set with
// -ldflags "-X mediarelay/internal/core/version.version=v0.1.0 -X ...commit=abcd -X ...date=2026-01-02".
// Without ldflags the VCS revision recorded by the toolchain is used when present
func Info(service string) BuildInfo {
	bi := BuildInfo{Service: service, Version: version, Commit: commit, Date: date}
	if commit != "none" {
		return bi
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				bi.Commit = s.Value
			case "vcs.time":
				bi.Date = s.Value
			}
		}
	}
	return bi
}

func (b BuildInfo) String() string {
	return b.Service + " " + b.Version + " (" + b.Commit + ", " + b.Date + ")"
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
