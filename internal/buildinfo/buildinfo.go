package buildinfo

import (
	"fmt"
	"runtime"
	"time"
)

// Set via -ldflags at build time, e.g.
// -X github.com/xelth-com/ecktms/internal/buildinfo.CommitHash=$(git rev-parse --short HEAD)
var (
	Version    = "dev"
	BuildTime  string // when the binary was compiled
	CommitHash string // short git commit hash
)

// StartTime is recorded when the process starts
var StartTime = time.Now().UTC().Format(time.RFC3339)

// Info is the build description reported by `ecktms version` and /health
type Info struct {
	Version    string `json:"version"`
	CommitHash string `json:"commit"`
	BuildTime  string `json:"buildTime"`
	StartTime  string `json:"startTime"`
	GoVersion  string `json:"goVersion"`
}

// Get returns the build description of the running binary
func Get() Info {
	return Info{
		Version:    Version,
		CommitHash: orUnknown(CommitHash),
		BuildTime:  orUnknown(BuildTime),
		StartTime:  StartTime,
		GoVersion:  runtime.Version(),
	}
}

func (i Info) String() string {
	return fmt.Sprintf("ecktms %s (commit %s, built %s, %s)", i.Version, i.CommitHash, i.BuildTime, i.GoVersion)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
