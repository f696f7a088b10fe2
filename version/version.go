// Package version reports build metadata of the treelog binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

var (
	// Version is the application version, set via ldflags.
	Version string
	// BuildDate is when the binary was built, set via ldflags.
	BuildDate string
)

// Info is the build metadata of the running binary.
type Info struct {
	Version   string
	Revision  string
	BuildDate string
	GoVersion string
	Platform  string
}

// Get returns the build metadata of the running binary. Fields not set via
// ldflags fall back to the module build info.
func Get() Info {
	info := Info{
		Version:   Version,
		Revision:  "unknown",
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}

	if info.Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}

	dirty := false

	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Revision = s.Value
		case "vcs.time":
			if info.BuildDate == "" {
				info.BuildDate = s.Value
			}
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}

	if dirty {
		info.Revision += "-dirty"
	}

	return info
}

// String renders i on one line, e.g. "v1.2.0 (abc123, go1.25.0 linux/amd64)".
func (i Info) String() string {
	v := i.Version
	if v == "" {
		v = "devel"
	}

	details := []string{i.Revision}
	if i.BuildDate != "" {
		details = append(details, i.BuildDate)
	}

	details = append(details, i.GoVersion+" "+i.Platform)

	return fmt.Sprintf("%s (%s)", v, strings.Join(details, ", "))
}
