package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

var (
	Version   = "0.0.0-dev"
	Revision  = "unknown"
	Branch    = "unknown"
	BuildUser = "unknown"
	BuildDate = "unknown"
	GoVersion = runtime.Version()
)

var readBuildInfo = sync.OnceFunc(func() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	if Version == "0.0.0-dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if Revision == "unknown" && s.Value != "" {
				Revision = s.Value
			}
		case "vcs.time":
			if BuildDate == "unknown" && s.Value != "" {
				BuildDate = s.Value
			}
		}
	}
})

// Info returns a one-line description of the build.
func Info() string {
	readBuildInfo()

	return fmt.Sprintf("%s (revision=%s, branch=%s, date=%s, go=%s)", Version, Revision, Branch, BuildDate, GoVersion)
}

// Short returns the version number.
func Short() string {
	readBuildInfo()

	return Version
}
