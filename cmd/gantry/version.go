package main

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version information, injected at build time via ldflags.
var (
	Version   = "dev"
	Build     = "unknown"
	BuildTime = ""
)

func printVersion() {
	fmt.Print(versionString())
}

func versionString() string {
	s := fmt.Sprintf("gantry version %s", Version)
	if Build != "unknown" && Build != "" {
		s += fmt.Sprintf(" (build: %s)", Build)
	}
	if BuildTime != "" {
		s += fmt.Sprintf(" [%s]", BuildTime)
	}
	s += fmt.Sprintf("\nGo version: %s\nOS/Arch: %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)

	if Version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, setting := range info.Settings {
				if setting.Key == "vcs.revision" && len(setting.Value) > 7 {
					s += fmt.Sprintf("Commit: %s\n", setting.Value[:7])
					break
				}
			}
		}
	}
	return s
}
