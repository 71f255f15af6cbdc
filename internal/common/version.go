package common

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Version variables injected at build time via ldflags
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// VersionInfo is the payload served by /api/version and the get_version tool.
type VersionInfo struct {
	Version string `json:"version"`
	Build   string `json:"build"`
	Commit  string `json:"commit"`
}

// GetVersion returns the semantic version string
func GetVersion() string {
	return Version
}

// GetBuild returns the build timestamp
func GetBuild() string {
	return Build
}

// GetGitCommit returns the short git commit hash
func GetGitCommit() string {
	return GitCommit
}

// GetVersionInfo bundles the build variables.
func GetVersionInfo() VersionInfo {
	return VersionInfo{Version: Version, Build: Build, Commit: GitCommit}
}

// GetFullVersion returns a formatted version string with all build info
func GetFullVersion() string {
	return fmt.Sprintf("%s (build: %s, commit: %s)", Version, Build, GitCommit)
}

// LoadVersionFromFile reads a .version file next to the binary. Values are
// only applied while the ldflags defaults are still in place.
func LoadVersionFromFile() {
	exe, err := os.Executable()
	if err != nil {
		return
	}
	loadVersionFile(filepath.Join(filepath.Dir(exe), ".version"))
}

func loadVersionFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		val = strings.TrimSpace(val)
		switch strings.TrimSpace(key) {
		case "version":
			if Version == "dev" {
				Version = val
			}
		case "build":
			if Build == "unknown" {
				Build = val
			}
		case "commit":
			if GitCommit == "unknown" {
				GitCommit = val
			}
		}
	}
}
