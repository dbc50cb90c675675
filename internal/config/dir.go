// Package config locates the opskit global configuration directory.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// EnvConfigHome overrides the configuration directory when set.
const EnvConfigHome = "OPSKIT_CONFIG_HOME"

const appName = "opskit"

// Dir returns the opskit configuration directory:
//   - $OPSKIT_CONFIG_HOME if set
//   - $XDG_CONFIG_HOME/opskit if set, on any platform
//   - %AppData%/opskit on Windows
//   - ~/.config/opskit otherwise
//
// It returns "" when no home directory can be determined.
func Dir() string {
	if dir := os.Getenv(EnvConfigHome); dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName)
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// EnvFile returns the path of the global env file inside Dir.
func EnvFile() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "env")
}
