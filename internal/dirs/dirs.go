// Package dirs resolves per-user directories for config, state and output.
package dirs

import (
	"os"
	"path/filepath"
	"runtime"

	"tubeshift/internal/util"
)

const appName = "tubeshift"

// AppName returns the canonical application name for directory paths.
func AppName() string {
	return appName
}

// ConfigDir returns the app's configuration directory.
// - Linux: $XDG_CONFIG_HOME/tubeshift or ~/.config/tubeshift
// - macOS: ~/Library/Application Support/tubeshift
// - Windows: %AppData%/tubeshift
func ConfigDir() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		return underHome("Library", "Application Support", appName)
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		return underHome(".config", appName)
	default:
		cfg, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(cfg, appName), nil
	}
}

// StateDir holds the job history and debug log.
// - Linux: $XDG_STATE_HOME/tubeshift or ~/.local/state/tubeshift
// - macOS: ~/Library/Application Support/tubeshift/state
// - Windows: %LocalAppData%/tubeshift/state, else under ConfigDir
func StateDir() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		return underHome("Library", "Application Support", appName, "state")
	case "linux":
		if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		return underHome(".local", "state", appName)
	default:
		if la := os.Getenv("LOCALAPPDATA"); la != "" {
			return filepath.Join(la, appName, "state"), nil
		}
		cfg, err := ConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(cfg, "state"), nil
	}
}

// DefaultOutputDir is ~/Downloads/tubeshift, or ./tubeshift when the home
// directory is unknown.
func DefaultOutputDir() string {
	p, err := underHome("Downloads", appName)
	if err != nil {
		return appName
	}
	return p
}

// HistoryFile is the persisted job history inside StateDir.
func HistoryFile() (string, error) {
	return inState("history.json")
}

// LogFile is the debug log inside StateDir.
func LogFile() (string, error) {
	return inState("debug.log")
}

// EnsureAll creates the config and state directories.
func EnsureAll() error {
	for _, fn := range []func() (string, error){ConfigDir, StateDir} {
		p, err := fn()
		if err != nil {
			return err
		}
		if err := util.EnsureDir(p); err != nil {
			return err
		}
	}
	return nil
}

func inState(name string) (string, error) {
	d, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, name), nil
}

func underHome(parts ...string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{home}, parts...)...), nil
}
