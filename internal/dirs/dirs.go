package dirs

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "bookfoundry"

// LogFileName is the log written while the TUI owns the terminal.
const LogFileName = "bookfoundry.log"

// AppName returns the canonical application name for directory paths.
func AppName() string {
	return appName
}

// xdgDir resolves an application directory: $env/bookfoundry or
// ~/<linux...>/bookfoundry on Linux, ~/Library/<darwin...> on macOS and
// fallback() elsewhere.
func xdgDir(env string, linux, darwin []string, fallback func() (string, error)) (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		parts := append([]string{home, "Library"}, darwin...)
		return filepath.Join(parts...), nil
	case "linux":
		if xdg := os.Getenv(env); xdg != "" {
			return filepath.Join(xdg, AppName()), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		parts := append([]string{home}, linux...)
		return filepath.Join(append(parts, AppName())...), nil
	default:
		return fallback()
	}
}

// ConfigDir returns the app's configuration directory.
// - Linux: $XDG_CONFIG_HOME/bookfoundry or ~/.config/bookfoundry
// - macOS: ~/Library/Application Support/bookfoundry
// - Windows: %AppData%/bookfoundry
func ConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME",
		[]string{".config"},
		[]string{"Application Support", AppName()},
		func() (string, error) {
			cfg, err := os.UserConfigDir()
			if err != nil {
				return "", err
			}
			return filepath.Join(cfg, AppName()), nil
		})
}

// StateDir returns the app's state directory, home of the log file.
// - Linux: $XDG_STATE_HOME/bookfoundry or ~/.local/state/bookfoundry
// - macOS: ~/Library/Application Support/bookfoundry/state
// - Windows: %LocalAppData%/bookfoundry/state (fallback to ConfigDir/state)
func StateDir() (string, error) {
	return xdgDir("XDG_STATE_HOME",
		[]string{".local", "state"},
		[]string{"Application Support", AppName(), "state"},
		func() (string, error) {
			if la := os.Getenv("LOCALAPPDATA"); la != "" {
				return filepath.Join(la, AppName(), "state"), nil
			}
			cfg, err := ConfigDir()
			if err != nil {
				return "", err
			}
			return filepath.Join(cfg, "state"), nil
		})
}

// Ensure creates the directory if it doesn't exist.
func Ensure(path string) error {
	if path == "" {
		return errors.New("empty path")
	}
	return os.MkdirAll(path, 0o755)
}

// EnsureAll ensures config and state dirs exist.
func EnsureAll() error {
	for _, fn := range []func() (string, error){ConfigDir, StateDir} {
		p, err := fn()
		if err != nil {
			continue
		}
		if err := Ensure(p); err != nil {
			return err
		}
	}
	return nil
}
