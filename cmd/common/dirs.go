package common

import (
	"os"
	"path/filepath"
)

// LogPath returns where --log-file output goes.
func LogPath() string {
	return filepath.Join(stateHome(), "morselamp", "morselamp.log")
}

// https://specifications.freedesktop.org/basedir/latest/#variables
func stateHome() string {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return dir
}
