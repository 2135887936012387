package common

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gigurra/morselamp/cmd/morse/config"
)

// SetupLogging installs a text slog handler on stderr at the given level.
// With toFile, records are also appended to LogPath(). The returned func
// closes the log file and puts logging back on stderr alone.
func SetupLogging(level string, toFile bool) (func(), error) {
	lvl := slog.LevelInfo
	if level != "" {
		parsed, err := config.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		lvl = parsed
	}
	opts := &slog.HandlerOptions{Level: lvl}

	if !toFile {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
		return func() {}, nil
	}

	logPath := LogPath()
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, err
	}
	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(io.MultiWriter(os.Stderr, logFile), opts)))
	return func() {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
		_ = logFile.Close()
	}, nil
}
