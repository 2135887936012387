package indicator

import "log/slog"

// Log reports every command through slog instead of driving hardware.
type Log struct {
	log *slog.Logger
}

func NewLog(log *slog.Logger) *Log {
	if log == nil {
		log = slog.Default()
	}
	return &Log{log: log}
}

func (l *Log) TurnOn(line Line) error {
	l.log.Info("indicator on", "line", line)
	return nil
}

func (l *Log) TurnOff(line Line) error {
	l.log.Info("indicator off", "line", line)
	return nil
}
