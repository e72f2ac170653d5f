package keygate

import (
	"github.com/sirupsen/logrus"
)

// LogrusLogger adapts a logrus entry to the package Logger interface,
// turning variadic key-value args into structured fields.
type LogrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger wires a JSON-formatted logrus logger.
func NewLogrusLogger(debug bool) *LogrusLogger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return &LogrusLogger{entry: logrus.NewEntry(l)}
}

var _ Logger = (*LogrusLogger)(nil)

func (l *LogrusLogger) Debug(msg string, args ...any) { l.withFields(args).Debug(msg) }
func (l *LogrusLogger) Info(msg string, args ...any)  { l.withFields(args).Info(msg) }
func (l *LogrusLogger) Warn(msg string, args ...any)  { l.withFields(args).Warn(msg) }
func (l *LogrusLogger) Error(msg string, args ...any) { l.withFields(args).Error(msg) }

func (l *LogrusLogger) withFields(args []any) *logrus.Entry {
	if len(args) == 0 {
		return l.entry
	}

	fields := logrus.Fields{}
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		fields[key] = args[i+1]
	}
	return l.entry.WithFields(fields)
}
