// Package logger holds the process-wide logrus logger.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the global logger. It is usable before Init with logrus defaults.
var Log = logrus.New()

// Init configures the global logger. It should be called once from main.
// LOG_LEVEL and LOG_FORMAT environment variables take precedence over the arguments.
func Init(level, format string) {
	if env, ok := os.LookupEnv("LOG_LEVEL"); ok {
		level = env
	}
	if env, ok := os.LookupEnv("LOG_FORMAT"); ok {
		format = env
	}
	configure(Log, os.Stdout, level, format)
}

// New returns a standalone logger writing to out.
func New(out io.Writer, level, format string) *logrus.Logger {
	l := logrus.New()
	configure(l, out, level, format)
	return l
}

// WithComponent returns an entry of the global logger tagged with a component name.
func WithComponent(name string) *logrus.Entry {
	return Log.WithField("component", name)
}

func configure(l *logrus.Logger, out io.Writer, level, format string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	// "json" for log collection, "text" for local development.
	if strings.ToLower(format) == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	l.SetOutput(out)
}
