package logger

import (
	"github.com/sirupsen/logrus"
)

// Logger is a global variable that represents the logger instance.
var Logger *logrus.Logger

// Init initializes the logger by creating a new instance of logrus.Logger.
// The level string is parsed leniently; an unknown level falls back to Info.
func Init(level string) {
	Logger = logrus.New()
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	Logger.SetLevel(parsed)
}

// L returns the global logger, initializing it with defaults if Init was
// never called. Keeps library code usable from tests without setup.
func L() *logrus.Logger {
	if Logger == nil {
		Init("info")
	}
	return Logger
}
