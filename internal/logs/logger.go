package logs

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
	})
	return l
}

// Logger retourne le logger partagé (utilisé par les middlewares).
func Logger() *logrus.Logger {
	return logger
}

// SetLevel accepte "debug", "info", "warn" ou "error". Par défaut : info.
func SetLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}
}

// SetOutput redirige les logs (tests).
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

func LogJSON(level, message string, fields map[string]interface{}) {
	entry := logger.WithFields(logrus.Fields(fields))
	switch strings.ToUpper(level) { // "DEBUG", "INFO", "WARN", "ERROR" & "FATAL"
	case "DEBUG":
		entry.Debug(message)
	case "WARN":
		entry.Warn(message)
	case "ERROR":
		entry.Error(message)
	case "FATAL":
		entry.Fatal(message)
	default:
		entry.Info(message)
	}
}
