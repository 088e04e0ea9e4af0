package dynamosql

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

var logLevels = map[LogLevel]logrus.Level{
	LogLevelDebug: logrus.DebugLevel,
	LogLevelInfo:  logrus.InfoLevel,
	LogLevelWarn:  logrus.WarnLevel,
	LogLevelError: logrus.ErrorLevel,
}

var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors:    true,
		FullTimestamp:    true,
		DisableQuote:     true,
		QuoteEmptyFields: false,
	})
	return l
}

// SetLogLevel overrides logLevel for dynamosql library, default is WARN
func SetLogLevel(lv LogLevel) {
	if level, ok := logLevels[lv]; ok {
		logger.SetLevel(level)
	}
}

// ParseLogLevel maps debug/info/warn/error to a LogLevel.
func ParseLogLevel(s string) (LogLevel, error) {
	level, err := logrus.ParseLevel(s)
	if err != nil {
		return LogLevelWarn, err
	}
	for lv, l := range logLevels {
		if l == level {
			return lv, nil
		}
	}
	return LogLevelWarn, fmt.Errorf("unsupported log level: %s", s)
}

// SetLogOutput redirects library logs, default is stderr
func SetLogOutput(w io.Writer) {
	logger.SetOutput(w)
}

func LogDebugf(format string, v ...interface{}) {
	logger.Debugf("dynamosql.debug: "+format, v...)
}

func LogInfof(format string, v ...interface{}) {
	logger.Infof("dynamosql.info: "+format, v...)
}

func LogWarnf(format string, v ...interface{}) {
	logger.Warnf("dynamosql.warn: "+format, v...)
}

func LogErrorf(format string, v ...interface{}) {
	logger.Errorf("dynamosql.error: "+format, v...)
}
