package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

type Level int32

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return fmt.Sprintf("LEVEL(%d)", int32(l))
	}
}

var (
	currentLevel atomic.Int32
	logger       = log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
)

func init() {
	SetLevelFromEnv()
}

// ParseLevel accepts debug, info, warn/warning and error in any case.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug, nil
	case "info", "":
		return Info, nil
	case "warn", "warning":
		return Warn, nil
	case "error":
		return Error, nil
	}
	return Info, fmt.Errorf("unknown log level %q", s)
}

// SetLevelFromEnv reads LOG_LEVEL; anything unrecognised means info.
func SetLevelFromEnv() {
	l, _ := ParseLevel(os.Getenv("LOG_LEVEL"))
	SetLevel(l)
}

func SetLevel(l Level) {
	currentLevel.Store(int32(l))
}

func GetLevel() Level {
	return Level(currentLevel.Load())
}

func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

func logf(l Level, format string, args ...interface{}) {
	if l < GetLevel() {
		return
	}

	msg := fmt.Sprintf(format, args...)
	logger.Output(3, fmt.Sprintf("[%s] %s", l, msg))
}

func Debugf(format string, args ...interface{}) {
	logf(Debug, format, args...)
}

func Infof(format string, args ...interface{}) {
	logf(Info, format, args...)
}

func Warnf(format string, args ...interface{}) {
	logf(Warn, format, args...)
}

func Errorf(format string, args ...interface{}) {
	logf(Error, format, args...)
}
