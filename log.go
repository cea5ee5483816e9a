package gocapture

import (
	"fmt"
	"sync"
)

// LogLevel mirrors the teacher's FFmpeg log-level taxonomy, trimmed to
// the levels gocapture itself ever emits: it has no encoder/decoder
// pipeline generating the finer FFmpeg gradations.
type LogLevel int32

const (
	LogQuiet LogLevel = iota
	LogError
	LogWarning
	LogInfo
	LogDebug
)

func (l LogLevel) String() string {
	switch l {
	case LogQuiet:
		return "quiet"
	case LogError:
		return "error"
	case LogWarning:
		return "warning"
	case LogInfo:
		return "info"
	case LogDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// LogCallback is called for each gocapture log message, matching the
// teacher's LogCallback shape. Unlike the teacher, gocapture's own log
// sites are always Go code calling this closure directly: there is no
// C library on the other side, so no purego.NewCallback trampoline is
// needed to reach it.
type LogCallback func(level LogLevel, message string)

var (
	logMu    sync.Mutex
	logLevel = LogWarning
	logCB    LogCallback
)

// SetLogLevel sets the minimum level that reaches the installed
// LogCallback; messages below it are dropped before the callback is
// even invoked.
func SetLogLevel(level LogLevel) {
	logMu.Lock()
	defer logMu.Unlock()
	logLevel = level
}

// SetLogCallback installs the process-wide log callback. Pass nil to
// stop receiving log messages.
func SetLogCallback(cb LogCallback) {
	logMu.Lock()
	defer logMu.Unlock()
	logCB = cb
}

// logf reports a formatted message at level if it passes the current
// log level threshold and a callback is installed. Unexported: this is
// gocapture's own internal logging hook, not a public logging API.
func logf(level LogLevel, format string, args ...any) {
	logMu.Lock()
	cb := logCB
	threshold := logLevel
	logMu.Unlock()

	if cb == nil || level > threshold {
		return
	}
	cb(level, fmt.Sprintf(format, args...))
}
