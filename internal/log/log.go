// Package log provides the process-wide log sink shared by every compilation.
//
// Logging is disabled until SetOutput is called with a non-nil writer. All
// helpers are safe for concurrent use; a batch compile writes from several
// goroutines into the same sink.
package log

import (
	"fmt"
	"io"
	"sync"
)

// Level selects which messages reach the sink.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelError
)

var (
	out   io.Writer
	level = LevelInfo
	mu    sync.Mutex
)

// SetOutput sets the log output. Pass nil to disable logging.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

// SetLevel sets the minimum level that is written.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

func write(l Level, prefix, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if out == nil || l < level {
		return
	}
	fmt.Fprintf(out, prefix+format+"\n", args...)
}

// Debug writes a debug log message if logging is enabled.
func Debug(format string, args ...any) {
	write(LevelDebug, "[debug] ", format, args...)
}

// Info writes an informational log message.
func Info(format string, args ...any) {
	write(LevelInfo, "[info] ", format, args...)
}

// Error writes an error log message.
func Error(format string, args ...any) {
	write(LevelError, "[error] ", format, args...)
}

// Encoding writes a debug message about charset resolution.
func Encoding(format string, args ...any) {
	write(LevelDebug, "[encoding] ", format, args...)
}

// Compile writes a debug message about per-file compilation.
func Compile(format string, args ...any) {
	write(LevelDebug, "[compile] ", format, args...)
}

// Enabled returns true if logging is enabled.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return out != nil
}
