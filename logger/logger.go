package logger

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level controls which messages are written to the log file.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelError
)

var (
	mu       sync.Mutex
	out      *os.File
	minLevel = LevelDebug
)

// SetFile opens (or creates) the log file all subsequent messages are
// appended to. Logging is a no-op until this is called.
func SetFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	if out != nil {
		out.Close()
	}
	out = f
	return nil
}

// SetLevel sets the minimum level written to the file.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	minLevel = l
}

// Close closes the log file.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if out == nil {
		return nil
	}
	err := out.Close()
	out = nil
	return err
}

// Debug logs a debug message with structured fields.
func Debug(msg string, fields map[string]any) {
	write(LevelDebug, "DEBUG", msg, fields)
}

// Info logs an informational message with structured fields.
func Info(msg string, fields map[string]any) {
	write(LevelInfo, "INFO", msg, fields)
}

// Error logs an error message with structured fields.
func Error(msg string, fields map[string]any) {
	write(LevelError, "ERROR", msg, fields)
}

func write(l Level, tag, msg string, fields map[string]any) {
	mu.Lock()
	defer mu.Unlock()
	if out == nil || l < minLevel {
		return
	}

	var b strings.Builder
	b.WriteString(time.Now().Format("2006-01-02 15:04:05.000"))
	b.WriteString(" [")
	b.WriteString(tag)
	b.WriteString("] ")
	b.WriteString(msg)

	// Sorted keys so log lines are stable and diffable
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	b.WriteString("\n")

	out.WriteString(b.String())
}
