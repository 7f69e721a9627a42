// Package debug is the opt-in diagnostic log for gantry.
// Nothing is written unless Init(true) was called at startup (the --debug
// flag or `debug: true` in config). The log lives at ~/.gantry/debug.log
// and is truncated on every launch.
package debug

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	// LogFileName is the name of the debug log file.
	LogFileName = "debug.log"
	// LogDirName is the directory under the user's home holding the log.
	LogDirName = ".gantry"
)

var (
	mu      sync.RWMutex
	enabled bool
	logger  = log.New(io.Discard, "", 0)
	logFile *os.File

	// getLogPath is a function variable to allow overriding in tests.
	getLogPath = defaultGetLogPath
)

// Init turns logging on or off. When enabled the log file is created or
// truncated; when disabled every call in this package is a no-op.
func Init(enable bool) error {
	mu.Lock()
	defer mu.Unlock()

	enabled = enable
	if !enable {
		logger = log.New(io.Discard, "", 0)
		return nil
	}

	logPath, err := getLogPath()
	if err != nil {
		return fmt.Errorf("determine log path: %w", err)
	}

	//nolint:gosec // G301: User config directory needs standard permissions
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	//nolint:gosec // G304: Log path is computed from user home, not user input
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	logFile = f

	logger = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds)
	logger.Printf("=== gantry debug log started at %s ===", time.Now().Format(time.RFC3339))
	return nil
}

// Close closes the debug log file if open.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// Log writes a debug message in the manner of fmt.Print.
func Log(v ...any) {
	mu.RLock()
	defer mu.RUnlock()

	if !enabled {
		return
	}
	logger.Print(v...)
}

// Logf writes a debug message in the manner of fmt.Printf.
func Logf(format string, v ...any) {
	mu.RLock()
	defer mu.RUnlock()

	if !enabled {
		return
	}
	logger.Printf(format, v...)
}

// Enabled returns whether debug logging is currently enabled.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// Scope prefixes every message with a component name, e.g. "[chart] ".
type Scope string

// For returns the scope for the named component.
func For(component string) Scope {
	return Scope(component)
}

// Logf writes a formatted message tagged with the scope's component.
func (s Scope) Logf(format string, v ...any) {
	if !Enabled() {
		return
	}
	Logf("[%s] %s", string(s), fmt.Sprintf(format, v...))
}

// Since logs how long an operation took. Typical use:
//
//	defer debug.For("chart").Since("relayout", time.Now())
func (s Scope) Since(op string, start time.Time) {
	if !Enabled() {
		return
	}
	s.Logf("%s took %s", op, time.Since(start).Round(time.Microsecond))
}

func defaultGetLogPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine user home: %w", err)
	}
	return filepath.Join(home, LogDirName, LogFileName), nil
}

// GetLogPath returns the path to the debug log file.
func GetLogPath() (string, error) {
	return getLogPath()
}
