package log

import (
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	"cortexprobe/internal/core"
)

// AppLogger writes leveled messages through the standard library logger.
type AppLogger struct {
	logger     *log.Logger
	debug      bool
	fileHandle *os.File
	mu         sync.RWMutex
}

// NewAppLoggerWithConfig creates a logger instance with configuration.
func NewAppLoggerWithConfig(output io.Writer, debugMode bool) *AppLogger {
	return &AppLogger{
		logger:     log.New(output, "", log.LstdFlags),
		debug:      debugMode,
		fileHandle: nil,
	}
}

func (l *AppLogger) Debug(format string, args ...any) {
	if l != nil && l.debug {
		l.logger.Printf("[DEBUG] "+format, args...)
	}
}

func (l *AppLogger) Info(format string, args ...any) {
	if l != nil {
		l.logger.Printf("[INFO] "+format, args...)
	}
}

func (l *AppLogger) Warn(format string, args ...any) {
	if l != nil {
		l.logger.Printf("[WARN] "+format, args...)
	}
}

func (l *AppLogger) Error(format string, args ...any) {
	if l != nil {
		l.logger.Printf("[ERROR] "+format, args...)
	}
}

// Fatal logs at FATAL level and exits the process.
func (l *AppLogger) Fatal(format string, args ...any) {
	if l != nil {
		l.logger.Fatalf("[FATAL] "+format, args...)
	} else {
		log.Fatalf("[FATAL] "+format, args...)
	}
}

// Close releases the DEBUG_FILE handle, if any.
func (l *AppLogger) Close() error {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fileHandle != nil {
		err := l.fileHandle.Close()
		l.fileHandle = nil
		return err
	}
	return nil
}

func containsPathTraversal(path string) bool {
	for _, pattern := range []string{"..", "./", "..\\", ".\\"} {
		if strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}

// createDebugFileOutput opens DEBUG_FILE for appending, falling back to stderr.
// Stdout is left to command output.
func createDebugFileOutput() (io.Writer, *os.File) {
	debugFile := os.Getenv(core.EnvDebugFile)
	if debugFile == "" {
		return os.Stderr, nil
	}

	if len(debugFile) > core.MaxDebugFilePathLength {
		log.Printf("[WARN] %s path too long, falling back to stderr", core.EnvDebugFile)
		return os.Stderr, nil
	}

	if containsPathTraversal(debugFile) {
		log.Printf("[WARN] %s contains path traversal characters, falling back to stderr", core.EnvDebugFile)
		return os.Stderr, nil
	}

	//nolint:gosec // G304: debugFile from env var, validated by containsPathTraversal
	file, err := os.OpenFile(debugFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, core.FilePermissionReadWrite)
	if err != nil {
		log.Printf("[WARN] Failed to open %s '%s': %v, falling back to stderr", core.EnvDebugFile, debugFile, err)
		return os.Stderr, nil
	}

	return file, file
}

// IsDebug reports whether CORTEX_DEBUG is set to a true value.
func IsDebug() bool {
	enabled, err := strconv.ParseBool(os.Getenv(core.EnvDebug))
	return err == nil && enabled
}

// CreateLogger creates a logger instance (for dependency injection).
func CreateLogger() core.Logger {
	output, fileHandle := createDebugFileOutput()

	return &AppLogger{
		logger:     log.New(output, "", log.LstdFlags),
		debug:      IsDebug(),
		fileHandle: fileHandle,
	}
}
