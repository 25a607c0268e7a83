package core

// Logger interface
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	Fatal(format string, args ...any)
}

// RunStore persists run records
type RunStore interface {
	AppendRun(record *RunRecord) error
	LoadRuns() (*RunHistory, error)
	Close() error
}

// NopLogger empty logger implementation
type NopLogger struct{}

func (*NopLogger) Debug(format string, args ...any) {}
func (*NopLogger) Info(format string, args ...any)  {}
func (*NopLogger) Warn(format string, args ...any)  {}
func (*NopLogger) Error(format string, args ...any) {}
func (*NopLogger) Fatal(format string, args ...any) {}

// NopRunStore discards run records
type NopRunStore struct{}

func (*NopRunStore) AppendRun(record *RunRecord) error { return nil }
func (*NopRunStore) LoadRuns() (*RunHistory, error)    { return &RunHistory{Runs: []RunRecord{}}, nil }
func (*NopRunStore) Close() error                      { return nil }
