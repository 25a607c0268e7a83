// Package search runs a Cortex Search data scan over a SQL connection and prints the rows.
package search

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cortexprobe/internal/config"
	"cortexprobe/internal/core"
	"cortexprobe/internal/util"

	"github.com/snowflakedb/gosnowflake"
)

// ConnectFunc opens a ready-to-use database handle.
type ConnectFunc func(ctx context.Context) (*sql.DB, error)

// ScanQuery returns the statement that reads every document of a search service.
func ScanQuery(service string) string {
	quoted := strings.ReplaceAll(service, "'", "''")
	return fmt.Sprintf(`SELECT *
FROM TABLE(
    CORTEX_SEARCH_DATA_SCAN(
        SERVICE_NAME => '%s'
    )
)`, quoted)
}

// SnowflakeConnector returns a ConnectFunc for the configured account. The PAT is
// passed as the password.
func SnowflakeConnector(cfg config.SearchConfig) (ConnectFunc, error) {
	account, host, err := config.AccountIdentifier(cfg.AccountURL)
	if err != nil {
		return nil, err
	}

	sfCfg := gosnowflake.Config{
		Account:   account,
		Host:      host,
		User:      cfg.User,
		Password:  cfg.PAT,
		Warehouse: cfg.Warehouse,
		Database:  cfg.Database,
		Schema:    cfg.Schema,
	}

	return func(ctx context.Context) (*sql.DB, error) {
		db := sql.OpenDB(gosnowflake.NewConnector(gosnowflake.SnowflakeDriver{}, sfCfg))
		db.SetMaxOpenConns(1)
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}, nil
}

// Unavailable returns a ConnectFunc that always fails with err.
func Unavailable(err error) ConnectFunc {
	return func(context.Context) (*sql.DB, error) {
		return nil, err
	}
}

// RowHandler receives each row's column names and values.
type RowHandler func(columns []string, values []any) error

// QueryRows runs query and hands every row to handler in order. Rows are closed
// on every path.
func QueryRows(ctx context.Context, db *sql.DB, query string, handler RowHandler) (int, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return 0, err
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return 0, err
	}

	count := 0
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return count, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		if err := handler(columns, values); err != nil {
			return count, err
		}
		count++
	}

	return count, rows.Err()
}

// NewRowPrinter writes each row to w as a JSON array.
func NewRowPrinter(w io.Writer) RowHandler {
	return func(_ []string, values []any) error {
		line, err := util.MarshalJSON(values)
		if err != nil {
			_, err = fmt.Fprintln(w, values...)
			return err
		}
		_, err = fmt.Fprintln(w, string(line))
		return err
	}
}

// IsDriverError reports whether err came from the Snowflake driver itself.
func IsDriverError(err error) bool {
	var sfErr *gosnowflake.SnowflakeError
	return errors.As(err, &sfErr)
}

// Runner executes one query per call and prints the rows.
type Runner struct {
	Connect ConnectFunc
	Out     io.Writer
	Logger  core.Logger
	Store   core.RunStore
}

// Execute connects, runs query and prints each row. Failures are printed and
// recorded, never returned.
func (r *Runner) Execute(ctx context.Context, query, target string) *core.RunRecord {
	record := &core.RunRecord{
		ID:        util.GenerateRunID(),
		Command:   core.CommandSearch,
		Target:    target,
		StartedAt: time.Now(),
	}
	defer r.save(record)

	db, err := r.Connect(ctx)
	if err != nil {
		r.fail(record, core.NewAppError(core.ErrCodeConnectFailed, "failed to connect", err))
		return record
	}
	defer func() {
		if err := db.Close(); err != nil {
			r.Logger.Warn("Failed to close connection: %v", err)
		}
	}()

	r.Logger.Debug("Executing search query for %s", target)
	count, err := QueryRows(ctx, db, query, NewRowPrinter(r.Out))
	record.Rows = count
	if err != nil {
		r.fail(record, core.NewAppError(core.ErrCodeQueryFailed, "query failed", err))
		return record
	}

	record.Duration = time.Since(record.StartedAt)
	record.Outcome = core.OutcomeCompleted
	r.Logger.Info("Search %s returned %d rows", target, count)
	return record
}

func (r *Runner) fail(record *core.RunRecord, err error) {
	record.Duration = time.Since(record.StartedAt)
	record.Outcome = core.OutcomeFailed
	record.Error = err.Error()

	cause := err
	var appErr *core.AppError
	if errors.As(err, &appErr) && appErr.Cause != nil {
		cause = appErr.Cause
	}

	// Driver errors raised while connecting are not query errors.
	if appErr != nil && appErr.Code == core.ErrCodeQueryFailed && IsDriverError(cause) {
		_, _ = fmt.Fprintf(r.Out, "Error executing query: %v\n", cause)
	} else {
		_, _ = fmt.Fprintf(r.Out, "An error occurred: %v\n", cause)
	}
	r.Logger.Error("Search run %s failed: %v", record.ID, err)
}

func (r *Runner) save(record *core.RunRecord) {
	if r.Store == nil {
		return
	}
	if err := r.Store.AppendRun(record); err != nil {
		r.Logger.Warn("Failed to record run %s: %v", record.ID, err)
	}
}
