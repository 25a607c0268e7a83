package search

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"testing"

	"cortexprobe/internal/config"
	"cortexprobe/internal/core"

	"github.com/snowflakedb/gosnowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

const salesQuery = `SELECT 1 AS id, 'north' AS region, 120.5 AS total
UNION ALL SELECT 2, 'south', 80
UNION ALL SELECT 3, 'west', NULL
ORDER BY id`

func sqliteConnector(t *testing.T) (ConnectFunc, *[]*sql.DB) {
	t.Helper()
	var opened []*sql.DB
	return func(ctx context.Context) (*sql.DB, error) {
		db, err := sql.Open("sqlite", ":memory:")
		if err != nil {
			return nil, err
		}
		opened = append(opened, db)
		return db, db.PingContext(ctx)
	}, &opened
}

func TestScanQuery(t *testing.T) {
	query := ScanQuery("sales_conversation_search")
	assert.Contains(t, query, "CORTEX_SEARCH_DATA_SCAN(")
	assert.Contains(t, query, "SERVICE_NAME => 'sales_conversation_search'")
}

func TestScanQuery_QuotesServiceName(t *testing.T) {
	query := ScanQuery("x'); DROP TABLE t; --")
	assert.Contains(t, query, "SERVICE_NAME => 'x''); DROP TABLE t; --'")
}

func TestQueryRows(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var got [][]any
	count, err := QueryRows(context.Background(), db, salesQuery, func(columns []string, values []any) error {
		assert.Equal(t, []string{"id", "region", "total"}, columns)
		got = append(got, values)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	require.Len(t, got, 3)
	assert.Equal(t, "north", got[0][1])
	assert.Nil(t, got[2][2])
}

func TestQueryRows_HandlerError(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	stop := errors.New("stop")
	count, err := QueryRows(context.Background(), db, salesQuery, func([]string, []any) error { return stop })
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 0, count)
}

func TestRowPrinter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRowPrinter(&buf)([]string{"id", "region"}, []any{int64(1), "north"}))
	assert.Equal(t, "[1,\"north\"]\n", buf.String())
}

func TestRunner_Execute(t *testing.T) {
	connect, opened := sqliteConnector(t)
	var out bytes.Buffer

	runner := &Runner{Connect: connect, Out: &out, Logger: &core.NopLogger{}, Store: &core.NopRunStore{}}
	record := runner.Execute(context.Background(), salesQuery, "sales_conversation_search")

	assert.Equal(t, core.OutcomeCompleted, record.Outcome)
	assert.Equal(t, 3, record.Rows)
	assert.Equal(t, core.CommandSearch, record.Command)
	assert.Equal(t, "[1,\"north\",120.5]\n[2,\"south\",80]\n[3,\"west\",null]\n", out.String())

	require.Len(t, *opened, 1)
	assert.Error(t, (*opened)[0].Ping(), "connection must be closed after the run")
}

func TestRunner_Execute_QueryError(t *testing.T) {
	connect, opened := sqliteConnector(t)
	var out bytes.Buffer

	runner := &Runner{Connect: connect, Out: &out, Logger: &core.NopLogger{}}
	record := runner.Execute(context.Background(), ScanQuery("sales_conversation_search"), "sales_conversation_search")

	assert.Equal(t, core.OutcomeFailed, record.Outcome)
	assert.Contains(t, out.String(), "An error occurred: ")
	require.Len(t, *opened, 1)
	assert.Error(t, (*opened)[0].Ping(), "connection must be closed after a failed query")
}

func TestRunner_Execute_ConnectError(t *testing.T) {
	var out bytes.Buffer
	runner := &Runner{
		Connect: func(context.Context) (*sql.DB, error) {
			return nil, &gosnowflake.SnowflakeError{Number: 390100, Message: "Incorrect username or password was specified."}
		},
		Out:    &out,
		Logger: &core.NopLogger{},
	}
	record := runner.Execute(context.Background(), "SELECT 1", "svc")

	assert.Equal(t, core.OutcomeFailed, record.Outcome)
	assert.Contains(t, out.String(), "An error occurred: ")
	assert.Contains(t, record.Error, core.ErrCodeConnectFailed)
}

func TestRunner_Execute_Unavailable(t *testing.T) {
	var out bytes.Buffer
	runner := &Runner{
		Connect: Unavailable(&config.MissingEnvError{Names: []string{core.EnvAccountURL, core.EnvPAT}}),
		Out:     &out,
		Logger:  &core.NopLogger{},
	}
	record := runner.Execute(context.Background(), ScanQuery(core.DefaultSearchService), core.DefaultSearchService)

	assert.Equal(t, core.OutcomeFailed, record.Outcome)
	assert.Equal(t, "An error occurred: Missing required environment variables: SNOWFLAKE_ACCOUNT_URL, SNOWFLAKE_PAT\n", out.String())
	assert.Equal(t, 0, record.Rows)
}

func TestRunner_DriverQueryError(t *testing.T) {
	var out bytes.Buffer
	runner := &Runner{Out: &out, Logger: &core.NopLogger{}}
	record := &core.RunRecord{}

	sfErr := &gosnowflake.SnowflakeError{Number: 2003, Message: "Cortex Search Service does not exist or not authorized."}
	runner.fail(record, core.NewAppError(core.ErrCodeQueryFailed, "query failed", sfErr))

	assert.Contains(t, out.String(), "Error executing query: ")
	assert.Contains(t, out.String(), "does not exist or not authorized")
	assert.Equal(t, core.OutcomeFailed, record.Outcome)
}

func TestIsDriverError(t *testing.T) {
	assert.True(t, IsDriverError(&gosnowflake.SnowflakeError{Number: 2003}))
	assert.True(t, IsDriverError(core.NewAppError(core.ErrCodeQueryFailed, "query failed", &gosnowflake.SnowflakeError{Number: 2003})))
	assert.False(t, IsDriverError(errors.New("boom")))
}

func TestSnowflakeConnector_InvalidAccount(t *testing.T) {
	_, err := SnowflakeConnector(config.SearchConfig{AccountURL: ""})
	assert.Error(t, err)

	connect, err := SnowflakeConnector(config.SearchConfig{AccountURL: "https://xy12345.snowflakecomputing.com", PAT: "pat"})
	require.NoError(t, err)
	assert.NotNil(t, connect)
}
