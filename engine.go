package sqliteplus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const defaultDriver = "sqlite3"

// Engine executes SQL against a single database connection, keeping every
// statement inside an explicit transaction. While connected, exactly one
// transaction is always open: Open begins the first one and Commit commits
// the current one and immediately begins the next.
//
// An Engine is not safe for concurrent use. Its connection and ResultTable
// are owned exclusively by one caller at a time.
type Engine struct {
	db DB
	tx Tx

	driver  string
	pragmas []pragma

	result  ResultTable
	lastErr *Error
}

type pragma struct {
	name  string
	value string
}

// Option is a function that configures an Engine instance.
type Option func(*Engine)

// WithDriver sets the database/sql driver name used by Open.
// Default is "sqlite3" (github.com/mattn/go-sqlite3). Pass the registered
// name of any other driver, e.g. "sqlite" for modernc.org/sqlite.
func WithDriver(name string) Option {
	return func(e *Engine) {
		e.driver = name
	}
}

// WithPragma adds a PRAGMA statement applied after the database is opened
// and before the first transaction begins, e.g.
// WithPragma("foreign_keys", "ON").
func WithPragma(name, value string) Option {
	return func(e *Engine) {
		e.pragmas = append(e.pragmas, pragma{name: name, value: value})
	}
}

// New creates an unopened Engine with the given options. The caller must
// call Open (or OpenDB) before executing statements.
func New(opts ...Option) *Engine {
	e := &Engine{driver: defaultDriver}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Open creates an Engine and opens the database at path. If opening fails no
// Engine is returned: a construction-time connection failure aborts
// construction entirely.
func Open(ctx context.Context, path string, opts ...Option) (*Engine, error) {
	e := New(opts...)
	if err := e.Open(ctx, path); err != nil {
		return nil, err
	}
	return e, nil
}

// Open opens the database at path and begins the initial transaction. An
// engine can hold at most one connection: calling Open on an already open
// engine fails with ErrAlreadyOpen and leaves the existing connection
// untouched. If the file open, a configured PRAGMA, or the initial
// transaction fails, everything acquired so far is released and the engine
// remains unopened.
func (e *Engine) Open(ctx context.Context, path string) error {
	if e.db != nil {
		return e.fail(&Error{Kind: KindAlreadyOpen})
	}

	db, err := sql.Open(e.driver, path)
	if err != nil {
		return e.fail(&Error{Kind: KindOpenFailed, Err: err})
	}

	// The engine is an exclusive single-connection handle. Pinning the pool
	// to one connection also keeps ":memory:" databases coherent across
	// transactions.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// sql.Open validates lazily; ping to force the file open now.
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return e.fail(&Error{Kind: KindOpenFailed, Err: err})
	}

	for _, p := range e.pragmas {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)); err != nil {
			_ = db.Close()
			return e.fail(&Error{Kind: KindOpenFailed, Err: fmt.Errorf("applying pragma %s: %w", p.name, err)})
		}
	}

	return e.OpenDB(ctx, &dbAdapter{DB: db})
}

// OpenDB attaches a caller supplied DB implementation and begins the initial
// transaction. This is useful for users who want to provide their own
// database abstraction or for testing. On failure the DB is closed and the
// engine remains unopened.
func (e *Engine) OpenDB(ctx context.Context, db DB) error {
	if e.db != nil {
		return e.fail(&Error{Kind: KindAlreadyOpen})
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		_ = db.Close()
		return e.fail(&Error{Kind: KindOpenFailed, Err: fmt.Errorf("beginning transaction: %w", err)})
	}

	e.db = db
	e.tx = tx
	e.lastErr = nil
	return nil
}

// Exec runs the given SQL inside the active transaction and captures every
// reported row into the engine's ResultTable, replacing its previous
// contents. Each column is rendered as text; NULL values become the literal
// string "NULL". Row order is whatever the underlying engine yields.
//
// On an engine failure Exec returns an Error of KindExecutionFailed carrying
// the engine's diagnostic; rows collected before the failure point remain in
// the ResultTable.
func (e *Engine) Exec(ctx context.Context, query string) error {
	if e.tx == nil {
		return e.fail(&Error{Kind: KindNotConnected})
	}

	e.result.reset()

	if err := e.collect(ctx, query); err != nil {
		return e.fail(&Error{Kind: KindExecutionFailed, Err: err})
	}

	e.lastErr = nil
	return nil
}

// ExecQuery resolves q and runs the resulting SQL via Exec. If binding fails
// the error is returned, and neither the ResultTable nor the database is
// touched.
func (e *Engine) ExecQuery(ctx context.Context, q *Query) error {
	if e.tx == nil {
		return e.fail(&Error{Kind: KindNotConnected})
	}

	stmt, err := q.Bind()
	if err != nil {
		var bindErr *Error
		if errors.As(err, &bindErr) {
			return e.fail(bindErr)
		}
		return e.fail(&Error{Kind: KindBindingFailed, Err: err})
	}

	return e.Exec(ctx, stmt)
}

// collect runs every statement of the script on the active transaction in
// order, appending reported rows to the result table as they arrive. A
// failing statement stops the script; rows collected so far stay in place.
func (e *Engine) collect(ctx context.Context, script string) error {
	for _, stmt := range splitStatements(script) {
		if err := e.collectOne(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) collectOne(ctx context.Context, stmt string) error {
	rows, err := e.tx.QueryContext(ctx, stmt)
	if err != nil {
		return err
	}
	defer func() {
		_ = rows.Close()
	}()

	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	for rows.Next() {
		cells, err := scanTextRow(rows, len(cols))
		if err != nil {
			return err
		}
		e.result.append(cells)
	}
	return rows.Err()
}

// splitStatements breaks a script into individual statements on top-level
// semicolons, honoring quoted literals and SQL comments. Statement-returning
// and row-returning statements mix freely in one script; rows accumulate
// across all of them.
func splitStatements(script string) []string {
	var stmts []string
	var cur strings.Builder
	var content bool

	flush := func() {
		if content {
			stmts = append(stmts, strings.TrimSpace(cur.String()))
		}
		cur.Reset()
		content = false
	}

	for i := 0; i < len(script); {
		switch c := script[i]; {
		case c == '\'' || c == '"':
			end := quotedEnd(script, i)
			cur.WriteString(script[i:end])
			content = true
			i = end

		case c == '-' && i+1 < len(script) && script[i+1] == '-':
			end := strings.IndexByte(script[i:], '\n')
			if end < 0 {
				cur.WriteString(script[i:])
				i = len(script)
				break
			}
			cur.WriteString(script[i : i+end+1])
			i += end + 1

		case c == '/' && i+1 < len(script) && script[i+1] == '*':
			end := strings.Index(script[i+2:], "*/")
			if end < 0 {
				cur.WriteString(script[i:])
				i = len(script)
				break
			}
			cur.WriteString(script[i : i+2+end+2])
			i += 2 + end + 2

		case c == ';':
			flush()
			i++

		default:
			cur.WriteByte(c)
			if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
				content = true
			}
			i++
		}
	}
	flush()

	return stmts
}

// scanTextRow renders one row as text cells. A NULL column value becomes the
// literal string "NULL", indistinguishable from a genuine string cell with
// that content.
func scanTextRow(rows *sql.Rows, n int) ([]string, error) {
	values := make([]sql.NullString, n)
	dests := make([]any, n)
	for i := range values {
		dests[i] = &values[i]
	}

	if err := rows.Scan(dests...); err != nil {
		return nil, err
	}

	cells := make([]string, n)
	for i, v := range values {
		if v.Valid {
			cells[i] = v.String
		} else {
			cells[i] = "NULL"
		}
	}
	return cells, nil
}

// Commit commits the active transaction and immediately begins a new one, so
// the engine never sits outside a transaction while connected. Committing
// with no pending writes is legal and succeeds.
//
// If the follow-up transaction cannot be started the engine is left without
// an active transaction; further Exec and Commit calls fail with
// ErrNotConnected until the engine is closed.
func (e *Engine) Commit(ctx context.Context) error {
	if e.tx == nil {
		return e.fail(&Error{Kind: KindNotConnected})
	}

	if err := e.tx.Commit(); err != nil {
		return e.fail(&Error{Kind: KindExecutionFailed, Err: fmt.Errorf("committing transaction: %w", err)})
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		e.tx = nil
		return e.fail(&Error{Kind: KindExecutionFailed, Err: fmt.Errorf("beginning transaction: %w", err)})
	}

	e.tx = tx
	e.lastErr = nil
	return nil
}

// Close rolls back any uncommitted work and releases the connection. It is
// safe to call on a never-opened or already closed engine; the connection is
// released at most once.
func (e *Engine) Close() error {
	if e.db == nil {
		return nil
	}

	if e.tx != nil {
		_ = e.tx.Rollback()
		e.tx = nil
	}

	db := e.db
	e.db = nil
	if err := db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// RowCount returns the number of rows captured by the most recent execution.
func (e *Engine) RowCount() int { return e.result.Len() }

// Results returns a read-only view of the rows captured by the most recent
// execution. The view is live: the next Exec call replaces its contents.
// Before the first execution the table is empty.
func (e *Engine) Results() *ResultTable { return &e.result }

// DB returns the underlying database handle, or nil if the engine is not
// open. It lets callers reach engine features beyond this API.
func (e *Engine) DB() DB { return e.db }

// LastError returns the error recorded by the most recent fallible call, or
// nil if that call succeeded. The slot holds only the latest error; every
// fallible call overwrites it.
func (e *Engine) LastError() error {
	if e.lastErr == nil {
		return nil
	}
	return e.lastErr
}

// DescribeError renders the current error state as a human-readable message,
// or "" when the most recent call succeeded. Execution failures carry the
// underlying engine's diagnostic text verbatim.
func (e *Engine) DescribeError() string {
	if e.lastErr == nil {
		return ""
	}
	return e.lastErr.Error()
}

func (e *Engine) fail(err *Error) error {
	e.lastErr = err
	return err
}
