package sqliteplus_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/kcyq98/sqliteplus"
)

func newTestEngine(t *testing.T, opts ...sqliteplus.Option) *sqliteplus.Engine {
	t.Helper()

	e, err := sqliteplus.Open(context.Background(), ":memory:", opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = e.Close()
	})
	return e
}

func TestExecCreatesInsertsAndSelects(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	err := e.Exec(ctx, "CREATE TABLE t(a,b); INSERT INTO t VALUES(1,2);")
	require.NoError(t, err)

	err = e.Exec(ctx, "SELECT * FROM t")
	require.NoError(t, err)

	require.Equal(t, 1, e.RowCount())
	require.Equal(t, []string{"1", "2"}, e.Results().Row(0))
}

func TestScriptRowsAccumulateAcrossStatements(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	require.NoError(t, e.Exec(ctx, "CREATE TABLE t(a); INSERT INTO t VALUES('x;y'); -- trailing; comment"))

	err := e.Exec(ctx, "SELECT a FROM t; /* block; comment */ SELECT count(*) FROM t;")
	require.NoError(t, err)

	require.Equal(t, 2, e.RowCount())
	require.Equal(t, []string{"x;y"}, e.Results().Row(0))
	require.Equal(t, []string{"1"}, e.Results().Row(1))
}

func TestNullValuesRenderAsLiteralText(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	require.NoError(t, e.Exec(ctx, "CREATE TABLE t(a, b)"))
	require.NoError(t, e.Exec(ctx, "INSERT INTO t VALUES('x', NULL)"))
	require.NoError(t, e.Exec(ctx, "SELECT a, b FROM t"))

	require.Equal(t, []string{"x", "NULL"}, e.Results().Row(0))
}

func TestResultTableClearedBetweenExecutions(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	require.NoError(t, e.Exec(ctx, "CREATE TABLE t(a)"))
	require.NoError(t, e.Exec(ctx, "INSERT INTO t VALUES(1),(2),(3)"))

	require.NoError(t, e.Exec(ctx, "SELECT a FROM t"))
	require.Equal(t, 3, e.RowCount())

	require.NoError(t, e.Exec(ctx, "SELECT a FROM t WHERE a = 2"))
	require.Equal(t, 1, e.RowCount())
	require.Equal(t, []string{"2"}, e.Results().Row(0))
}

func TestSyntaxErrorReportsEngineDiagnostic(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	err := e.Exec(ctx, "SELEC * FROM t")
	require.ErrorIs(t, err, sqliteplus.ErrExecutionFailed)
	require.Equal(t, 0, e.RowCount())
	require.Contains(t, e.DescribeError(), "syntax error")
}

func TestPartialResultsPreservedOnFailure(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	require.NoError(t, e.Exec(ctx, "CREATE TABLE t(a)"))
	require.NoError(t, e.Exec(ctx, "INSERT INTO t VALUES(1),(-9223372036854775808)"))

	// abs() overflows on the second row, after the first was reported.
	err := e.Exec(ctx, "SELECT abs(a) FROM t")
	require.ErrorIs(t, err, sqliteplus.ErrExecutionFailed)
	require.Equal(t, 1, e.RowCount())
	require.Equal(t, []string{"1"}, e.Results().Row(0))
}

func TestBoundQueryEndToEnd(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	require.NoError(t, e.Exec(ctx, "CREATE TABLE users(id, name)"))

	// Bound values are substituted with no escaping; quoting is on us.
	name := uuid.NewString()
	insert := sqliteplus.NewQuery("INSERT INTO users VALUES(?, ?)",
		sqliteplus.WithBindings(map[string]string{"1": "5", "2": "'" + name + "'"}))
	require.NoError(t, e.ExecQuery(ctx, insert))

	selectByID := sqliteplus.NewQuery("SELECT name FROM users WHERE id = :id",
		sqliteplus.WithBinding("id", "5"))
	require.NoError(t, e.ExecQuery(ctx, selectByID))

	require.Equal(t, 1, e.RowCount())
	require.Equal(t, name, e.Results().Cell(0, 0))
}

func TestMissingBindingLeavesResultsUntouched(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	require.NoError(t, e.Exec(ctx, "CREATE TABLE t(a); INSERT INTO t VALUES(1);"))
	require.NoError(t, e.Exec(ctx, "SELECT a FROM t"))
	require.Equal(t, 1, e.RowCount())

	err := e.ExecQuery(ctx, sqliteplus.NewQuery("SELECT * FROM t WHERE a = :a"))
	require.ErrorIs(t, err, sqliteplus.ErrBindingFailed)
	require.Equal(t, 1, e.RowCount())
	require.Equal(t, []string{"1"}, e.Results().Row(0))
}

func TestCommitPersistsAcrossEngines(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")
	id := uuid.NewString()

	e, err := sqliteplus.Open(ctx, path)
	require.NoError(t, err)

	require.NoError(t, e.Exec(ctx, "CREATE TABLE t(id)"))
	require.NoError(t, e.Exec(ctx, "INSERT INTO t VALUES('"+id+"')"))
	require.NoError(t, e.Commit(ctx))

	// Work after the commit lands in the next transaction and is discarded
	// by Close.
	require.NoError(t, e.Exec(ctx, "INSERT INTO t VALUES('discarded')"))
	require.NoError(t, e.Close())

	e2, err := sqliteplus.Open(ctx, path)
	require.NoError(t, err)
	defer func() {
		_ = e2.Close()
	}()

	require.NoError(t, e2.Exec(ctx, "SELECT id FROM t"))
	require.Equal(t, 1, e2.RowCount())
	require.Equal(t, id, e2.Results().Cell(0, 0))
}

func TestCommitWithNoPendingWrites(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	require.NoError(t, e.Commit(ctx))
	require.NoError(t, e.Commit(ctx))
	require.NoError(t, e.Exec(ctx, "SELECT 1"))
	require.Equal(t, 1, e.RowCount())
}

func TestOpenFailsForMissingDirectory(t *testing.T) {
	ctx := context.Background()

	e, err := sqliteplus.Open(ctx, filepath.Join(t.TempDir(), "no", "such", "dir", "test.db"))
	require.ErrorIs(t, err, sqliteplus.ErrOpenFailed)
	require.Nil(t, e)
}

func TestPragmaAppliedOnOpen(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, sqliteplus.WithPragma("foreign_keys", "ON"))

	require.NoError(t, e.Exec(ctx, "PRAGMA foreign_keys"))
	require.Equal(t, 1, e.RowCount())
	require.Equal(t, "1", e.Results().Cell(0, 0))
}

func TestResultTablePrinting(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	require.NoError(t, e.Exec(ctx, "CREATE TABLE t(a,b); INSERT INTO t VALUES(1,2); INSERT INTO t VALUES(3,4);"))
	require.NoError(t, e.Exec(ctx, "SELECT * FROM t"))

	var sb strings.Builder
	require.NoError(t, e.Results().Fprint(&sb))
	require.Equal(t, "|1|2|\n|3|4|\n", sb.String())
	require.Equal(t, sb.String(), e.Results().String())
}

func TestExecBeforeOpenThenOpenSucceeds(t *testing.T) {
	ctx := context.Background()
	e := sqliteplus.New()
	t.Cleanup(func() {
		_ = e.Close()
	})

	err := e.Exec(ctx, "SELECT 1")
	require.ErrorIs(t, err, sqliteplus.ErrNotConnected)

	require.NoError(t, e.Open(ctx, ":memory:"))
	require.NoError(t, e.Exec(ctx, "SELECT 1"))
	require.Equal(t, 1, e.RowCount())

	err = e.Open(ctx, ":memory:")
	require.ErrorIs(t, err, sqliteplus.ErrAlreadyOpen)

	// The original connection is still usable.
	require.NoError(t, e.Exec(ctx, "SELECT 2"))
	require.Equal(t, "2", e.Results().Cell(0, 0))

	var engineErr *sqliteplus.Error
	require.ErrorAs(t, err, &engineErr)
	require.Equal(t, sqliteplus.KindAlreadyOpen, engineErr.Kind)
}
