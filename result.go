package sqliteplus

import (
	"fmt"
	"io"
	"strings"
)

// ResultTable holds the rows captured by the most recent execution: an
// ordered sequence of rows, each an ordered sequence of text cells. Each row
// has exactly as many cells as the engine reported for it; rows from
// different result sets in one script may differ in width.
//
// A ResultTable is owned by its Engine. Every execution replaces its
// contents; it never accumulates rows across statements.
type ResultTable struct {
	rows [][]string
}

// Len returns the number of rows in the table.
func (t *ResultTable) Len() int { return len(t.rows) }

// Rows returns the table's rows. The returned slice is a read-only view;
// callers must not modify it.
func (t *ResultTable) Rows() [][]string { return t.rows }

// Row returns the i-th row. The returned slice is a read-only view.
func (t *ResultTable) Row(i int) []string { return t.rows[i] }

// Cell returns the cell at the given row and column.
func (t *ResultTable) Cell(row, col int) string { return t.rows[row][col] }

// Fprint writes the table to w, one row per line with cells delimited by
// pipe characters.
func (t *ResultTable) Fprint(w io.Writer) error {
	for _, row := range t.rows {
		if _, err := fmt.Fprintf(w, "|%s|\n", strings.Join(row, "|")); err != nil {
			return fmt.Errorf("printing result table: %w", err)
		}
	}
	return nil
}

// String renders the table in the same format as Fprint.
func (t *ResultTable) String() string {
	var sb strings.Builder
	_ = t.Fprint(&sb)
	return sb.String()
}

// reset drops all rows. Previously returned views keep the rows they saw.
func (t *ResultTable) reset() { t.rows = nil }

func (t *ResultTable) append(row []string) { t.rows = append(t.rows, row) }
