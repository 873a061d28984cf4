// Package sqliteplus is a lightweight transactional access layer over an
// embedded SQLite database: it opens a database file, keeps every statement
// inside an explicit transaction, and captures result rows into an in-memory
// table of text cells.
//
// The package provides two cooperating pieces:
//
//  1. A `Query` template that carries :named or ? positional placeholders
//     plus a map of bound values, and resolves them into a final executable
//     SQL string. Bound values are substituted verbatim, with no escaping or
//     quoting: the caller is trusted to supply SQL-safe values. This is a
//     deliberate design boundary, not an oversight — never bind untrusted
//     input.
//
//  2. An `Engine` that owns a single connection and guarantees exactly one
//     transaction is open at all times while connected. Opening the database
//     begins the first transaction; Commit commits it and immediately begins
//     the next one. Every execution clears and repopulates the engine's
//     ResultTable, rendering each column as text and NULL values as the
//     literal string "NULL" (indistinguishable from a genuine "NULL" string
//     cell, a documented limitation).
//
// When a statement fails partway through, rows collected before the failure
// point remain in the ResultTable. This partial-result behavior is
// intentional: the table shows exactly what the engine produced.
//
// The library defaults to the github.com/mattn/go-sqlite3 driver but works
// with any database/sql driver via WithDriver, or with a caller supplied DB
// implementation via OpenDB.
package sqliteplus
