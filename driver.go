package sqliteplus

// Register the default SQLite driver. Engines created with WithDriver can
// use any other database/sql driver the caller has registered.
import _ "github.com/mattn/go-sqlite3"
