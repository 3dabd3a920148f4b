// Package credentials persists the user's API credential between sessions.
//
// The controller depends only on the Store interface, a flat key-value
// port. Adapters:
//
//   - FileStore        JSON file under $XDG_DATA_HOME/gemtrans (default)
//   - SQLiteStore      single-table SQLite database
//   - PostgresStore    PostgreSQL via pgx, schema managed by golang-migrate
//   - PreferencesStore fyne application preferences
//   - MemoryStore      in-process map
//
// Values are stored verbatim: no versioning, no encryption. File-based
// stores are created with owner-only permissions.
package credentials
