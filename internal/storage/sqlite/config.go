// Package sqlite implements a SQLite-backed storage.Repository.
package sqlite

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:listings.db?_pragma=busy_timeout(5000)"
	//   "file::memory:?cache=shared"
	// When empty, Database is used as the file path.
	DSN string
}
