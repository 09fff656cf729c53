// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) causes the init functions of each concrete storage backend to run,
// which in turn register their factories with the storage package.
//
// Importing this package makes the following storage kinds available:
//
//   - "mysql"    (listingetl/internal/storage/mysql)
//   - "postgres" (listingetl/internal/storage/postgres)
//   - "mssql"    (listingetl/internal/storage/mssql)
//   - "sqlite"   (listingetl/internal/storage/sqlite)
//
// Typical usage (in cmd/etl/main.go):
//
//	import _ "listingetl/internal/storage/all" // enable all built-in backends
//
//	repo, err := storage.New(ctx, storage.Config{
//	    Kind:     p.Storage.Kind,
//	    DSN:      p.Storage.DB.DSN,
//	    Database: p.Storage.DB.Database,
//	})
//	if err != nil {
//	    // handle error
//	}
//	defer repo.Close()
//
// A binary that needs only a subset of backends can import the individual
// packages instead.
package all

import (
	_ "listingetl/internal/storage/mssql"
	_ "listingetl/internal/storage/mysql"
	_ "listingetl/internal/storage/postgres"
	_ "listingetl/internal/storage/sqlite"
)
