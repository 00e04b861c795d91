// Package sqldb implements the core storage interfaces on top of database/sql.
// Each DAO creates its tables on construction and keeps prepared statements.
// Tested with SQLite and MySQL.
package sqldb

import (
	"database/sql"
)

func mustPrepare(db *sql.DB, query string) *sql.Stmt {
	stmt, err := db.Prepare(query)
	if err != nil {
		panic(err)
	}
	return stmt
}
