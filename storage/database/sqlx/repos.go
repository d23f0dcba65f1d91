// Package sqlxrepos implements the domain repositories over Postgres with
// hand-written SQL and sqlx scanning.
package sqlxrepos

import (
	"github.com/jmoiron/sqlx"

	"github.com/EsdrasCaleb/moodle-mod-msteams/core"
)

// getExec returns the handle to run a query on: the optional transactional
// executor when the caller passed one (a *sqlx.Tx), the pooled DB otherwise.
func getExec(db *sqlx.DB, exec []core.DBExecutor) sqlx.ExtContext {
	if len(exec) > 0 {
		if e, ok := exec[0].(sqlx.ExtContext); ok {
			return e
		}
	}
	return db
}
