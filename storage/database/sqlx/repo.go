package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chingu/core"
)

// getExec returns the first non-nil executor (a transaction) or the repository's database.
func getExec(db core.DBExecutor, exec []core.DBExecutor) core.DBExecutor {
	if len(exec) > 0 && exec[0] != nil {
		return exec[0]
	}
	return db
}

func trapNoRowsErr(err, notFoundErr error) error {
	if err == sql.ErrNoRows {
		return notFoundErr
	}
	return err
}

func nullString(s string) null.String {
	return null.NewString(s, s != "")
}

func nullTime(t time.Time) null.Time {
	return null.NewTime(t, !t.IsZero())
}
