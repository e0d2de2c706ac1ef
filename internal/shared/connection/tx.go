package connection

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// BindTx returns a session of db whose statements run inside tx. Services
// open transactions on *sql.DB and hand them to repositories through WithTx.
// The session gets its own Statement so db itself stays on the pool.
func BindTx(db *gorm.DB, tx *sql.Tx) *gorm.DB {
	if tx == nil {
		return db
	}
	session := db.Session(&gorm.Session{NewDB: true, Context: context.Background()})
	session.Statement.ConnPool = tx
	return session
}
