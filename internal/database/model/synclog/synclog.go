// Package synclog keeps the audit trail of cost decisions taken for outbound
// product payloads. The table is capped; the oldest rows are dropped first.
package synclog

import (
	"time"

	"WooCostAdjuster/pkg/logging"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const (
	STATUS_SUCCESS = "success"
	STATUS_ERROR   = "error"
	STATUS_WARNING = "warning"
	STATUS_INFO    = "info"
)

const (
	SOURCE_DIRECT    = "direct_sync"
	SOURCE_VARIABLE  = "variable_sync"
	SOURCE_VARIATION = "variation_sync"
	SOURCE_BULK      = "bulk_sync"
)

const TimestampLayout = "2006-01-02 15:04:05"

type SyncLog struct {
	ID           int    `db:"ID" json:"-"`
	CreatedAt    int64  `db:"CreatedAt" json:"-"`
	Timestamp    string `db:"Timestamp" json:"timestamp"`
	ProductType  string `db:"ProductType" json:"product_type"`
	ProductID    int    `db:"ProductID" json:"product_id"`
	ProductName  string `db:"ProductName" json:"product_name"`
	Cost         string `db:"Cost" json:"cost"`
	RegularPrice string `db:"RegularPrice" json:"regular_price"`
	Multiplier   string `db:"Multiplier" json:"multiplier"`
	Status       string `db:"Status" json:"status"`
	Message      string `db:"Message" json:"message"`
	Source       string `db:"Source" json:"source"`
}

// Insert stores the entry stamped with now and trims the table to limit rows.
func (s *SyncLog) Insert(db *sqlx.DB, limit int, now time.Time) error {
	logger := logging.GetLogger()
	logger.Debug("Start SyncLog.Insert")
	defer logger.Debug("End SyncLog.Insert")

	s.CreatedAt = now.Unix()
	s.Timestamp = now.Format(TimestampLayout)

	tx, err := db.Beginx()
	if err != nil {
		return errors.Wrap(err, "failed db.Beginx()")
	}
	defer func() {
		if err != nil {
			if errRollback := tx.Rollback(); errRollback != nil {
				logger.Errorf("failed in Rollback(); %v", errRollback)
			}
		}
	}()

	query := `INSERT INTO SyncLog (CreatedAt, Timestamp, ProductType, ProductID, ProductName, Cost, RegularPrice, Multiplier, Status, Message, Source)
VALUES (:CreatedAt, :Timestamp, :ProductType, :ProductID, :ProductName, :Cost, :RegularPrice, :Multiplier, :Status, :Message, :Source);`
	logger.Debugf("INSERT:\n%s(%v)", query, s)
	res, err := tx.NamedExec(query, s)
	if err != nil {
		return errors.Wrapf(err, "failed INSERT to dbsqlite; query:\n%s(%v)", query, s)
	}
	if id, errID := res.LastInsertId(); errID == nil {
		s.ID = int(id)
	}

	if limit > 0 {
		queryTrim := "DELETE FROM SyncLog WHERE ID NOT IN (SELECT ID FROM SyncLog ORDER BY ID DESC LIMIT $1);"
		if _, err = tx.Exec(queryTrim, limit); err != nil {
			return errors.Wrapf(err, "failed DELETE in dbsqlite; query:\n%s(%d)", queryTrim, limit)
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "failed tx.Commit()")
	}
	return nil
}

// List returns up to limit entries newest first, optionally filtered by status.
func List(db *sqlx.DB, limit int, status string) ([]*SyncLog, error) {
	logger := logging.GetLogger()
	logger.Debug("Start synclog.List")
	defer logger.Debug("End synclog.List")

	var logs []*SyncLog
	var err error
	var query string
	if status != "" {
		query = "SELECT * FROM SyncLog WHERE Status=$1 ORDER BY ID DESC LIMIT $2;"
		err = db.Select(&logs, query, status, limit)
	} else {
		query = "SELECT * FROM SyncLog ORDER BY ID DESC LIMIT $1;"
		err = db.Select(&logs, query, limit)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed SELECT to dbsqlite; query:\n%s(%d, %s)", query, limit, status)
	}

	logger.Debugf("Rows: %d", len(logs))
	return logs, nil
}

func Clear(db *sqlx.DB) (int64, error) {
	res, err := db.Exec("DELETE FROM SyncLog;")
	if err != nil {
		return 0, errors.Wrap(err, "failed DELETE FROM SyncLog")
	}
	return res.RowsAffected()
}

// DeleteOlderThan removes entries created before t.
func DeleteOlderThan(db *sqlx.DB, t time.Time) (int64, error) {
	query := "DELETE FROM SyncLog WHERE CreatedAt < $1;"
	res, err := db.Exec(query, t.Unix())
	if err != nil {
		return 0, errors.Wrapf(err, "failed DELETE in dbsqlite; query:\n%s(%d)", query, t.Unix())
	}
	return res.RowsAffected()
}
