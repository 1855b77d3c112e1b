// Package option stores named values in the Option table. A value may carry
// an expiry after which it reads as absent.
package option

import (
	"database/sql"
	"time"

	"WooCostAdjuster/pkg/logging"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("option not found")

type Option struct {
	Name      string        `db:"Name"`
	Value     string        `db:"Value"`
	ExpiresAt sql.NullInt64 `db:"ExpiresAt"`
}

// Expired reports whether the option has an expiry at or before now.
func (o *Option) Expired(now time.Time) bool {
	return o.ExpiresAt.Valid && o.ExpiresAt.Int64 <= now.Unix()
}

// Get loads the option by name. Expired options are removed and reported as ErrNotFound.
func Get(db *sqlx.DB, name string, now time.Time) (*Option, error) {
	logger := logging.GetLogger()
	logger.Debug("Start option.Get")
	defer logger.Debug("End option.Get")

	query := "SELECT * FROM Option WHERE Name=$1;"
	logger.Debugf("SELECT:\n%s(%s)", query, name)

	var o Option
	err := db.Get(&o, query, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(ErrNotFound, "name %s", name)
		}
		return nil, errors.Wrapf(err, "failed SELECT to dbsqlite; query:\n%s(%s)", query, name)
	}

	if o.Expired(now) {
		logger.Debugf("Option %s expired", name)
		if err := Delete(db, name); err != nil {
			return nil, err
		}
		return nil, errors.Wrapf(ErrNotFound, "name %s expired", name)
	}
	return &o, nil
}

// Set inserts or replaces the option. A ttl <= 0 stores the value without expiry.
func Set(db *sqlx.DB, name, value string, ttl time.Duration, now time.Time) error {
	logger := logging.GetLogger()
	logger.Debug("Start option.Set")
	defer logger.Debug("End option.Set")

	o := Option{Name: name, Value: value}
	if ttl > 0 {
		o.ExpiresAt = sql.NullInt64{Int64: now.Add(ttl).Unix(), Valid: true}
	}

	query := `INSERT INTO Option (Name, Value, ExpiresAt) VALUES (:Name, :Value, :ExpiresAt)
ON CONFLICT(Name) DO UPDATE SET Value=excluded.Value, ExpiresAt=excluded.ExpiresAt;`
	logger.Debugf("UPSERT:\n%s(%s)", query, name)

	if _, err := db.NamedExec(query, &o); err != nil {
		return errors.Wrapf(err, "failed UPSERT to dbsqlite; query:\n%s(%s)", query, name)
	}
	return nil
}

func Delete(db *sqlx.DB, name string) error {
	query := "DELETE FROM Option WHERE Name=$1;"
	if _, err := db.Exec(query, name); err != nil {
		return errors.Wrapf(err, "failed DELETE in dbsqlite; query:\n%s(%s)", query, name)
	}
	return nil
}
