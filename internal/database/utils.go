package database

import (
	"os"

	"WooCostAdjuster/pkg/logging"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

func Exists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}

func CreateDB(dbname string) error {
	logger := logging.GetLogger()
	logger.Info("CreateDB:>Start")
	defer logger.Info("CreateDB:>End")

	logger.Info("CreateDB:>Creating ", dbname)

	db, err := sqlx.Open("sqlite3", dbname)
	if err != nil {
		return errors.Wrapf(err, "failed sqlx.Open(%s)", dbname)
	}
	defer func(db *sqlx.DB) {
		err := db.Close()
		if err != nil {
			logger.Error(err)
		}
	}(db)

	if err := migrate(db); err != nil {
		return err
	}
	logger.Info(dbname, " created")
	return nil
}

// Open opens the sqlite file, creating it when missing, and brings the schema up to date.
func Open(dbname string) (*sqlx.DB, error) {
	logger := logging.GetLogger()
	logger.Info("Start database.Open")
	defer logger.Info("End database.Open")

	if !Exists(dbname) {
		if err := CreateDB(dbname); err != nil {
			return nil, errors.Wrap(err, "failed CreateDB")
		}
	}

	db, err := sqlx.Connect("sqlite3", dbname+"?_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrapf(err, "failed sqlx.Connect(%s)", dbname)
	}
	// sqlite serializes writers anyway
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(db *sqlx.DB) error {
	logger := logging.GetLogger()

	if _, err := db.Exec(DB_SCHEMA); err != nil {
		return errors.Wrap(err, "failed to apply DB_SCHEMA")
	}

	var versions []Version
	if err := db.Select(&versions, "SELECT * FROM Version WHERE Name=$1;", "schema"); err != nil {
		return errors.Wrap(err, "failed SELECT Version")
	}
	if len(versions) == 0 {
		_, err := db.NamedExec("INSERT INTO Version (Name, Version) VALUES (:Name, :Version);",
			&Version{Name: "schema", Version: SCHEMA_VERSION})
		if err != nil {
			return errors.Wrap(err, "failed INSERT Version")
		}
		logger.Debugf("Schema version %d recorded", SCHEMA_VERSION)
	}
	return nil
}
