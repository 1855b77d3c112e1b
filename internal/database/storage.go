package database

const DB_NAME = "db.db"

const SCHEMA_VERSION = 1

const DB_SCHEMA = `CREATE TABLE IF NOT EXISTS Version (
	ID integer PRIMARY KEY AUTOINCREMENT,
	Name text,
	Version integer
);

CREATE TABLE IF NOT EXISTS Option (
	Name text PRIMARY KEY,
	Value text NOT NULL,
	ExpiresAt integer
);

CREATE TABLE IF NOT EXISTS SyncLog (
	ID integer PRIMARY KEY AUTOINCREMENT,
	CreatedAt integer NOT NULL,
	Timestamp text NOT NULL,
	ProductType text,
	ProductID integer,
	ProductName text,
	Cost text,
	RegularPrice text,
	Multiplier text,
	Status text,
	Message text,
	Source text
);

CREATE INDEX IF NOT EXISTS SyncLogCreatedAt ON SyncLog (CreatedAt);
`
