package dbconfig

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

const (
	DriverSqlite = "sqlite"
	DriverLibsql = "libsql"
	DriverPgx    = "pgx"
)

type Config struct {
	// one of sqlite, libsql or pgx, defaults to sqlite
	Driver    string `json:"driver"`
	File      string `json:"file"`
	URL       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func (c Config) driver() string {
	if c.Driver == "" {
		return DriverSqlite
	}
	return c.Driver
}

// Placeholder returns the bind parameter for the n-th (1-indexed) argument
// in the dialect of the configured driver.
func (c Config) Placeholder(n int) string {
	if c.driver() == DriverPgx {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (c Config) OpenDB() (*sql.DB, error) {
	switch c.driver() {
	case DriverSqlite:
		return c.openSqlite()
	case DriverLibsql:
		return c.openLibsql()
	case DriverPgx:
		if c.URL == "" {
			return nil, fmt.Errorf("pgx: a url was not specified")
		}
		return sql.Open("pgx", c.URL)
	default:
		return nil, fmt.Errorf("unknown database driver '%s'", c.Driver)
	}
}

func (c Config) openSqlite() (*sql.DB, error) {
	if c.File == "" {
		return nil, fmt.Errorf("sqlite: a path was not specified")
	}
	if c.File != ":memory:" {
		err := os.MkdirAll(filepath.Dir(c.File), 0755)
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", c.File)
	if err != nil {
		return nil, err
	}
	// sqlite only tolerates a single writer
	db.SetMaxOpenConns(1)
	if c.File != ":memory:" {
		_, err = db.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

func (c Config) openLibsql() (*sql.DB, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("libsql: a url was not specified")
	}
	link, err := url.Parse(c.URL)
	if err != nil {
		return nil, err
	}
	if c.AuthToken != "" {
		query := link.Query()
		query.Set("authToken", c.AuthToken)
		link.RawQuery = query.Encode()
	}
	return sql.Open("libsql", link.String())
}
