package sqliteutil

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Config selects where the vote database lives, `url` (a remote libsql database)
// takes precedence over `file`.
type Config struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

// OpenDB opens the configured database and applies the schema to it.
func (config Config) OpenDB(schema string) (*sql.DB, error) {
	if config.Url != "" {
		return OpenRemote(schema, config.Url, config.AuthToken)
	}
	if config.File == "" {
		return nil, fmt.Errorf("neither a database url nor a file was specified")
	}
	return OpenDB(schema, config.File)
}

// OpenDB opens (creating if necessary) a local sqlite database at the path, use
// `:memory:` for a database that only lives as long as the returned handle.
func OpenDB(schema, path string) (*sql.DB, error) {
	if path != ":memory:" {
		_, statErr := os.Stat(path)
		if os.IsNotExist(statErr) {
			f, err := os.Create(path)
			if err != nil {
				return nil, err
			}
			f.Close()
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// a single connection keeps `:memory:` databases alive and serializes writers,
	// pragmas below are per-connection.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{"PRAGMA foreign_keys = ON"}
	if path != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL")
	}
	for _, p := range pragmas {
		_, err = db.Exec(p)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	err = applySchema(db, schema)
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// OpenRemote opens a libsql database (ex. libsql://<db>.turso.io) and applies the schema to it.
func OpenRemote(schema, rawUrl, authToken string) (*sql.DB, error) {
	link, err := url.Parse(rawUrl)
	if err != nil {
		return nil, err
	}
	if authToken != "" {
		query := link.Query()
		query.Set("authToken", authToken)
		link.RawQuery = query.Encode()
	}

	db, err := sql.Open("libsql", link.String())
	if err != nil {
		return nil, err
	}
	err = applySchema(db, schema)
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func applySchema(db *sql.DB, schema string) error {
	if strings.TrimSpace(schema) == "" {
		return nil
	}
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
