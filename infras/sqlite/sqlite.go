package sqlite

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// Open connects to the local sqlite database at path, creating the file on
// first use. A single connection avoids SQLITE_BUSY on concurrent writers.
func Open(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path))
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("failed to open sqlite database")

		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1)

	return db, nil
}
