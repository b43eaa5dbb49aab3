package pg

import (
	"context"
	"database/sql"
	"errors"

	"github.com/itchan-dev/filemsg/shared/config"
	"github.com/itchan-dev/filemsg/shared/logger"
	sharedpg "github.com/itchan-dev/filemsg/shared/storage/pg"
	"github.com/lib/pq"
)

// Storage is the Postgres side of rooms, uploads, messages and canned responses.
type Storage struct {
	db *sql.DB
}

func New(ctx context.Context, cfg config.Pg) (*Storage, error) {
	logger.Log.Info("connecting to database", "component", "pg", "host", cfg.Host, "dbname", cfg.Dbname)
	db, err := sharedpg.Connect(ctx, cfg, sharedpg.DefaultConnectionConfig())
	if err != nil {
		return nil, err
	}
	logger.Log.Info("connected to database", "component", "pg")
	return &Storage{db: db}, nil
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
