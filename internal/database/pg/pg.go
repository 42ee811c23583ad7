package pg

import (
	"context"
	"fmt"

	"github.com/ilyadubrovsky/tracking-attendance/internal/database"
	"github.com/jackc/pgx/v4/pgxpool"
)

func New(ctx context.Context, dsn string) (database.PG, error) {
	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.Connect: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pool.Ping: %w", err)
	}

	return pool, nil
}
