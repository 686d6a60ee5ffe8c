package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Connect opens a single connection and verifies it with a ping.
// The caller owns the connection and must Close it.
func Connect(ctx context.Context, connStr string) (*pgx.Conn, error) {
	connCfg, err := pgx.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	conn, err := pgx.ConnectConfig(ctx, connCfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return conn, nil
}
