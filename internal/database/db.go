// Package database opens the MySQL connection pool.
//
// Expected schema:
//
//	users          (id PK, username, email UNIQUE, password_hash,
//	                email_confirmed, is_admin, created_at)
//	refresh_tokens (id PK, user_id UNIQUE FK->users, token_hash UNIQUE,
//	                expires_at, created_at)
//	messages       (id PK, message, amount, is_moneybag,
//	                author_id NULL FK->users ON DELETE SET NULL,
//	                user_id FK->users ON DELETE CASCADE, created_at)
//
// The withdraw transaction also applies the FK rules explicitly, so
// the service behaves the same against a schema without declared
// foreign keys.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}
