// internal/app/app.go
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"libris/internal/config"
	"libris/migrations"
)

type App struct {
	cfg    config.Config
	log    *slog.Logger
	db     *sqlx.DB
	router chi.Router
}

func New(cfg config.Config, log *slog.Logger) (*App, error) {
	db, err := newPostgres(cfg.PG)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, err
	}

	a := &App{cfg: cfg, log: log, db: db}
	a.router = a.newRouter()
	return a, nil
}

func (a *App) Router() chi.Router {
	return a.router
}

func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func newPostgres(cfg config.PGConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}
