// cmd/seed/main.go
// Seeds demo catalog and member data so a fresh database has something to
// browse. Safe to run repeatedly.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"libris/internal/config"
)

type seedBook struct {
	title, author, isbn, genre string
	year, copies               int
}

type seedUser struct {
	username, email, fullName string
}

var books = []seedBook{
	{"The Great Gatsby", "F. Scott Fitzgerald", "9780743273565", "classic", 1925, 3},
	{"Pride and Prejudice", "Jane Austen", "9780141439518", "classic", 1813, 5},
	{"Dune", "Frank Herbert", "9780441172719", "scifi", 1965, 2},
	{"The Left Hand of Darkness", "Ursula K. Le Guin", "9780441478125", "scifi", 1969, 2},
	{"The Name of the Rose", "Umberto Eco", "9780156001311", "mystery", 1980, 1},
}

var users = []seedUser{
	{"ada", "ada@example.com", "Ada Lovelace"},
	{"grace", "grace@example.com", "Grace Hopper"},
	{"linus", "linus@example.com", "Linus Torvalds"},
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	db, err := sqlx.Open("postgres", cfg.PG.DSN)
	if err != nil {
		log.Error("open postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, b := range books {
		_, err := db.ExecContext(ctx, `
			INSERT INTO books (title, author, isbn, published_year, genre, available_copies, total_copies)
			VALUES ($1, $2, $3, $4, $5, $6, $6)
			ON CONFLICT (isbn) DO NOTHING
		`, b.title, b.author, b.isbn, b.year, b.genre, b.copies)
		if err != nil {
			log.Error("seed book", "isbn", b.isbn, "error", err)
			os.Exit(1)
		}
	}

	for _, u := range users {
		_, err := db.ExecContext(ctx, `
			INSERT INTO users (username, email, full_name, member_since, status)
			VALUES ($1, $2, $3, CURRENT_DATE, 'active')
			ON CONFLICT (username) DO NOTHING
		`, u.username, u.email, u.fullName)
		if err != nil {
			log.Error("seed user", "username", u.username, "error", err)
			os.Exit(1)
		}
	}

	log.Info("seeded", "books", len(books), "users", len(users))
}
