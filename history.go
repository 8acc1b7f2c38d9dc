/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Seednode/cranium/games/charades"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/julienschmidt/httprouter"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	historyLimit   = 50
	historyQueue   = 256
	historyTimeout = 5 * time.Second
)

// RoundRecord is one finished round as stored and served.
type RoundRecord struct {
	Code        string    `json:"code" db:"code"`
	GuesserID   string    `json:"guesserId" db:"guesser_id"`
	GuesserName string    `json:"guesserName" db:"guesser_name"`
	Category    string    `json:"category" db:"category"`
	Score       int       `json:"score" db:"score"`
	Skips       int       `json:"skips" db:"skips"`
	StartedAt   time.Time `json:"startedAt" db:"started_at"`
	EndedAt     time.Time `json:"endedAt" db:"ended_at"`
}

type HistoryStore interface {
	Record(ctx context.Context, r charades.RoundResult) error
	Recent(ctx context.Context, code string, limit int) ([]RoundRecord, error)
	Ping(ctx context.Context) error
	Close()
}

type PostgresHistory struct {
	pool *pgxpool.Pool
}

func migrateHistory(ctx context.Context, databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("opening database for migrations: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	return nil
}

// NewPostgresHistory migrates the schema and opens a pool.
func NewPostgresHistory(ctx context.Context, databaseURL string) (*PostgresHistory, error) {
	if err := migrateHistory(ctx, databaseURL); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresHistory{pool: pool}, nil
}

func (p *PostgresHistory) Record(ctx context.Context, r charades.RoundResult) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO rounds (code, guesser_id, guesser_name, category, score, skips, started_at, ended_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.Code, r.GuesserID, r.GuesserName, r.Category, r.Score, r.Skips, r.StartedAt, r.EndedAt,
	)
	return err
}

// Recent returns up to limit rounds of one game, newest first.
func (p *PostgresHistory) Recent(ctx context.Context, code string, limit int) ([]RoundRecord, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT code, guesser_id, guesser_name, category, score, skips, started_at, ended_at
		 FROM rounds WHERE code = $1 ORDER BY ended_at DESC, id DESC LIMIT $2`,
		code, limit,
	)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowToStructByName[RoundRecord])
}

func (p *PostgresHistory) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *PostgresHistory) Close() {
	p.pool.Close()
}

// historyRecorder moves finished rounds to the store off the session lock.
type historyRecorder struct {
	cfg   *Config
	store HistoryStore
	queue chan charades.RoundResult
}

func newHistoryRecorder(cfg *Config, store HistoryStore) *historyRecorder {
	return &historyRecorder{
		cfg:   cfg,
		store: store,
		queue: make(chan charades.RoundResult, historyQueue),
	}
}

func (h *historyRecorder) enqueue(r charades.RoundResult) {
	select {
	case h.queue <- r:
	default:
		errorf("HISTORY: Queue full, dropped round for %s", r.Code)
	}
}

func (h *historyRecorder) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case r := <-h.queue:
			writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyTimeout)
			err := h.store.Record(writeCtx, r)
			cancel()

			if err != nil {
				errorf("HISTORY: Recording round for %s: %v", r.Code, err)
				continue
			}

			logf(h.cfg, "HISTORY: Recorded round for %s (%s scored %d)", r.Code, r.GuesserName, r.Score)
		}
	}
}

func serveHistory(cfg *Config, store HistoryStore, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		securityHeaders(cfg, w)

		if store == nil {
			http.Error(w, "round history is not enabled", http.StatusNotFound)

			return
		}

		code := strings.ToLower(strings.TrimSpace(p.ByName("code")))

		ctx, cancel := context.WithTimeout(r.Context(), historyTimeout)
		defer cancel()

		rounds, err := store.Recent(ctx, code, historyLimit)
		if err != nil {
			errorf("HISTORY: Loading rounds for %s: %v", code, err)
			http.Error(w, "unable to load round history", http.StatusInternalServerError)

			return
		}
		if rounds == nil {
			rounds = []RoundRecord{}
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")

		if err := json.NewEncoder(w).Encode(rounds); err != nil {
			errs <- err

			return
		}
	}
}
