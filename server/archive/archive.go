package archive

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// Entry is one archived, successfully completed download item.
type Entry struct {
	Id        string    `json:"id"`
	JobId     string    `json:"jobId"`
	Title     string    `json:"title"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Service records completed downloads in a local sqlite database.
type Service struct {
	db *sql.DB
	ch chan *Entry
}

func New(dbPath string) (*Service, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS archive (
			id         TEXT PRIMARY KEY,
			job_id     TEXT NOT NULL,
			title      TEXT NOT NULL,
			source     TEXT,
			created_at TIMESTAMP NOT NULL
		)`); err != nil {
		db.Close()
		return nil, err
	}

	s := &Service{
		db: db,
		ch: make(chan *Entry, 16),
	}
	go s.consume()

	return s, nil
}

// Publish enqueues a completed item for archival. Non-blocking on a
// full queue: the history is best effort and must never stall the
// download path.
func (s *Service) Publish(e *Entry) {
	select {
	case s.ch <- e:
	default:
		slog.Warn("archive queue full, dropping entry", slog.String("title", e.Title))
	}
}

func (s *Service) consume() {
	for e := range s.ch {
		slog.Info("archiving completed download",
			slog.String("title", e.Title),
			slog.String("job", e.JobId),
		)

		if err := s.Archive(context.Background(), e); err != nil {
			slog.Error("failed archiving entry", slog.Any("err", err))
		}
	}
}

func (s *Service) Archive(ctx context.Context, e *Entry) error {
	if e.Id == "" {
		e.Id = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO archive (id, job_id, title, source, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.Id, e.JobId, e.Title, e.Source, e.CreatedAt,
	)
	return err
}

func (s *Service) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, job_id, title, source, created_at FROM archive ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Id, &e.JobId, &e.Title, &e.Source, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (s *Service) Close() error {
	close(s.ch)
	return s.db.Close()
}
