package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// DB is the Postgres-backed Store used in production deployments.
type DB struct {
	connection *sql.DB
}

func NewDB(dataSourceName string) (*DB, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, err
	}

	// Connection pool tuning
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &DB{connection: db}, nil
}

func (db *DB) Close() {
	if err := db.connection.Close(); err != nil {
		log.Println("Error closing the database connection:", err)
	}
}

// EnsureSchema creates the candidates table when it does not exist yet.
func (db *DB) EnsureSchema(ctx context.Context) error {
	_, err := db.connection.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS candidates (
            id            TEXT PRIMARY KEY,
            name          TEXT NOT NULL DEFAULT '',
            email         TEXT NOT NULL DEFAULT '',
            phone         TEXT NOT NULL DEFAULT '',
            location      TEXT NOT NULL DEFAULT '',
            experience    TEXT NOT NULL DEFAULT '',
            education     TEXT NOT NULL DEFAULT '',
            skills        TEXT NOT NULL DEFAULT '',
            categories    JSONB,
            filename      TEXT NOT NULL DEFAULT '',
            document_path TEXT NOT NULL DEFAULT '',
            status        TEXT NOT NULL DEFAULT 'pending',
            created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`)
	return err
}

func (db *DB) Create(ctx context.Context, p *CandidateProfile) error {
	query := `INSERT INTO candidates (id, name, email, phone, location, experience, education, skills, categories, filename, document_path, status, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())`
	categories, err := marshalCategories(p.Categories)
	if err != nil {
		return err
	}
	_, err = db.connection.ExecContext(ctx, query,
		p.ID,
		p.Name,
		p.Email,
		p.Phone,
		p.Location,
		p.Experience,
		p.Education,
		strings.Join(p.Skills, ","),
		categories,
		p.Filename,
		p.DocumentPath,
		string(p.Status),
	)
	return err
}

func (db *DB) Get(ctx context.Context, id string) (*CandidateProfile, error) {
	query := selectColumns + ` FROM candidates WHERE id = $1`
	return scanProfile(db.connection.QueryRowContext(ctx, query, id))
}

func (db *DB) Update(ctx context.Context, p *CandidateProfile) error {
	cur, err := db.Get(ctx, p.ID)
	if err != nil {
		return err
	}
	if p.Status.Rank() < cur.Status.Rank() {
		return ErrStatusRegression
	}

	categories, err := marshalCategories(p.Categories)
	if err != nil {
		return err
	}
	query := `UPDATE candidates
              SET name = $2, email = $3, phone = $4, location = $5, experience = $6,
                  education = $7, skills = $8, categories = $9, status = $10, updated_at = NOW()
              WHERE id = $1`
	_, err = db.connection.ExecContext(ctx, query,
		p.ID,
		p.Name,
		p.Email,
		p.Phone,
		p.Location,
		p.Experience,
		p.Education,
		strings.Join(p.Skills, ","),
		categories,
		string(p.Status),
	)
	return err
}

func (db *DB) Latest(ctx context.Context) (string, error) {
	var id string
	query := `SELECT id FROM candidates ORDER BY created_at DESC LIMIT 1`
	err := db.connection.QueryRowContext(ctx, query).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return id, err
}

func (db *DB) List(ctx context.Context) ([]*CandidateProfile, error) {
	query := selectColumns + ` FROM candidates ORDER BY created_at`
	return db.queryProfiles(ctx, query)
}

func (db *DB) ListReady(ctx context.Context) ([]*CandidateProfile, error) {
	query := selectColumns + ` FROM candidates WHERE status = 'ready' ORDER BY id`
	return db.queryProfiles(ctx, query)
}

const selectColumns = `SELECT id, name, email, phone, location, experience, education, skills, categories, filename, document_path, status, updated_at`

func (db *DB) queryProfiles(ctx context.Context, query string, args ...interface{}) ([]*CandidateProfile, error) {
	rows, err := db.connection.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*CandidateProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(row rowScanner) (*CandidateProfile, error) {
	p := &CandidateProfile{}
	var skills string
	var categories sql.NullString
	var status string
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.Location, &p.Experience,
		&p.Education, &skills, &categories, &p.Filename, &p.DocumentPath, &status, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if skills != "" {
		p.Skills = splitAndTrim(skills)
	}
	if categories.Valid && categories.String != "" {
		if err := json.Unmarshal([]byte(categories.String), &p.Categories); err != nil {
			return nil, err
		}
	}
	p.Status = Status(status)
	return p, nil
}

func marshalCategories(c map[string][]string) (interface{}, error) {
	if len(c) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// helper to split comma-separated skills
func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
