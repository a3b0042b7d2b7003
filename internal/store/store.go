package store

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"smartrecruit/internal/errors"
)

// Store persists jobs, candidate documents and applications in SQLite. The
// scoring engine never touches it directly; it is the collaborator that
// supplies inputs to and records outputs from scoring.
type Store struct {
	db     *sql.DB
	logger *errors.Logger
}

// Open opens (or creates) the SQLite database at path and ensures the schema.
func Open(path string, logger *errors.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, errors.NewStoreError(errors.ErrCodeStoreFailed,
				fmt.Sprintf("failed to create store directory %s", dir), err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.NewStoreError(errors.ErrCodeStoreFailed,
			"failed to open database", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	if err := initSchema(db); err != nil {
		if closeErr := db.Close(); closeErr != nil && logger != nil {
			logger.LogError(closeErr, "Failed to close database after schema error")
		}
		return nil, errors.NewStoreError(errors.ErrCodeStoreFailed,
			"failed to initialize schema", err)
	}

	if logger != nil {
		logger.Info("Store opened", "path", path)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS jobs (
		id                   TEXT PRIMARY KEY,
		title                TEXT NOT NULL,
		description          TEXT,
		offer_description    TEXT,
		skills               TEXT NOT NULL DEFAULT '[]',
		missions             TEXT NOT NULL DEFAULT '[]',
		profile_requirements TEXT,
		created_at           TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS cvs (
		id             TEXT PRIMARY KEY,
		candidate_name TEXT,
		text           TEXT NOT NULL,
		created_at     TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS applications (
		id         TEXT PRIMARY KEY,
		cv_id      TEXT NOT NULL REFERENCES cvs(id),
		job_id     TEXT NOT NULL REFERENCES jobs(id),
		score      REAL,
		components TEXT,
		created_at TEXT NOT NULL,
		scored_at  TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_applications_job ON applications(job_id);
	`)
	return err
}

// Job is a posting a candidate can apply to.
type Job struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	Description         string    `json:"description,omitempty"`
	OfferDescription    string    `json:"offer_description,omitempty"`
	Skills              []string  `json:"skills"`
	Missions            []string  `json:"missions"`
	ProfileRequirements string    `json:"profile_requirements,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

// CV is an already-extracted candidate document. Text arrives plain and
// cleaned from the extraction collaborator.
type CV struct {
	ID            string    `json:"id"`
	CandidateName string    `json:"candidate_name,omitempty"`
	Text          string    `json:"text"`
	CreatedAt     time.Time `json:"created_at"`
}

// Application links a CV to a job. Score stays nil until a scoring
// invocation completes; a failed invocation leaves it unset.
type Application struct {
	ID         string          `json:"id"`
	CVID       string          `json:"cv_id"`
	JobID      string          `json:"job_id"`
	Score      *float64        `json:"score,omitempty"`
	Components json.RawMessage `json:"components,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	ScoredAt   *time.Time      `json:"scored_at,omitempty"`
}

// IsNotFound reports whether err is a missing-record error.
func IsNotFound(err error) bool {
	var appErr *errors.AppError
	return stderrors.As(err, &appErr) && appErr.Code == errors.ErrCodeNotFound
}

func notFound(kind, id string) error {
	return errors.NewStoreError(errors.ErrCodeNotFound,
		fmt.Sprintf("%s not found: %s", kind, id), sql.ErrNoRows)
}

// CreateJob inserts a job, generating an ID when absent.
func (s *Store) CreateJob(ctx context.Context, job *Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	job.CreatedAt = time.Now().UTC()

	skills, err := json.Marshal(job.Skills)
	if err != nil {
		return errors.NewStoreError(errors.ErrCodeStoreFailed, "failed to encode skills", err)
	}
	missions, err := json.Marshal(job.Missions)
	if err != nil {
		return errors.NewStoreError(errors.ErrCodeStoreFailed, "failed to encode missions", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO jobs (id, title, description, offer_description, skills, missions, profile_requirements, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Title, job.Description, job.OfferDescription,
		string(skills), string(missions), job.ProfileRequirements,
		job.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return errors.NewStoreError(errors.ErrCodeStoreFailed, "failed to insert job", err)
	}
	return nil
}

// GetJob loads a job by id.
func (s *Store) GetJob(ctx context.Context, id string) (*Job, error) {
	var (
		job       Job
		skills    string
		missions  string
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, offer_description, skills, missions, profile_requirements, created_at
		FROM jobs WHERE id = ?`, id).
		Scan(&job.ID, &job.Title, &job.Description, &job.OfferDescription,
			&skills, &missions, &job.ProfileRequirements, &createdAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, notFound("job", id)
	}
	if err != nil {
		return nil, errors.NewStoreError(errors.ErrCodeStoreFailed, "failed to load job", err)
	}

	if err := json.Unmarshal([]byte(skills), &job.Skills); err != nil {
		return nil, errors.NewStoreError(errors.ErrCodeStoreFailed, "corrupt skills column", err)
	}
	if err := json.Unmarshal([]byte(missions), &job.Missions); err != nil {
		return nil, errors.NewStoreError(errors.ErrCodeStoreFailed, "corrupt missions column", err)
	}
	job.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &job, nil
}

// CreateCV inserts a candidate document, generating an ID when absent.
func (s *Store) CreateCV(ctx context.Context, cv *CV) error {
	if cv.ID == "" {
		cv.ID = uuid.NewString()
	}
	cv.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cvs (id, candidate_name, text, created_at)
		VALUES (?, ?, ?, ?)`,
		cv.ID, cv.CandidateName, cv.Text, cv.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return errors.NewStoreError(errors.ErrCodeStoreFailed, "failed to insert cv", err)
	}
	return nil
}

// GetCV loads a candidate document by id.
func (s *Store) GetCV(ctx context.Context, id string) (*CV, error) {
	var (
		cv        CV
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, candidate_name, text, created_at FROM cvs WHERE id = ?`, id).
		Scan(&cv.ID, &cv.CandidateName, &cv.Text, &createdAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, notFound("cv", id)
	}
	if err != nil {
		return nil, errors.NewStoreError(errors.ErrCodeStoreFailed, "failed to load cv", err)
	}
	cv.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &cv, nil
}

// CreateApplication links a CV to a job after checking both exist.
func (s *Store) CreateApplication(ctx context.Context, cvID, jobID string) (*Application, error) {
	if _, err := s.GetCV(ctx, cvID); err != nil {
		return nil, err
	}
	if _, err := s.GetJob(ctx, jobID); err != nil {
		return nil, err
	}

	app := &Application{
		ID:        uuid.NewString(),
		CVID:      cvID,
		JobID:     jobID,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO applications (id, cv_id, job_id, created_at)
		VALUES (?, ?, ?, ?)`,
		app.ID, app.CVID, app.JobID, app.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, errors.NewStoreError(errors.ErrCodeStoreFailed, "failed to insert application", err)
	}
	return app, nil
}

// GetApplication loads an application by id.
func (s *Store) GetApplication(ctx context.Context, id string) (*Application, error) {
	var (
		app        Application
		score      sql.NullFloat64
		components sql.NullString
		createdAt  string
		scoredAt   sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, cv_id, job_id, score, components, created_at, scored_at
		FROM applications WHERE id = ?`, id).
		Scan(&app.ID, &app.CVID, &app.JobID, &score, &components, &createdAt, &scoredAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, notFound("application", id)
	}
	if err != nil {
		return nil, errors.NewStoreError(errors.ErrCodeStoreFailed, "failed to load application", err)
	}

	if score.Valid {
		app.Score = &score.Float64
	}
	if components.Valid && components.String != "" {
		app.Components = json.RawMessage(components.String)
	}
	app.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	if scoredAt.Valid {
		if t, err := time.Parse(time.RFC3339Nano, scoredAt.String); err == nil {
			app.ScoredAt = &t
		}
	}
	return &app, nil
}

// SaveScore records the final score and component breakdown for an
// application. components may be nil.
func (s *Store) SaveScore(ctx context.Context, appID string, score float64, components json.RawMessage) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE applications SET score = ?, components = ?, scored_at = ? WHERE id = ?`,
		score, string(components), time.Now().UTC().Format(time.RFC3339Nano), appID)
	if err != nil {
		return errors.NewStoreError(errors.ErrCodeStoreFailed, "failed to save score", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound("application", appID)
	}
	return nil
}
