package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestJobRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	job := &Job{
		Title:               "Backend Engineer",
		Description:         "Build services",
		OfferDescription:    "Remote friendly",
		Skills:              []string{"Go", "PostgreSQL"},
		Missions:            []string{"Design APIs"},
		ProfileRequirements: "3+ years required; English mandatory",
	}
	if err := s.CreateJob(ctx, job); err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}
	if job.ID == "" {
		t.Fatal("CreateJob() did not assign an ID")
	}

	got, err := s.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetJob() error = %v", err)
	}
	if got.Title != job.Title || got.ProfileRequirements != job.ProfileRequirements {
		t.Errorf("GetJob() = %+v, want %+v", got, job)
	}
	if len(got.Skills) != 2 || got.Skills[0] != "Go" {
		t.Errorf("GetJob() skills = %v", got.Skills)
	}
	if len(got.Missions) != 1 || got.Missions[0] != "Design APIs" {
		t.Errorf("GetJob() missions = %v", got.Missions)
	}
	if got.CreatedAt.IsZero() {
		t.Error("GetJob() created_at is zero")
	}
}

func TestGetJobNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetJob(context.Background(), "missing")
	if err == nil {
		t.Fatal("GetJob() expected error for missing id")
	}
	if !IsNotFound(err) {
		t.Errorf("IsNotFound(%v) = false, want true", err)
	}
}

func TestCVRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	cv := &CV{CandidateName: "Ada", Text: "Go developer with Kubernetes experience"}
	if err := s.CreateCV(ctx, cv); err != nil {
		t.Fatalf("CreateCV() error = %v", err)
	}

	got, err := s.GetCV(ctx, cv.ID)
	if err != nil {
		t.Fatalf("GetCV() error = %v", err)
	}
	if got.CandidateName != "Ada" || got.Text != cv.Text {
		t.Errorf("GetCV() = %+v", got)
	}
}

func TestApplicationLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	cv := &CV{Text: "some resume text"}
	if err := s.CreateCV(ctx, cv); err != nil {
		t.Fatalf("CreateCV() error = %v", err)
	}
	job := &Job{Title: "SRE"}
	if err := s.CreateJob(ctx, job); err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}

	app, err := s.CreateApplication(ctx, cv.ID, job.ID)
	if err != nil {
		t.Fatalf("CreateApplication() error = %v", err)
	}
	if app.Score != nil || app.ScoredAt != nil {
		t.Error("new application should have no score")
	}

	components := json.RawMessage(`{"similarity":90,"base_score":91}`)
	if err := s.SaveScore(ctx, app.ID, 91.0, components); err != nil {
		t.Fatalf("SaveScore() error = %v", err)
	}

	got, err := s.GetApplication(ctx, app.ID)
	if err != nil {
		t.Fatalf("GetApplication() error = %v", err)
	}
	if got.Score == nil || *got.Score != 91.0 {
		t.Errorf("GetApplication() score = %v, want 91.0", got.Score)
	}
	if got.ScoredAt == nil {
		t.Error("GetApplication() scored_at not set")
	}
	if len(got.Components) == 0 {
		t.Error("GetApplication() components missing")
	}
	if got.CVID != cv.ID || got.JobID != job.ID {
		t.Errorf("GetApplication() ids = %s/%s", got.CVID, got.JobID)
	}
}

func TestCreateApplicationChecksReferences(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	cv := &CV{Text: "text"}
	if err := s.CreateCV(ctx, cv); err != nil {
		t.Fatalf("CreateCV() error = %v", err)
	}

	if _, err := s.CreateApplication(ctx, cv.ID, "no-such-job"); !IsNotFound(err) {
		t.Errorf("CreateApplication() with bad job = %v, want not-found", err)
	}
	if _, err := s.CreateApplication(ctx, "no-such-cv", "whatever"); !IsNotFound(err) {
		t.Errorf("CreateApplication() with bad cv = %v, want not-found", err)
	}
}

func TestSaveScoreMissingApplication(t *testing.T) {
	s := openTestStore(t)

	err := s.SaveScore(context.Background(), "missing", 50.0, nil)
	if !IsNotFound(err) {
		t.Errorf("SaveScore() = %v, want not-found", err)
	}
}
