package scoring

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"smartrecruit/internal/ai"
	"smartrecruit/internal/config"
	"smartrecruit/internal/errors"
	"smartrecruit/internal/store"
)

type fakeProvider struct {
	cosine float64
	err    error
	block  bool
}

func (f *fakeProvider) EmbedSimilarity(ctx context.Context, textA, textB string) (float64, error) {
	if f.block {
		<-ctx.Done()
		return 0, ctx.Err()
	}
	if f.err != nil {
		return 0, f.err
	}
	return f.cosine, nil
}

func (f *fakeProvider) GetModelInfo(ctx context.Context) *ai.ModelInfo { return nil }
func (f *fakeProvider) Close() error                                   { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Scoring: config.ScoringConfig{
			MustHaveCap: 70.0,
			Weights: config.WeightsConfig{
				Similarity:   0.40,
				Skills:       0.25,
				Requirements: 0.25,
				Profile:      0.10,
			},
			OracleTimeout: 5 * time.Second,
		},
	}
}

func testWorker(t *testing.T, provider *fakeProvider) (*Worker, *store.Store) {
	t.Helper()
	logger, err := errors.New("error")
	if err != nil {
		t.Fatalf("errors.New() error = %v", err)
	}
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	oracle := ai.NewOracleWithProviders(provider, nil, 0, 0, logger)
	return NewWorker(st, oracle, nil, testConfig(), logger, nil), st
}

func seedApplication(t *testing.T, st *store.Store, cvText string, job *store.Job) *store.Application {
	t.Helper()
	ctx := context.Background()
	cv := &store.CV{Text: cvText}
	if err := st.CreateCV(ctx, cv); err != nil {
		t.Fatalf("CreateCV() error = %v", err)
	}
	if err := st.CreateJob(ctx, job); err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}
	app, err := st.CreateApplication(ctx, cv.ID, job.ID)
	if err != nil {
		t.Fatalf("CreateApplication() error = %v", err)
	}
	return app
}

func longCVText(keywords string) string {
	pad := strings.Repeat("kubernetes ", 300)
	return keywords + " " + pad
}

func TestBuildJobText(t *testing.T) {
	job := &store.Job{
		Title:               "Backend Engineer",
		OfferDescription:    "Join us",
		Description:         "Build services",
		Skills:              []string{"Go", "Docker", "Go"},
		Missions:            []string{"Ship features"},
		ProfileRequirements: "English required",
	}
	got := buildJobText(job)
	want := "Backend Engineer Join us Build services Skills: Docker Go Missions: Ship features English required"
	if got != want {
		t.Errorf("buildJobText() = %q, want %q", got, want)
	}
}

func TestBuildJobTextSkipsEmptyParts(t *testing.T) {
	got := buildJobText(&store.Job{Title: "SRE"})
	if got != "SRE" {
		t.Errorf("buildJobText() = %q, want %q", got, "SRE")
	}
}

func TestScoreApplicationPersists(t *testing.T) {
	w, st := testWorker(t, &fakeProvider{cosine: 0.8})
	ctx := context.Background()

	app := seedApplication(t, st, longCVText("python django postgresql"), &store.Job{
		Title:  "Python Developer",
		Skills: []string{"Python", "Django"},
	})

	if err := w.ScoreApplication(ctx, app.ID); err != nil {
		t.Fatalf("ScoreApplication() error = %v", err)
	}

	got, err := st.GetApplication(ctx, app.ID)
	if err != nil {
		t.Fatalf("GetApplication() error = %v", err)
	}
	if got.Score == nil {
		t.Fatal("score not persisted")
	}
	// 0.40*90 + 0.25*100 + 0.25*100 + 0.10*50 = 91.0
	if *got.Score != 91.0 {
		t.Errorf("score = %v, want 91.0", *got.Score)
	}
	if got.ScoredAt == nil {
		t.Error("scored_at not set")
	}

	var payload struct {
		Similarity float64 `json:"similarity"`
		BaseScore  float64 `json:"base_score"`
		FinalScore float64 `json:"final_score"`
	}
	if err := json.Unmarshal(got.Components, &payload); err != nil {
		t.Fatalf("components payload invalid: %v", err)
	}
	if payload.Similarity != 90.0 || payload.FinalScore != 91.0 {
		t.Errorf("payload = %+v", payload)
	}
}

func TestScoreApplicationOracleFailure(t *testing.T) {
	w, st := testWorker(t, &fakeProvider{err: stderrors.New("embedding backend down")})
	ctx := context.Background()

	app := seedApplication(t, st, "some text", &store.Job{Title: "SRE"})

	err := w.ScoreApplication(ctx, app.ID)
	if err == nil {
		t.Fatal("ScoreApplication() expected error")
	}
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) || appErr.Code != errors.ErrCodeOracleFailed {
		t.Errorf("error = %v, want code %s", err, errors.ErrCodeOracleFailed)
	}

	got, _ := st.GetApplication(ctx, app.ID)
	if got.Score != nil {
		t.Error("failed invocation must not persist a score")
	}
}

func TestScoreApplicationOracleTimeout(t *testing.T) {
	w, st := testWorker(t, &fakeProvider{block: true})
	w.oracleTimeout = 20 * time.Millisecond

	app := seedApplication(t, st, "some text", &store.Job{Title: "SRE"})

	err := w.ScoreApplication(context.Background(), app.ID)
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) || appErr.Code != errors.ErrCodeOracleTimeout {
		t.Errorf("error = %v, want code %s", err, errors.ErrCodeOracleTimeout)
	}
}

func TestScoreApplicationMissingInput(t *testing.T) {
	w, _ := testWorker(t, &fakeProvider{cosine: 0.5})

	err := w.ScoreApplication(context.Background(), "no-such-application")
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) || appErr.Code != errors.ErrCodeInputUnavailable {
		t.Errorf("error = %v, want code %s", err, errors.ErrCodeInputUnavailable)
	}
}

func TestEnqueueScoresInBackground(t *testing.T) {
	w, st := testWorker(t, &fakeProvider{cosine: 0.8})

	app := seedApplication(t, st, longCVText("go kubernetes"), &store.Job{
		Title:  "Platform Engineer",
		Skills: []string{"Go", "Kubernetes"},
	})

	w.Enqueue(app.ID)
	w.Wait()

	got, err := st.GetApplication(context.Background(), app.ID)
	if err != nil {
		t.Fatalf("GetApplication() error = %v", err)
	}
	if got.Score == nil {
		t.Fatal("background scoring did not persist a score")
	}
}

func TestInspectDoesNotPersist(t *testing.T) {
	w, st := testWorker(t, &fakeProvider{cosine: 0.8})
	ctx := context.Background()

	app := seedApplication(t, st, "short cv mentioning python", &store.Job{
		Title:               "Python Developer",
		Skills:              []string{"Python", "Rust"},
		ProfileRequirements: "Rust mandatory",
	})

	insp, err := w.Inspect(ctx, app.CVID, app.JobID)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}

	if insp.Derived.PenaltyTier != "HARD" {
		t.Errorf("PenaltyTier = %q, want HARD", insp.Derived.PenaltyTier)
	}
	if !insp.Derived.MustCapApplied {
		t.Error("must-have cap should apply when no must token matched")
	}
	if insp.Derived.MustCapValue == nil || *insp.Derived.MustCapValue != 70.0 {
		t.Errorf("MustCapValue = %v, want 70.0", insp.Derived.MustCapValue)
	}
	if insp.Derived.MustCapReason == "" {
		t.Error("MustCapReason missing when cap applied")
	}
	if insp.Derived.WordCount != 4 {
		t.Errorf("WordCount = %d, want 4", insp.Derived.WordCount)
	}
	if insp.Preview == "" {
		t.Error("preview missing")
	}

	got, _ := st.GetApplication(ctx, app.ID)
	if got.Score != nil {
		t.Error("Inspect() must not persist a score")
	}
}

func TestScoreJobUsesParsedRequirements(t *testing.T) {
	w, _ := testWorker(t, &fakeProvider{cosine: 0.0})

	result, err := w.ScoreJob(context.Background(), longCVText("python sql english"), &store.Job{
		Title:               "Data Engineer",
		Skills:              []string{"Python", "SQL"},
		Missions:            []string{"Build pipelines"},
		ProfileRequirements: "Python required\nEnglish and French appreciated",
	})
	if err != nil {
		t.Fatalf("ScoreJob() error = %v", err)
	}

	if len(result.Parsed.MustHaves) != 1 || result.Parsed.MustHaves[0] != "python" {
		t.Errorf("MustHaves = %v, want [python]", result.Parsed.MustHaves)
	}
	if len(result.Parsed.Languages) != 2 {
		t.Errorf("Languages = %v, want two entries", result.Parsed.Languages)
	}
	if result.Components.MustHaveCap != nil {
		t.Error("cap must not apply when a must-have is satisfied")
	}
	if result.Components.SkillsRatio != 100.0 {
		t.Errorf("SkillsRatio = %v, want 100", result.Components.SkillsRatio)
	}
}
