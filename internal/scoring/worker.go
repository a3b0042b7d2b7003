package scoring

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"smartrecruit/internal/ai"
	"smartrecruit/internal/config"
	"smartrecruit/internal/errors"
	"smartrecruit/internal/match"
	"smartrecruit/internal/store"
)

const previewLimit = 500

// Recorder receives scoring outcome metrics. Implementations must be safe
// for concurrent use.
type Recorder interface {
	RecordScoring(ctx context.Context, duration time.Duration, score float64, success bool)
}

// Worker runs scoring invocations: background ones triggered by application
// submission and synchronous ones for tooling and debug inspection.
type Worker struct {
	store         *store.Store
	oracle        *ai.Oracle
	lexicon       *match.Lexicon
	weights       match.Weights
	mustHaveCap   float64
	oracleTimeout time.Duration
	logger        *errors.Logger
	recorder      Recorder

	wg sync.WaitGroup
}

// NewWorker builds a Worker from configuration. recorder may be nil.
func NewWorker(st *store.Store, oracle *ai.Oracle, lexicon *match.Lexicon, cfg *config.Config, logger *errors.Logger, recorder Recorder) *Worker {
	if lexicon == nil {
		lexicon = match.NewLexicon()
	}
	return &Worker{
		store:   st,
		oracle:  oracle,
		lexicon: lexicon,
		weights: match.Weights{
			Similarity:   cfg.Scoring.Weights.Similarity,
			Skills:       cfg.Scoring.Weights.Skills,
			Requirements: cfg.Scoring.Weights.Requirements,
			Profile:      cfg.Scoring.Weights.Profile,
		},
		mustHaveCap:   cfg.Scoring.MustHaveCap,
		oracleTimeout: cfg.Scoring.OracleTimeout,
		logger:        logger,
		recorder:      recorder,
	}
}

// Result is one full scoring outcome.
type Result struct {
	Components match.Components         `json:"components"`
	FinalScore float64                  `json:"final_score"`
	Parsed     match.ParsedRequirements `json:"parsed_requirements"`
}

// buildJobText flattens a job into the document compared against the CV.
// Skills and missions appear labeled and space-joined after sort+dedupe so
// the assembled text is deterministic for a given job.
func buildJobText(job *store.Job) string {
	skillsTxt := strings.Join(sortedUnique(job.Skills), " ")
	missionsTxt := strings.Join(sortedUnique(job.Missions), " ")

	parts := []string{
		job.Title,
		job.OfferDescription,
		job.Description,
	}
	if skillsTxt != "" {
		parts = append(parts, "Skills: "+skillsTxt)
	}
	if missionsTxt != "" {
		parts = append(parts, "Missions: "+missionsTxt)
	}
	parts = append(parts, job.ProfileRequirements)

	nonEmpty := parts[:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}

func sortedUnique(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

// ScoreJob scores cvText against a job that need not be persisted. It is the
// shared path behind background scoring, the synchronous endpoint and the CLI.
func (w *Worker) ScoreJob(ctx context.Context, cvText string, job *store.Job) (*Result, error) {
	jobText := buildJobText(job)
	parsed := w.lexicon.ParseProfileRequirements(job.ProfileRequirements, job.Skills)

	similarity, err := w.similarity(ctx, cvText, jobText)
	if err != nil {
		return nil, err
	}

	skills := sortedUnique(job.Skills)
	requirements := append(sortedUnique(job.Missions), parsed.MustHaves...)

	components := w.lexicon.Score(cvText, similarity, match.Inputs{
		Skills:       skills,
		Requirements: requirements,
		Profile:      parsed.Profile,
		Languages:    parsed.Languages,
		MustHaves:    parsed.MustHaves,
	}, w.weights, w.mustHaveCap)

	return &Result{
		Components: components,
		FinalScore: components.Final(),
		Parsed:     parsed,
	}, nil
}

func (w *Worker) similarity(ctx context.Context, cvText, jobText string) (float64, error) {
	callCtx := ctx
	if w.oracleTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, w.oracleTimeout)
		defer cancel()
	}

	similarity, err := w.oracle.Similarity0100(callCtx, cvText, jobText)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return 0, errors.NewOracleError(errors.ErrCodeOracleTimeout,
				fmt.Sprintf("similarity call exceeded %s", w.oracleTimeout), err)
		}
		return 0, errors.NewOracleError(errors.ErrCodeOracleFailed,
			"similarity call failed", err)
	}
	return similarity, nil
}

// ScoreApplication scores one stored application and persists the result.
// Any failure abandons the invocation; the application keeps a nil score.
func (w *Worker) ScoreApplication(ctx context.Context, appID string) error {
	start := time.Now()
	score, err := w.scoreApplication(ctx, appID)
	if w.recorder != nil {
		w.recorder.RecordScoring(ctx, time.Since(start), score, err == nil)
	}
	return err
}

func (w *Worker) scoreApplication(ctx context.Context, appID string) (float64, error) {
	app, err := w.store.GetApplication(ctx, appID)
	if err != nil {
		return 0, inputUnavailable("application", appID, err)
	}
	cv, err := w.store.GetCV(ctx, app.CVID)
	if err != nil {
		return 0, inputUnavailable("cv", app.CVID, err)
	}
	job, err := w.store.GetJob(ctx, app.JobID)
	if err != nil {
		return 0, inputUnavailable("job", app.JobID, err)
	}

	result, err := w.ScoreJob(ctx, cv.Text, job)
	if err != nil {
		return 0, err
	}

	payload, err := json.Marshal(struct {
		match.Components
		FinalScore float64 `json:"final_score"`
	}{result.Components, result.FinalScore})
	if err != nil {
		return 0, errors.NewInternalError(errors.ErrCodeStoreFailed, "failed to encode score components", err)
	}
	if err := w.store.SaveScore(ctx, appID, result.FinalScore, payload); err != nil {
		return 0, err
	}

	w.logger.Info("Application scored",
		"application_id", appID,
		"job_id", app.JobID,
		"final_score", result.FinalScore,
		"base_score", result.Components.BaseScore,
		"length_penalty", result.Components.LengthPenalty,
		"must_cap_applied", result.Components.MustHaveCap != nil)
	return result.FinalScore, nil
}

func inputUnavailable(kind, id string, cause error) error {
	return errors.NewIOError(errors.ErrCodeInputUnavailable,
		fmt.Sprintf("%s %s unavailable for scoring", kind, id), cause)
}

// Enqueue launches background scoring for an application, one goroutine per
// submission. Failures are logged and the invocation is abandoned without
// retry.
func (w *Worker) Enqueue(appID string) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ctx := context.Background()
		if err := w.ScoreApplication(ctx, appID); err != nil {
			w.logger.LogError(err, "Background scoring abandoned", "application_id", appID)
		}
	}()
}

// Wait blocks until all enqueued scoring goroutines finish.
func (w *Worker) Wait() {
	w.wg.Wait()
}

// Derived carries inspection-only metrics computed alongside the components.
type Derived struct {
	WordCount       int      `json:"token_count_words"`
	CanonTokenCount int      `json:"token_count_canon"`
	PenaltyTier     string   `json:"len_penalty_tier"`
	MustCapApplied  bool     `json:"must_cap_applied"`
	MustCapValue    *float64 `json:"must_cap_value,omitempty"`
	MustCapReason   string   `json:"must_cap_reason,omitempty"`
}

// Inspection is the debug view of one hypothetical cv/job pairing. Nothing
// is persisted.
type Inspection struct {
	CVID       string           `json:"cv_id"`
	JobID      string           `json:"job_id"`
	Components match.Components `json:"components"`
	FinalScore float64          `json:"final_score"`
	Derived    Derived          `json:"derived"`
	Preview    string           `json:"preview"`
}

// Inspect recomputes the full component breakdown for a cv/job pair without
// writing anything.
func (w *Worker) Inspect(ctx context.Context, cvID, jobID string) (*Inspection, error) {
	cv, err := w.store.GetCV(ctx, cvID)
	if err != nil {
		return nil, err
	}
	job, err := w.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	result, err := w.ScoreJob(ctx, cv.Text, job)
	if err != nil {
		return nil, err
	}

	derived := Derived{
		WordCount:       len(strings.Fields(cv.Text)),
		CanonTokenCount: result.Components.TokenCount,
		PenaltyTier:     match.PenaltyTier(result.Components.TokenCount),
		MustCapApplied:  result.Components.MustHaveCap != nil,
		MustCapValue:    result.Components.MustHaveCap,
	}
	if derived.MustCapApplied {
		derived.MustCapReason = "no must-have tokens matched"
	}

	preview := cv.Text
	if len(preview) > previewLimit {
		preview = preview[:previewLimit]
	}

	return &Inspection{
		CVID:       cvID,
		JobID:      jobID,
		Components: result.Components,
		FinalScore: result.FinalScore,
		Derived:    derived,
		Preview:    preview,
	}, nil
}
