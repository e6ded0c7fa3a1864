package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"

	"applyai/models"
	"applyai/utils"
)

// RunStore persists runs and their events. Persistence is best effort: a
// store failure never interrupts a pipeline.
type RunStore interface {
	SaveRun(run *models.Run) error
	SaveEvent(runID string, event models.RunEvent) error
}

// RunRequest starts one application run.
type RunRequest struct {
	Profile    string `json:"profile"`
	Company    string `json:"company"`
	JobTitle   string `json:"job_title"`
	JobURL     string `json:"job_url"`
	JobSummary string `json:"job_summary"`

	// IgnoreOptional tells answer generation to skip non-required fields
	// unless they are trivial contact details.
	IgnoreOptional bool `json:"ignore_optional"`
}

// RunsService owns the in-memory run registry and drives the pipeline for
// each run: resolve the apply URL, extract the form, generate answers, fill,
// snapshot, and hold the page open. It never submits a form.
type RunsService struct {
	mu   sync.Mutex
	runs map[string]*models.Run

	browser   *BrowserService
	extractor *FormExtractor
	snapshots *SnapshotService
	answers   *AnswerService
	filler    *FormFillerService
	finder    *ApplyFinderService
	resumes   *ResumeService
	store     RunStore

	holdOpenSeconds int
	snapshotRoot    string
}

// RunsDeps collects the collaborators a RunsService needs. Store and answers
// may be nil: runs then go unpersisted and answer generation is skipped.
type RunsDeps struct {
	Browser   *BrowserService
	Extractor *FormExtractor
	Snapshots *SnapshotService
	Answers   *AnswerService
	Filler    *FormFillerService
	Finder    *ApplyFinderService
	Resumes   *ResumeService
	Store     RunStore

	HoldOpenSeconds int
	SnapshotRoot    string
}

func NewRunsService(deps RunsDeps) *RunsService {
	return &RunsService{
		runs:            make(map[string]*models.Run),
		browser:         deps.Browser,
		extractor:       deps.Extractor,
		snapshots:       deps.Snapshots,
		answers:         deps.Answers,
		filler:          deps.Filler,
		finder:          deps.Finder,
		resumes:         deps.Resumes,
		store:           deps.Store,
		holdOpenSeconds: deps.HoldOpenSeconds,
		snapshotRoot:    deps.SnapshotRoot,
	}
}

// StartRun registers a new run and launches its pipeline in the background.
func (s *RunsService) StartRun(req RunRequest) *models.Run {
	now := time.Now().UTC()
	run := &models.Run{
		ID:        uuid.NewString(),
		Profile:   req.Profile,
		Company:   req.Company,
		JobTitle:  req.JobTitle,
		JobURL:    req.JobURL,
		Status:    models.RunStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.runs[run.ID] = run
	s.mu.Unlock()

	s.persistRun(run)
	go s.executePipeline(run.ID, req)

	return s.snapshotOf(run.ID)
}

// GetRun returns a copy of the run, or nil when unknown.
func (s *RunsService) GetRun(id string) *models.Run {
	return s.snapshotOf(id)
}

// ListRuns returns copies of all registered runs, newest first.
func (s *RunsService) ListRuns() []*models.Run {
	s.mu.Lock()
	ids := make([]string, 0, len(s.runs))
	for id := range s.runs {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	runs := make([]*models.Run, 0, len(ids))
	for _, id := range ids {
		if r := s.snapshotOf(id); r != nil {
			runs = append(runs, r)
		}
	}
	for i := 0; i < len(runs); i++ {
		for j := i + 1; j < len(runs); j++ {
			if runs[j].CreatedAt.After(runs[i].CreatedAt) {
				runs[i], runs[j] = runs[j], runs[i]
			}
		}
	}
	return runs
}

// snapshotOf copies a run under the lock so callers never share mutable
// state with the pipeline goroutine.
func (s *RunsService) snapshotOf(id string) *models.Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return nil
	}
	cp := *run
	cp.Events = append([]models.RunEvent(nil), run.Events...)
	return &cp
}

func (s *RunsService) setStatus(id, status, errMsg string) {
	s.mu.Lock()
	run, ok := s.runs[id]
	if ok {
		run.Status = status
		run.Error = errMsg
		run.UpdatedAt = time.Now().UTC()
	}
	s.mu.Unlock()
	if ok {
		s.persistRun(s.snapshotOf(id))
	}
}

func (s *RunsService) setApplyURL(id, applyURL string) {
	s.mu.Lock()
	if run, ok := s.runs[id]; ok {
		run.ApplyURL = applyURL
		run.UpdatedAt = time.Now().UTC()
	}
	s.mu.Unlock()
}

// emit records one pipeline event on the run, mirrors it to the structured
// log, and writes it to the store.
func (s *RunsService) emit(id, stage string, level utils.LogLevel, message string, data interface{}) {
	event := models.RunEvent{
		Stage:     stage,
		Level:     string(level),
		Message:   message,
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	if run, ok := s.runs[id]; ok {
		event.Seq = len(run.Events) + 1
		run.Events = append(run.Events, event)
		run.UpdatedAt = event.CreatedAt
	}
	s.mu.Unlock()

	utils.LogEvent(stage, level, message, data)
	if s.store != nil {
		if err := s.store.SaveEvent(id, event); err != nil {
			utils.LogWarn("failed to persist run event", map[string]interface{}{"run_id": id, "error": err.Error()})
		}
	}
}

func (s *RunsService) persistRun(run *models.Run) {
	if s.store == nil || run == nil {
		return
	}
	if err := s.store.SaveRun(run); err != nil {
		utils.LogWarn("failed to persist run", map[string]interface{}{"run_id": run.ID, "error": err.Error()})
	}
}

// executePipeline drives one run end to end. Every stage failure marks the
// run failed with a stage-tagged error; a completed run always stopped short
// of submission.
func (s *RunsService) executePipeline(id string, req RunRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	s.setStatus(id, models.RunStatusRunning, "")
	s.emit(id, "pipeline", utils.INFO, "run started", map[string]interface{}{"job_url": req.JobURL})

	page, err := s.browser.NewPage()
	if err != nil {
		s.fail(id, "browser", fmt.Errorf("could not open page: %w", err))
		return
	}
	defer page.Close()

	// Resolve where to apply. A direct apply URL in the request skips
	// resolution entirely.
	applyURL := req.JobURL
	summary := req.JobSummary
	if summary == "" {
		summary = fmt.Sprintf("%s at %s", req.JobTitle, utils.TitleCase(req.Company))
	}
	if req.JobURL == "" || !s.looksLikeApplyPage(page, req.JobURL) {
		s.emit(id, "find_apply", utils.INFO, "resolving apply URL", nil)
		resolved, trace := s.finder.ResolveApplyURL(ctx, page, summary)
		s.emit(id, "find_apply", utils.DEBUG, "resolution trace", trace)
		if resolved == "" {
			s.fail(id, "find_apply", fmt.Errorf("could not resolve an apply URL"))
			return
		}
		applyURL = resolved
	}
	s.setApplyURL(id, applyURL)
	s.emit(id, "find_apply", utils.INFO, "apply URL selected", map[string]interface{}{"apply_url": applyURL})

	if err := NavigateAndSettle(page, applyURL, 30000); err != nil {
		s.fail(id, "navigate", err)
		return
	}

	schema, err := s.extractor.ExtractFromPage(page, applyURL)
	if err != nil {
		s.fail(id, "extract", err)
		return
	}
	s.emit(id, "extract", utils.INFO, "form extracted", map[string]interface{}{
		"fields":     len(schema.AllFields()),
		"valid":      schema.Validity.IsValidJobApplicationForm,
		"confidence": schema.Validity.Confidence,
	})
	if !schema.Validity.IsValidJobApplicationForm {
		s.fail(id, "extract", fmt.Errorf("page does not look like a job application form (confidence %.2f)", schema.Validity.Confidence))
		return
	}

	resumePath := s.resumes.PickResumePDF(req.Profile)
	resumeText := ""
	if resumePath != "" {
		if text, err := s.resumes.ExtractResumeText(resumePath); err == nil {
			resumeText = text
		} else {
			s.emit(id, "resume", utils.WARN, "resume text extraction failed", map[string]interface{}{"error": err.Error()})
		}
	} else {
		s.emit(id, "resume", utils.WARN, "no resume found for profile", map[string]interface{}{"profile": req.Profile})
	}

	if s.answers != nil {
		answered, unanswerable, err := s.answers.GenerateAnswers(ctx, schema, resumeText, summary, req.IgnoreOptional)
		if err != nil {
			s.emit(id, "answer", utils.WARN, "answer generation failed", map[string]interface{}{"error": err.Error()})
		} else {
			s.emit(id, "answer", utils.INFO, "answers generated", map[string]interface{}{
				"answered":     len(answered),
				"unanswerable": unanswerable,
			})
		}
	}

	report := s.filler.FillForm(page, schema, resumePath)
	s.emit(id, "fill", utils.INFO, "fill pass complete", report)

	if s.snapshots != nil && s.snapshotRoot != "" {
		dir := filepath.Join(s.snapshotRoot, id)
		if _, err := s.snapshots.Capture(page, dir); err != nil {
			s.emit(id, "snapshot", utils.WARN, "snapshot capture failed", map[string]interface{}{"error": err.Error()})
		} else {
			s.emit(id, "snapshot", utils.INFO, "snapshot captured", map[string]interface{}{"dir": dir})
		}
	}

	s.filler.HoldOpen(page, s.holdOpenSeconds)

	s.setStatus(id, models.RunStatusCompleted, "")
	s.emit(id, "pipeline", utils.INFO, "run completed without submitting", nil)
}

// looksLikeApplyPage loads the given URL and checks whether it already hosts
// a valid application form, skipping resolution when it does.
func (s *RunsService) looksLikeApplyPage(page playwright.Page, jobURL string) bool {
	if err := NavigateAndSettle(page, jobURL, 30000); err != nil {
		return false
	}
	schema, err := s.extractor.ExtractFromPage(page, jobURL)
	if err != nil {
		return false
	}
	return schema.Validity.IsValidJobApplicationForm
}

func (s *RunsService) fail(id, stage string, err error) {
	s.emit(id, stage, utils.ERROR, err.Error(), nil)
	s.setStatus(id, models.RunStatusFailed, fmt.Sprintf("%s: %v", stage, err))
}
