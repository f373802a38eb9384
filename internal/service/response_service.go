package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"surveyd/internal/cache"
	"surveyd/internal/model"
	"surveyd/internal/repository"
)

// ResponseService owns the response lifecycle on the server side: start,
// per-answer saves, autosave, completion and resume. It is the backend the
// session runner talks to through the REST layer.
type ResponseService struct {
	responseRepo repository.ResponseRepo
	surveyRepo   repository.SurveyRepo
	resumeCache  cache.ResumeCache
	quotaSvc     *QuotaService
	log          *zap.Logger
}

func NewResponseService(
	responseRepo repository.ResponseRepo,
	surveyRepo repository.SurveyRepo,
	resumeCache cache.ResumeCache,
	quotaSvc *QuotaService,
	log *zap.Logger,
) *ResponseService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ResponseService{
		responseRepo: responseRepo,
		surveyRepo:   surveyRepo,
		resumeCache:  resumeCache,
		quotaSvc:     quotaSvc,
		log:          log,
	}
}

// Start creates a response record with a fresh randomization seed. The
// seed is fixed at start so option order survives reloads.
func (s *ResponseService) Start(ctx context.Context, surveyID string) (*model.Response, error) {
	if _, err := s.surveyRepo.GetByID(ctx, surveyID); err != nil {
		return nil, fmt.Errorf("survey not found: %w", err)
	}

	resp := &model.Response{
		ID:                uuid.New().String(),
		SurveyID:          surveyID,
		Status:            model.ResponseIncomplete,
		RandomizationSeed: uuid.New().String(),
	}
	if err := s.responseRepo.Create(ctx, resp); err != nil {
		return nil, fmt.Errorf("failed to create response: %w", err)
	}
	return resp, nil
}

// SaveAnswer upserts one answer cell. Saves against a completed response
// are rejected.
func (s *ResponseService) SaveAnswer(ctx context.Context, responseID, key, value string) error {
	return s.responseRepo.SaveAnswer(ctx, responseID, key, value)
}

// Autosave persists the full snapshot and position, then refreshes the
// resume cache. A cache failure is logged, not returned; Mongo already
// holds the state.
func (s *ResponseService) Autosave(ctx context.Context, responseID string, answers model.AnswerSnapshot, groupIndex int) error {
	if err := s.responseRepo.Autosave(ctx, responseID, answers, groupIndex); err != nil {
		return err
	}

	resp, err := s.responseRepo.GetByID(ctx, responseID)
	if err != nil {
		return err
	}
	state := &model.ResumeState{
		ResponseID:        responseID,
		SurveyID:          resp.SurveyID,
		Answers:           answers,
		CurrentGroupIndex: groupIndex,
		RandomizationSeed: resp.RandomizationSeed,
	}
	if err := s.resumeCache.Set(ctx, state); err != nil {
		s.log.Warn("resume cache write failed", zap.String("response", responseID), zap.Error(err))
	}
	return nil
}

// Complete marks the response complete and, on the first transition only,
// records the completion against the matching quota tally. Repeat calls
// are no-ops so a retried completion request cannot double-count.
func (s *ResponseService) Complete(ctx context.Context, responseID string, answers model.AnswerSnapshot) error {
	resp, err := s.responseRepo.GetByID(ctx, responseID)
	if err != nil {
		return fmt.Errorf("response not found: %w", err)
	}

	first, err := s.responseRepo.MarkComplete(ctx, responseID)
	if err != nil {
		return fmt.Errorf("failed to mark response complete: %w", err)
	}
	if !first {
		return nil
	}

	// Callers may omit the snapshot; the stored cells are authoritative by
	// the time completion lands.
	if len(answers) == 0 {
		if stored, loadErr := s.responseRepo.GetAnswers(ctx, responseID); loadErr == nil {
			answers = stored
		}
	}

	if err := s.quotaSvc.RecordCompletion(ctx, resp.SurveyID, answers); err != nil {
		// The response is already complete; losing one tally beats failing
		// the respondent's final request.
		s.log.Error("quota tally update failed",
			zap.String("response", responseID),
			zap.String("survey", resp.SurveyID),
			zap.Error(err))
	}

	if err := s.resumeCache.Delete(ctx, responseID); err != nil {
		s.log.Warn("resume cache delete failed", zap.String("response", responseID), zap.Error(err))
	}
	return nil
}

// ScreenOut marks the response screened out. Like Complete it only acts on
// incomplete responses.
func (s *ResponseService) ScreenOut(ctx context.Context, responseID string) error {
	return s.responseRepo.MarkScreenedOut(ctx, responseID)
}

// Resume returns the state a reloaded session restores from: the cached
// autosave when present, otherwise rebuilt from the stored answer cells.
func (s *ResponseService) Resume(ctx context.Context, responseID string) (*model.ResumeState, error) {
	state, err := s.resumeCache.Get(ctx, responseID)
	if err != nil {
		s.log.Warn("resume cache read failed", zap.String("response", responseID), zap.Error(err))
	}
	if state != nil {
		return state, nil
	}

	resp, err := s.responseRepo.GetByID(ctx, responseID)
	if err != nil {
		return nil, fmt.Errorf("response not found: %w", err)
	}
	answers, err := s.responseRepo.GetAnswers(ctx, responseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}

	return &model.ResumeState{
		ResponseID:        responseID,
		SurveyID:          resp.SurveyID,
		Answers:           answers,
		CurrentGroupIndex: resp.CurrentGroupIndex,
		RandomizationSeed: resp.RandomizationSeed,
		SavedAt:           resp.StartedAt,
	}, nil
}
