package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"surveyd/internal/model"
	"surveyd/internal/repository"
)

// SurveyService serves survey structure to running sessions.
type SurveyService struct {
	surveyRepo repository.SurveyRepo
}

func NewSurveyService(surveyRepo repository.SurveyRepo) *SurveyService {
	return &SurveyService{
		surveyRepo: surveyRepo,
	}
}

// Create stores a survey, assigning an ID when the caller left it blank.
func (s *SurveyService) Create(ctx context.Context, survey *model.Survey) (string, error) {
	if survey.ID == "" {
		survey.ID = uuid.New().String()
	}
	if err := s.surveyRepo.Create(ctx, survey); err != nil {
		return "", fmt.Errorf("failed to create survey: %w", err)
	}
	return survey.ID, nil
}

// Get returns the survey structure a session renders from.
func (s *SurveyService) Get(ctx context.Context, id string) (*model.Survey, error) {
	survey, err := s.surveyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("survey not found: %w", err)
	}
	return survey, nil
}

// Open reports whether the survey accepts new responses right now, with a
// reason when it does not.
func (s *SurveyService) Open(ctx context.Context, id string) (bool, string, error) {
	survey, err := s.surveyRepo.GetByID(ctx, id)
	if err != nil {
		return false, "", fmt.Errorf("survey not found: %w", err)
	}

	now := time.Now()
	if survey.Settings.StartDate != nil && now.Before(*survey.Settings.StartDate) {
		return false, "survey has not started yet", nil
	}
	if survey.Settings.ExpiryDate != nil && now.After(*survey.Settings.ExpiryDate) {
		return false, "survey has expired", nil
	}
	return true, "", nil
}
