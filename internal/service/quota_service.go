package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"surveyd/internal/cache"
	"surveyd/internal/model"
	"surveyd/internal/quota"
	"surveyd/internal/repository"
)

// QuotaService evaluates quota rules with live tallies. Rule definitions
// come from Mongo; the counts overlaid on them come from Redis so every
// instance sees the same tally.
type QuotaService struct {
	quotaRepo  repository.QuotaRepo
	quotaCache cache.QuotaCache
	log        *zap.Logger
}

func NewQuotaService(quotaRepo repository.QuotaRepo, quotaCache cache.QuotaCache, log *zap.Logger) *QuotaService {
	if log == nil {
		log = zap.NewNop()
	}
	return &QuotaService{
		quotaRepo:  quotaRepo,
		quotaCache: quotaCache,
		log:        log,
	}
}

// loadRules fetches a survey's active rules and overlays the live counts.
// A counter-store failure falls back to the stored counts rather than
// failing the check.
func (s *QuotaService) loadRules(ctx context.Context, surveyID string) ([]model.QuotaRule, error) {
	rules, err := s.quotaRepo.ListBySurvey(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load quota rules: %w", err)
	}
	if len(rules) == 0 {
		return rules, nil
	}

	counts, err := s.liveCounts(ctx, rules)
	if err != nil {
		s.log.Warn("quota tally lookup failed, using stored counts",
			zap.String("survey", surveyID), zap.Error(err))
		return rules, nil
	}
	for i := range rules {
		if n, ok := counts[rules[i].ID]; ok && n > rules[i].Count {
			rules[i].Count = n
		}
	}
	return rules, nil
}

// liveCounts reads the Redis tallies: one GET for a single rule, one MGET
// otherwise.
func (s *QuotaService) liveCounts(ctx context.Context, rules []model.QuotaRule) (map[string]int, error) {
	if len(rules) == 1 {
		n, err := s.quotaCache.Count(ctx, rules[0].ID)
		if err != nil {
			return nil, err
		}
		return map[string]int{rules[0].ID: n}, nil
	}

	ids := make([]string, len(rules))
	for i, r := range rules {
		ids[i] = r.ID
	}
	return s.quotaCache.Counts(ctx, ids)
}

// Check evaluates the survey's rules against the snapshot.
func (s *QuotaService) Check(ctx context.Context, surveyID string, answers model.AnswerSnapshot) (quota.Verdict, error) {
	rules, err := s.loadRules(ctx, surveyID)
	if err != nil {
		return quota.Verdict{}, err
	}
	return quota.Check(answers, rules), nil
}

// RecordCompletion bumps the tally of the first rule whose conditions
// match the completed snapshot. Called once per response, on the first
// transition to complete.
func (s *QuotaService) RecordCompletion(ctx context.Context, surveyID string, answers model.AnswerSnapshot) error {
	rules, err := s.loadRules(ctx, surveyID)
	if err != nil {
		return err
	}
	for i := range rules {
		r := &rules[i]
		if !r.Active {
			continue
		}
		if quota.Matches(answers, r.Conditions) {
			if _, err := s.quotaCache.Increment(ctx, r.ID); err != nil {
				return fmt.Errorf("failed to increment quota tally: %w", err)
			}
			return nil
		}
	}
	return nil
}
