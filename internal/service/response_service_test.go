package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveyd/internal/model"
)

type fakeResponseRepo struct {
	responses     map[string]*model.Response
	answers       map[string]model.AnswerSnapshot
	completeCalls int
}

func newFakeResponseRepo() *fakeResponseRepo {
	return &fakeResponseRepo{
		responses: make(map[string]*model.Response),
		answers:   make(map[string]model.AnswerSnapshot),
	}
}

func (f *fakeResponseRepo) Create(_ context.Context, resp *model.Response) error {
	f.responses[resp.ID] = resp
	return nil
}

func (f *fakeResponseRepo) GetByID(_ context.Context, id string) (*model.Response, error) {
	resp, ok := f.responses[id]
	if !ok {
		return nil, errors.New("response not found")
	}
	cp := *resp
	return &cp, nil
}

func (f *fakeResponseRepo) SaveAnswer(_ context.Context, responseID, key, value string) error {
	if f.answers[responseID] == nil {
		f.answers[responseID] = make(model.AnswerSnapshot)
	}
	f.answers[responseID][key] = model.TextValue(value)
	return nil
}

func (f *fakeResponseRepo) Autosave(_ context.Context, responseID string, answers model.AnswerSnapshot, groupIndex int) error {
	f.answers[responseID] = answers.Clone()
	f.responses[responseID].CurrentGroupIndex = groupIndex
	return nil
}

func (f *fakeResponseRepo) GetAnswers(_ context.Context, responseID string) (model.AnswerSnapshot, error) {
	snap := f.answers[responseID]
	if snap == nil {
		return make(model.AnswerSnapshot), nil
	}
	return snap.Clone(), nil
}

func (f *fakeResponseRepo) MarkComplete(_ context.Context, responseID string) (bool, error) {
	f.completeCalls++
	resp, ok := f.responses[responseID]
	if !ok {
		return false, errors.New("response not found")
	}
	if resp.Status == model.ResponseComplete {
		return false, nil
	}
	resp.Status = model.ResponseComplete
	now := time.Now()
	resp.CompletedAt = &now
	return true, nil
}

func (f *fakeResponseRepo) MarkScreenedOut(_ context.Context, responseID string) error {
	if resp, ok := f.responses[responseID]; ok && resp.Status == model.ResponseIncomplete {
		resp.Status = model.ResponseScreenedOut
	}
	return nil
}

type fakeSurveyRepo struct {
	surveys map[string]*model.Survey
}

func (f *fakeSurveyRepo) Create(_ context.Context, s *model.Survey) error {
	f.surveys[s.ID] = s
	return nil
}

func (f *fakeSurveyRepo) GetByID(_ context.Context, id string) (*model.Survey, error) {
	s, ok := f.surveys[id]
	if !ok {
		return nil, errors.New("survey not found")
	}
	return s, nil
}

func (f *fakeSurveyRepo) Update(context.Context, *model.Survey) error { return nil }

type fakeQuotaRepo struct {
	rules []model.QuotaRule
}

func (f *fakeQuotaRepo) Create(_ context.Context, r *model.QuotaRule) error {
	f.rules = append(f.rules, *r)
	return nil
}

func (f *fakeQuotaRepo) ListBySurvey(context.Context, string) ([]model.QuotaRule, error) {
	out := make([]model.QuotaRule, len(f.rules))
	copy(out, f.rules)
	return out, nil
}

type fakeQuotaCache struct {
	counts     map[string]int
	countCalls int
	mgetCalls  int
	increments []string
}

func newFakeQuotaCache() *fakeQuotaCache {
	return &fakeQuotaCache{counts: make(map[string]int)}
}

func (f *fakeQuotaCache) Count(_ context.Context, ruleID string) (int, error) {
	f.countCalls++
	return f.counts[ruleID], nil
}

func (f *fakeQuotaCache) Increment(_ context.Context, ruleID string) (int, error) {
	f.counts[ruleID]++
	f.increments = append(f.increments, ruleID)
	return f.counts[ruleID], nil
}

func (f *fakeQuotaCache) Counts(_ context.Context, ruleIDs []string) (map[string]int, error) {
	f.mgetCalls++
	out := make(map[string]int, len(ruleIDs))
	for _, id := range ruleIDs {
		if n, ok := f.counts[id]; ok {
			out[id] = n
		}
	}
	return out, nil
}

type fakeResumeCache struct {
	states  map[string]*model.ResumeState
	deletes int
}

func newFakeResumeCache() *fakeResumeCache {
	return &fakeResumeCache{states: make(map[string]*model.ResumeState)}
}

func (f *fakeResumeCache) Set(_ context.Context, st *model.ResumeState) error {
	f.states[st.ResponseID] = st
	return nil
}

func (f *fakeResumeCache) Get(_ context.Context, id string) (*model.ResumeState, error) {
	return f.states[id], nil
}

func (f *fakeResumeCache) Delete(_ context.Context, id string) error {
	f.deletes++
	delete(f.states, id)
	return nil
}

func ageCapRule() model.QuotaRule {
	return model.QuotaRule{
		ID:       "q1",
		SurveyID: "sv1",
		Name:     "under-thirty",
		Conditions: []model.QuotaCondition{
			{QuestionCode: "age", Operator: model.QuotaLess, Value: "30"},
		},
		Limit:  10,
		Action: model.QuotaStop,
		Active: true,
	}
}

func newResponseFixture() (*ResponseService, *fakeResponseRepo, *fakeQuotaRepo, *fakeQuotaCache, *fakeResumeCache) {
	respRepo := newFakeResponseRepo()
	surveyRepo := &fakeSurveyRepo{surveys: map[string]*model.Survey{"sv1": {ID: "sv1"}}}
	quotaRepo := &fakeQuotaRepo{}
	quotaCache := newFakeQuotaCache()
	resumeCache := newFakeResumeCache()
	quotaSvc := NewQuotaService(quotaRepo, quotaCache, nil)
	svc := NewResponseService(respRepo, surveyRepo, resumeCache, quotaSvc, nil)
	return svc, respRepo, quotaRepo, quotaCache, resumeCache
}

func TestCompleteTalliesOnlyFirstTransition(t *testing.T) {
	svc, respRepo, quotaRepo, quotaCache, _ := newResponseFixture()
	quotaRepo.rules = []model.QuotaRule{ageCapRule()}

	ctx := context.Background()
	require.NoError(t, respRepo.Create(ctx, &model.Response{
		ID: "r1", SurveyID: "sv1", Status: model.ResponseIncomplete,
	}))
	answers := model.AnswerSnapshot{"age": model.TextValue("25")}

	require.NoError(t, svc.Complete(ctx, "r1", answers))
	assert.Equal(t, []string{"q1"}, quotaCache.increments)

	// A retried completion request is a success but must not bump the
	// tally a second time.
	require.NoError(t, svc.Complete(ctx, "r1", answers))
	assert.Equal(t, []string{"q1"}, quotaCache.increments)
	assert.Equal(t, 2, respRepo.completeCalls)

	resp, err := respRepo.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, model.ResponseComplete, resp.Status)
}

func TestCompleteSkipsTallyWhenNoRuleMatches(t *testing.T) {
	svc, respRepo, quotaRepo, quotaCache, _ := newResponseFixture()
	quotaRepo.rules = []model.QuotaRule{ageCapRule()}

	ctx := context.Background()
	require.NoError(t, respRepo.Create(ctx, &model.Response{
		ID: "r1", SurveyID: "sv1", Status: model.ResponseIncomplete,
	}))

	require.NoError(t, svc.Complete(ctx, "r1", model.AnswerSnapshot{
		"age": model.TextValue("45"),
	}))
	assert.Empty(t, quotaCache.increments)
}

func TestCompleteLoadsStoredAnswersWhenOmitted(t *testing.T) {
	svc, respRepo, quotaRepo, quotaCache, _ := newResponseFixture()
	quotaRepo.rules = []model.QuotaRule{ageCapRule()}

	ctx := context.Background()
	require.NoError(t, respRepo.Create(ctx, &model.Response{
		ID: "r1", SurveyID: "sv1", Status: model.ResponseIncomplete,
	}))
	require.NoError(t, respRepo.SaveAnswer(ctx, "r1", "age", "22"))

	// The thin HTTP backend sends no snapshot; the stored cells decide.
	require.NoError(t, svc.Complete(ctx, "r1", nil))
	assert.Equal(t, []string{"q1"}, quotaCache.increments)
}

func TestCompleteDropsResumeState(t *testing.T) {
	svc, respRepo, _, _, resumeCache := newResponseFixture()

	ctx := context.Background()
	require.NoError(t, respRepo.Create(ctx, &model.Response{
		ID: "r1", SurveyID: "sv1", Status: model.ResponseIncomplete,
	}))
	require.NoError(t, resumeCache.Set(ctx, &model.ResumeState{ResponseID: "r1", SurveyID: "sv1"}))

	require.NoError(t, svc.Complete(ctx, "r1", nil))
	assert.Equal(t, 1, resumeCache.deletes)
	assert.Empty(t, resumeCache.states)
}

func TestResumeFallsBackToStoredCells(t *testing.T) {
	svc, respRepo, _, _, _ := newResponseFixture()

	ctx := context.Background()
	require.NoError(t, respRepo.Create(ctx, &model.Response{
		ID: "r1", SurveyID: "sv1", Status: model.ResponseIncomplete,
		RandomizationSeed: "seed-1", CurrentGroupIndex: 2,
	}))
	require.NoError(t, respRepo.SaveAnswer(ctx, "r1", "Q1", "yes"))

	state, err := svc.Resume(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "seed-1", state.RandomizationSeed)
	assert.Equal(t, 2, state.CurrentGroupIndex)
	assert.Equal(t, "yes", state.Answers["Q1"].Text)
}
