package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveyd/internal/model"
)

func TestCheckOverlaysLiveCountOnSingleRule(t *testing.T) {
	rule := ageCapRule()
	rule.Limit = 2
	quotaRepo := &fakeQuotaRepo{rules: []model.QuotaRule{rule}}
	quotaCache := newFakeQuotaCache()
	quotaCache.counts["q1"] = 2
	svc := NewQuotaService(quotaRepo, quotaCache, nil)

	v, err := svc.Check(context.Background(), "sv1", model.AnswerSnapshot{
		"age": model.TextValue("25"),
	})
	require.NoError(t, err)
	assert.False(t, v.Passed)
	assert.Equal(t, model.QuotaStop, v.Action)

	// One rule means one point lookup, no batch read.
	assert.Equal(t, 1, quotaCache.countCalls)
	assert.Equal(t, 0, quotaCache.mgetCalls)
}

func TestCheckBatchesCountLookups(t *testing.T) {
	first := ageCapRule()
	second := ageCapRule()
	second.ID = "q2"
	second.OrderIndex = 1
	quotaRepo := &fakeQuotaRepo{rules: []model.QuotaRule{first, second}}
	quotaCache := newFakeQuotaCache()
	svc := NewQuotaService(quotaRepo, quotaCache, nil)

	v, err := svc.Check(context.Background(), "sv1", model.AnswerSnapshot{
		"age": model.TextValue("25"),
	})
	require.NoError(t, err)
	assert.True(t, v.Passed) // no tally has reached its limit

	assert.Equal(t, 0, quotaCache.countCalls)
	assert.Equal(t, 1, quotaCache.mgetCalls)
}

func TestCheckPassesWithNoRulesConfigured(t *testing.T) {
	svc := NewQuotaService(&fakeQuotaRepo{}, newFakeQuotaCache(), nil)

	v, err := svc.Check(context.Background(), "sv1", model.AnswerSnapshot{})
	require.NoError(t, err)
	assert.True(t, v.Passed)
}

func TestRecordCompletionIncrementsFirstMatchOnly(t *testing.T) {
	first := ageCapRule()
	second := ageCapRule()
	second.ID = "q2"
	second.OrderIndex = 1
	quotaRepo := &fakeQuotaRepo{rules: []model.QuotaRule{first, second}}
	quotaCache := newFakeQuotaCache()
	svc := NewQuotaService(quotaRepo, quotaCache, nil)

	err := svc.RecordCompletion(context.Background(), "sv1", model.AnswerSnapshot{
		"age": model.TextValue("25"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"q1"}, quotaCache.increments)
}
