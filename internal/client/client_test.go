package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveyd/internal/model"
	"surveyd/internal/runner"
)

func TestSaveAnswerPostsStringValue(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/responses/answer", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.SaveAnswer(context.Background(), "r1", "Q1", "", model.MultiValue("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, "r1", got["responseId"])
	assert.Equal(t, "Q1", got["questionCode"])
	assert.Equal(t, "a, b", got["value"])
}

func TestCheckQuotaParsesVerdict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/surveys/sv1/quotas/check", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"passed":      false,
			"rule":        "r1",
			"action":      "screenout",
			"redirectUrl": "",
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	v, err := c.CheckQuota(context.Background(), "sv1", model.AnswerSnapshot{})
	require.NoError(t, err)
	assert.False(t, v.Passed)
	assert.Equal(t, model.QuotaScreenout, v.Action)
}

func TestClientErrorIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "response already complete"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.MarkComplete(context.Background(), "r1")
	var fatal *runner.FatalError
	require.ErrorAs(t, err, &fatal)
	assert.Contains(t, err.Error(), "response already complete")
}

func TestServerErrorStaysRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.Autosave(context.Background(), "r1", model.AnswerSnapshot{}, 0)
	require.Error(t, err)
	var fatal *runner.FatalError
	assert.False(t, errors.As(err, &fatal))
}

func TestResumeDecodesState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"responseId":        "r1",
			"surveyId":          "sv1",
			"answers":           map[string]interface{}{"Q1": "yes", "pick": []string{"a", "b"}},
			"currentGroupIndex": 2,
			"randomizationSeed": "seed-1",
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	state, err := c.Resume(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, 2, state.CurrentGroupIndex)
	assert.Equal(t, "seed-1", state.RandomizationSeed)
	assert.Equal(t, "yes", state.Answers["Q1"].Text)
	assert.Equal(t, []string{"a", "b"}, state.Answers["pick"].Items)
}
