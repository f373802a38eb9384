// Package client is the HTTP implementation of the session runner's
// backend: it speaks to the surveyd REST API. 4xx responses become fatal
// errors the runner will not retry; 5xx and transport failures stay
// retryable.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"surveyd/internal/model"
	"surveyd/internal/quota"
	"surveyd/internal/runner"
)

// Client talks to the surveyd API on behalf of one running session.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the given API base URL, e.g. "http://localhost:8080".
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			// Per-call deadlines come from the caller's context; this is
			// only a hard ceiling for runaway connections.
			Timeout: 60 * time.Second,
		},
	}
}

type saveAnswerRequest struct {
	ResponseID      string `json:"responseId"`
	QuestionCode    string `json:"questionCode"`
	SubquestionCode string `json:"subquestionCode,omitempty"`
	Value           string `json:"value"`
}

type autosaveRequest struct {
	ResponseID        string               `json:"responseId"`
	Answers           model.AnswerSnapshot `json:"answers"`
	CurrentGroupIndex int                  `json:"currentGroupIndex"`
}

type quotaCheckRequest struct {
	Answers model.AnswerSnapshot `json:"answers"`
}

type quotaCheckResponse struct {
	Passed      bool   `json:"passed"`
	Rule        string `json:"rule"`
	Action      string `json:"action"`
	RedirectURL string `json:"redirectUrl"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// SaveAnswer persists one answer cell.
func (c *Client) SaveAnswer(ctx context.Context, responseID, questionCode, subquestionCode string, value model.AnswerValue) error {
	req := saveAnswerRequest{
		ResponseID:      responseID,
		QuestionCode:    questionCode,
		SubquestionCode: subquestionCode,
		Value:           value.String(),
	}
	return c.post(ctx, "/v1/responses/answer", req, nil)
}

// Autosave overwrites the stored snapshot and position.
func (c *Client) Autosave(ctx context.Context, responseID string, answers model.AnswerSnapshot, currentGroupIndex int) error {
	req := autosaveRequest{
		ResponseID:        responseID,
		Answers:           answers,
		CurrentGroupIndex: currentGroupIndex,
	}
	return c.post(ctx, "/v1/responses/"+responseID+"/autosave", req, nil)
}

// CheckQuota asks the server for a verdict against the current snapshot.
func (c *Client) CheckQuota(ctx context.Context, surveyID string, answers model.AnswerSnapshot) (quota.Verdict, error) {
	var out quotaCheckResponse
	err := c.post(ctx, "/v1/surveys/"+surveyID+"/quotas/check", quotaCheckRequest{Answers: answers}, &out)
	if err != nil {
		return quota.Verdict{}, err
	}
	return quota.Verdict{
		Passed:      out.Passed,
		Rule:        out.Rule,
		Action:      model.QuotaAction(out.Action),
		RedirectURL: out.RedirectURL,
	}, nil
}

// MarkComplete records the response as finished. The server loads the
// stored cells for quota tallying, so the body carries no snapshot.
func (c *Client) MarkComplete(ctx context.Context, responseID string) error {
	return c.post(ctx, "/v1/responses/"+responseID+"/complete", struct{}{}, nil)
}

// Resume fetches the saved state for a reloaded session.
func (c *Client) Resume(ctx context.Context, responseID string) (*model.ResumeState, error) {
	var state model.ResumeState
	if err := c.get(ctx, "/v1/responses/"+responseID+"/resume", &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Structure fetches the survey definition a session renders from.
func (c *Client) Structure(ctx context.Context, surveyID string) (*model.Survey, error) {
	var survey model.Survey
	if err := c.get(ctx, "/v1/surveys/"+surveyID+"/structure", &survey); err != nil {
		return nil, err
	}
	return &survey, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return &runner.FatalError{Err: fmt.Errorf("failed to encode request: %w", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return &runner.FatalError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &runner.FatalError{Err: err}
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport failures and timeouts are retryable.
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg := readError(resp.Body)
		err := fmt.Errorf("%s %s: %d %s", req.Method, req.URL.Path, resp.StatusCode, msg)
		if resp.StatusCode < 500 {
			return &runner.FatalError{Err: err}
		}
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func readError(r io.Reader) string {
	var e errorResponse
	if err := json.NewDecoder(io.LimitReader(r, 4096)).Decode(&e); err == nil && e.Error != "" {
		return e.Error
	}
	return "request failed"
}
