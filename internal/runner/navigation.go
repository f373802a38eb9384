package runner

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"surveyd/internal/model"
)

// ErrCompletionFailed reports that the completion write exhausted its
// retry budget. The session stays in questions and Next may be invoked
// again; silently losing this write is the worst failure mode the system
// has.
var ErrCompletionFailed = errors.New("completion write failed")

// ValidationError blocks an advance: the named field has no valid answer.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// Next advances to the next relevant group, or runs the finish sequence
// (quota check, pending flush, completion write) past the last one. The
// advance is gated on the current group validating; the first violation is
// returned and the full field map is exposed on the output.
func (s *Session) Next(ctx context.Context) (Output, error) {
	s.mu.Lock()
	if s.phase != PhaseQuestions || s.finished || s.finishing {
		s.mu.Unlock()
		return s.Output(), nil
	}

	// Relevance is a function of the answers, so the group list must be
	// recomputed before the index is used.
	visible := s.visibleGroups()
	if s.groupIndex >= len(visible) {
		s.groupIndex = len(visible) - 1
		if s.groupIndex < 0 {
			s.groupIndex = 0
		}
	}

	if len(visible) > 0 {
		questions := s.visibleQuestions(visible[s.groupIndex])
		errs := validateGroup(questions, s.answers)
		if len(errs) > 0 {
			s.validationErrs = make(map[string]string, len(errs))
			for _, ve := range errs {
				s.validationErrs[ve.Field] = ve.Message
			}
			first := errs[0]
			s.mu.Unlock()
			return s.Output(), &ValidationError{Field: first.Field, Message: first.Message}
		}
	}
	s.validationErrs = nil

	if s.groupIndex < len(visible)-1 {
		s.groupIndex++
		s.requestAutosave()
		s.mu.Unlock()
		return s.Output(), nil
	}

	// Past the last relevant group: finish. The flag keeps a second Next
	// from starting a concurrent finish sequence while this one is on the
	// network.
	s.finishing = true
	snapshot := s.answers.Clone()
	s.mu.Unlock()

	err := s.finish(ctx, snapshot)
	s.mu.Lock()
	s.finishing = false
	s.mu.Unlock()
	return s.Output(), err
}

// finish runs quota gating and the completion write. Called without the
// lock held; commits phase changes under it.
func (s *Session) finish(ctx context.Context, snapshot model.AnswerSnapshot) error {
	verdict, err := s.backend.CheckQuota(ctx, s.survey.ID, snapshot)
	if err != nil {
		// Fail open: blocking a legitimate respondent on an infrastructure
		// fault is worse than over-admitting.
		s.log.Warn("quota check failed open", zap.Error(err))
		verdict.Passed = true
	}

	if !verdict.Passed {
		s.mu.Lock()
		defer s.mu.Unlock()
		switch verdict.Action {
		case model.QuotaScreenout:
			s.phase = PhaseScreenout
			s.finished = true
		case model.QuotaRedirect:
			if verdict.RedirectURL != "" {
				s.redirectURL = verdict.RedirectURL
				s.finished = true
			} else {
				// A redirect quota without a URL degrades to screenout.
				s.phase = PhaseScreenout
				s.finished = true
			}
		case model.QuotaStop:
			s.phase = PhaseQuotaFull
			s.finished = true
		}
		return nil
	}

	// Make sure queued tier-1 answers land before the response is marked
	// complete.
	s.flushPending(ctx)

	err = s.withRetry(ctx, s.cfg.CompleteAttempts, s.cfg.CompleteRetryBase, s.cfg.CompleteTimeout, func(c context.Context) error {
		return s.backend.MarkComplete(c, s.responseID)
	})
	if err != nil {
		s.log.Error("completion write failed", zap.String("response", s.responseID), zap.Error(err))
		s.mu.Lock()
		s.completionError = "There was a problem submitting your survey. Please try again."
		s.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrCompletionFailed, err)
	}

	s.mu.Lock()
	s.phase = PhaseComplete
	s.completionError = ""
	s.finished = true
	s.mu.Unlock()
	return nil
}
