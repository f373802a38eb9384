package runner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// loop owns every timer the session schedules: the tier-1 debounce, the
// tier-2 autosave ticker and out-of-band autosave kicks. Serializing the
// tiers on one goroutine keeps a single writer without locks around the
// network calls themselves.
func (s *Session) loop() {
	defer s.wg.Done()

	debounce := time.NewTimer(s.cfg.DebounceWindow)
	if !debounce.Stop() {
		<-debounce.C
	}
	defer debounce.Stop()

	ticker := time.NewTicker(s.cfg.AutosaveInterval)
	defer ticker.Stop()

	ctx := context.Background()

	for {
		select {
		case <-s.kick:
			// A fresh mutation restarts the quiet period.
			if !debounce.Stop() {
				select {
				case <-debounce.C:
				default:
				}
			}
			debounce.Reset(s.cfg.DebounceWindow)

		case <-debounce.C:
			s.flushPending(ctx)

		case <-ticker.C:
			s.autosave(ctx)

		case <-s.saveNow:
			s.autosave(ctx)

		case <-s.done:
			// Teardown: one best-effort flush so a click-then-navigate
			// answer is not lost, then stop scheduling anything new.
			s.flushPending(ctx)
			return
		}
	}
}

// flushPending drains the tier-1 queue and issues one save per key. Only
// the newest value per key is ever sent; a stale in-flight write may land,
// but the server is idempotent per key and the newer value follows it.
func (s *Session) flushPending(ctx context.Context) {
	s.mu.Lock()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return
	}
	batch := s.pending
	s.pending = make(map[string]pendingWrite)
	s.mu.Unlock()

	var failed bool
	for key, w := range batch {
		err := s.withRetry(ctx, s.cfg.AnswerAttempts, s.cfg.AnswerRetryBase, s.cfg.AnswerTimeout, func(c context.Context) error {
			return s.backend.SaveAnswer(c, s.responseID, w.questionCode, w.subquestionCode, w.value)
		})
		if err != nil {
			failed = true
			s.log.Warn("answer save failed",
				zap.String("response", s.responseID),
				zap.String("key", key),
				zap.Error(err))
		}
	}

	s.mu.Lock()
	if failed {
		s.saveWarning = "Failed to save your answer. Please check your connection and try again."
	} else {
		s.saveWarning = ""
	}
	s.mu.Unlock()
}

// autosave sends the full snapshot plus position, but only when the
// content fingerprint moved since the last successful autosave; an idle
// respondent costs zero network writes.
func (s *Session) autosave(ctx context.Context) {
	s.mu.Lock()
	if s.phase != PhaseQuestions || s.finished {
		s.mu.Unlock()
		return
	}
	snapshot := s.answers.Clone()
	index := s.groupIndex
	hash := stateHash(snapshot.CanonicalJSON(), index)
	if hash == s.lastSavedHash {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	err := s.withRetry(ctx, s.cfg.AutosaveAttempts, s.cfg.AutosaveRetryBase, s.cfg.AutosaveTimeout, func(c context.Context) error {
		return s.backend.Autosave(c, s.responseID, snapshot, index)
	})
	if err != nil {
		// Not surfaced to the respondent; the next tick retries anyway.
		s.log.Warn("autosave failed", zap.String("response", s.responseID), zap.Error(err))
		return
	}

	s.mu.Lock()
	s.lastSavedHash = hash
	s.mu.Unlock()
}

func stateHash(canonical []byte, groupIndex int) string {
	h := sha256.New()
	h.Write(canonical)
	fmt.Fprintf(h, "|%d", groupIndex)
	return hex.EncodeToString(h.Sum(nil))
}

// withRetry runs fn with exponential backoff: the delay starts at base and
// doubles per attempt, bounded by the attempt budget. Each attempt gets
// its own timeout so no single request can hang the tier. A FatalError
// short-circuits the budget.
func (s *Session) withRetry(ctx context.Context, attempts uint64, base, perAttempt time.Duration, fn func(context.Context) error) error {
	if attempts == 0 {
		attempts = 1
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = base
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0

	op := func() error {
		attemptCtx := ctx
		cancel := func() {}
		if perAttempt > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, perAttempt)
		}
		err := fn(attemptCtx)
		cancel()

		var fatal *FatalError
		if errors.As(err, &fatal) {
			return backoff.Permanent(err)
		}
		return err
	}

	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, attempts-1), ctx))
}
