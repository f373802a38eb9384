// Package runner drives one respondent through a survey: it owns the answer
// snapshot, recomputes which groups are visible as answers accumulate,
// gates navigation on validation and quota checks, and persists answers
// through three reliability tiers (debounced per-answer writes, periodic
// autosave snapshots, and the completion write).
package runner

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"surveyd/internal/logic"
	"surveyd/internal/model"
)

// Phase is the session's position in the respondent flow. The three
// terminal phases are absorbing.
type Phase string

const (
	PhaseWelcome   Phase = "welcome"
	PhaseQuestions Phase = "questions"
	PhaseComplete  Phase = "complete"
	PhaseScreenout Phase = "screenout"
	PhaseQuotaFull Phase = "quota_full"
)

// Terminal reports whether no further transition can leave the phase.
func (p Phase) Terminal() bool {
	return p == PhaseComplete || p == PhaseScreenout || p == PhaseQuotaFull
}

// Config tunes the persistence tiers. Zero values fall back to defaults.
type Config struct {
	DebounceWindow   time.Duration // tier-1 quiet period before flushing
	AutosaveInterval time.Duration // tier-2 period

	AnswerAttempts   uint64
	AnswerRetryBase  time.Duration
	AnswerTimeout    time.Duration // per attempt

	AutosaveAttempts  uint64
	AutosaveRetryBase time.Duration
	AutosaveTimeout   time.Duration

	CompleteAttempts  uint64
	CompleteRetryBase time.Duration
	CompleteTimeout   time.Duration // longest of all: losing this write costs the respondent credit
}

// DefaultConfig mirrors the production tunables: 500 ms debounce, 60 s
// autosave, and a 20 s completion timeout.
func DefaultConfig() Config {
	return Config{
		DebounceWindow:    500 * time.Millisecond,
		AutosaveInterval:  60 * time.Second,
		AnswerAttempts:    3,
		AnswerRetryBase:   500 * time.Millisecond,
		AnswerTimeout:     10 * time.Second,
		AutosaveAttempts:  3,
		AutosaveRetryBase: time.Second,
		AutosaveTimeout:   10 * time.Second,
		CompleteAttempts:  3,
		CompleteRetryBase: time.Second,
		CompleteTimeout:   20 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.DebounceWindow <= 0 {
		c.DebounceWindow = d.DebounceWindow
	}
	if c.AutosaveInterval <= 0 {
		c.AutosaveInterval = d.AutosaveInterval
	}
	if c.AnswerAttempts == 0 {
		c.AnswerAttempts = d.AnswerAttempts
	}
	if c.AnswerRetryBase <= 0 {
		c.AnswerRetryBase = d.AnswerRetryBase
	}
	if c.AnswerTimeout <= 0 {
		c.AnswerTimeout = d.AnswerTimeout
	}
	if c.AutosaveAttempts == 0 {
		c.AutosaveAttempts = d.AutosaveAttempts
	}
	if c.AutosaveRetryBase <= 0 {
		c.AutosaveRetryBase = d.AutosaveRetryBase
	}
	if c.AutosaveTimeout <= 0 {
		c.AutosaveTimeout = d.AutosaveTimeout
	}
	if c.CompleteAttempts == 0 {
		c.CompleteAttempts = d.CompleteAttempts
	}
	if c.CompleteRetryBase <= 0 {
		c.CompleteRetryBase = d.CompleteRetryBase
	}
	if c.CompleteTimeout <= 0 {
		c.CompleteTimeout = d.CompleteTimeout
	}
	return c
}

// Params configures a new session. Answers and GroupIndex restore a
// resumed session; leave them zero for a fresh start.
type Params struct {
	Survey     *model.Survey
	ResponseID string
	Seed       string // fixed for the session's lifetime, never regenerated
	Backend    Backend
	Config     Config
	Logger     *zap.Logger

	Answers    model.AnswerSnapshot
	GroupIndex int
}

// pendingWrite is one queued tier-1 save. The queue holds at most one
// entry per key; a newer value replaces an unsent older one.
type pendingWrite struct {
	questionCode    string
	subquestionCode string
	value           model.AnswerValue
}

// Session is the execution core for one respondent. All exported methods
// are safe for concurrent use; internally one mutex serializes state the
// way the original single-threaded model did, and network calls happen
// outside the lock on copied payloads.
type Session struct {
	survey     *model.Survey
	responseID string
	seed       string
	cfg        Config
	log        *zap.Logger
	backend    Backend
	engine     *logic.Engine

	mu              sync.Mutex
	phase           Phase
	groupIndex      int
	answers         model.AnswerSnapshot
	pending         map[string]pendingWrite
	lastSavedHash   string
	validationErrs  map[string]string
	saveWarning     string
	completionError string
	redirectURL     string
	finished        bool // set on terminal phase or external redirect
	finishing       bool // guards against overlapping Next calls

	kick     chan struct{} // answer enqueued: reset the debounce timer
	saveNow  chan struct{} // group transition: autosave out of band
	done     chan struct{}
	wg       sync.WaitGroup
	closeOne sync.Once
}

// NewSession builds the session and starts its timer loop. Call Close when
// the respondent navigates away so no timer outlives the session.
func NewSession(p Params) *Session {
	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}

	phase := PhaseWelcome
	if !p.Survey.Settings.WelcomeEnabled {
		phase = PhaseQuestions
	}

	answers := p.Answers
	if answers == nil {
		answers = make(model.AnswerSnapshot)
	}

	s := &Session{
		survey:     p.Survey,
		responseID: p.ResponseID,
		seed:       p.Seed,
		cfg:        p.Config.withDefaults(),
		log:        log,
		backend:    p.Backend,
		engine:     logic.NewEngine(log),
		phase:      phase,
		groupIndex: p.GroupIndex,
		answers:    answers,
		pending:    make(map[string]pendingWrite),
		kick:       make(chan struct{}, 1),
		saveNow:    make(chan struct{}, 1),
		done:       make(chan struct{}),
	}

	s.wg.Add(1)
	go s.loop()
	return s
}

// Start moves the session from the welcome page into questions. No
// validation applies to this transition.
func (s *Session) Start() Output {
	s.mu.Lock()
	if s.phase == PhaseWelcome {
		s.phase = PhaseQuestions
	}
	s.mu.Unlock()
	return s.Output()
}

// Answer records one answer mutation: the snapshot is updated immediately
// (so relevance reflects it on the next read) and the write is queued for
// the debounced tier-1 save. A later mutation to the same key replaces an
// earlier unsent one.
func (s *Session) Answer(questionCode string, value model.AnswerValue, subquestionCode string) Output {
	key := model.AnswerKey(questionCode, subquestionCode)

	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return s.Output()
	}
	s.answers[key] = value
	s.pending[key] = pendingWrite{
		questionCode:    questionCode,
		subquestionCode: subquestionCode,
		value:           value,
	}
	s.mu.Unlock()

	select {
	case s.kick <- struct{}{}:
	default:
	}
	return s.Output()
}

// Back retreats one group when backward navigation is allowed. It never
// validates and is a no-op at the first group or when disabled.
func (s *Session) Back() Output {
	s.mu.Lock()
	if s.phase == PhaseQuestions && s.survey.Settings.AllowBackwardNavigation && s.groupIndex > 0 {
		s.groupIndex--
		s.requestAutosave()
	}
	s.mu.Unlock()
	return s.Output()
}

// DismissSaveWarning clears the non-blocking tier-1 failure warning.
func (s *Session) DismissSaveWarning() {
	s.mu.Lock()
	s.saveWarning = ""
	s.mu.Unlock()
}

// Close stops the debounce and autosave timers, flushes pending answers
// best-effort and waits for the timer loop to exit. Requests already in
// flight run to completion; only new scheduling stops.
func (s *Session) Close() {
	s.closeOne.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
}

// requestAutosave kicks the loop for an out-of-band tier-2 save. Callers
// hold s.mu; the channel send never blocks.
func (s *Session) requestAutosave() {
	select {
	case s.saveNow <- struct{}{}:
	default:
	}
}
