// Package app runs FocusPulse operations: it loads a user's records from the
// store, applies the session, stats and planner engines, and persists the
// result.
//
// Every load-compute-write sequence holds a per-user lock and runs inside one
// store transaction.
package app

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/verte-zerg/focuspulse/internal/logging"
	"github.com/verte-zerg/focuspulse/internal/model"
	"github.com/verte-zerg/focuspulse/internal/notify"
	"github.com/verte-zerg/focuspulse/internal/store"
)

var (
	// ErrNoActiveSession is returned when an operation needs an open session.
	ErrNoActiveSession = errors.New("no active session")
	// ErrInvalidInput is returned when session or history input fails validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict is returned when a block overlaps another active block.
	ErrConflict = errors.New("time slot conflict")
)

// ConflictError names the blocks a write would overlap.
type ConflictError struct {
	Title     string
	Conflicts []model.PlannedBlock
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("time slot conflicts with %q", e.Title)
}

// Unwrap allows errors.Is(err, ErrConflict).
func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

func newConflictError(conflicts []model.PlannedBlock) error {
	return &ConflictError{Title: conflicts[0].Title, Conflicts: conflicts}
}

var validate = validator.New()

// Service runs operations for any number of users against one store.
type Service struct {
	store    *store.Store
	cfg      model.Config
	loc      *time.Location
	logger   logging.Logger
	notifier notify.Notifier
	now      func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithNotifier sets the notifier used on session end.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the zone used for days, weeks and streaks.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// New creates a Service.
func New(st *store.Store, cfg model.Config, opts ...Option) *Service {
	s := &Service{
		store:    st,
		cfg:      cfg,
		loc:      time.Local,
		logger:   logging.Nop(),
		notifier: notify.Nop(),
		now:      time.Now,
		locks:    map[string]*sync.Mutex{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the current time in the service location.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

// Config returns the resolved settings the service was built with.
func (s *Service) Config() model.Config {
	return s.cfg
}

// Store returns the underlying store.
func (s *Service) Store() *store.Store {
	return s.store
}

// lockUser serialises writers for one user and returns the unlock func.
func (s *Service) lockUser(userID string) func() {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}
