package lifecycle

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"scrapectl/pkg/actions"
	"scrapectl/pkg/history"
	"scrapectl/pkg/models"
	"scrapectl/pkg/views"
)

// Session holds the operation form, both lifecycles, and the shared result slot.
type Session struct {
	mu sync.Mutex

	form          actions.Form
	validationErr error

	primary lifecycle
	quick   lifecycle

	// current is the most recently settled result; source produced it.
	current   models.Payload
	source    *Attempt
	succeeded bool
	toggle    views.Toggle

	store *history.Store
	log   *zap.Logger

	// Now is the clock used for attempt start times and history timestamps.
	Now func() time.Time
}

// NewSession creates a session writing history to store.
func NewSession(store *history.Store, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		form:    actions.Form{Kind: actions.ScrapeSingle, LinkLimit: actions.DefaultLinkLimit},
		primary: lifecycle{role: Primary},
		quick:   lifecycle{role: Quick},
		store:   store,
		log:     log.Named("lifecycle"),
		Now:     time.Now,
	}
}

// Form returns a copy of the current form input.
func (s *Session) Form() actions.Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// SetKind switches the selected operation, clearing the URL field the new
// kind does not use and any pending validation error.
func (s *Session) SetKind(kind actions.Kind) error {
	if _, err := actions.Resolve(kind); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if kind.UsesURLList() != s.form.Kind.UsesURLList() {
		if kind.UsesURLList() {
			s.form.URL = ""
		} else {
			s.form.URLs = ""
		}
	}
	s.form.Kind = kind
	s.validationErr = nil
	return nil
}

func (s *Session) SetURL(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.URL = v
}

func (s *Session) SetURLs(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.URLs = v
}

func (s *Session) SetWhitelist(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Whitelist = v
}

func (s *Session) SetBlacklist(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Blacklist = v
}

// SetLinkLimit stores n clamped to the accepted range.
func (s *Session) SetLinkLimit(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.LinkLimit = actions.ClampLinkLimit(n)
}

// ValidationErr returns the pending validation error from the last submit, if any.
func (s *Session) ValidationErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validationErr
}

// Busy reports whether role's trigger is disabled.
func (s *Session) Busy(role Role) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lifecycleFor(role).busy()
}

// State returns role's current state.
func (s *Session) State(role Role) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lifecycleFor(role).state
}

// LastOutcome returns the settled state of role's most recent attempt, or Idle.
func (s *Session) LastOutcome(role Role) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lifecycleFor(role).last
}

// Submit validates the form and moves the primary lifecycle in flight.
// A validation failure returns the lifecycle to Idle and makes no call.
func (s *Session) Submit() (*Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := &s.primary
	if l.busy() {
		return nil, ErrBusy
	}

	l.state = Validating
	params, err := actions.ValidateForm(s.form)
	if err != nil {
		l.state = Idle
		s.validationErr = err
		s.log.Debug("validation failed", zap.String("kind", string(s.form.Kind)), zap.Error(err))
		return nil, err
	}
	s.validationErr = nil
	return s.dispatchLocked(l, s.form.Kind, params)
}

// QuickTarget returns the URL "fetch this URL" would use, if available.
func (s *Session) QuickTarget() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quickTargetLocked()
}

// QuickLinks returns the URLs "fetch all" would use, if available.
func (s *Session) QuickLinks() ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quickLinksLocked()
}

// QuickFetchURL dispatches FetchSingle for the current result's URL.
func (s *Session) QuickFetchURL() (*Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quick.busy() {
		return nil, ErrBusy
	}
	target, ok := s.quickTargetLocked()
	if !ok {
		return nil, ErrQuickActionUnavailable
	}
	s.quick.state = Validating
	params, err := actions.Validate(actions.FetchSingle, target, "")
	if err != nil {
		s.quick.state = Idle
		return nil, err
	}
	return s.dispatchLocked(&s.quick, actions.FetchSingle, params)
}

// QuickFetchAll dispatches FetchMultiple over the current result's link list.
func (s *Session) QuickFetchAll() (*Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quick.busy() {
		return nil, ErrBusy
	}
	links, ok := s.quickLinksLocked()
	if !ok {
		return nil, ErrQuickActionUnavailable
	}
	s.quick.state = Validating
	params, err := actions.ValidateURLs(links)
	if err != nil {
		s.quick.state = Idle
		return nil, err
	}
	return s.dispatchLocked(&s.quick, actions.FetchMultiple, params)
}

// Settle records an outcome: the shared result slot takes the payload (or an
// error payload), primary successes are appended to history, and the
// lifecycle returns to Idle. The returned error reports a history write failure.
func (s *Session) Settle(ctx context.Context, o Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.lifecycleFor(o.Attempt.Role)
	if l.state != InFlight {
		return fmt.Errorf("settle %s attempt %s: lifecycle is %s", o.Attempt.Role, o.Attempt.ID, l.state)
	}

	fields := []zap.Field{
		zap.String("request_id", o.Attempt.ID),
		zap.String("lifecycle", string(o.Attempt.Role)),
		zap.String("kind", string(o.Attempt.Kind)),
		zap.Duration("duration", o.Duration),
	}

	var persistErr error
	if o.Succeeded() {
		l.state = Succeeded
		s.current = o.Payload
		s.succeeded = true
		if o.Attempt.Role == Primary {
			entry := models.NewHistoryEntry(o.Attempt.Target, o.Attempt.Kind, s.Now(), o.Payload)
			if err := s.store.Append(ctx, entry); err != nil {
				persistErr = err
				s.log.Error("failed to append history", append(fields, zap.Error(err))...)
			}
		}
		s.log.Info("request settled", append(fields, zap.String("outcome", "succeeded"))...)
	} else {
		l.state = Failed
		msg := FailureMessage(o.Err)
		if msg == "" {
			msg, _ = o.Payload.ErrorMessage()
		}
		s.current = models.ErrorPayload(msg)
		s.succeeded = false
		s.log.Warn("request settled", append(fields, zap.String("outcome", "failed"), zap.String("error", msg))...)
	}
	s.source = o.Attempt
	s.toggle.SetPayload(s.current)

	l.last = l.state
	l.state = Idle
	return persistErr
}

// Run dispatches attempt synchronously and settles it.
func (s *Session) Run(ctx context.Context, doer Doer, a *Attempt) (Outcome, error) {
	o := a.Execute(ctx, doer)
	return o, s.Settle(ctx, o)
}

// Current returns the shared result slot and whether it holds a success.
func (s *Session) Current() (models.Payload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.succeeded
}

// Toggle returns the view selector for the current result.
func (s *Session) Toggle() *views.Toggle {
	return &s.toggle
}

// ClearResult empties the result slot.
func (s *Session) ClearResult() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.source = nil
	s.succeeded = false
	s.toggle.SetPayload(nil)
}

// Show places a payload in the result slot without a lifecycle, as when
// replaying a history entry.
func (s *Session) Show(kind actions.Kind, target string, payload models.Payload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = payload
	s.succeeded = true
	s.source = &Attempt{Role: Primary, Kind: kind, Target: target}
	s.toggle.SetPayload(payload)
}

func (s *Session) dispatchLocked(l *lifecycle, kind actions.Kind, params actions.Params) (*Attempt, error) {
	a, err := newAttempt(l.role, kind, params, s.Now())
	if err != nil {
		l.state = Idle
		return nil, err
	}
	l.state = InFlight
	s.log.Info("request dispatched",
		zap.String("request_id", a.ID),
		zap.String("lifecycle", string(l.role)),
		zap.String("kind", string(kind)),
		zap.String("endpoint", a.Request.Method+" "+a.Request.Path),
		zap.String("target", a.Target),
	)
	return a, nil
}

func (s *Session) quickTargetLocked() (string, bool) {
	if !s.succeeded || s.current == nil {
		return "", false
	}
	if u, ok := s.current.String(models.FieldURL); ok && u != "" {
		return u, true
	}
	if s.source != nil && s.source.Kind == actions.ScrapeSingle && s.source.Target != "" {
		return s.source.Target, true
	}
	return "", false
}

func (s *Session) quickLinksLocked() ([]string, bool) {
	if !s.succeeded || s.current == nil {
		return nil, false
	}
	for _, f := range []string{models.FieldLinks, models.FieldAllLinks, models.FieldRelatedLinks} {
		links, ok := s.current.StringSlice(f)
		if !ok {
			continue
		}
		nonBlank := make([]string, 0, len(links))
		for _, l := range links {
			if l = strings.TrimSpace(l); l != "" {
				nonBlank = append(nonBlank, l)
			}
		}
		if len(nonBlank) > 0 {
			return nonBlank, true
		}
	}
	return nil, false
}

func (s *Session) lifecycleFor(role Role) *lifecycle {
	if role == Quick {
		return &s.quick
	}
	return &s.primary
}
