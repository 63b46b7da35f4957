// Package lifecycle drives operation attempts from validation through dispatch
// to settlement.
//
// A Session owns two independent lifecycles: the primary one behind the
// operation form and the quick one behind re-fetch actions on a displayed
// result. Both may be in flight at once. They share a single current-result
// slot and whichever settles last wins it. Only the primary lifecycle writes
// history.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"scrapectl/pkg/actions"
	"scrapectl/pkg/models"
	"scrapectl/pkg/scraper"
)

// ErrBusy is returned when a trigger fires while its own lifecycle is in flight.
var ErrBusy = errors.New("a request is already in flight")

// ErrQuickActionUnavailable is returned when the current result offers no target.
var ErrQuickActionUnavailable = errors.New("quick action not available for the current result")

type State int

const (
	Idle State = iota
	Validating
	InFlight
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case InFlight:
		return "in_flight"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Role names one of the two independent lifecycles.
type Role string

const (
	Primary Role = "primary"
	Quick   Role = "quick"
)

// Doer performs one remote call. *scraper.Client implements it.
type Doer interface {
	Do(ctx context.Context, r actions.Request) (models.Payload, error)
}

// Attempt is one dispatched operation. Its fields are captured at dispatch
// time and do not follow later form edits.
type Attempt struct {
	ID      string
	Role    Role
	Kind    actions.Kind
	Target  string
	Request actions.Request
	Started time.Time
}

// Outcome is the settled result of an Attempt.
type Outcome struct {
	Attempt  *Attempt
	Payload  models.Payload
	Err      error
	Duration time.Duration
}

// Execute performs the remote call. It touches nothing but the attempt and
// doer, so it is safe to run off the UI loop.
func (a *Attempt) Execute(ctx context.Context, doer Doer) Outcome {
	payload, err := doer.Do(ctx, a.Request)
	return Outcome{
		Attempt:  a,
		Payload:  payload,
		Err:      err,
		Duration: time.Since(a.Started),
	}
}

// Succeeded reports whether the outcome counts as a success.
func (o Outcome) Succeeded() bool {
	if o.Err != nil {
		return false
	}
	_, reported := o.Payload.ErrorMessage()
	return !reported
}

// FailureMessage picks the message displayed in place of a result.
func FailureMessage(err error) string {
	if err == nil {
		return ""
	}
	var se *scraper.ScraperError
	if errors.As(err, &se) {
		return se.UserMessage()
	}
	return err.Error()
}

// lifecycle tracks one trigger's state.
type lifecycle struct {
	role  Role
	state State
	// last is the settled state of the most recent attempt.
	last State
}

func (l *lifecycle) busy() bool {
	return l.state == InFlight
}

func newAttempt(role Role, kind actions.Kind, params actions.Params, now time.Time) (*Attempt, error) {
	def, err := actions.Resolve(kind)
	if err != nil {
		return nil, err
	}
	target := params.URL
	if len(params.URLs) > 0 {
		target = strings.Join(params.URLs, ", ")
	}
	return &Attempt{
		ID:      uuid.NewString(),
		Role:    role,
		Kind:    kind,
		Target:  target,
		Request: def.BuildPayload(params),
		Started: now,
	}, nil
}
