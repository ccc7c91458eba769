// Package decision selects signup, waitlist and cancel candidates from the
// stored record collection and commits confirmed actions.
//
// The engine never talks to a terminal itself: it emits pending actions with
// computed amounts, and a Confirmer supplied by the caller is the interaction
// boundary. A declined action is logged and never retried within a run; the
// next run re-evaluates from current state.
package decision

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/pfrederiksen/ea-events/internal/record"
)

// Action names recorded in the action log.
const (
	ActionSignup   = "signup"
	ActionWaitlist = "waitlist"
	ActionCancel   = "cancel"
)

// Candidates are the three disjoint candidate sets. A record lands in at
// most one set: signup takes precedence, and the attending marker separates
// cancel from the other two.
type Candidates struct {
	Signup   []*record.Record
	Waitlist []*record.Record
	Cancel   []*record.Record
}

// Select computes the candidate sets over the full record collection:
//
//	signup:   free events not yet joined
//	waitlist: wait-list marker on a full event not yet joined
//	cancel:   cancel marker on a joined event
func Select(records []*record.Record) Candidates {
	var c Candidates
	for _, r := range records {
		switch {
		case r.EventCost != nil && r.EventCost.IsZero() && r.Attending == nil:
			c.Signup = append(c.Signup, r)
		case r.WaitList != nil && r.EventStatus == record.StatusFull && r.Attending == nil:
			c.Waitlist = append(c.Waitlist, r)
		case r.Cancel != nil && r.Attending != nil:
			c.Cancel = append(c.Cancel, r)
		}
	}
	return c
}

// PendingAction is one candidate action with its computed net amount, ready
// for the confirmation surface.
type PendingAction struct {
	Action string
	Rec    *record.Record
	Amount decimal.Decimal
}

// CreditFunc looks up the available event credit for an event link.
type CreditFunc func(url string) (decimal.Decimal, error)

// Confirmer is the human gate. Only an affirmative answer commits an action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// Store is the slice of the persistence layer the engine commits through.
type Store interface {
	MarkAttending(url string) error
	LogAction(url, action string, amount decimal.Decimal, accepted bool) error
}

// BuildSignupActions computes the net payable amount for each signup
// candidate: event cost + tax + venue cost - event credit.
func BuildSignupActions(candidates []*record.Record, credit CreditFunc) ([]PendingAction, error) {
	actions := make([]PendingAction, 0, len(candidates))
	for _, r := range candidates {
		c, err := credit(r.URL)
		if err != nil {
			return nil, fmt.Errorf("looking up credit for %s: %w", r.URL, err)
		}
		amount := amountOrZero(r.EventCost).
			Add(amountOrZero(r.EventTax)).
			Add(amountOrZero(r.VenueCost)).
			Sub(c)
		actions = append(actions, PendingAction{Action: ActionSignup, Rec: r, Amount: amount})
	}
	return actions, nil
}

// BuildSimpleActions wraps waitlist or cancel candidates as pending actions
// with no payment amount.
func BuildSimpleActions(action string, candidates []*record.Record) []PendingAction {
	actions := make([]PendingAction, 0, len(candidates))
	for _, r := range candidates {
		actions = append(actions, PendingAction{Action: action, Rec: r})
	}
	return actions
}

// Engine runs pending actions through the confirmation gate and commits the
// accepted ones.
type Engine struct {
	store   Store
	confirm Confirmer
	log     *logrus.Logger
}

// NewEngine wires the engine to its store and confirmation surface.
func NewEngine(store Store, confirm Confirmer, log *logrus.Logger) *Engine {
	return &Engine{store: store, confirm: confirm, log: log}
}

// Apply presents each pending action for confirmation and logs the outcome.
// An accepted signup sets the attending marker and clears the signup request,
// leaving every other field untouched.
func (e *Engine) Apply(actions []PendingAction) error {
	for _, a := range actions {
		accepted := e.confirm.Confirm(prompt(a))

		if err := e.store.LogAction(a.Rec.URL, a.Action, a.Amount, accepted); err != nil {
			return fmt.Errorf("logging action: %w", err)
		}

		fields := logrus.Fields{"event": a.Rec.EventName, "action": a.Action}
		if !accepted {
			e.log.WithFields(fields).Info("action declined")
			continue
		}

		if a.Action == ActionSignup {
			if err := e.store.MarkAttending(a.Rec.URL); err != nil {
				return fmt.Errorf("marking attending: %w", err)
			}
			a.Rec.Attending = record.Ptr(record.Marker)
			a.Rec.SignUp = nil
		}
		e.log.WithFields(fields).Info("action committed")
	}
	return nil
}

func prompt(a PendingAction) string {
	switch a.Action {
	case ActionSignup:
		return fmt.Sprintf("Pay $%s for %s?", a.Amount.StringFixed(2), a.Rec.EventName)
	case ActionWaitlist:
		return fmt.Sprintf("Join the wait list for %s?", a.Rec.EventName)
	case ActionCancel:
		return fmt.Sprintf("Cancel signup for %s?", a.Rec.EventName)
	default:
		return fmt.Sprintf("%s %s?", a.Action, a.Rec.EventName)
	}
}

func amountOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
