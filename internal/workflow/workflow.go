// Package workflow defines the internship agreement approval sequence as a
// closed state machine. The persisted step counter only ever takes values
// produced by Transition, so illegal jumps are rejected at this boundary
// instead of being written to the store.
package workflow

import (
	"errors"
	"fmt"

	"github.com/HugoSiliveri/StageConnect-sub000/internal/models"
)

// Step is the position within the fixed agreement approval sequence.
type Step int

const (
	// StepAwaitingUpload: the intern has not yet submitted an agreement.
	StepAwaitingUpload Step = 0
	// StepAwaitingReview: the institution must accept or refuse the document.
	StepAwaitingReview Step = 1
	// StepAwaitingSignature: the intern must upload the signed agreement.
	StepAwaitingSignature Step = 2
	// StepAwaitingFinalization: the institution must upload the
	// counter-signed agreement and close the process.
	StepAwaitingFinalization Step = 3
	// StepFinalized: the agreement is complete and the internship may begin.
	StepFinalized Step = 4
)

func (s Step) String() string {
	switch s {
	case StepAwaitingUpload:
		return "awaiting_upload"
	case StepAwaitingReview:
		return "awaiting_review"
	case StepAwaitingSignature:
		return "awaiting_signature"
	case StepAwaitingFinalization:
		return "awaiting_finalization"
	case StepFinalized:
		return "finalized"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Valid reports whether s is a step the sequence can actually be in.
func (s Step) Valid() bool {
	return s >= StepAwaitingUpload && s <= StepFinalized
}

// Action is a user-initiated move through the approval sequence.
type Action string

const (
	// ActionSubmit: the intern hands the current document to the institution.
	ActionSubmit Action = "submit"
	// ActionAccept: the institution validates the submitted document.
	ActionAccept Action = "accept"
	// ActionRefuse: the institution sends the document back to the intern.
	ActionRefuse Action = "refuse"
	// ActionFinalize: the institution uploads the final signed agreement and
	// closes the approval sequence.
	ActionFinalize Action = "finalize"
)

var (
	ErrInvalidTransition = errors.New("workflow: invalid transition")
	ErrActorNotAllowed   = errors.New("workflow: actor not allowed to act on this step")
	ErrUnknownAction     = errors.New("workflow: unknown action")
)

// Actor is the capability view of a user role: which steps it may act on.
type Actor interface {
	CanActOnStep(step Step) bool
}

// Role implements Actor for the three StageConnect roles. Only interns and
// institutions take part in the agreement sequence; companies observe.
type Role models.UserType

const (
	RoleIntern      = Role(models.UserTypeIntern)
	RoleCompany     = Role(models.UserTypeCompany)
	RoleInstitution = Role(models.UserTypeInstitution)
)

func (r Role) CanActOnStep(step Step) bool {
	switch r {
	case RoleIntern:
		return step == StepAwaitingUpload || step == StepAwaitingSignature
	case RoleInstitution:
		return step == StepAwaitingReview || step == StepAwaitingFinalization
	default:
		return false
	}
}

type transition struct {
	from   Step
	action Action
	actor  Role
	to     Step
}

// The complete transition table. ActionRefuse is the single move that lowers
// the step counter; every other move strictly advances it.
var transitions = []transition{
	{StepAwaitingUpload, ActionSubmit, RoleIntern, StepAwaitingReview},
	{StepAwaitingReview, ActionAccept, RoleInstitution, StepAwaitingSignature},
	{StepAwaitingReview, ActionRefuse, RoleInstitution, StepAwaitingUpload},
	{StepAwaitingSignature, ActionSubmit, RoleIntern, StepAwaitingFinalization},
	{StepAwaitingFinalization, ActionFinalize, RoleInstitution, StepFinalized},
}

// Transition returns the step that follows current when actor performs
// action. Unknown actions, actors acting out of turn and out-of-order calls
// are rejected; the caller must not persist anything in that case.
func Transition(current Step, action Action, actor Role) (Step, error) {
	switch action {
	case ActionSubmit, ActionAccept, ActionRefuse, ActionFinalize:
	default:
		return current, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	if !actor.CanActOnStep(current) {
		return current, fmt.Errorf("%w: role %q at %s", ErrActorNotAllowed, string(actor), current)
	}

	for _, t := range transitions {
		if t.from == current && t.action == action && t.actor == actor {
			return t.to, nil
		}
	}

	return current, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, current)
}

// Terminal reports whether the approval sequence is finished at step s.
func Terminal(s Step) bool {
	return s == StepFinalized
}
