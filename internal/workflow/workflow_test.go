package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullApprovalSequence(t *testing.T) {
	moves := []struct {
		action Action
		actor  Role
		want   Step
	}{
		{ActionSubmit, RoleIntern, StepAwaitingReview},
		{ActionAccept, RoleInstitution, StepAwaitingSignature},
		{ActionSubmit, RoleIntern, StepAwaitingFinalization},
		{ActionFinalize, RoleInstitution, StepFinalized},
	}

	current := StepAwaitingUpload
	for _, m := range moves {
		next, err := Transition(current, m.action, m.actor)
		require.NoError(t, err)
		assert.Equal(t, m.want, next)
		assert.Greater(t, int(next), int(current), "advancing moves must strictly increase the step")
		current = next
	}

	assert.True(t, Terminal(current))
}

func TestRefuseResetsToUpload(t *testing.T) {
	next, err := Transition(StepAwaitingReview, ActionRefuse, RoleInstitution)
	require.NoError(t, err)
	assert.Equal(t, StepAwaitingUpload, next)
}

func TestOutOfOrderTransitionsRejected(t *testing.T) {
	cases := []struct {
		name    string
		current Step
		action  Action
		actor   Role
	}{
		{"finalize before review", StepAwaitingUpload, ActionFinalize, RoleIntern},
		{"accept before submission", StepAwaitingUpload, ActionAccept, RoleInstitution},
		{"submit while under review", StepAwaitingReview, ActionSubmit, RoleIntern},
		{"refuse at signature stage", StepAwaitingSignature, ActionRefuse, RoleInstitution},
		{"any action after finalization", StepFinalized, ActionSubmit, RoleIntern},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, err := Transition(tc.current, tc.action, tc.actor)
			require.Error(t, err)
			assert.Equal(t, tc.current, next, "a rejected transition must not move the step")
		})
	}
}

func TestWrongActorRejected(t *testing.T) {
	_, err := Transition(StepAwaitingUpload, ActionSubmit, RoleInstitution)
	assert.ErrorIs(t, err, ErrActorNotAllowed)

	_, err = Transition(StepAwaitingReview, ActionAccept, RoleIntern)
	assert.ErrorIs(t, err, ErrActorNotAllowed)

	_, err = Transition(StepAwaitingUpload, ActionSubmit, RoleCompany)
	assert.ErrorIs(t, err, ErrActorNotAllowed)
}

func TestUnknownActionRejected(t *testing.T) {
	_, err := Transition(StepAwaitingUpload, Action("teleport"), RoleIntern)
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestCanActOnStep(t *testing.T) {
	assert.True(t, RoleIntern.CanActOnStep(StepAwaitingUpload))
	assert.True(t, RoleIntern.CanActOnStep(StepAwaitingSignature))
	assert.False(t, RoleIntern.CanActOnStep(StepAwaitingReview))

	assert.True(t, RoleInstitution.CanActOnStep(StepAwaitingReview))
	assert.True(t, RoleInstitution.CanActOnStep(StepAwaitingFinalization))
	assert.False(t, RoleInstitution.CanActOnStep(StepFinalized))

	for s := StepAwaitingUpload; s <= StepFinalized; s++ {
		assert.False(t, RoleCompany.CanActOnStep(s))
	}
}

func TestStepValidity(t *testing.T) {
	assert.True(t, StepAwaitingUpload.Valid())
	assert.True(t, StepFinalized.Valid())
	assert.False(t, Step(-1).Valid())
	assert.False(t, Step(5).Valid())
}
