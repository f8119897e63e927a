package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFailureMessagesAreDistinct(t *testing.T) {
	outcomes := []AuthOutcome{
		Failed(ReasonInvalidEmail),
		Failed(ReasonWrongPassword),
		Failed(ReasonUserNotFound),
		Failed(ReasonUserDisabled),
		Failed(ReasonTooManyRequests),
		Failed(ReasonNetworkError),
		Failed(ReasonWeakPassword),
		Failed(ReasonEmailInUse),
		Failed(ReasonCancelled),
		FailedUnknown("boom"),
		FailedValidation(ErrEmptyField),
		FailedValidation(ErrInvalidEmailFormat),
		FailedValidation(ErrPasswordTooShort),
		FailedValidation(ErrPasswordMismatch),
	}

	seen := make(map[string]AuthOutcome)
	for _, o := range outcomes {
		msg := o.Message()
		assert.NotEmpty(t, msg)
		if prev, ok := seen[msg]; ok {
			t.Fatalf("message %q shared by %v and %v", msg, prev, o)
		}
		seen[msg] = o
	}
}

func TestValidationMessageUnwraps(t *testing.T) {
	err := fmt.Errorf("login: %w", ErrPasswordTooShort)
	assert.Equal(t, "Password must be at least 6 characters", ValidationMessage(err))
	assert.Equal(t, "", ValidationMessage(nil))
}

func TestUnknownMessageIncludesDetail(t *testing.T) {
	assert.Equal(t, "Authentication Failed: auth in progress", FailedUnknown(ErrAuthInProgress.Error()).Message())
	assert.Equal(t, "Authentication Failed", FailedUnknown("").Message())
}

func TestMessageForRegister(t *testing.T) {
	ok := Succeeded("u-1")
	assert.Equal(t, "Login Successful.", ok.MessageFor(FlowSignIn))
	assert.Equal(t, "Login Successful.", ok.MessageFor(FlowFederatedSignIn))
	assert.Equal(t, "Registration Successful", ok.MessageFor(FlowRegister))

	bad := Failed(ReasonInvalidEmail)
	assert.Equal(t, "Invalid Email Address", bad.MessageFor(FlowSignIn))
	assert.Equal(t, "Invalid email format. Please enter a valid email address.", bad.MessageFor(FlowRegister))

	inUse := Failed(ReasonEmailInUse)
	assert.Equal(t, inUse.Message(), inUse.MessageFor(FlowRegister))
}

func TestSessionState(t *testing.T) {
	assert.False(t, Unauthenticated().IsAuthenticated())
	assert.True(t, Authenticated("u-1").IsAuthenticated())
}

func TestOutcomeError(t *testing.T) {
	var err error = &OutcomeError{Outcome: Failed(ReasonUserNotFound)}
	assert.EqualError(t, err, "No account found with this email")
}
