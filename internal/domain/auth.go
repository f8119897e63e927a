package domain

import (
	"context"
	"errors"
	"time"
)

// Client-side validation errors. These never reach the identity provider.
var (
	ErrEmptyField         = errors.New("please fill in all fields")
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrPasswordMismatch   = errors.New("passwords do not match")
)

var (
	ErrAuthInProgress       = errors.New("auth in progress")
	ErrFederatedUnavailable = errors.New("federated auth unavailable")
	ErrFederatedCancelled   = errors.New("federated sign-in cancelled")
	ErrTransport            = errors.New("transport unavailable")
	ErrUnauthorized         = errors.New("unauthorized")
)

const MinPasswordLength = 6

type Credentials struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password,omitempty"`
}

// SessionState is the zero value when unauthenticated.
type SessionState struct {
	UserID string `json:"user_id,omitempty"`
}

func Unauthenticated() SessionState {
	return SessionState{}
}

func Authenticated(userID string) SessionState {
	return SessionState{UserID: userID}
}

func (s SessionState) IsAuthenticated() bool {
	return s.UserID != ""
}

type FailureReason string

const (
	ReasonInvalidInput    FailureReason = "invalid_input"
	ReasonInvalidEmail    FailureReason = "invalid_email"
	ReasonWrongPassword   FailureReason = "wrong_password"
	ReasonUserNotFound    FailureReason = "user_not_found"
	ReasonUserDisabled    FailureReason = "user_disabled"
	ReasonTooManyRequests FailureReason = "too_many_requests"
	ReasonNetworkError    FailureReason = "network_error"
	ReasonWeakPassword    FailureReason = "weak_password"
	ReasonEmailInUse      FailureReason = "email_in_use"
	ReasonCancelled       FailureReason = "cancelled"
	ReasonUnknown         FailureReason = "unknown"
)

var reasonMessages = map[FailureReason]string{
	ReasonInvalidEmail:    "Invalid Email Address",
	ReasonWrongPassword:   "Incorrect Password",
	ReasonUserNotFound:    "No account found with this email",
	ReasonUserDisabled:    "This account has been disabled",
	ReasonTooManyRequests: "Too many login attempts. Please try again later.",
	ReasonNetworkError:    "Network error. Please check your connection.",
	ReasonWeakPassword:    "Password is too weak. Please choose a stronger password.",
	ReasonEmailInUse:      "This email is already registered. Please use a different email.",
	ReasonCancelled:       "Sign-in was cancelled",
}

var validationMessages = map[error]string{
	ErrEmptyField:         "Please fill in all fields",
	ErrInvalidEmailFormat: "Invalid email format",
	ErrPasswordTooShort:   "Password must be at least 6 characters",
	ErrPasswordMismatch:   "Passwords do not match",
}

// AuthOutcome is the terminal result of one authentication attempt.
type AuthOutcome struct {
	Success bool          `json:"success"`
	UserID  string        `json:"user_id,omitempty"`
	Reason  FailureReason `json:"reason,omitempty"`
	Detail  string        `json:"detail,omitempty"`

	// Validation is set only when Reason is ReasonInvalidInput.
	Validation error `json:"-"`
}

func Succeeded(userID string) AuthOutcome {
	return AuthOutcome{Success: true, UserID: userID}
}

func Failed(reason FailureReason) AuthOutcome {
	return AuthOutcome{Reason: reason}
}

func FailedUnknown(detail string) AuthOutcome {
	return AuthOutcome{Reason: ReasonUnknown, Detail: detail}
}

func FailedValidation(err error) AuthOutcome {
	return AuthOutcome{Reason: ReasonInvalidInput, Validation: err}
}

// MessageFor is Message with the wording registration uses.
func (o AuthOutcome) MessageFor(flow FlowKind) string {
	if flow == FlowRegister {
		switch {
		case o.Success:
			return "Registration Successful"
		case o.Reason == ReasonInvalidEmail:
			return "Invalid email format. Please enter a valid email address."
		}
	}
	return o.Message()
}

// Message is the user-facing text for the outcome. Each reason has its own.
func (o AuthOutcome) Message() string {
	if o.Success {
		return "Login Successful."
	}

	switch o.Reason {
	case ReasonInvalidInput:
		return ValidationMessage(o.Validation)
	case ReasonUnknown:
		if o.Detail == "" {
			return "Authentication Failed"
		}
		return "Authentication Failed: " + o.Detail
	}

	if msg, ok := reasonMessages[o.Reason]; ok {
		return msg
	}
	return "Authentication Failed"
}

func ValidationMessage(err error) string {
	for target, msg := range validationMessages {
		if errors.Is(err, target) {
			return msg
		}
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// OutcomeError carries a failed outcome through an error return.
type OutcomeError struct {
	Outcome AuthOutcome
}

func (e *OutcomeError) Error() string {
	return e.Outcome.Message()
}

type FlowKind string

const (
	FlowSignIn          FlowKind = "sign_in"
	FlowRegister        FlowKind = "register"
	FlowFederatedSignIn FlowKind = "federated_sign_in"
)

// Error codes reported by an IdentityProvider.
const (
	CodeInvalidEmail      = "ERROR_INVALID_EMAIL"
	CodeWrongPassword     = "ERROR_WRONG_PASSWORD"
	CodeUserNotFound      = "ERROR_USER_NOT_FOUND"
	CodeUserDisabled      = "ERROR_USER_DISABLED"
	CodeTooManyRequests   = "ERROR_TOO_MANY_REQUESTS"
	CodeNetworkFailed     = "ERROR_NETWORK_REQUEST_FAILED"
	CodeEmailAlreadyInUse = "ERROR_EMAIL_ALREADY_IN_USE"
	CodeWeakPassword      = "ERROR_WEAK_PASSWORD"
	CodeInvalidCredential = "ERROR_INVALID_CREDENTIAL"
)

type ProviderError struct {
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

func NewProviderError(code, message string) *ProviderError {
	return &ProviderError{Code: code, Message: message}
}

type AuthResult struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

type SessionStore interface {
	CurrentSession(ctx context.Context) (SessionState, error)
}

type IdentityProvider interface {
	SessionStore
	SignInWithPassword(ctx context.Context, email, password string) (*AuthResult, error)
	CreateAccount(ctx context.Context, email, password string) (*AuthResult, error)
	SendPasswordReset(ctx context.Context, email string) error
	SignInWithFederatedCredential(ctx context.Context, token string) (*AuthResult, error)
	SignOut(ctx context.Context) error
}

// FederatedLauncher opens an external account chooser and hands back its
// token. Launch returns ErrFederatedCancelled when the user dismisses it.
type FederatedLauncher interface {
	Available() bool
	Launch(ctx context.Context) (string, error)
}

// AuthAttempt is one audited terminal outcome.
type AuthAttempt struct {
	ID      string        `json:"id,omitempty"`
	Flow    FlowKind      `json:"flow"`
	Success bool          `json:"success"`
	Reason  FailureReason `json:"reason,omitempty"`
	UserID  string        `json:"user_id,omitempty"`
	At      time.Time     `json:"at"`
}
