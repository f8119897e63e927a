// Package auth validates credentials and drives one authentication attempt
// at a time against the identity provider.
package auth

import (
	"context"
	"errors"
	"sync"

	"lorryadmin/internal/domain"
	"lorryadmin/internal/logger"
)

type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Recorder observes terminal outcomes. It may be nil.
type Recorder interface {
	ObserveOutcome(flow domain.FlowKind, outcome domain.AuthOutcome)
}

// Recorders fans one outcome out to several recorders.
type Recorders []Recorder

func (rs Recorders) ObserveOutcome(flow domain.FlowKind, outcome domain.AuthOutcome) {
	for _, r := range rs {
		if r != nil {
			r.ObserveOutcome(flow, outcome)
		}
	}
}

type Controller struct {
	provider domain.IdentityProvider
	log      logger.Logger
	rec      Recorder

	mu    sync.Mutex
	state State
	last  domain.AuthOutcome
}

func NewController(provider domain.IdentityProvider, log logger.Logger, rec Recorder) *Controller {
	return &Controller{
		provider: provider,
		log:      log,
		rec:      rec,
		state:    StateIdle,
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Consume hands back the last terminal outcome and resets the controller to
// Idle. It reports false while idle or submitting.
func (c *Controller) Consume() (domain.AuthOutcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateSucceeded && c.state != StateFailed {
		return domain.AuthOutcome{}, false
	}

	out := c.last
	c.state = StateIdle
	c.last = domain.AuthOutcome{}
	return out, true
}

func (c *Controller) SignIn(ctx context.Context, creds domain.Credentials) domain.AuthOutcome {
	return c.attempt(domain.FlowSignIn, func() domain.AuthOutcome {
		if err := ValidateLogin(creds.Email, creds.Password); err != nil {
			return domain.FailedValidation(err)
		}

		res, err := c.provider.SignInWithPassword(ctx, creds.Email, creds.Password)
		if err != nil {
			return outcomeFromError(err)
		}
		return domain.Succeeded(res.UserID)
	})
}

// Register creates the account. A successful registration does not sign the
// UI in; the caller routes to the login screen.
func (c *Controller) Register(ctx context.Context, creds domain.Credentials) domain.AuthOutcome {
	return c.attempt(domain.FlowRegister, func() domain.AuthOutcome {
		if err := ValidateRegistration(creds.Email, creds.Password, creds.ConfirmPassword); err != nil {
			return domain.FailedValidation(err)
		}

		res, err := c.provider.CreateAccount(ctx, creds.Email, creds.Password)
		if err != nil {
			return outcomeFromError(err)
		}
		return domain.Succeeded(res.UserID)
	})
}

func (c *Controller) FederatedSignIn(ctx context.Context, launcher domain.FederatedLauncher) domain.AuthOutcome {
	return c.attempt(domain.FlowFederatedSignIn, func() domain.AuthOutcome {
		if launcher == nil || !launcher.Available() {
			return domain.FailedUnknown(domain.ErrFederatedUnavailable.Error())
		}

		token, err := launcher.Launch(ctx)
		if errors.Is(err, domain.ErrFederatedCancelled) || errors.Is(err, context.Canceled) {
			return domain.Failed(domain.ReasonCancelled)
		}
		if err != nil {
			return outcomeFromError(err)
		}
		if token == "" {
			return domain.Failed(domain.ReasonCancelled)
		}

		res, err := c.provider.SignInWithFederatedCredential(ctx, token)
		if err != nil {
			return outcomeFromError(err)
		}
		return domain.Succeeded(res.UserID)
	})
}

// SendPasswordReset returns a validation error, an *domain.OutcomeError, or
// nil. Session state is left alone.
func (c *Controller) SendPasswordReset(ctx context.Context, email string) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}

	if err := c.provider.SendPasswordReset(ctx, email); err != nil {
		out := outcomeFromError(err)
		c.log.Warn("auth: password reset failed", "reason", out.Reason, "error", err)
		return &domain.OutcomeError{Outcome: out}
	}

	c.log.Info("auth: password reset mail sent")
	return nil
}

func (c *Controller) attempt(flow domain.FlowKind, run func() domain.AuthOutcome) domain.AuthOutcome {
	if !c.begin() {
		c.log.Warn("auth: attempt rejected, another is in flight", "flow", flow)
		return domain.FailedUnknown(domain.ErrAuthInProgress.Error())
	}

	out := run()
	c.finish(out)

	switch {
	case out.Success:
		c.log.Info("auth: attempt succeeded", "flow", flow, "user_id", out.UserID)
	case out.Reason == domain.ReasonInvalidInput:
		c.log.Debug("auth: rejected by validator", "flow", flow, "error", out.Validation)
	default:
		c.log.Info("auth: attempt failed", "flow", flow, "reason", out.Reason, "detail", out.Detail)
	}

	if c.rec != nil {
		c.rec.ObserveOutcome(flow, out)
	}

	return out
}

func (c *Controller) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateSubmitting {
		return false
	}
	c.state = StateSubmitting
	c.last = domain.AuthOutcome{}
	return true
}

func (c *Controller) finish(out domain.AuthOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.last = out
	if out.Success {
		c.state = StateSucceeded
	} else {
		c.state = StateFailed
	}
}
