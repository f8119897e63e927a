package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"lorryadmin/internal/adapters/http/request"
	"lorryadmin/internal/adapters/http/response"
	"lorryadmin/internal/adapters/http/validator"
	"lorryadmin/internal/application/identity"
	"lorryadmin/internal/domain"
)

const (
	defaultAttemptLimit = 20
	maxAttemptLimit     = 200
)

// AuthFlows is the part of the app shell the auth endpoints drive.
type AuthFlows interface {
	SignIn(ctx context.Context, creds domain.Credentials) domain.AuthOutcome
	Register(ctx context.Context, creds domain.Credentials) domain.AuthOutcome
	FederatedSignIn(ctx context.Context, launcher domain.FederatedLauncher) domain.AuthOutcome
	SendPasswordReset(ctx context.Context, email string) error
	SignOut(ctx context.Context) error
	Route() domain.Route
}

type PasswordResetter interface {
	ResetPassword(ctx context.Context, token, password string) error
	FederatedEnabled() bool
}

type AttemptLog interface {
	Recent(ctx context.Context, limit int64) ([]domain.AuthAttempt, error)
}

type AuthHandler struct {
	flows    AuthFlows
	resetter PasswordResetter
	attempts AttemptLog

	decoder   request.RequestDecoder
	writer    response.ResponseWriter
	validator validator.Validator
}

func NewAuthHandler(
	flows AuthFlows,
	resetter PasswordResetter,
	attempts AttemptLog,
	d request.RequestDecoder,
	w response.ResponseWriter,
	v validator.Validator,
) *AuthHandler {
	return &AuthHandler{
		flows:     flows,
		resetter:  resetter,
		attempts:  attempts,
		decoder:   d,
		writer:    w,
		validator: v,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

type passwordResetConfirmRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

type federatedRequest struct {
	Token     string `json:"token"`
	Cancelled bool   `json:"cancelled"`
}

type outcomeResponse struct {
	Outcome domain.AuthOutcome `json:"outcome"`
	Message string             `json:"message"`
	Route   domain.Route       `json:"route"`
}

type resetResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req loginRequest
	if err := h.decoder.Decode(r, &req); err != nil {
		h.writer.Write(w, http.StatusBadRequest, &response.Response{
			Message: err.Error(),
		})
		return
	}

	out := h.flows.SignIn(r.Context(), domain.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	h.writeOutcome(w, domain.FlowSignIn, out)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req registerRequest
	if err := h.decoder.Decode(r, &req); err != nil {
		h.writer.Write(w, http.StatusBadRequest, &response.Response{
			Message: err.Error(),
		})
		return
	}

	out := h.flows.Register(r.Context(), domain.Credentials{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	h.writeOutcome(w, domain.FlowRegister, out)
}

func (h *AuthHandler) Federated(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req federatedRequest
	if err := h.decoder.Decode(r, &req); err != nil {
		h.writer.Write(w, http.StatusBadRequest, &response.Response{
			Message: err.Error(),
		})
		return
	}

	launcher := identity.NewChooserLauncher(h.resetter.FederatedEnabled(), identity.ChooserResult{
		Token:     req.Token,
		Cancelled: req.Cancelled,
	})

	out := h.flows.FederatedSignIn(r.Context(), launcher)
	h.writeOutcome(w, domain.FlowFederatedSignIn, out)
}

func (h *AuthHandler) PasswordReset(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req passwordResetRequest
	if err := h.decoder.Decode(r, &req); err != nil {
		h.writer.Write(w, http.StatusBadRequest, &response.Response{
			Message: err.Error(),
		})
		return
	}

	err := h.flows.SendPasswordReset(r.Context(), req.Email)
	if err == nil {
		h.writer.Write(w, http.StatusOK, &response.Response{
			Data: resetResponse{Sent: true, Message: "Password reset email sent"},
		})
		return
	}

	msg := err.Error()
	var oerr *domain.OutcomeError
	if errors.As(err, &oerr) {
		msg = oerr.Outcome.Message()
	} else if vm := domain.ValidationMessage(err); vm != "" {
		msg = vm
	}

	h.writer.Write(w, http.StatusOK, &response.Response{
		Data: resetResponse{Sent: false, Message: msg},
	})
}

func (h *AuthHandler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req passwordResetConfirmRequest
	if err := h.decoder.Decode(r, &req); err != nil {
		h.writer.Write(w, http.StatusBadRequest, &response.Response{
			Message: err.Error(),
		})
		return
	}

	if errs := h.validator.Validate(&req); len(errs) > 0 {
		h.writer.WriteValidationError(w, errs)
		return
	}

	if err := h.resetter.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		var perr *domain.ProviderError
		if errors.As(err, &perr) {
			h.writer.Write(w, http.StatusUnprocessableEntity, &response.Response{
				Message: resetFailureMessage(perr),
			})
			return
		}

		h.writer.Write(w, http.StatusInternalServerError, &response.Response{
			Message: "failed to reset password",
		})
		return
	}

	h.writer.Write(w, http.StatusOK, &response.Response{
		Message: "password updated",
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.flows.SignOut(r.Context()); err != nil {
		h.writer.Write(w, http.StatusInternalServerError, &response.Response{
			Message: "failed to sign out",
		})
		return
	}

	h.writer.Write(w, http.StatusOK, &response.Response{
		Data: map[string]domain.Route{"route": h.flows.Route()},
	})
}

func (h *AuthHandler) Attempts(w http.ResponseWriter, r *http.Request) {
	limit := int64(defaultAttemptLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			h.writer.WriteValidationError(w, map[string]string{
				"limit": "The limit must be a positive integer.",
			})
			return
		}
		limit = min(n, maxAttemptLimit)
	}

	attempts, err := h.attempts.Recent(r.Context(), limit)
	if err != nil {
		h.writer.Write(w, http.StatusInternalServerError, &response.Response{
			Message: "failed to load auth attempts",
		})
		return
	}

	h.writer.Write(w, http.StatusOK, &response.Response{
		Data: attempts,
	})
}

func (h *AuthHandler) writeOutcome(w http.ResponseWriter, flow domain.FlowKind, out domain.AuthOutcome) {
	h.writer.Write(w, http.StatusOK, &response.Response{
		Data: outcomeResponse{
			Outcome: out,
			Message: out.MessageFor(flow),
			Route:   h.flows.Route(),
		},
	})
}

func resetFailureMessage(perr *domain.ProviderError) string {
	switch perr.Code {
	case domain.CodeInvalidCredential:
		return "reset token is invalid or expired"
	case domain.CodeWeakPassword:
		return "password is too weak"
	case domain.CodeUserNotFound:
		return "account no longer exists"
	}
	return perr.Error()
}
