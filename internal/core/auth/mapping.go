package auth

import (
	"context"
	"errors"
	"net"

	"lorryadmin/internal/domain"
)

var reasonByCode = map[string]domain.FailureReason{
	domain.CodeInvalidEmail:      domain.ReasonInvalidEmail,
	domain.CodeInvalidCredential: domain.ReasonInvalidEmail,
	domain.CodeWrongPassword:     domain.ReasonWrongPassword,
	domain.CodeUserNotFound:      domain.ReasonUserNotFound,
	domain.CodeUserDisabled:      domain.ReasonUserDisabled,
	domain.CodeTooManyRequests:   domain.ReasonTooManyRequests,
	domain.CodeNetworkFailed:     domain.ReasonNetworkError,
	domain.CodeEmailAlreadyInUse: domain.ReasonEmailInUse,
	domain.CodeWeakPassword:      domain.ReasonWeakPassword,
}

// outcomeFromError normalizes a provider or transport error. No provider
// error type escapes this function.
func outcomeFromError(err error) domain.AuthOutcome {
	var perr *domain.ProviderError
	if errors.As(err, &perr) {
		if reason, ok := reasonByCode[perr.Code]; ok {
			return domain.Failed(reason)
		}
		if perr.Message != "" {
			return domain.FailedUnknown(perr.Message)
		}
		return domain.FailedUnknown(perr.Code)
	}

	if isTransport(err) {
		return domain.Failed(domain.ReasonNetworkError)
	}

	return domain.FailedUnknown(err.Error())
}

func isTransport(err error) bool {
	if errors.Is(err, domain.ErrTransport) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr)
}
