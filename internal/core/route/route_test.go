package route

import (
	"testing"

	"lorryadmin/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestDecideInitialRoute(t *testing.T) {
	assert.Equal(t, domain.RouteHome, DecideInitialRoute(domain.Authenticated("u-1")))
	assert.Equal(t, domain.RouteLogin, DecideInitialRoute(domain.Unauthenticated()))
}

func TestDecidePostAuthRoute(t *testing.T) {
	success := domain.Succeeded("u-1")

	tests := []struct {
		name    string
		outcome domain.AuthOutcome
		flow    domain.FlowKind
		want    domain.Route
	}{
		{"sign in success", success, domain.FlowSignIn, domain.RouteHome},
		{"federated success", success, domain.FlowFederatedSignIn, domain.RouteHome},
		{"register success", success, domain.FlowRegister, domain.RouteLogin},
		{"sign in failure", domain.Failed(domain.ReasonWrongPassword), domain.FlowSignIn, domain.RouteNoChange},
		{"register failure", domain.Failed(domain.ReasonEmailInUse), domain.FlowRegister, domain.RouteNoChange},
		{"federated cancelled", domain.Failed(domain.ReasonCancelled), domain.FlowFederatedSignIn, domain.RouteNoChange},
		{"validation failure", domain.FailedValidation(domain.ErrEmptyField), domain.FlowSignIn, domain.RouteNoChange},
		{"unknown flow", success, domain.FlowKind("other"), domain.RouteNoChange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecidePostAuthRoute(tt.outcome, tt.flow))
		})
	}
}
