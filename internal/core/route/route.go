// Package route decides which screen the rendering layer shows next.
package route

import "lorryadmin/internal/domain"

func DecideInitialRoute(session domain.SessionState) domain.Route {
	if session.IsAuthenticated() {
		return domain.RouteHome
	}
	return domain.RouteLogin
}

// DecidePostAuthRoute maps a terminal outcome to the next route. Registration
// lands on the login screen, the user signs in explicitly afterwards.
func DecidePostAuthRoute(outcome domain.AuthOutcome, flow domain.FlowKind) domain.Route {
	if !outcome.Success {
		return domain.RouteNoChange
	}

	switch flow {
	case domain.FlowSignIn, domain.FlowFederatedSignIn:
		return domain.RouteHome
	case domain.FlowRegister:
		return domain.RouteLogin
	default:
		return domain.RouteNoChange
	}
}
