// Package shell ties the auth controller, the routing decisions and the
// listing feed together and publishes route, outcome and snapshot changes
// for the rendering layer.
package shell

import (
	"context"
	"sync"
	"time"

	"lorryadmin/internal/core/auth"
	"lorryadmin/internal/core/event"
	"lorryadmin/internal/core/feed"
	"lorryadmin/internal/core/route"
	"lorryadmin/internal/domain"
	"lorryadmin/internal/logger"
)

const recordSessionTimeout = 10 * time.Second

type Options struct {
	SplashDelay    time.Duration
	HomeCollection string
}

type Shell struct {
	provider domain.IdentityProvider
	ctrl     *auth.Controller
	feed     *feed.Feed
	store    domain.DataStore
	bus      *event.Bus
	log      logger.Logger
	opts     Options

	// navMu serializes route transitions, including feed start/stop.
	navMu sync.Mutex

	mu       sync.RWMutex
	baseCtx  context.Context
	route    domain.Route
	outcome  *domain.EventOutcomeRecorded
	snapshot *domain.ListSnapshot
	sub      *feed.Subscription

	recordOnce sync.Once
}

func New(
	provider domain.IdentityProvider,
	ctrl *auth.Controller,
	f *feed.Feed,
	store domain.DataStore,
	bus *event.Bus,
	log logger.Logger,
	opts Options,
) *Shell {
	if opts.HomeCollection == "" {
		opts.HomeCollection = domain.CollectionProducts
	}

	return &Shell{
		provider: provider,
		ctrl:     ctrl,
		feed:     f,
		store:    store,
		bus:      bus,
		log:      log,
		opts:     opts,
		baseCtx:  context.Background(),
	}
}

// Start runs the splash step: wait, read the session, pick the first route.
// ctx bounds the shell's lifetime, including feed subscriptions.
func (s *Shell) Start(ctx context.Context) (domain.Route, error) {
	s.mu.Lock()
	s.baseCtx = ctx
	s.mu.Unlock()

	if s.opts.SplashDelay > 0 {
		select {
		case <-time.After(s.opts.SplashDelay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	session, err := s.provider.CurrentSession(ctx)
	if err != nil {
		s.log.Warn("shell: session lookup failed, treating as signed out", "error", err)
		session = domain.Unauthenticated()
	}

	next := route.DecideInitialRoute(session)
	if session.IsAuthenticated() {
		s.recordSession(ctx, session.UserID)
	}

	s.setRoute(next)
	s.log.Info("shell: started", "route", next)
	return next, nil
}

// recordSession writes the user id marker at most once per start. It never
// blocks routing; failures are only logged.
func (s *Shell) recordSession(ctx context.Context, userID string) {
	s.recordOnce.Do(func() {
		go func() {
			wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordSessionTimeout)
			defer cancel()

			path := domain.CollectionUsers + "/" + userID
			if err := s.store.Write(wctx, path, map[string]string{"userId": userID}); err != nil {
				s.log.Error("shell: failed to record session", "user_id", userID, "error", err)
				return
			}
			s.log.Debug("shell: session recorded", "user_id", userID)
		}()
	})
}

func (s *Shell) SignIn(ctx context.Context, creds domain.Credentials) domain.AuthOutcome {
	out := s.ctrl.SignIn(ctx, creds)
	s.apply(domain.FlowSignIn, out)
	return out
}

func (s *Shell) Register(ctx context.Context, creds domain.Credentials) domain.AuthOutcome {
	out := s.ctrl.Register(ctx, creds)
	s.apply(domain.FlowRegister, out)
	return out
}

func (s *Shell) FederatedSignIn(ctx context.Context, launcher domain.FederatedLauncher) domain.AuthOutcome {
	out := s.ctrl.FederatedSignIn(ctx, launcher)
	s.apply(domain.FlowFederatedSignIn, out)
	return out
}

func (s *Shell) SendPasswordReset(ctx context.Context, email string) error {
	return s.ctrl.SendPasswordReset(ctx, email)
}

func (s *Shell) SignOut(ctx context.Context) error {
	if err := s.provider.SignOut(ctx); err != nil {
		return err
	}
	s.setRoute(domain.RouteLogin)
	return nil
}

func (s *Shell) State() domain.AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := domain.AppState{Route: s.currentRoute()}
	if s.outcome != nil {
		o := *s.outcome
		st.LastOutcome = &o
	}
	if s.snapshot != nil {
		snap := *s.snapshot
		st.ListSnapshot = &snap
	}
	return st
}

func (s *Shell) Route() domain.Route {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentRoute()
}

// currentRoute reports login until Start has picked the first route.
// Callers hold mu.
func (s *Shell) currentRoute() domain.Route {
	if s.route == "" {
		return domain.RouteLogin
	}
	return s.route
}

// Stop closes the home feed, if any.
func (s *Shell) Stop() {
	s.navMu.Lock()
	defer s.navMu.Unlock()
	s.stopFeed()
}

func (s *Shell) apply(flow domain.FlowKind, out domain.AuthOutcome) {
	recorded := domain.EventOutcomeRecorded{
		Flow:    flow,
		Outcome: out,
		Message: out.MessageFor(flow),
	}

	s.mu.Lock()
	s.outcome = &recorded
	s.mu.Unlock()

	s.ctrl.Consume()
	s.bus.Publish(domain.TopicOutcomeRecorded, recorded)

	s.setRoute(route.DecidePostAuthRoute(out, flow))
}

func (s *Shell) setRoute(next domain.Route) {
	if next == domain.RouteNoChange || next == "" {
		return
	}

	s.navMu.Lock()
	defer s.navMu.Unlock()

	s.mu.Lock()
	prev := s.route
	s.route = next
	s.mu.Unlock()

	if prev == next {
		return
	}

	if next == domain.RouteHome {
		s.startFeed()
	} else if prev == domain.RouteHome {
		s.stopFeed()
	}

	s.bus.Publish(domain.TopicRouteChanged, domain.EventRouteChanged{Route: next})
}

// startFeed and stopFeed run under navMu. Neither holds mu while talking to
// the subscription, since the pump takes mu to store snapshots.
func (s *Shell) startFeed() {
	s.mu.RLock()
	ctx := s.baseCtx
	s.mu.RUnlock()

	sub, err := s.feed.Subscribe(ctx, s.opts.HomeCollection, s.onSnapshot, s.onFeedError)
	if err != nil {
		s.log.Error("shell: failed to subscribe home feed", "collection", s.opts.HomeCollection, "error", err)
		return
	}

	s.mu.Lock()
	s.sub = sub
	s.mu.Unlock()
}

func (s *Shell) stopFeed() {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.mu.Unlock()

	if sub == nil {
		return
	}
	if err := sub.Close(); err != nil {
		s.log.Warn("shell: failed to close home feed", "error", err)
	}

	s.mu.Lock()
	s.snapshot = nil
	s.mu.Unlock()
}

func (s *Shell) onSnapshot(snap domain.ListSnapshot) {
	s.mu.Lock()
	s.snapshot = &snap
	s.mu.Unlock()

	s.bus.Publish(domain.TopicSnapshotReplaced, domain.EventSnapshotReplaced{Snapshot: snap})
}

func (s *Shell) onFeedError(err error) {
	s.log.Warn("shell: home feed error", "collection", s.opts.HomeCollection, "error", err)
}
