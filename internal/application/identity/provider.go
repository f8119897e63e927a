// Package identity is a self-hosted identity provider: bcrypt password
// accounts, JWT access tokens persisted in a token store, throttled
// password sign-in, reset tokens and federated ID-token exchange.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"lorryadmin/internal/domain"
	"lorryadmin/internal/logger"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var validate = validator.New()

type Deps struct {
	Users   domain.UserRepository
	Tokens  domain.TokenStore
	Resets  domain.ResetTokenStore
	Limiter domain.RateLimiter
	Mailer  domain.Mailer
}

type Options struct {
	JWTSecret       string
	JWTExpiry       time.Duration
	FederatedSecret string
	ResetTokenTTL   time.Duration
}

type Provider struct {
	users   domain.UserRepository
	tokens  domain.TokenStore
	resets  domain.ResetTokenStore
	limiter domain.RateLimiter
	mailer  domain.Mailer
	log     logger.Logger

	jwtSecret       []byte
	tokenExpiry     time.Duration
	federatedSecret []byte
	resetTTL        time.Duration
	now             func() time.Time
}

func NewProvider(deps Deps, opts Options, log logger.Logger) *Provider {
	return &Provider{
		users:   deps.Users,
		tokens:  deps.Tokens,
		resets:  deps.Resets,
		limiter: deps.Limiter,
		mailer:  deps.Mailer,
		log:     log,

		jwtSecret:       []byte(opts.JWTSecret),
		tokenExpiry:     opts.JWTExpiry,
		federatedSecret: []byte(opts.FederatedSecret),
		resetTTL:        opts.ResetTokenTTL,
		now:             time.Now,
	}
}

// FederatedEnabled reports whether ID tokens can be verified.
func (p *Provider) FederatedEnabled() bool {
	return len(p.federatedSecret) > 0
}

func (p *Provider) CurrentSession(ctx context.Context) (domain.SessionState, error) {
	raw, err := p.tokens.Load(ctx)
	if err != nil {
		return domain.Unauthenticated(), err
	}
	if raw == "" {
		return domain.Unauthenticated(), nil
	}

	claims, err := ValidateToken(raw, p.jwtSecret)
	if err != nil {
		p.log.Info("identity: stored token rejected, clearing", "error", err)
		if cerr := p.tokens.Clear(ctx); cerr != nil {
			p.log.Warn("identity: failed to clear stored token", "error", cerr)
		}
		return domain.Unauthenticated(), nil
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return domain.Unauthenticated(), nil
	}
	return domain.Authenticated(sub), nil
}

func (p *Provider) SignInWithPassword(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	email = normalizeEmail(email)

	if p.limiter != nil {
		ok, err := p.limiter.Allow(ctx, "login:"+email)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.NewProviderError(domain.CodeTooManyRequests, "")
		}
	}

	user, err := p.lookup(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, domain.NewProviderError(domain.CodeWrongPassword, "")
	}

	if err := p.startSession(ctx, user); err != nil {
		return nil, err
	}
	return &domain.AuthResult{UserID: user.ID, Email: user.Email}, nil
}

// CreateAccount stores the user but does not persist a session token; the
// app asks for an explicit sign-in after registering.
func (p *Provider) CreateAccount(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	email = normalizeEmail(email)

	if err := validate.Var(email, "required,email"); err != nil {
		return nil, domain.NewProviderError(domain.CodeInvalidCredential, "")
	}
	if utf8.RuneCountInString(password) < domain.MinPasswordLength {
		return nil, domain.NewProviderError(domain.CodeWeakPassword, "")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, domain.NewProviderError(domain.CodeWeakPassword, "password too long")
		}
		return nil, err
	}

	now := p.now().UTC()
	user := &domain.User{
		ID:        uuid.NewString(),
		Email:     email,
		Password:  string(hashed),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := p.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailAlreadyExists) {
			return nil, domain.NewProviderError(domain.CodeEmailAlreadyInUse, "")
		}
		return nil, err
	}

	p.log.Info("identity: account created", "user_id", user.ID)
	return &domain.AuthResult{UserID: user.ID, Email: user.Email}, nil
}

func (p *Provider) SendPasswordReset(ctx context.Context, email string) error {
	user, err := p.lookup(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}

	token, err := GenerateToken()
	if err != nil {
		return err
	}

	if err := p.resets.Put(ctx, token, user.ID, p.resetTTL); err != nil {
		return err
	}

	return p.mailer.SendPasswordReset(ctx, user.Email, token)
}

// ResetPassword redeems a reset token. Tokens are single use.
func (p *Provider) ResetPassword(ctx context.Context, token, password string) error {
	if utf8.RuneCountInString(password) < domain.MinPasswordLength {
		return domain.NewProviderError(domain.CodeWeakPassword, "")
	}

	userID, err := p.resets.Take(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidToken) {
			return domain.NewProviderError(domain.CodeInvalidCredential, "reset link expired")
		}
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.NewProviderError(domain.CodeWeakPassword, err.Error())
	}

	if err := p.users.UpdatePassword(ctx, userID, string(hashed)); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.NewProviderError(domain.CodeUserNotFound, "")
		}
		return err
	}
	return nil
}

func (p *Provider) SignInWithFederatedCredential(ctx context.Context, token string) (*domain.AuthResult, error) {
	if !p.FederatedEnabled() {
		return nil, domain.ErrFederatedUnavailable
	}

	subject, email, err := federatedClaims(token, p.federatedSecret)
	if err != nil {
		p.log.Info("identity: federated token rejected", "error", err)
		return nil, domain.NewProviderError(domain.CodeInvalidCredential, "")
	}
	email = normalizeEmail(email)

	user, err := p.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		user, err = p.createFederatedUser(ctx, email)
		if err != nil {
			return nil, err
		}
		p.log.Info("identity: federated account linked", "user_id", user.ID, "subject", subject)
	case err != nil:
		return nil, err
	}

	if user.Disabled {
		return nil, domain.NewProviderError(domain.CodeUserDisabled, "")
	}

	if err := p.startSession(ctx, user); err != nil {
		return nil, err
	}
	return &domain.AuthResult{UserID: user.ID, Email: user.Email}, nil
}

func (p *Provider) SignOut(ctx context.Context) error {
	return p.tokens.Clear(ctx)
}

func (p *Provider) lookup(ctx context.Context, email string) (*domain.User, error) {
	user, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.NewProviderError(domain.CodeUserNotFound, "")
		}
		return nil, err
	}
	if user.Disabled {
		return nil, domain.NewProviderError(domain.CodeUserDisabled, "")
	}
	return user, nil
}

func (p *Provider) startSession(ctx context.Context, user *domain.User) error {
	token, err := issueAccessToken(user, p.jwtSecret, p.tokenExpiry, p.now())
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	return p.tokens.Save(ctx, token, p.tokenExpiry)
}

// createFederatedUser stores an account with an unguessable password hash;
// it can only sign in federated until a password reset.
func (p *Provider) createFederatedUser(ctx context.Context, email string) (*domain.User, error) {
	secret, err := GenerateToken()
	if err != nil {
		return nil, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret[:64]), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := p.now().UTC()
	user := &domain.User{
		ID:        uuid.NewString(),
		Email:     email,
		Password:  string(hashed),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
