package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lorryadmin/internal/adapters/http/request"
	"lorryadmin/internal/adapters/http/response"
	"lorryadmin/internal/adapters/http/validator"
	"lorryadmin/internal/config"
	"lorryadmin/internal/domain"
	"lorryadmin/internal/logger"
	"lorryadmin/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFlows struct {
	route     domain.Route
	outcome   domain.AuthOutcome
	resetErr  error
	signOut   error
	lastCreds domain.Credentials
	launched  domain.FederatedLauncher
	resetFor  string
}

func (f *fakeFlows) SignIn(_ context.Context, creds domain.Credentials) domain.AuthOutcome {
	f.lastCreds = creds
	return f.outcome
}

func (f *fakeFlows) Register(_ context.Context, creds domain.Credentials) domain.AuthOutcome {
	f.lastCreds = creds
	return f.outcome
}

func (f *fakeFlows) FederatedSignIn(_ context.Context, l domain.FederatedLauncher) domain.AuthOutcome {
	f.launched = l
	return f.outcome
}

func (f *fakeFlows) SendPasswordReset(_ context.Context, email string) error {
	f.resetFor = email
	return f.resetErr
}

func (f *fakeFlows) SignOut(context.Context) error {
	if f.signOut == nil {
		f.route = domain.RouteLogin
	}
	return f.signOut
}

func (f *fakeFlows) Route() domain.Route {
	return f.route
}

type fakeResetter struct {
	federated bool
	err       error
	token     string
}

func (r *fakeResetter) ResetPassword(_ context.Context, token, _ string) error {
	r.token = token
	return r.err
}

func (r *fakeResetter) FederatedEnabled() bool {
	return r.federated
}

type fakeAttempts struct {
	limit int64
	err   error
}

func (a *fakeAttempts) Recent(_ context.Context, limit int64) ([]domain.AuthAttempt, error) {
	a.limit = limit
	if a.err != nil {
		return nil, a.err
	}
	return []domain.AuthAttempt{{ID: "1-0", Flow: domain.FlowSignIn, Success: true}}, nil
}

type fakeBanners struct {
	req domain.BannerRequest
	err error
}

func (b *fakeBanners) Publish(_ context.Context, req domain.BannerRequest) (*domain.Banner, error) {
	b.req = req
	if b.err != nil {
		return nil, b.err
	}
	return &domain.Banner{Item: domain.Item{ID: "b-1", Name: req.Name}}, nil
}

type fakeBlobs struct {
	blobs map[string]*domain.Blob
}

func (b *fakeBlobs) GetBlob(_ context.Context, path string) (*domain.Blob, error) {
	blob, ok := b.blobs[path]
	if !ok {
		return nil, domain.ErrBlobNotFound
	}
	return blob, nil
}

type staticState struct{}

func (staticState) State() domain.AppState {
	return domain.AppState{Route: domain.RouteHome}
}

type fixture struct {
	flows    *fakeFlows
	resetter *fakeResetter
	attempts *fakeAttempts
	banners  *fakeBanners
	blobs    *fakeBlobs
	handler  http.Handler
}

func newFixture() *fixture {
	f := &fixture{
		flows:    &fakeFlows{route: domain.RouteLogin},
		resetter: &fakeResetter{},
		attempts: &fakeAttempts{},
		banners:  &fakeBanners{},
		blobs:    &fakeBlobs{blobs: map[string]*domain.Blob{}},
	}

	w := response.NewJSONWriter()
	log := logger.Nop()
	cfg := &config.Config{AllowedOrigins: []string{"http://app.test"}}

	f.handler = NewRouter(cfg, &RouterDeps{
		Ws:      func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) },
		Auth:    NewAuthHandler(f.flows, f.resetter, f.attempts, request.NewJSONDecoder(), w, validator.New()),
		State:   NewStateHandler(staticState{}, w),
		Banner:  NewBannerHandler(f.banners, w, log),
		Blob:    NewBlobHandler(f.blobs),
		Metrics: metrics.New(),
		Log:     log,
	})
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestLoginReturnsOutcomeAsValue(t *testing.T) {
	f := newFixture()
	f.flows.outcome = domain.Failed(domain.ReasonWrongPassword)

	rec := f.do(t, http.MethodPost, "/auth/login", `{"email":"a@b.com","password":"nope123"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var data outcomeResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &data))
	assert.False(t, data.Outcome.Success)
	assert.Equal(t, domain.ReasonWrongPassword, data.Outcome.Reason)
	assert.Equal(t, domain.Failed(domain.ReasonWrongPassword).Message(), data.Message)
	assert.Equal(t, domain.RouteLogin, data.Route)
	assert.Equal(t, domain.Credentials{Email: "a@b.com", Password: "nope123"}, f.flows.lastCreds)
}

func TestLoginMalformedJSON(t *testing.T) {
	f := newFixture()

	for _, body := range []string{`{"email":`, ``, `{"email":"a@b.com","extra":1}`} {
		rec := f.do(t, http.MethodPost, "/auth/login", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestRegisterPassesConfirmation(t *testing.T) {
	f := newFixture()
	f.flows.outcome = domain.Succeeded("u-1")

	rec := f.do(t, http.MethodPost, "/auth/register", `{"email":"a@b.com","password":"secret1","confirm_password":"secret1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "secret1", f.flows.lastCreds.ConfirmPassword)

	var data outcomeResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &data))
	assert.Equal(t, "Registration Successful", data.Message)
}

func TestFederatedBuildsLauncher(t *testing.T) {
	f := newFixture()
	f.resetter.federated = true
	f.flows.outcome = domain.Succeeded("fed")

	rec := f.do(t, http.MethodPost, "/auth/federated", `{"token":"id-token"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, f.flows.launched)
	assert.True(t, f.flows.launched.Available())
	token, err := f.flows.launched.Launch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "id-token", token)
}

func TestPasswordResetMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		sent bool
		want string
	}{
		{"sent", nil, true, "Password reset email sent"},
		{"validation", domain.ErrInvalidEmailFormat, false, domain.ValidationMessage(domain.ErrInvalidEmailFormat)},
		{"provider", &domain.OutcomeError{Outcome: domain.Failed(domain.ReasonUserNotFound)}, false, domain.Failed(domain.ReasonUserNotFound).Message()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.flows.resetErr = tt.err

			rec := f.do(t, http.MethodPost, "/auth/password-reset", `{"email":"a@b.com"}`)

			require.Equal(t, http.StatusOK, rec.Code)
			var data resetResponse
			require.NoError(t, json.Unmarshal(decode(t, rec).Data, &data))
			assert.Equal(t, tt.sent, data.Sent)
			assert.Equal(t, tt.want, data.Message)
			assert.Equal(t, "a@b.com", f.flows.resetFor)
		})
	}
}

func TestConfirmPasswordReset(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		f := newFixture()

		rec := f.do(t, http.MethodPost, "/auth/password-reset/confirm", `{"token":"","password":"abc"}`)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		env := decode(t, rec)
		assert.Contains(t, env.Errors, "token")
		assert.Contains(t, env.Errors, "password")
	})

	t.Run("expired", func(t *testing.T) {
		f := newFixture()
		f.resetter.err = domain.NewProviderError(domain.CodeInvalidCredential, "reset link expired")

		rec := f.do(t, http.MethodPost, "/auth/password-reset/confirm", `{"token":"lra_abc","password":"secret1"}`)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "reset token is invalid or expired", decode(t, rec).Message)
	})

	t.Run("ok", func(t *testing.T) {
		f := newFixture()

		rec := f.do(t, http.MethodPost, "/auth/password-reset/confirm", `{"token":"lra_abc","password":"secret1"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "lra_abc", f.resetter.token)
	})
}

func TestLogout(t *testing.T) {
	f := newFixture()
	f.flows.route = domain.RouteHome

	rec := f.do(t, http.MethodPost, "/auth/logout", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"route":"login"}`, string(decode(t, rec).Data))

	f.flows.signOut = errors.New("redis down")
	rec = f.do(t, http.MethodPost, "/auth/logout", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAttemptsLimit(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/auth/attempts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(defaultAttemptLimit), f.attempts.limit)

	f.do(t, http.MethodGet, "/auth/attempts?limit=5000", "")
	assert.Equal(t, int64(maxAttemptLimit), f.attempts.limit)

	rec = f.do(t, http.MethodGet, "/auth/attempts?limit=-1", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestStateAndHealth(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"route":"home"}`, string(decode(t, rec).Data))

	rec = f.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, "OK", rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest(http.MethodOptions, "/auth/login", nil)
	req.Header.Set("Origin", "http://app.test")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://app.test", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/auth/login", nil)
	req.Header.Set("Origin", "http://evil.test")
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func bannerForm(t *testing.T, fields map[string]string, image []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		part, err := mw.CreateFormFile("image", "banner.png")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestBannerStore(t *testing.T) {
	fields := map[string]string{
		"name":         "Tata 407",
		"grade":        "A",
		"price":        "250000",
		"available":    "Yes",
		"metrics":      "12 km/l",
		"action_label": "Book",
		"description":  "Light truck",
	}

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"created", nil, http.StatusCreated},
		{"incomplete", domain.ErrBannerIncomplete, http.StatusUnprocessableEntity},
		{"bad price", domain.ErrInvalidPrice, http.StatusUnprocessableEntity},
		{"signed out", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"upload", errors.Join(domain.ErrUploadFailed, errors.New("pg")), http.StatusBadGateway},
		{"push", errors.Join(domain.ErrPublishFailed, errors.New("pg")), http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.banners.err = tt.err

			body, contentType := bannerForm(t, fields, []byte("png-bytes"))
			req := httptest.NewRequest(http.MethodPost, "/banners", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			f.handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "Tata 407", f.banners.req.Name)
			assert.Equal(t, []byte("png-bytes"), f.banners.req.Image)
		})
	}
}

func TestBannerStoreWithoutImageReachesService(t *testing.T) {
	f := newFixture()
	f.banners.err = domain.ErrBannerIncomplete

	body, contentType := bannerForm(t, map[string]string{"name": "x"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/banners", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, f.banners.req.Image)
	assert.Equal(t, domain.ErrBannerIncomplete.Error(), decode(t, rec).Message)
}

func TestBlobShow(t *testing.T) {
	f := newFixture()
	f.blobs.blobs["banners/b-1"] = &domain.Blob{Path: "banners/b-1", ContentType: "image/png", Data: []byte("png")}

	rec := f.do(t, http.MethodGet, "/blobs/banners/b-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "png", rec.Body.String())

	rec = f.do(t, http.MethodGet, "/blobs/banners/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
