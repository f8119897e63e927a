package http

import (
	"net/http"

	"lorryadmin/internal/adapters/http/middleware"
	"lorryadmin/internal/config"
	"lorryadmin/internal/logger"
	"lorryadmin/internal/metrics"
)

type RouterDeps struct {
	Ws     http.HandlerFunc
	Auth   *AuthHandler
	State  *StateHandler
	Banner *BannerHandler
	Blob   *BlobHandler

	Metrics *metrics.Metrics
	Log     logger.Logger
}

func NewRouter(cfg *config.Config, deps *RouterDeps) http.Handler {
	mux := http.NewServeMux()

	globalMw := middleware.New()
	globalMw.Use(middleware.Recover(deps.Log))
	if deps.Metrics != nil {
		globalMw.Use(deps.Metrics.Instrument)
	}
	globalMw.Use(middleware.CORS(cfg))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("GET /ws", deps.Ws)
	mux.HandleFunc("GET /state", deps.State.Show)

	mux.HandleFunc("POST /auth/login", deps.Auth.Login)
	mux.HandleFunc("POST /auth/register", deps.Auth.Register)
	mux.HandleFunc("POST /auth/password-reset", deps.Auth.PasswordReset)
	mux.HandleFunc("POST /auth/password-reset/confirm", deps.Auth.ConfirmPasswordReset)
	mux.HandleFunc("POST /auth/federated", deps.Auth.Federated)
	mux.HandleFunc("POST /auth/logout", deps.Auth.Logout)
	mux.HandleFunc("GET /auth/attempts", deps.Auth.Attempts)

	mux.HandleFunc("POST /banners", deps.Banner.Store)
	mux.HandleFunc("GET /blobs/{path...}", deps.Blob.Show)

	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics.Handler())
	}

	return globalMw.Apply(mux)
}
