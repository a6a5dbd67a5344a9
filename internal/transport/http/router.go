package http

import (
	"net/http"
	"strings"
	"time"

	"assettrack/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	CORSOrigins string
}

func NewRouter(auth service.AuthService, assets service.AssetService, tokens service.TokenService, cfg RouterConfig) http.Handler {
	ah := &authHandlers{auth: auth}
	sh := &assetHandlers{assets: assets}

	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	c := cors.Options{
		AllowedOrigins:   originsIfSet(strings.Split(cfg.CORSOrigins, ",")),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	r.Use(cors.Handler(c))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1/auth", func(r chi.Router) {
		// Tight per-IP limit on the credential-guessing surface.
		r.Use(httprate.LimitByIP(20, 1*time.Minute))
		r.Post("/register", ah.register)
		r.Post("/verify-otp", ah.verifyOtp)
		r.Post("/login", ah.login)
		r.Post("/resend-otp", ah.resendOtp)
	})

	r.Route("/v1/assets", func(r chi.Router) {
		r.Use(RequireAuth(tokens))
		r.Get("/", sh.list)
		r.Post("/", sh.create)
		r.Get("/{id}", sh.get)
		r.Put("/{id}", sh.update)
		r.Delete("/{id}", sh.delete)
	})

	return r
}

func originsIfSet(origins []string) []string {
	var out []string
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
