package web

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"restaurant-offer-service/internal/config"
	"restaurant-offer-service/internal/domain/model"
	red "restaurant-offer-service/internal/infra/redis"
	"restaurant-offer-service/internal/usecase"
)

// Server wires the offer API routes to the use cases.
type Server struct {
	offerUC usecase.OfferUseCase
	adminUC usecase.AdminUseCase
	auth    *AuthManager
	limiter *red.RateLimiter // nil disables rate limiting
	rlCfg   config.OfferConfig
	log     *zerolog.Logger
}

func NewServer(
	offerUC usecase.OfferUseCase,
	adminUC usecase.AdminUseCase,
	auth *AuthManager,
	limiter *red.RateLimiter,
	offerCfg config.OfferConfig,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		offerUC: offerUC,
		adminUC: adminUC,
		auth:    auth,
		limiter: limiter,
		rlCfg:   offerCfg,
		log:     logger,
	}
}

// Routes builds the router with the full middleware chain.
func (s *Server) Routes(requestTimeout time.Duration) *chi.Mux {
	r := chi.NewRouter()
	r.Use(Recover(s.log), TraceID(), RequestLog(s.log), Timeout(requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/offer", func(r chi.Router) {
		r.With(s.rateLimitByIP).Post("/register", s.handleRegister)
		r.Get("/verify", s.handleVerify)
		r.Post("/auth", s.handleLogin)
		r.Post("/unsubscribe", s.handleUnsubscribe)

		// Staff routes behind the auth gate.
		r.Group(func(r chi.Router) {
			r.Use(s.auth.Middleware)
			r.Post("/verify", s.handleRedeem)
			r.Get("/list", s.handleList)
			r.Get("/export", s.handleExport)
		})
	})

	return r
}

// rateLimitByIP throttles the public registration endpoint per client IP.
// When redis is unavailable the limiter degrades open: a flood of
// registrations is cheaper than refusing legitimate customers.
func (s *Server) rateLimitByIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		ok, err := s.limiter.Allow(r.Context(), red.RegisterIPKey(ip), s.rlCfg.RateLimit.PerIP, s.rlCfg.RateLimit.Window)
		if err != nil {
			s.log.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
			next.ServeHTTP(w, r)
			return
		}
		if !ok {
			writeError(w, http.StatusTooManyRequests, "too many attempts, try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// allowRegistration applies the per-phone window once the body is parsed.
func (s *Server) allowRegistration(ctx context.Context, phoneNumber string) bool {
	if s.limiter == nil || phoneNumber == "" {
		return true
	}
	phone := model.NormalizePhone(phoneNumber)
	ok, err := s.limiter.Allow(ctx, red.RegisterPhoneKey(phone), s.rlCfg.RateLimit.PerPhone, s.rlCfg.RateLimit.Window)
	if err != nil {
		s.log.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
		return true
	}
	return ok
}
