// Package http exposes the API over HTTP with chi.
package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/goodcast/goodapi/internal/logging"
	"github.com/goodcast/goodapi/pkg/auth"
	"github.com/goodcast/goodapi/pkg/domain"
	"github.com/goodcast/goodapi/pkg/frames"
	"github.com/goodcast/goodapi/pkg/leafwatch"
	"github.com/goodcast/goodapi/pkg/metrics"
	"github.com/goodcast/goodapi/pkg/ports"
	"github.com/goodcast/goodapi/pkg/webhooks"
)

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	Verifier    ports.AccountVerifier
	Frames      *frames.Service
	Leafwatch   *leafwatch.Service
	Polls       ports.PollStore
	Preferences ports.PreferenceStore
	Signup      *webhooks.Signup
	Streams     *StreamManager
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
	Version     string
	Now         func() time.Time
}

// NewHandler creates the HTTP handler of the API.
func NewHandler(s *Server) http.Handler {
	if s.Streams == nil {
		s.Streams = NewStreamManager(WithStreamLogger(s.logger()))
	}
	if s.Now == nil {
		s.Now = time.Now
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)
	if doc, err := Spec(); err != nil {
		s.logger().Error("Failed to load OpenAPI spec", "err", err)
	} else if validate, err := s.validateRequest(doc); err != nil {
		s.logger().Error("Failed to build OpenAPI router", "err", err)
	} else {
		r.Use(validate)
	}

	r.Post("/frames/post", s.PostFrame)
	r.Get("/oembed/get", s.GetOEmbed)

	r.Route("/leafwatch", func(r chi.Router) {
		r.Post("/events", s.PostEvent)
		r.Get("/stream", s.GetStream)
		r.Get("/sse", s.SubscribeEvents)
	})

	r.Route("/polls", func(r chi.Router) {
		r.Post("/create", s.CreatePoll)
		r.Get("/get", s.GetPoll)
		r.Post("/act", s.ActPoll)
	})

	r.Route("/preferences", func(r chi.Router) {
		r.Get("/get", s.GetPreferences)
		r.Post("/update", s.UpdatePreferences)
	})

	r.Post("/webhooks/signup", s.PostSignup)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())
	}

	return r
}

func (s *Server) logger() *slog.Logger {
	if s.Logger == nil {
		return logging.NewNop()
	}
	return s.Logger
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+auth.AccessTokenHeader+", "+auth.IdentityTokenHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// instrument logs every request and records it in the metrics set.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)

		if s.Metrics != nil {
			s.Metrics.ObserveRequest(route, status, elapsed)
		}
		s.logger().Info("HTTP request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", elapsed,
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// authorize runs the account check of a mutating route. On failure it has
// already answered the request.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request) (auth.Tokens, bool) {
	tokens := auth.FromRequest(r)
	if s.Verifier == nil {
		s.notAllowed(w, http.StatusUnauthorized)
		return tokens, false
	}
	if status := auth.Status(r.Context(), s.Verifier, tokens.Access); status != http.StatusOK {
		s.logger().Debug("Account check failed", "status", status, "path", r.URL.Path)
		s.notAllowed(w, status)
		return tokens, false
	}
	return tokens, true
}

// actor decodes the identity token, falling back to the access token.
func actor(tokens auth.Tokens) (domain.Identity, error) {
	if tokens.Identity != "" {
		return auth.ParseToken(tokens.Identity)
	}
	return auth.ParseToken(tokens.Access)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := Spec(); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}
	version := s.Version
	if version == "" {
		version = "dev"
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "goodapi",
		"version":     version,
		"api_version": apiVersion,
	})
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
