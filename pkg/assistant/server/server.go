// Package server exposes the shopping assistant over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ourstudio-se/shop-assistant/pkg/assistant/types"
)

// ChatService is the part of the agent the HTTP layer needs.
type ChatService interface {
	Chat(ctx context.Context, req types.ChatRequest) (*types.ChatResponse, error)
	GetConversation(ctx context.Context, id string) (*types.Conversation, error)
	ClearSession(ctx context.Context, sessionID string) error
}

// Server is the HTTP server for the assistant
type Server struct {
	router  *chi.Mux
	service ChatService
}

// Config for the server
type Config struct {
	CORSOrigins []string
}

// New creates a new HTTP server
func New(service ChatService, cfg Config) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
	}

	s.setupMiddleware(cfg)
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware(cfg Config) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.healthHandler)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/chat", s.chatHandler)
		r.Post("/chat/stream", s.chatStreamHandler)
		r.Get("/conversations/{id}", s.getConversationHandler)
		r.Delete("/sessions/{id}", s.clearSessionHandler)
	})
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the server
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.router)
}
