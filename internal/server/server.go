// Copyright (c) 2025 Egghead.AI
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// =============================================================================
// WIRE TYPES
// =============================================================================

type preferences struct {
	Tone           string `json:"tone"`
	Depth          string `json:"depth"`
	UseUCDSources  bool   `json:"use_ucd_sources"`
	ShowReferences bool   `json:"show_references"`
	Model          string `json:"model"`
}

func defaultPreferences() preferences {
	return preferences{
		Tone:           "friendly",
		Depth:          "medium",
		UseUCDSources:  true,
		ShowReferences: true,
		Model:          "hf:mistralai/Mistral-7B-Instruct",
	}
}

type historyTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Message             string        `json:"message"`
	SessionID           string        `json:"session_id"`
	UserID              string        `json:"user_id"`
	ConversationHistory []historyTurn `json:"conversation_history"`
	Preferences         *preferences  `json:"preferences"`
}

type reference struct {
	Title string `json:"title"`
	Type  string `json:"type"`
	ID    string `json:"id"`
}

type chatResponse struct {
	Reply      string         `json:"reply,omitempty"`
	Response   string         `json:"response,omitempty"`
	SessionID  string         `json:"session_id"`
	UsedModel  string         `json:"used_model"`
	References []reference    `json:"references"`
	Safety     map[string]any `json:"safety"`
}

// =============================================================================
// SERVER
// =============================================================================

// Config controls the mock backend.
type Config struct {
	// Addr is the listen address, e.g. "127.0.0.1:8000".
	Addr string
	// Legacy switches the /chat reply to the older "response" key.
	Legacy bool
	// CORS is the CORS policy (nil = DefaultCORSConfig).
	CORS *CORSConfig
	// RateLimiter limits requests per client IP (nil = DefaultRateLimiter).
	RateLimiter *RateLimiter
}

// Server is the mock Egghead backend.
type Server struct {
	cfg    Config
	router http.Handler
}

// New creates a Server with its routes wired.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8000"
	}
	if cfg.CORS == nil {
		cfg.CORS = DefaultCORSConfig()
	}
	if cfg.RateLimiter == nil {
		cfg.RateLimiter = DefaultRateLimiter()
	}

	s := &Server{cfg: cfg}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORSMiddleware(cfg.CORS))
	r.Use(RateLimitMiddleware(cfg.RateLimiter))

	r.Get("/health", s.handleHealth)
	r.Get("/resources", s.handleResources)
	r.Post("/chat", s.handleChat)

	s.router = r
	return s
}

// Handler exposes the route tree, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe runs the server until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("mock backend listening on http://%s (legacy=%v)", s.cfg.Addr, s.cfg.Legacy)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// =============================================================================
// HANDLERS
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleResources(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string][]Resource{"resources": AggieResources})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		respondError(w, http.StatusUnprocessableEntity, "message is required")
		return
	}

	prefs := defaultPreferences()
	if req.Preferences != nil {
		prefs = *req.Preferences
		if prefs.Model == "" {
			prefs.Model = defaultPreferences().Model
		}
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	var refs []Resource
	if prefs.UseUCDSources {
		refs = pickResources(req.Message)
	}

	reply := buildReply(req.Message, prefs.Tone, refs)

	resp := chatResponse{
		SessionID:  sessionID,
		UsedModel:  prefs.Model,
		References: []reference{},
		Safety:     map[string]any{"category": "none"},
	}
	if prefs.ShowReferences {
		for _, ref := range refs {
			resp.References = append(resp.References, reference{Title: ref.Title, Type: "ucd_resource", ID: ref.ID})
		}
	}
	if s.cfg.Legacy {
		resp.Response = reply
	} else {
		resp.Reply = reply
	}

	respondJSON(w, http.StatusOK, resp)
}

// buildReply assembles the placeholder reply body with a tone intro and a
// resource list.
func buildReply(message, tone string, refs []Resource) string {
	var intro string
	switch tone {
	case "friendly":
		intro = "Got you — "
	case "formal":
		intro = "Understood. "
	}

	reply := intro + fmt.Sprintf("you asked: %q.", message)
	if len(refs) > 0 {
		reply += "\n\nHelpful UC Davis resources:"
		for _, ref := range refs {
			reply += "\n- " + ref.Title
		}
	}
	return reply
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
