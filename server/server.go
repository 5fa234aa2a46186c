// Package server exposes the engine over a websocket front-end. Each
// connection gets its own session; frames carry the player's message and
// optional state update in, the narrator's reply and turn index out.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fablekeep/fable-go-sdk/core"
	"github.com/fablekeep/fable-go-sdk/engine"
)

// Runner executes one conversational exchange. *engine.Engine satisfies it.
type Runner interface {
	Run(ctx context.Context, input *engine.Input) (*engine.Output, error)
}

// Config holds the HTTP listener settings.
type Config struct {
	// Addr is the listen address.
	Addr string

	// WriteTimeout bounds a single response write, including generation.
	WriteTimeout time.Duration
}

// DefaultConfig is the server configuration used when none is given.
var DefaultConfig = &Config{
	Addr:         ":8080",
	WriteTimeout: 60 * time.Second,
}

// Request is one inbound websocket frame.
type Request struct {
	// Message is the player's input for this turn.
	Message string `json:"message"`

	// State, when present, replaces the session's game state before the
	// turn runs.
	State *core.GameState `json:"state,omitempty"`
}

// Response is one outbound websocket frame.
type Response struct {
	Reply     string `json:"reply,omitempty"`
	TurnIndex int    `json:"turnIndex,omitempty"`
	Retrieved int    `json:"retrieved,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Server is the websocket front-end.
type Server struct {
	config   Config
	runner   Runner
	upgrader websocket.Upgrader
	http     *http.Server
}

// New creates a server around the given runner. A nil config uses
// DefaultConfig.
func New(runner Runner, config *Config) *Server {
	if config == nil {
		config = DefaultConfig
	}
	cfg := *config
	if cfg.Addr == "" {
		cfg.Addr = DefaultConfig.Addr
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultConfig.WriteTimeout
	}

	s := &Server{
		config: cfg,
		runner: runner,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Handler returns the route set: /ws for conversations, /health for probes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	return mux
}

// Start begins serving and blocks until the listener closes.
func (s *Server) Start() error {
	log.Printf("[SERVER] Listening on %s", s.config.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// Shutdown drains connections and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Printf("[SERVER] Shutting down")
	return s.http.Shutdown(ctx)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[SERVER] Upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	session := engine.NewSession()
	log.Printf("[SERVER] Session %s connected from %s", session.ID, r.RemoteAddr)

	for {
		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[SERVER] Session %s read error: %v", session.ID, err)
			}
			return
		}

		if req.State != nil {
			session.SetState(*req.State)
		}
		if req.Message == "" {
			if err := conn.WriteJSON(Response{Error: "empty message"}); err != nil {
				return
			}
			continue
		}

		out, err := s.runner.Run(r.Context(), &engine.Input{
			Session:     session,
			UserMessage: req.Message,
		})
		if err != nil {
			log.Printf("[SERVER] Session %s turn failed: %v", session.ID, err)
			if err := conn.WriteJSON(Response{Error: "generation failed"}); err != nil {
				return
			}
			continue
		}

		if err := conn.WriteJSON(Response{
			Reply:     out.Text,
			TurnIndex: out.TurnIndex,
			Retrieved: out.Retrieved,
		}); err != nil {
			log.Printf("[SERVER] Session %s write error: %v", session.ID, err)
			return
		}
	}
}
