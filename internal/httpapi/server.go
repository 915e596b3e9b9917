package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/lcampanelli/relayvox/internal/auth"
	"github.com/lcampanelli/relayvox/internal/config"
	"github.com/lcampanelli/relayvox/internal/exchange"
	"github.com/lcampanelli/relayvox/internal/observability"
	"github.com/lcampanelli/relayvox/internal/session"
)

// maxAudioBytes bounds one submitted clip on both transports.
const maxAudioBytes = 10 << 20

type Server struct {
	cfg      config.Config
	verifier *auth.Verifier
	sessions *session.Manager
	engine   *exchange.Engine
	metrics  *observability.Metrics
	upgrader websocket.Upgrader
}

func New(cfg config.Config, verifier *auth.Verifier, sessions *session.Manager, engine *exchange.Engine, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:      cfg,
		verifier: verifier,
		sessions: sessions,
		engine:   engine,
		metrics:  metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Browser connections must come from the same origin unless the
				// deployment explicitly opts out. Auth alone doesn't stop another
				// site from driving the user's mic through their browser.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})
	r.Get("/v1/perf/latency", s.handlePerfLatency)

	r.Post("/voice", s.handleVoice)
	r.Get("/ws", s.handleWS)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"message": "voice relay gateway is running",
	})
}

func (s *Server) handlePerfLatency(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.metrics.Stages.Snapshot())
}

type voiceResponse struct {
	Transcript       string `json:"transcript"`
	ReplyText        string `json:"replyText"`
	ReplyAudioBase64 string `json:"replyAudioBase64"`
}

// handleVoice runs one request/response exchange. Authentication happens
// before the body is read; nothing is processed for an unauthorized caller.
func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	if !s.verifier.Authorized(r.Header.Get("X-App-Token")) {
		s.metrics.SessionEvents.WithLabelValues("http_unauthorized").Inc()
		respondError(w, http.StatusUnauthorized, "unauthorized", "invalid app token")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAudioBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, http.StatusBadRequest, "payload_too_large", "audio payload exceeds the size limit")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	if len(data) == 0 {
		respondError(w, http.StatusBadRequest, "empty_payload", "no audio data received")
		return
	}

	res, err := s.engine.Run(r.Context(), "", "http", exchange.Payload{
		Data:        data,
		ContentType: r.Header.Get("Content-Type"),
	})
	if err != nil {
		if errors.Is(err, exchange.ErrEmptyPayload) {
			respondError(w, http.StatusBadRequest, "empty_payload", "no audio data received")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, voiceResponse{
		Transcript:       res.Transcript,
		ReplyText:        res.ReplyText,
		ReplyAudioBase64: base64.StdEncoding.EncodeToString(res.ReplyAudio),
	})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
