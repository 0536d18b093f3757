package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"livehub/auth"
	"livehub/contract"
	"livehub/domain"
	"livehub/domain/event"
	apperrors "livehub/errors"
	"livehub/repositories"
	"livehub/runtime/workers"
	"livehub/services"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
)

var validate = validator.New()

type Config struct {
	SessionBufferSize int
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxContentLength  int
	AllowedOrigins    []string
}

// Server is the transport edge: the live WebSocket endpoint plus the
// minimal REST hooks around stream lifecycle and history.
type Server struct {
	cfg         Config
	registry    contract.IRegistry
	broadcaster contract.IBroadcaster
	lifecycle   services.ILifecycleService
	history     services.IHistoryService
	directory   contract.Directory
	messages    repositories.IMessageRepository
	log         *slog.Logger

	allowedOrigins map[string]bool
	allowedHosts   map[string]bool

	stats *workers.StatsWorker
}

func NewServer(
	cfg Config,
	registry contract.IRegistry,
	broadcaster contract.IBroadcaster,
	lifecycle services.ILifecycleService,
	history services.IHistoryService,
	directory contract.Directory,
	messages repositories.IMessageRepository,
	log *slog.Logger,
) *Server {
	s := &Server{
		cfg:            cfg,
		registry:       registry,
		broadcaster:    broadcaster,
		lifecycle:      lifecycle,
		history:        history,
		directory:      directory,
		messages:       messages,
		log:            log,
		allowedOrigins: make(map[string]bool),
		allowedHosts:   make(map[string]bool),
	}

	for _, origin := range cfg.AllowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		s.allowedOrigins[trimmed] = true
		if parsed, err := url.Parse(trimmed); err == nil && parsed.Host != "" {
			s.allowedHosts[parsed.Host] = true
		}
	}

	return s
}

// SetStatsWorker wires the sampler behind the stats endpoint.
// Until one is wired the endpoint answers 503.
func (s *Server) SetStatsWorker(stats *workers.StatsWorker) {
	s.stats = stats
}

func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws/live/{channel}", s.handleLive)
	mux.HandleFunc("POST /api/streams", auth.RequireIdentity(s.directory, s.handleCreateStream))
	mux.HandleFunc("POST /api/streams/{id}/end", auth.RequireIdentity(s.directory, s.handleEndStream))
	mux.HandleFunc("GET /api/streams", s.handleListStreams)
	mux.HandleFunc("GET /api/streams/{id}", s.handleStreamStatus)
	mux.HandleFunc("GET /api/channels/{channel}/messages", s.handleHistory)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/health", s.handleHealth)
}

// handleLive upgrades a viewer onto a channel. Everything that can fail
// is checked before the upgrade; afterwards the connection only speaks
// the frame protocol.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	channelID := r.PathValue("channel")

	stream, err := s.lifecycle.StreamByChannel(channelID)
	if err != nil {
		respondError(w, err)
		return
	}
	if !stream.Live {
		respondError(w, apperrors.ErrStreamEnded)
		return
	}

	// An absent token joins as a guest; an invalid one is rejected.
	identity := domain.NewGuest()
	if token := auth.TokenFromRequest(r); token != "" {
		identity, err = s.directory.Authenticate(r.Context(), token)
		if err != nil {
			respondError(w, err)
			return
		}
	}

	upgrader := websocket.Upgrader{CheckOrigin: s.checkOrigin}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("WebSocket upgrade failed", "channel", channelID, "error", err)
		return
	}

	session := newSession(s, conn, channelID, identity)
	go session.writePump()

	// Join first so the announcement reaches the joining viewer as well
	count := s.registry.Join(channelID, session)
	s.broadcaster.Broadcast(r.Context(), event.ViewerJoined{
		ChannelID:   channelID,
		Username:    identity.Username,
		ViewerCount: count,
	})
	if err := s.lifecycle.SyncViewerCount(channelID); err != nil {
		s.log.Debug("Viewer count sync failed", "channel", channelID, "error", err)
	}
	s.log.Info("Viewer joined", "channel", channelID, "username", identity.Username, "viewers", count)

	session.run(r.Context())
}

type createStreamRequest struct {
	Title       string `json:"title" validate:"required,max=140"`
	Description string `json:"description" validate:"max=2000"`
}

type streamResponse struct {
	ID          string `json:"id"`
	ChannelID   string `json:"channel_id"`
	HostID      string `json:"host_id"`
	HostName    string `json:"host_name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Live        bool   `json:"is_live"`
	ViewerCount int    `json:"viewer_count"`
	CreatedAt   string `json:"created_at"`
}

func toStreamResponse(stream domain.Stream) streamResponse {
	return streamResponse{
		ID:          stream.ID,
		ChannelID:   stream.ChannelID,
		HostID:      stream.HostID,
		HostName:    stream.HostName,
		Title:       stream.Title,
		Description: stream.Description,
		Live:        stream.Live,
		ViewerCount: stream.ViewerCount,
		CreatedAt:   stream.CreatedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleCreateStream(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, apperrors.ErrUnauthenticated)
		return
	}

	var payload createStreamRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "malformed body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	stream, err := s.lifecycle.CreateStream(identity, payload.Title, payload.Description)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toStreamResponse(stream))
}

func (s *Server) handleEndStream(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, apperrors.ErrUnauthenticated)
		return
	}

	if err := s.lifecycle.EndStream(r.Context(), r.PathValue("id"), identity); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListStreams(w http.ResponseWriter, r *http.Request) {
	streams, err := s.lifecycle.ListLive()
	if err != nil {
		respondError(w, err)
		return
	}
	responses := make([]streamResponse, 0, len(streams))
	for _, stream := range streams {
		responses = append(responses, toStreamResponse(stream))
	}
	respondJSON(w, http.StatusOK, responses)
}

func (s *Server) handleStreamStatus(w http.ResponseWriter, r *http.Request) {
	stream, err := s.lifecycle.StreamByID(r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toStreamResponse(stream))
}

type messageResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

type historyResponse struct {
	Messages   []messageResponse `json:"messages"`
	NextCursor *string           `json:"next_cursor,omitempty"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	var cursor *string
	if raw := r.URL.Query().Get("cursor"); raw != "" {
		cursor = &raw
	}

	messages, next, err := s.history.Recent(r.PathValue("channel"), limit, cursor)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, historyResponse{
		Messages: lo.Map(messages, func(m domain.ChatMessage, _ int) messageResponse {
			return messageResponse{
				ID:        m.ID.String(),
				UserID:    m.SenderID,
				Username:  m.SenderName,
				Content:   m.Content,
				CreatedAt: m.CreatedAt.Format(time.RFC3339),
			}
		}),
		NextCursor: next,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		http.Error(w, "stats not available", http.StatusServiceUnavailable)
		return
	}
	respondJSON(w, http.StatusOK, s.stats.Snapshot())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, err error) {
	respondJSON(w, apperrors.MapToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	if len(s.allowedOrigins) > 0 {
		if s.allowedOrigins[origin] {
			return true
		}
		if parsed, err := url.Parse(origin); err == nil && parsed.Host != "" {
			return s.allowedHosts[parsed.Host]
		}
		return false
	}

	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}

	host := parsed.Host
	if host == "" {
		return false
	}

	if host == r.Host {
		return true
	}

	if strings.HasPrefix(host, "localhost:") || host == "localhost" {
		return true
	}
	if strings.HasPrefix(host, "127.0.0.1:") || host == "127.0.0.1" {
		return true
	}
	if strings.HasPrefix(host, "[::1]:") || host == "::1" {
		return true
	}

	return false
}
