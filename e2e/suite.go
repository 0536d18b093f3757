package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"livehub/auth"
	"livehub/domain"
	"livehub/repositories"
	"livehub/runtime"
	"livehub/services"
	"livehub/ws"
)

// BaseHubSuite boots a complete hub in-process over a throwaway store and
// drives it the way real clients would: REST for lifecycle, WebSocket for
// the live attachment.
type BaseHubSuite struct {
	suite.Suite
	Config  Config
	baseURL string

	db    *badger.DB
	users repositories.IUserRepository
	srv   *httptest.Server
}

// SetupSuite loads the environment configuration and starts the hub
func (s *BaseHubSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)

	log := slog.Default()

	s.db, err = badger.Open(badger.DefaultOptions(s.T().TempDir()).WithLoggingLevel(badger.ERROR))
	s.Require().NoError(err)

	s.users = repositories.NewUserRepository(s.db)
	streams := repositories.NewStreamRepository(s.db, log)
	messages := repositories.NewMessageRepository(s.db, log, nil)
	registry := runtime.NewRegistry()
	broadcaster := runtime.NewBroadcaster(registry, log)
	lifecycle := services.NewLifecycleService(streams, registry, broadcaster, log)
	history := services.NewHistoryService(messages)
	directory := auth.NewDirectory(s.users, s.Config.AuthSecret, log)

	server := ws.NewServer(ws.Config{
		SessionBufferSize: 32,
		WriteTimeout:      2 * time.Second,
		IdleTimeout:       0,
		MaxContentLength:  500,
	}, registry, broadcaster, lifecycle, history, directory, messages, log)

	mux := http.NewServeMux()
	server.SetupRoutes(mux)
	s.srv = httptest.NewServer(mux)
	s.baseURL = s.srv.URL
}

func (s *BaseHubSuite) TearDownSuite() {
	if s.srv != nil {
		s.srv.Close()
	}
	if s.db != nil {
		s.Require().NoError(s.db.Close())
	}
}

// Header prints a colorized banner for a scenario step in logs
func (s *BaseHubSuite) Header(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// SeedAccount registers an account and returns a signed token for it
func (s *BaseHubSuite) SeedAccount(id, username string) string {
	s.Require().NoError(s.users.SaveUser(domain.User{
		ID:        id,
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}))

	token, err := auth.GenerateToken([]byte(s.Config.AuthSecret), id, time.Hour)
	s.Require().NoError(err)
	return token
}

// DoJSON performs one REST call with logging and optional JSON debugging
func (s *BaseHubSuite) DoJSON(method, path, token string, body any) (int, []byte) {
	start := time.Now()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequest(method, s.baseURL+path, reader)
	s.Require().NoError(err)
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(httpReq)
	s.Require().NoError(err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	logBuilder := strings.Builder{}
	fmt.Fprintf(&logBuilder, "HTTP %s %s [%d] in %v", method, path, resp.StatusCode, time.Since(start))
	if s.Config.DebugJSON {
		fmt.Fprintln(&logBuilder, "\nRESPONSE:")
		fmt.Fprintln(&logBuilder, string(raw))
	}
	s.T().Log(logBuilder.String())

	return resp.StatusCode, raw
}

// Viewer is one attached spectator connection driven by the suite.
type Viewer struct {
	Name string
	conn *websocket.Conn
}

// Watch attaches a viewer to a channel, with an optional identity token
func (s *BaseHubSuite) Watch(name, channelID, token string) *Viewer {
	s.Header(name)

	url := "ws" + strings.TrimPrefix(s.baseURL, "http") + "/ws/live/" + channelID
	if token != "" {
		url += "?token=" + token
	}

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err, "Failed to attach viewer "+name)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	return &Viewer{Name: name, conn: conn}
}

// TryWatch attempts an attachment expected to be refused and returns the
// HTTP status of the failed handshake
func (s *BaseHubSuite) TryWatch(channelID, token string) int {
	url := "ws" + strings.TrimPrefix(s.baseURL, "http") + "/ws/live/" + channelID
	if token != "" {
		url += "?token=" + token
	}

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().ErrorIs(err, websocket.ErrBadHandshake)
	s.Require().Nil(conn)
	s.Require().NotNil(resp)
	defer resp.Body.Close()
	return resp.StatusCode
}

// NextFrame blocks for the viewer's next frame
func (s *BaseHubSuite) NextFrame(v *Viewer) map[string]any {
	s.Require().NoError(v.conn.SetReadDeadline(time.Now().Add(3 * time.Second)))
	_, raw, err := v.conn.ReadMessage()
	s.Require().NoError(err, "Viewer "+v.Name+" expected a frame")

	if s.Config.DebugJSON {
		s.T().Logf("FRAME -> %s: %s", v.Name, string(raw))
	}

	var frame map[string]any
	s.Require().NoError(json.Unmarshal(raw, &frame))
	return frame
}

// Send pushes one inbound frame from the viewer to the hub
func (s *BaseHubSuite) Send(v *Viewer, frame map[string]any) {
	raw, err := json.Marshal(frame)
	s.Require().NoError(err)
	s.Require().NoError(v.conn.WriteMessage(websocket.TextMessage, raw))
}

func (v *Viewer) Close() {
	_ = v.conn.Close()
}
