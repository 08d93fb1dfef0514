// internal/handlers/handlers_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/gameroom/internal/auth"
	"github.com/jason-s-yu/gameroom/internal/game"
	"github.com/jason-s-yu/gameroom/internal/lobby"
	"github.com/jason-s-yu/gameroom/internal/memstore"
	"github.com/jason-s-yu/gameroom/internal/models"
	"github.com/jason-s-yu/gameroom/internal/relay"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	srv      *httptest.Server
	store    *memstore.Store
	sessions *auth.Sessions
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := memstore.New()
	sessions, err := auth.NewSessions(time.Hour)
	require.NoError(t, err)
	engines := game.NewEngines(nil)
	rel := relay.New(store, engines, logger, relay.Options{})
	lob := lobby.New(store, engines, rel, logger)

	srv := httptest.NewServer(NewServer(store, sessions, lob, rel, logger).Routes())
	t.Cleanup(func() {
		srv.Close()
		rel.Close()
	})
	return &testEnv{srv: srv, store: store, sessions: sessions}
}

// do sends body with cookie and returns the response plus any session
// cookie the server set.
func (e *testEnv) do(t *testing.T, method, path, cookie string, body any) (*http.Response, string) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	require.NoError(t, err)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: cookie})
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	for _, c := range resp.Cookies() {
		if c.Name == auth.CookieName {
			cookie = c.Value
		}
	}
	return resp, cookie
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := env.do(t, "GET", "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[healthResponse](t, resp)
	assert.Equal(t, "ok", body.Status)
	assert.WithinDuration(t, time.Now(), body.Timestamp, time.Minute)
}

func TestUserAccounts(t *testing.T) {
	env := newTestEnv(t)
	creds := map[string]string{"email": "ada@example.com", "password": "hunter2", "username": "ada"}

	resp, _ := env.do(t, "POST", "/user/create", "", creds)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[models.User](t, resp)
	assert.Empty(t, created.Password, "hash is never returned")

	resp, _ = env.do(t, "POST", "/user/create", "", creds)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, cookie := env.do(t, "POST", "/user/login", "", creds)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := decode[loginResponse](t, resp).Token
	assert.Equal(t, token, cookie)
	id, err := env.sessions.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, id)

	resp, _ = env.do(t, "POST", "/user/login", "", map[string]string{"email": "ada@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestClaimEphemeralUser(t *testing.T) {
	env := newTestEnv(t)

	resp, cookie := env.do(t, "POST", "/room/create", "", map[string]string{"game": "tic_tac_toe"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, cookie, "an ephemeral session was issued")

	claim := map[string]string{"email": "guest@example.com", "password": "pw", "username": "grace"}
	resp, _ = env.do(t, "POST", "/user/claim", cookie, claim)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	u := decode[models.User](t, resp)
	assert.False(t, u.IsEphemeral)
	assert.Equal(t, "grace", u.Username)

	resp, _ = env.do(t, "POST", "/user/claim", cookie, claim)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.do(t, "POST", "/user/claim", "", claim)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRoomLifecycleEndpoints(t *testing.T) {
	env := newTestEnv(t)

	resp, hostCookie := env.do(t, "POST", "/room/create", "", map[string]string{"game": "connect_four"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	room := decode[models.Room](t, resp)
	assert.Equal(t, models.StatusWaiting, room.Status)
	assert.Equal(t, game.ConnectFourEngine{}.New(nil), room.State)
	base := "/room/" + room.ID.String()

	resp, _ = env.do(t, "POST", "/room/create", hostCookie, map[string]string{"game": "chess"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.do(t, "POST", base+"/join", hostCookie, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "host cannot be their own guest")

	resp, guestCookie := env.do(t, "POST", base+"/join", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	joined := decode[models.Room](t, resp)
	assert.Equal(t, models.StatusPlaying, joined.Status)
	require.NotNil(t, joined.GuestID)

	resp, strangerCookie := env.do(t, "POST", base+"/join", "", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = env.do(t, "GET", base, strangerCookie, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = env.do(t, "GET", base, "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.do(t, "GET", base+"/messages", guestCookie, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]models.ChatMessage](t, resp))

	resp, _ = env.do(t, "POST", base+"/leave", guestCookie, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	left := decode[struct {
		Deleted bool         `json:"deleted"`
		Room    *models.Room `json:"room"`
	}](t, resp)
	assert.False(t, left.Deleted)
	assert.Equal(t, models.StatusWaiting, left.Room.Status)
	assert.Nil(t, left.Room.GuestID)

	resp, _ = env.do(t, "POST", base+"/leave", hostCookie, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[struct {
		Deleted bool `json:"deleted"`
	}](t, resp).Deleted)

	resp, _ = env.do(t, "GET", base, hostCookie, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.do(t, "GET", "/room/not-a-uuid", hostCookie, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func (e *testEnv) dial(t *testing.T, ctx context.Context, cookie string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/ws"
	header := http.Header{}
	if cookie != "" {
		header.Set("Cookie", auth.CookieName+"="+cookie)
	}
	c, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		Subprotocols: []string{Subprotocol},
		HTTPHeader:   header,
	})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close(websocket.StatusNormalClosure, "") })
	return c
}

func send(t *testing.T, ctx context.Context, c *websocket.Conn, frame map[string]any) {
	t.Helper()
	data, err := json.Marshal(frame)
	require.NoError(t, err)
	require.NoError(t, c.Write(ctx, websocket.MessageText, data))
}

// readEvent returns the next event of type typ, skipping others.
func readEvent(t *testing.T, ctx context.Context, c *websocket.Conn, typ string) map[string]any {
	t.Helper()
	for {
		_, data, err := c.Read(ctx)
		require.NoError(t, err)
		var ev map[string]any
		require.NoError(t, json.Unmarshal(data, &ev))
		if ev["type"] == typ {
			return ev
		}
	}
}

func TestWebSocketRelay(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, hostCookie := env.do(t, "POST", "/room/create", "", map[string]string{"game": "tic_tac_toe"})
	room := decode[models.Room](t, resp)
	resp, guestCookie := env.do(t, "POST", "/room/"+room.ID.String()+"/join", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	host := env.dial(t, ctx, hostCookie)
	guest := env.dial(t, ctx, guestCookie)
	roomID := room.ID.String()

	send(t, ctx, host, map[string]any{"type": "join-room", "roomId": roomID})
	state := readEvent(t, ctx, host, relay.EventRoomState)
	assert.NotNil(t, state["gameState"])

	send(t, ctx, guest, map[string]any{"type": "join-room", "roomId": roomID})
	readEvent(t, ctx, guest, relay.EventRoomState)
	readEvent(t, ctx, host, relay.EventPlayerJoined)

	send(t, ctx, host, map[string]any{"type": "game-move", "roomId": roomID, "move": map[string]any{"kind": "place", "index": 4}})
	for _, c := range []*websocket.Conn{host, guest} {
		ev := readEvent(t, ctx, c, relay.EventGameUpdated)
		board := ev["gameState"].(map[string]any)["board"].([]any)
		assert.Equal(t, "X", board[4])
	}

	// Out of turn: only the sender hears about it.
	send(t, ctx, host, map[string]any{"type": "game-move", "requestId": "r2", "roomId": roomID, "move": map[string]any{"kind": "place", "index": 0}})
	errEv := readEvent(t, ctx, host, relay.EventError)
	assert.Equal(t, relay.CodeIllegalMove, errEv["code"])
	assert.Equal(t, "r2", errEv["requestId"])

	send(t, ctx, guest, map[string]any{"type": "send-message", "roomId": roomID, "message": "nice", "username": "grace"})
	for _, c := range []*websocket.Conn{host, guest} {
		ev := readEvent(t, ctx, c, relay.EventNewMessage)
		assert.Equal(t, "nice", ev["message"])
		assert.Equal(t, "grace", ev["username"])
	}

	send(t, ctx, guest, map[string]any{"type": "ping", "requestId": "p1"})
	assert.Equal(t, "p1", readEvent(t, ctx, guest, relay.EventPong)["requestId"])

	send(t, ctx, guest, map[string]any{"type": "join-room", "roomId": "nope", "requestId": "r3"})
	bad := readEvent(t, ctx, guest, relay.EventError)
	assert.Equal(t, relay.CodeBadRequest, bad["code"])

	require.NoError(t, guest.Close(websocket.StatusNormalClosure, "bye"))
	readEvent(t, ctx, host, relay.EventPlayerLeft)

	history, err := env.store.ListChatMessages(ctx, room.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestWebSocketRequiresSubprotocol(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/ws"
	c, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer c.CloseNow()

	_, _, err = c.Read(ctx)
	assert.Equal(t, BadSubprotocolError, websocket.CloseStatus(err))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(models.ErrNotFound))
	assert.Equal(t, http.StatusConflict, statusFor(models.ErrRoomFull))
	assert.Equal(t, http.StatusForbidden, statusFor(lobby.ErrOwnRoom))
	assert.Equal(t, http.StatusUnauthorized, statusFor(auth.ErrInvalidToken))
	assert.Equal(t, http.StatusInternalServerError, statusFor(io.ErrUnexpectedEOF))
}
