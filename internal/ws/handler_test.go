package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/time/rate"

	"github.com/DoyleJ11/scoreboard-backend/internal/codec"
	"github.com/DoyleJ11/scoreboard-backend/internal/engine"
	"github.com/DoyleJ11/scoreboard-backend/internal/hub"
	"github.com/DoyleJ11/scoreboard-backend/internal/scoreboard"
	wire "github.com/DoyleJ11/scoreboard-backend/pkg/types"
)

type testServer struct {
	url string
	sb  *scoreboard.Scoreboard
	hub *hub.Hub
}

func newTestServer(t *testing.T, opts Options) testServer {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	log := zaptest.NewLogger(t)

	h := hub.NewHub(ctx, log, nil)
	sb := scoreboard.New(ctx, engine.NewState(), scoreboard.Config{
		Clock:      clockwork.NewFakeClock(),
		Logger:     log,
		Publishers: []scoreboard.Publisher{h},
	})
	opts.Logger = log
	srv := httptest.NewServer(Handler(sb, h, opts))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return testServer{url: "ws" + strings.TrimPrefix(srv.URL, "http"), sb: sb, hub: h}
}

type stateMsg struct {
	Type    string `json:"type"`
	Version int    `json:"version"`
	State   struct {
		TeamA struct {
			Name  string `json:"name"`
			Score int    `json:"score"`
		} `json:"teamA"`
		TeamB struct {
			Score int `json:"score"`
		} `json:"teamB"`
		IsRunning bool `json:"isRunning"`
		JumpBall  bool `json:"jumpBall"`
	} `json:"state"`
}

func dial(t *testing.T, url string, opts *websocket.DialOptions) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, url, opts)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func readState(t *testing.T, conn *websocket.Conn) stateMsg {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	typ, data, err := conn.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, websocket.MessageText, typ)

	var msg stateMsg
	require.NoError(t, json.Unmarshal(data, &msg))
	require.Equal(t, wire.EventStateUpdate, msg.Type)
	return msg
}

func send(t *testing.T, conn *websocket.Conn, payload string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(payload)))
}

func TestConnectReceivesSnapshot(t *testing.T) {
	ts := newTestServer(t, Options{})
	conn := dial(t, ts.url, nil)

	first := readState(t, conn)
	assert.Equal(t, 0, first.Version)
	assert.Equal(t, "HOME", first.State.TeamA.Name)
}

func TestActionIsBroadcastToEveryClient(t *testing.T) {
	ts := newTestServer(t, Options{})
	control := dial(t, ts.url, nil)
	display := dial(t, ts.url, nil)
	_ = readState(t, control)
	_ = readState(t, display)

	send(t, control, `{"kind":"score","team":"teamA","value":3}`)

	for _, c := range []*websocket.Conn{control, display} {
		msg := readState(t, c)
		assert.Equal(t, 1, msg.Version)
		assert.Equal(t, 3, msg.State.TeamA.Score)
	}
}

func TestLegacyTypeKeyAndBadMessages(t *testing.T) {
	ts := newTestServer(t, Options{})
	conn := dial(t, ts.url, nil)
	_ = readState(t, conn)

	send(t, conn, `not json`)
	send(t, conn, `{"kind":"slamDunk","team":"teamA","value":2}`)
	send(t, conn, `{"kind":"score","value":2}`)
	send(t, conn, `{"type":"jumpBall"}`)

	msg := readState(t, conn)
	assert.Equal(t, 1, msg.Version, "only the valid action produced a frame")
	assert.True(t, msg.State.JumpBall)
}

func TestCBORSubprotocol(t *testing.T) {
	ts := newTestServer(t, Options{})
	conn := dial(t, ts.url, &websocket.DialOptions{Subprotocols: []string{wire.SubprotocolCBOR}})
	require.Equal(t, wire.SubprotocolCBOR, conn.Subprotocol())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	typ, data, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, websocket.MessageBinary, typ)

	var first map[string]any
	require.NoError(t, codec.CBOR.Unmarshal(data, &first))
	assert.Equal(t, wire.EventStateUpdate, first["type"])

	payload, err := codec.CBOR.Marshal(map[string]any{"kind": "score", "team": "teamB", "value": 2})
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, websocket.MessageBinary, payload))

	_, data, err = conn.Read(ctx)
	require.NoError(t, err)
	var next struct {
		Version int `json:"version"`
		State   struct {
			TeamB struct {
				Score int `json:"score"`
			} `json:"teamB"`
		} `json:"state"`
	}
	require.NoError(t, codec.CBOR.Unmarshal(data, &next))
	assert.Equal(t, 1, next.Version)
	assert.Equal(t, 2, next.State.TeamB.Score)
}

func TestOriginFiltering(t *testing.T) {
	ts := newTestServer(t, Options{OriginPatterns: []string{"localhost:5173"}})

	ok := dial(t, ts.url, &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": []string{"http://localhost:5173"}},
	})
	_ = readState(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, resp, err := websocket.Dial(ctx, ts.url, &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": []string{"http://evil.example.com"}},
	})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRateLimitDropsBurst(t *testing.T) {
	ts := newTestServer(t, Options{ActionRate: rate.Every(time.Hour), ActionBurst: 2})
	conn := dial(t, ts.url, nil)
	_ = readState(t, conn)

	for i := 0; i < 5; i++ {
		send(t, conn, `{"kind":"score","team":"teamB","value":1}`)
	}
	_ = readState(t, conn)
	second := readState(t, conn)
	assert.Equal(t, 2, second.State.TeamB.Score)

	f, err := ts.sb.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, f.Snapshot.TeamB.Score)
}

func TestDefaultOptionsApplyEveryAction(t *testing.T) {
	ts := newTestServer(t, Options{})
	conn := dial(t, ts.url, nil)
	_ = readState(t, conn)

	for i := 0; i < 60; i++ {
		send(t, conn, `{"kind":"score","team":"teamB","value":1}`)
	}

	require.Eventually(t, func() bool {
		f, err := ts.sb.Current(context.Background())
		return err == nil && f.Snapshot.TeamB.Score == 60
	}, 2*time.Second, 10*time.Millisecond)
}

func TestDisconnectLeavesHub(t *testing.T) {
	ts := newTestServer(t, Options{})
	conn := dial(t, ts.url, nil)
	_ = readState(t, conn)
	conn.Close(websocket.StatusNormalClosure, "done")

	require.Eventually(t, func() bool {
		s, ok := ts.hub.Stats(context.Background())
		return ok && s.Clients == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHubShutdownClosesConnection(t *testing.T) {
	ts := newTestServer(t, Options{})
	conn := dial(t, ts.url, nil)
	_ = readState(t, conn)

	ts.hub.Inbox() <- hub.ShutdownHub{}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, _, err := conn.Read(ctx)
	require.Error(t, err)
	assert.Equal(t, websocket.StatusGoingAway, websocket.CloseStatus(err))
}
