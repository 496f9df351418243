package preview

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/emberglow/internal/pixel"
)

func dial(t *testing.T, ts *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + path
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func readJSON(t *testing.T, c *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, b, err := c.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, v))
}

func TestFramesStream(t *testing.T) {
	s := New(2, "sim")
	s.throttle = 0
	ts := httptest.NewServer(s.Routes())
	defer ts.Close()

	c := dial(t, ts, "/ws")
	var hello struct {
		Count  int    `json:"count"`
		Shape  string `json:"shape"`
		Driver string `json:"driver"`
	}
	readJSON(t, c, &hello)
	assert.Equal(t, 2, hello.Count)
	assert.Equal(t, "ring", hello.Shape)
	assert.Equal(t, "sim", hello.Driver)

	require.NoError(t, s.Write([]pixel.Color{pixel.Red, {R: 1, G: 2, B: 3}}))
	var frame struct {
		FrameID uint64 `json:"frame_id"`
		RGB     []byte `json:"rgb"`
	}
	readJSON(t, c, &frame)
	assert.EqualValues(t, 1, frame.FrameID)
	assert.Equal(t, []byte{255, 0, 0, 1, 2, 3}, frame.RGB)
}

func TestThrottleDropsFastFrames(t *testing.T) {
	s := New(1, "sim")
	s.throttle = time.Hour
	require.NoError(t, s.Write([]pixel.Color{pixel.Red}))
	require.NoError(t, s.Write([]pixel.Color{pixel.Blue}))
	assert.EqualValues(t, 1, s.frameID)
}

func TestDiagStream(t *testing.T) {
	s := New(1, "sim")
	ts := httptest.NewServer(s.Routes())
	defer ts.Close()

	c := dial(t, ts, "/diag")
	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return len(s.diagClients) == 1
	}, 2*time.Second, 10*time.Millisecond)

	s.Report(Diagnostic{Severity: Warn, Code: "SENSOR.DISTANCE", Summary: "no echo"})
	var d Diagnostic
	readJSON(t, c, &d)
	assert.Equal(t, Warn, d.Severity)
	assert.Equal(t, "SENSOR.DISTANCE", d.Code)
}

func TestHealth(t *testing.T) {
	s := New(16, "ws2812")
	ts := httptest.NewServer(s.Routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.EqualValues(t, 16, body["count"])
	assert.Equal(t, "ws2812", body["driver"])
}

func TestCloseDisconnects(t *testing.T) {
	s := New(1, "sim")
	ts := httptest.NewServer(s.Routes())
	defer ts.Close()

	c := dial(t, ts, "/ws")
	var hello map[string]any
	readJSON(t, c, &hello)

	require.NoError(t, s.Close())
	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := c.ReadMessage()
	assert.Error(t, err)
}

func TestStalledClientDoesNotBlockWrite(t *testing.T) {
	s := New(1, "sim")
	s.throttle = 0

	// No writer goroutine: the queue fills and is never drained.
	stalled := newClient(nil)
	s.mu.Lock()
	s.clients[stalled] = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10*sendQueue; i++ {
			_ = s.Write([]pixel.Color{pixel.Red})
		}
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Write blocked on a stalled client")
	}
	assert.Len(t, stalled.send, sendQueue)
	assert.EqualValues(t, 10*sendQueue, s.frameID)
}
