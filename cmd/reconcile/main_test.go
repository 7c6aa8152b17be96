package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/reconcile/internal/config"
	"github.com/vango-dev/reconcile/internal/fixture"
	"github.com/vango-dev/reconcile/internal/logging"
	"github.com/vango-dev/reconcile/pkg/host"
	"github.com/vango-dev/reconcile/pkg/host/remote"
	"github.com/vango-dev/reconcile/pkg/protocol"
)

func TestLoadConfigFlagsOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reconcile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\nserve:\n  port: 9000\n"), 0o644))

	cfg, err := loadConfig(&globalFlags{configPath: path, logLevel: "warn", logFormat: "json"})
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 9000, cfg.Serve.Port)

	_, err = loadConfig(&globalFlags{configPath: path, logLevel: "loud"})
	assert.Error(t, err)

	_, err = loadConfig(&globalFlags{configPath: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

const rotateScript = `
name: mount
tree:
  tag: ul
  children:
    - {tag: li, key: a, text: a}
    - {tag: li, key: b, text: b}
    - {tag: li, key: c, text: c}
---
name: rotate
tree:
  tag: ul
  children:
    - {tag: li, key: c, text: c}
    - {tag: li, key: a, text: a}
    - {tag: li, key: b, text: b}
---
name: duplicate
tree:
  tag: ul
  children:
    - {tag: li, key: d, text: d}
    - {tag: li, key: d, text: again}
`

func TestRunDiff(t *testing.T) {
	s, err := fixture.Parse(strings.NewReader(rotateScript))
	require.NoError(t, err)

	plain = true
	var out bytes.Buffer
	require.NoError(t, runDiff(&out, logging.NewNop(), s.Steps, diffOptions{showHTML: true, showOps: true}))

	lines := out.String()
	assert.Contains(t, lines, "1. mount: CreateElement=4")
	assert.Contains(t, lines, "2. rotate: Move=1")
	assert.Contains(t, lines, "<ul><li>c</li><li>a</li><li>b</li></ul>")
	assert.Contains(t, lines, "R001")
}

func testConfig() *config.Config {
	cfg := config.New()
	cfg.Serve.TickInterval = "1h"
	cfg.Serve.LoadDelay = "10ms"
	return cfg
}

func TestServeHealthzAndMetrics(t *testing.T) {
	s := newServer(testConfig(), logging.NewNop())
	ts := httptest.NewServer(s.routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// wsClient replays server frames into a memory tree.
type wsClient struct {
	t         *testing.T
	conn      *websocket.Conn
	container *host.Node
	replayer  *remote.Replayer
	seq       uint64
}

func dial(t *testing.T, url string) *wsClient {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http")+"/ws", nil)
	require.NoError(t, err)

	mem := host.NewMemory()
	c := &wsClient{t: t, conn: conn, container: mem.NewContainer("div")}
	c.replayer = remote.NewReplayer(mem, c.container, remote.OnEvent(c.sendEvent))
	return c
}

func (c *wsClient) read() *protocol.Frame {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, msg, err := c.conn.ReadMessage()
	require.NoError(c.t, err)
	f, err := protocol.DecodeFrame(msg)
	require.NoError(c.t, err)
	return f
}

// sync applies op frames up to and including the next final one.
func (c *wsClient) sync() {
	c.t.Helper()
	for {
		f := c.read()
		require.Equal(c.t, protocol.FrameOps, f.Type)
		require.NoError(c.t, c.replayer.ApplyFrame(f))
		if f.Flags.Has(protocol.FlagFinal) {
			return
		}
	}
}

func (c *wsClient) sendEvent(target uint32, event string, args ...any) {
	c.seq++
	payload := protocol.EncodeEvent(&protocol.Event{Seq: c.seq, Target: target, Name: event})
	err := c.conn.WriteMessage(websocket.BinaryMessage, protocol.NewFrame(protocol.FrameEvent, 0, payload).Encode())
	require.NoError(c.t, err)
}

func (c *wsClient) button(label string) *host.Node {
	var found *host.Node
	var walk func(n *host.Node)
	walk = func(n *host.Node) {
		if found != nil {
			return
		}
		if n.Tag == "button" && n.TextContent() == label {
			found = n
			return
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(c.container)
	require.NotNil(c.t, found, "button %q", label)
	return found
}

func TestServeSessionRoundTrip(t *testing.T) {
	s := newServer(testConfig(), logging.NewNop())
	ts := httptest.NewServer(s.routes())
	defer ts.Close()

	c := dial(t, ts.URL)
	defer c.conn.Close()

	hello := c.read()
	require.Equal(t, protocol.FrameHello, hello.Type)
	h, err := protocol.DecodeHello(hello.Payload)
	require.NoError(t, err)
	assert.Equal(t, remote.RootID, h.Root)

	c.sync()
	assert.Contains(t, c.container.InnerHTML(), "clicked 0 times")

	c.button("+1").Dispatch("click")
	c.sync()
	assert.Contains(t, c.container.InnerHTML(), "clicked 1 times")

	c.button("leaderboard").Dispatch("click")
	c.sync()
	html := c.container.InnerHTML()
	assert.Contains(t, html, "<li>ada</li>")
	assert.NotContains(t, html, "clicked 1 times")

	c.button("counter").Dispatch("click")
	c.sync()
	assert.Contains(t, c.container.InnerHTML(), "clicked 1 times")
}
