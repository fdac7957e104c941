package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	ws "nhooyr.io/websocket"

	"github.com/friendsincode/heimdall_stage/internal/config"
	"github.com/friendsincode/heimdall_stage/internal/logbuffer"
	"github.com/friendsincode/heimdall_stage/internal/models"
	"github.com/friendsincode/heimdall_stage/internal/store"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	cfg := &config.Config{
		Environment:  "test",
		StageName:    "Main Stage",
		MetricsBind:  "127.0.0.1:0",
		StoreBackend: config.StoreMemory,
		EventBridge:  config.BridgeNone,
	}

	srv, err := New(cfg, logbuffer.New(100), zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { srv.Close() })

	srv.Store().(*store.MemoryStore).Seed([]models.Act{
		{
			ActName:        "Opener",
			ScheduledStart: models.Clock{Hour: 19, Minute: 0},
			ScheduledEnd:   models.Clock{Hour: 19, Minute: 30},
		},
		{
			ActName:        "Headliner",
			ScheduledStart: models.Clock{Hour: 19, Minute: 30},
			ScheduledEnd:   models.Clock{Hour: 20, Minute: 30},
		},
	})

	ts := httptest.NewServer(srv.HTTPServer().Handler)
	t.Cleanup(ts.Close)
	return srv, ts
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `"status":"ok"`) {
		t.Fatalf("body = %s", body)
	}
}

func TestSecurityHeaders(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("get board: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("X-Content-Type-Options = %q", got)
	}
	if got := resp.Header.Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("X-Frame-Options = %q", got)
	}
	if got := resp.Header.Get("Strict-Transport-Security"); got != "" {
		t.Fatalf("HSTS advertised over plain HTTP: %q", got)
	}
}

// readText reads frames until one of the given kind arrives, guarding
// against interleaved pushes.
func readText(ctx context.Context, t *testing.T, conn *ws.Conn, match func(string) bool) string {
	t.Helper()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("websocket read: %v", err)
		}
		if match(string(data)) {
			return string(data)
		}
	}
}

func TestWebSocketLifecycle(t *testing.T) {
	srv, ts := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := ws.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(ws.StatusNormalClosure, "done")

	// Joining clients get the schedule and brightness immediately.
	initial := readText(ctx, t, conn, func(s string) bool { return strings.Contains(s, "Opener") })
	if strings.Contains(initial, `data-action="start"`) {
		t.Fatal("viewer socket received editor markup")
	}
	readText(ctx, t, conn, func(s string) bool { return strings.Contains(s, `"type":"brightness"`) })

	// A console action triggers a fresh schedule push.
	resp, err := http.Post(ts.URL+"/acts/Opener/start", "", nil)
	if err != nil {
		t.Fatalf("post start: %v", err)
	}
	resp.Body.Close()

	pushed := readText(ctx, t, conn, func(s string) bool { return strings.Contains(s, "act-live") })
	if !strings.Contains(pushed, "Opener") {
		t.Fatalf("schedule push missing act:\n%s", pushed)
	}

	if srv.hub.ConnectionCount() != 1 {
		t.Fatalf("connection count = %d", srv.hub.ConnectionCount())
	}
}

func TestEditorSocketGetsControls(t *testing.T) {
	_, ts := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/editor"
	conn, _, err := ws.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(ws.StatusNormalClosure, "done")

	initial := readText(ctx, t, conn, func(s string) bool { return strings.Contains(s, "Opener") })
	if !strings.Contains(initial, `data-action="start"`) {
		t.Fatal("editor socket missing controls")
	}
}

func TestBrightnessReachesAllClients(t *testing.T) {
	_, ts := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := ws.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(ws.StatusNormalClosure, "done")

	// Drain the join pushes first.
	readText(ctx, t, conn, func(s string) bool { return strings.Contains(s, `"type":"brightness"`) })

	resp, err := http.Post(ts.URL+"/brightness", "application/x-www-form-urlencoded",
		strings.NewReader("value=73"))
	if err != nil {
		t.Fatalf("post brightness: %v", err)
	}
	resp.Body.Close()

	pushed := readText(ctx, t, conn, func(s string) bool { return strings.Contains(s, `"value":73`) })
	if !strings.Contains(pushed, `"type":"brightness"`) {
		t.Fatalf("push = %s", pushed)
	}
}
