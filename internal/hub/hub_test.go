package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

// fakeConn records everything sent to it and can be told to fail.
type fakeConn struct {
	id   string
	mu   sync.Mutex
	sent []string
	fail bool
}

func newFakeConn(id string) *fakeConn { return &fakeConn{id: id} }

func (f *fakeConn) ID() string { return f.id }

func (f *fakeConn) Send(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("connection reset")
	}
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeConn) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func TestBroadcastDeliversToAll(t *testing.T) {
	h := New(zerolog.Nop())
	a, b := newFakeConn("a"), newFakeConn("b")
	h.Connect(a, false)
	h.Connect(b, true)

	h.Broadcast(context.Background(), "hello")

	for _, c := range []*fakeConn{a, b} {
		got := c.messages()
		if len(got) != 1 || got[0] != "hello" {
			t.Fatalf("conn %s got %v; want [hello]", c.id, got)
		}
	}
}

func TestBroadcastScheduleSplitsByRole(t *testing.T) {
	h := New(zerolog.Nop())
	viewer, editor := newFakeConn("viewer"), newFakeConn("editor")
	h.Connect(viewer, false)
	h.Connect(editor, true)

	h.BroadcastSchedule(context.Background(), "viewer-html", "editor-html")

	if got := viewer.messages(); len(got) != 1 || got[0] != "viewer-html" {
		t.Fatalf("viewer got %v; want [viewer-html]", got)
	}
	if got := editor.messages(); len(got) != 1 || got[0] != "editor-html" {
		t.Fatalf("editor got %v; want [editor-html]", got)
	}
}

func TestBroadcastSkipsEmptyPayload(t *testing.T) {
	h := New(zerolog.Nop())
	viewer := newFakeConn("viewer")
	viewer.fail = true // would be dropped if a send were attempted
	h.Connect(viewer, false)

	h.BroadcastSchedule(context.Background(), "", "editor-only")

	if h.ConnectionCount() != 1 {
		t.Fatal("connection with no payload must not be removed")
	}
	if got := viewer.messages(); len(got) != 0 {
		t.Fatalf("viewer got %v; want nothing", got)
	}
}

func TestFailedSendRemovesConnection(t *testing.T) {
	h := New(zerolog.Nop())
	good, bad := newFakeConn("good"), newFakeConn("bad")
	bad.fail = true
	h.Connect(good, false)
	h.Connect(bad, false)

	h.Broadcast(context.Background(), "first")

	if h.ConnectionCount() != 1 {
		t.Fatalf("expected dead connection to be removed, live set = %d", h.ConnectionCount())
	}
	if got := good.messages(); len(got) != 1 || got[0] != "first" {
		t.Fatalf("healthy connection got %v; want [first]", got)
	}

	// The next broadcast reaches only the survivor.
	h.Broadcast(context.Background(), "second")
	if got := good.messages(); len(got) != 2 || got[1] != "second" {
		t.Fatalf("healthy connection got %v; want [first second]", got)
	}
	if got := bad.messages(); len(got) != 0 {
		t.Fatalf("dead connection got %v; want nothing", got)
	}
}

func TestDisconnectUnknownIsNoop(t *testing.T) {
	h := New(zerolog.Nop())
	a := newFakeConn("a")
	h.Connect(a, false)

	h.Disconnect(newFakeConn("stranger"))

	if h.ConnectionCount() != 1 {
		t.Fatalf("live set changed by unknown disconnect: %d", h.ConnectionCount())
	}

	// And disconnecting twice is equally harmless.
	h.Disconnect(a)
	h.Disconnect(a)
	if h.ConnectionCount() != 0 {
		t.Fatalf("expected empty live set, got %d", h.ConnectionCount())
	}
}

func TestBroadcastBrightness(t *testing.T) {
	h := New(zerolog.Nop())
	a, b := newFakeConn("a"), newFakeConn("b")
	h.Connect(a, false)
	h.Connect(b, true)

	h.BroadcastBrightness(context.Background(), 180)

	if h.Brightness() != 180 {
		t.Fatalf("stored brightness = %d; want 180", h.Brightness())
	}

	for _, c := range []*fakeConn{a, b} {
		got := c.messages()
		if len(got) != 1 {
			t.Fatalf("conn %s got %d messages; want 1", c.id, len(got))
		}
		var event struct {
			Type  string `json:"type"`
			Value int    `json:"value"`
		}
		if err := json.Unmarshal([]byte(got[0]), &event); err != nil {
			t.Fatalf("decode brightness event: %v", err)
		}
		if event.Type != "brightness" || event.Value != 180 {
			t.Fatalf("conn %s got event %+v", c.id, event)
		}
	}
}

func TestConcurrentConnectDuringBroadcast(t *testing.T) {
	h := New(zerolog.Nop())
	for i := 0; i < 8; i++ {
		h.Connect(newFakeConn(fmt.Sprintf("c%d", i)), i%2 == 0)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			h.Broadcast(context.Background(), "tick")
		}(i)
		go func(i int) {
			defer wg.Done()
			c := newFakeConn(fmt.Sprintf("late%d", i))
			h.Connect(c, false)
			h.Disconnect(c)
		}(i)
	}
	wg.Wait()

	if h.ConnectionCount() != 8 {
		t.Fatalf("expected 8 live connections, got %d", h.ConnectionCount())
	}
}
