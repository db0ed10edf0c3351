package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	contractx "github.com/torqlabs/voice-concierge/agent/contract"
)

type awaitResult struct {
	participant contractx.Participant
	err         error
}

// dialRoom spins up a websocket endpoint whose server side runs
// AwaitParticipant and reports the result on a channel.
func dialRoom(t *testing.T, timeout time.Duration) (*websocket.Conn, <-chan awaitResult) {
	t.Helper()

	results := make(chan awaitResult, 1)
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		room := newWSRoom("test-room", conn)
		p, err := room.AwaitParticipant(ctx)
		results <- awaitResult{participant: p, err: err}
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn, results
}

func TestAwaitParticipantReadsJoinEvent(t *testing.T) {
	t.Parallel()

	conn, results := dialRoom(t, 2*time.Second)

	join := `{"event":"join","identity":"caller-1","metadata":"{\"source_website\":\"hotel_demo\"}"}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(join)); err != nil {
		t.Fatalf("write join: %v", err)
	}

	res := <-results
	if res.err != nil {
		t.Fatalf("unexpected error: %v", res.err)
	}
	if res.participant.Identity != "caller-1" {
		t.Fatalf("unexpected identity: %s", res.participant.Identity)
	}
	if !strings.Contains(res.participant.Metadata, "hotel_demo") {
		t.Fatalf("unexpected metadata: %s", res.participant.Metadata)
	}
}

func TestAwaitParticipantSkipsNonJoinMessages(t *testing.T) {
	t.Parallel()

	conn, results := dialRoom(t, 2*time.Second)

	for _, msg := range []string{"not json", `{"event":"ping"}`} {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, []byte{0x00, 0x01}); err != nil {
		t.Fatalf("write binary: %v", err)
	}
	join := `{"event":"join","identity":"caller-2","metadata":""}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(join)); err != nil {
		t.Fatalf("write join: %v", err)
	}

	res := <-results
	if res.err != nil {
		t.Fatalf("unexpected error: %v", res.err)
	}
	if res.participant.Identity != "caller-2" {
		t.Fatalf("unexpected identity: %s", res.participant.Identity)
	}
}

func TestAwaitParticipantTimesOutWithoutJoin(t *testing.T) {
	t.Parallel()

	_, results := dialRoom(t, 100*time.Millisecond)

	res := <-results
	if res.err == nil {
		t.Fatal("expected a deadline error")
	}
}
