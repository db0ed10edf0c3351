package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	contractx "github.com/torqlabs/voice-concierge/agent/contract"
)

// joinEvent is the first message a caller sends after connecting.
type joinEvent struct {
	Event    string `json:"event"`
	Identity string `json:"identity"`
	Metadata string `json:"metadata"`
}

// wsRoom adapts a websocket connection to the call-room contract. The
// dispatcher reads the joining participant through it; everything after
// the join is handled by the audio bridge.
type wsRoom struct {
	name string
	conn *websocket.Conn
}

func newWSRoom(name string, conn *websocket.Conn) *wsRoom {
	return &wsRoom{name: name, conn: conn}
}

func (r *wsRoom) Name() string { return r.name }

// AwaitParticipant blocks until a join event arrives or the context
// deadline passes. Messages before the join are ignored.
func (r *wsRoom) AwaitParticipant(ctx context.Context) (contractx.Participant, error) {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(30 * time.Second)
	}
	if err := r.conn.SetReadDeadline(deadline); err != nil {
		return contractx.Participant{}, fmt.Errorf("set read deadline: %w", err)
	}
	defer r.conn.SetReadDeadline(time.Time{})

	for {
		if err := ctx.Err(); err != nil {
			return contractx.Participant{}, err
		}

		msgType, data, err := r.conn.ReadMessage()
		if err != nil {
			return contractx.Participant{}, fmt.Errorf("read join event: %w", err)
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var evt joinEvent
		if err := json.Unmarshal(data, &evt); err != nil || evt.Event != "join" {
			continue
		}
		return contractx.Participant{
			Identity: evt.Identity,
			Metadata: evt.Metadata,
		}, nil
	}
}
