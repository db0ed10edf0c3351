package server

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	contractx "github.com/torqlabs/voice-concierge/agent/contract"
	"github.com/torqlabs/voice-concierge/agent/dispatch"
	"github.com/torqlabs/voice-concierge/session"
)

// handleCall upgrades the connection, registers the call, runs the
// dispatcher to bind a persona and greet, then bridges audio frames
// until the caller disconnects.
func (s *Server) handleCall(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()

	call, err := s.manager.Begin(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("rejecting call")
		writeEvent(conn, nil, map[string]string{"event": "error", "reason": err.Error()})
		return
	}
	defer s.manager.End(context.Background(), call.ID)

	logger := log.With().Str("call_id", call.ID).Logger()
	logger.Info().Msg("call connected")

	room := newWSRoom(call.ID, conn)
	bound, err := s.dispatcher.Run(ctx, call.ID, room)
	if err != nil {
		logger.Error().Err(err).Msg("call setup failed")
		writeEvent(conn, nil, map[string]string{"event": "error", "reason": "call setup failed"})
		return
	}
	call.OnTerminate(func() {
		bound.Terminate()
		_ = conn.Close()
	})
	defer bound.Terminate()

	logger.Info().Str("persona", string(bound.Persona.ID)).Msg("call bound")

	s.bridge(conn, call, bound)
	logger.Info().Msg("call disconnected")
}

// bridge shuttles audio between the websocket and the bound session.
// Caller audio arrives as binary frames; synthesized audio is written
// back the same way. A text "leave" event ends the call. Calls whose
// engine has no audio path still stay open so the caller sees a clean
// close instead of an abrupt drop.
func (s *Server) bridge(conn *websocket.Conn, call *session.Call, bound *dispatch.BoundCall) {
	var writeMu sync.Mutex

	audio, hasAudio := bound.Session.(contractx.AudioSession)
	if hasAudio {
		audio.SetAudioSink(func(frame []byte) {
			writeMu.Lock()
			defer writeMu.Unlock()
			if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				log.Debug().Err(err).Str("call_id", call.ID).Msg("dropping audio frame")
			}
		})
	}

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		call.Touch()

		switch msgType {
		case websocket.BinaryMessage:
			if !hasAudio {
				continue
			}
			if err := audio.SendAudio(data); err != nil {
				log.Error().Err(err).Str("call_id", call.ID).Msg("forwarding caller audio failed")
				return
			}
		case websocket.TextMessage:
			var evt struct {
				Event string `json:"event"`
			}
			if err := json.Unmarshal(data, &evt); err != nil {
				continue
			}
			if evt.Event == "leave" {
				writeEvent(conn, &writeMu, map[string]string{"event": "bye"})
				return
			}
		}
	}
}

func writeEvent(conn *websocket.Conn, mu *sync.Mutex, payload map[string]string) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if mu != nil {
		mu.Lock()
		defer mu.Unlock()
	}
	_ = conn.WriteMessage(websocket.TextMessage, data)
}
