package voice

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	contractx "github.com/torqlabs/voice-concierge/agent/contract"
)

const inputMIMEType = "audio/pcm;rate=16000"

// LiveSession is one caller's live connection. Audio frames flow through
// SendAudio and the configured sink; tool calls from the model are executed
// and answered inline by the receive loop.
type LiveSession struct {
	callID  string
	session *genai.Session
	execute contractx.ToolExecutor

	mu        sync.RWMutex
	closed    bool
	audioSink func(data []byte)
}

var _ contractx.AudioSession = (*LiveSession)(nil)

func newLiveSession(callID string, session *genai.Session, execute contractx.ToolExecutor) *LiveSession {
	return &LiveSession{
		callID:  callID,
		session: session,
		execute: execute,
	}
}

// Say asks the model to deliver one exact utterance. The live API has no
// plain TTS injection, so the utterance travels as a directive turn; with
// allowInterruptions false the caller's audio is not forwarded until the
// turn completes, which is handled by the transport holding frames back
// until Say returns.
func (s *LiveSession) Say(_ context.Context, text string, _ bool) error {
	s.mu.RLock()
	session, closed := s.session, s.closed
	s.mu.RUnlock()
	if closed || session == nil {
		return fmt.Errorf("live session is closed")
	}

	turnComplete := true
	directive := fmt.Sprintf("Open the call by saying exactly this, word for word: %q", text)
	err := session.SendClientContent(genai.LiveSendClientContentParameters{
		Turns: []*genai.Content{
			{Role: "user", Parts: []*genai.Part{{Text: directive}}},
		},
		TurnComplete: &turnComplete,
	})
	if err != nil {
		return fmt.Errorf("send opening utterance: %w", err)
	}
	return nil
}

// SendAudio forwards one caller audio frame (PCM 16 kHz) to the model.
func (s *LiveSession) SendAudio(data []byte) error {
	s.mu.RLock()
	session, closed := s.session, s.closed
	s.mu.RUnlock()
	if closed || session == nil {
		return fmt.Errorf("live session is closed")
	}

	err := session.SendRealtimeInput(genai.LiveRealtimeInput{
		Media: &genai.Blob{
			MIMEType: inputMIMEType,
			Data:     data,
		},
	})
	if err != nil {
		return fmt.Errorf("send audio: %w", err)
	}
	return nil
}

// SetAudioSink registers the callback that receives model audio. Set it
// before the first turn; frames arriving without a sink are dropped.
func (s *LiveSession) SetAudioSink(fn func(data []byte)) {
	s.mu.Lock()
	s.audioSink = fn
	s.mu.Unlock()
}

func (s *LiveSession) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	session := s.session
	s.mu.Unlock()

	if session != nil {
		return session.Close()
	}
	return nil
}

func (s *LiveSession) receive() {
	for {
		s.mu.RLock()
		session, closed := s.session, s.closed
		s.mu.RUnlock()
		if closed || session == nil {
			return
		}

		msg, err := session.Receive()
		if err != nil {
			if !s.isClosed() {
				log.Warn().Err(err).Str("call_id", s.callID).Msg("live receive ended")
			}
			return
		}
		s.handleMessage(msg)
	}
}

func (s *LiveSession) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *LiveSession) handleMessage(msg *genai.LiveServerMessage) {
	if msg.ToolCall != nil && len(msg.ToolCall.FunctionCalls) > 0 {
		s.handleToolCalls(msg.ToolCall.FunctionCalls)
	}

	if msg.ServerContent == nil || msg.ServerContent.ModelTurn == nil {
		return
	}
	for _, part := range msg.ServerContent.ModelTurn.Parts {
		if part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		s.mu.RLock()
		sink := s.audioSink
		s.mu.RUnlock()
		if sink != nil {
			sink(part.InlineData.Data)
		}
	}
}

func (s *LiveSession) handleToolCalls(calls []*genai.FunctionCall) {
	responses := make([]*genai.FunctionResponse, 0, len(calls))

	for _, call := range calls {
		log.Info().Str("call_id", s.callID).Str("tool", call.Name).Msg("tool invoked")

		var response map[string]any
		if s.execute == nil {
			response = map[string]any{"error": "no tools are available in this session"}
		} else {
			result, err := s.execute(context.Background(), call.Name, call.Args)
			switch {
			case err != nil:
				response = map[string]any{"error": err.Error()}
			case result.Error != "":
				response = map[string]any{"error": result.Error}
			default:
				response = map[string]any{"output": result.Result}
			}
		}

		responses = append(responses, &genai.FunctionResponse{
			ID:       call.ID,
			Name:     call.Name,
			Response: response,
		})
	}

	s.mu.RLock()
	session, closed := s.session, s.closed
	s.mu.RUnlock()
	if closed || session == nil {
		return
	}
	if err := session.SendToolResponse(genai.LiveToolResponseInput{FunctionResponses: responses}); err != nil {
		log.Error().Err(err).Str("call_id", s.callID).Msg("send tool response failed")
	}
}
