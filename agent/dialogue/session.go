package dialogue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	openaisdk "github.com/openai/openai-go/v2"

	contractx "github.com/torqlabs/voice-concierge/agent/contract"
)

// TextSession is one persona-bound conversation. Turns are serialized: the
// dialogue loop invokes at most one reply at a time per session, and the
// mutex keeps a stray concurrent caller from interleaving history writes.
type TextSession struct {
	engine  *Engine
	callID  string
	execute contractx.ToolExecutor
	tools   []openaisdk.ChatCompletionToolUnionParam

	mu      sync.Mutex
	history []openaisdk.ChatCompletionMessageParamUnion
	closed  bool
}

var _ contractx.SessionHandle = (*TextSession)(nil)

// Say records an utterance as spoken by the assistant and emits it to the
// engine's output sink. Text sessions cannot be barged into, so
// allowInterruptions has no effect here; it matters on the voice path.
func (s *TextSession) Say(_ context.Context, text string, _ bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("session is closed")
	}

	s.history = append(s.history, openaisdk.AssistantMessage(text))
	if s.engine.output != nil {
		s.engine.output(s.callID, text)
	}
	return nil
}

func (s *TextSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Reply runs one user turn: the model answers directly or requests tools,
// tool results are fed back, and the loop continues until the model speaks
// or the round budget runs out.
func (s *TextSession) Reply(ctx context.Context, userText string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", errors.New("session is closed")
	}

	s.history = append(s.history, openaisdk.UserMessage(userText))

	for round := 0; round <= s.engine.maxToolRounds; round++ {
		params := openaisdk.ChatCompletionNewParams{
			Model:       openaisdk.ChatModel(s.engine.model),
			Messages:    s.history,
			Temperature: openaisdk.Float(s.engine.temperature),
		}
		if len(s.tools) > 0 {
			params.Tools = s.tools
		}

		completion, err := s.engine.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return "", fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
		}
		if len(completion.Choices) == 0 {
			return "", fmt.Errorf("%w: empty completion", contractx.ErrModelInvoke)
		}

		msg := completion.Choices[0].Message
		s.history = append(s.history, msg.ToParam())

		if len(msg.ToolCalls) == 0 {
			reply := strings.TrimSpace(msg.Content)
			if reply != "" && s.engine.output != nil {
				s.engine.output(s.callID, reply)
			}
			return reply, nil
		}

		for _, call := range msg.ToolCalls {
			s.history = append(s.history, openaisdk.ToolMessage(s.runTool(ctx, call), call.ID))
		}
	}

	return "", fmt.Errorf("%w: tool rounds exhausted", contractx.ErrModelInvoke)
}

func (s *TextSession) runTool(ctx context.Context, call openaisdk.ChatCompletionMessageToolCallUnion) string {
	name := strings.TrimSpace(call.Function.Name)

	args := map[string]any{}
	if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return invalidArgsPayload(err)
		}
	}

	if s.execute == nil {
		payload, _ := json.Marshal(contractx.ToolResult{
			Tool:  name,
			Error: "no tools are available in this session",
		})
		return string(payload)
	}

	result, err := s.execute(ctx, name, args)
	if err != nil {
		result = contractx.ToolResult{Tool: name, Error: err.Error()}
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf(`{"tool":%q,"error":"unencodable tool result"}`, name)
	}
	return string(payload)
}
