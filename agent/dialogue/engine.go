// Package dialogue runs persona-bound conversations over chat completions.
// It is the text-mode session engine: the same persona binding the voice
// engine gets, minus the audio path, which makes it the workhorse for local
// testing and transcript-driven sessions.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	contractx "github.com/torqlabs/voice-concierge/agent/contract"
)

type Config struct {
	BaseURL       string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.openai.com/v1"`
	APIKey        string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model         string        `envconfig:"MODEL" split_words:"true" default:"gpt-4o-mini"`
	Temperature   float64       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	MaxToolRounds int           `envconfig:"MAX_TOOL_ROUNDS" split_words:"true" default:"4"`
	Timeout       time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
}

type EngineOption func(*Engine)

// WithOutput registers a sink for utterances the session speaks on its own
// (the greeting, and replies in text mode).
func WithOutput(fn func(callID, text string)) EngineOption {
	return func(e *Engine) {
		e.output = fn
	}
}

// Engine builds text sessions against an OpenAI-compatible endpoint.
type Engine struct {
	client        *openaisdk.Client
	model         string
	temperature   float64
	maxToolRounds int
	output        func(callID, text string)
}

var _ contractx.SessionEngine = (*Engine)(nil)

func NewEngine(cfg Config, opts ...EngineOption) (*Engine, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("dialogue api key is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, errors.New("dialogue model is required")
	}

	requestOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if trimmed := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); trimmed != "" {
		requestOpts = append(requestOpts, option.WithBaseURL(trimmed))
	}
	if cfg.Timeout > 0 {
		requestOpts = append(requestOpts, option.WithRequestTimeout(cfg.Timeout))
	}

	client := openaisdk.NewClient(requestOpts...)

	maxToolRounds := cfg.MaxToolRounds
	if maxToolRounds <= 0 {
		maxToolRounds = 4
	}

	e := &Engine{
		client:        &client,
		model:         model,
		temperature:   cfg.Temperature,
		maxToolRounds: maxToolRounds,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e, nil
}

// StartSession binds a text session to the persona's instructions and tool
// subset. Nothing is sent to the model until the first utterance or reply.
func (e *Engine) StartSession(_ context.Context, cfg contractx.SessionConfig) (contractx.SessionHandle, error) {
	return &TextSession{
		engine:  e,
		callID:  cfg.CallID,
		execute: cfg.Execute,
		tools:   toToolParams(cfg.Tools),
		history: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(cfg.Instructions),
		},
	}, nil
}

func toToolParams(specs []contractx.ToolSpec) []openaisdk.ChatCompletionToolUnionParam {
	var params []openaisdk.ChatCompletionToolUnionParam
	for _, spec := range specs {
		properties := make(map[string]any, len(spec.Parameters))
		var required []string
		for name, p := range spec.Parameters {
			properties[name] = map[string]any{
				"type":        p.Type,
				"description": p.Description,
			}
			if p.Required {
				required = append(required, name)
			}
		}
		sort.Strings(required)

		params = append(params, openaisdk.ChatCompletionFunctionTool(openaisdk.FunctionDefinitionParam{
			Name:        spec.Name,
			Description: openaisdk.String(spec.Description),
			Parameters: openaisdk.FunctionParameters{
				"type":       "object",
				"properties": properties,
				"required":   required,
			},
		}))
	}
	return params
}

func invalidArgsPayload(err error) string {
	return fmt.Sprintf(`{"error":%q}`, "invalid tool arguments: "+err.Error())
}
