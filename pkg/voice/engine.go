// Package voice is the realtime session engine: a Gemini Live connection
// carrying the persona's instructions and tool subset, with native audio in
// both directions.
package voice

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"google.golang.org/genai"

	contractx "github.com/torqlabs/voice-concierge/agent/contract"
)

type Config struct {
	APIKey string `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model  string `envconfig:"MODEL" split_words:"true" default:"models/gemini-2.5-flash-native-audio-preview-12-2025"`
	Voice  string `envconfig:"VOICE" split_words:"true" default:"Zephyr"`
}

// Engine connects live sessions. One engine serves all concurrent calls;
// it holds no per-call state.
type Engine struct {
	client *genai.Client
	model  string
	voice  string
}

var _ contractx.SessionEngine = (*Engine)(nil)

func NewEngine(ctx context.Context, cfg Config) (*Engine, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("voice api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, errors.New("voice model is required")
	}

	return &Engine{
		client: client,
		model:  model,
		voice:  strings.TrimSpace(cfg.Voice),
	}, nil
}

// StartSession opens the live connection bound to one persona and begins
// receiving in the background.
func (e *Engine) StartSession(ctx context.Context, cfg contractx.SessionConfig) (contractx.SessionHandle, error) {
	connectCfg := &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{"AUDIO"},
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: cfg.Instructions}},
		},
		Tools: toGenAITools(cfg.Tools),
	}
	if e.voice != "" {
		connectCfg.SpeechConfig = &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: e.voice},
			},
		}
	}

	session, err := e.client.Live.Connect(ctx, e.model, connectCfg)
	if err != nil {
		return nil, fmt.Errorf("connect live session: %w", err)
	}

	ls := newLiveSession(cfg.CallID, session, cfg.Execute)
	go ls.receive()
	return ls, nil
}

func toGenAITools(specs []contractx.ToolSpec) []*genai.Tool {
	if len(specs) == 0 {
		return nil
	}

	decls := make([]*genai.FunctionDeclaration, 0, len(specs))
	for _, spec := range specs {
		properties := make(map[string]*genai.Schema, len(spec.Parameters))
		var required []string
		for name, p := range spec.Parameters {
			properties[name] = &genai.Schema{
				Type:        genai.TypeString,
				Description: p.Description,
			}
			if p.Required {
				required = append(required, name)
			}
		}
		sort.Strings(required)

		decl := &genai.FunctionDeclaration{
			Name:        spec.Name,
			Description: spec.Description,
		}
		if len(properties) > 0 {
			decl.Parameters = &genai.Schema{
				Type:       genai.TypeObject,
				Properties: properties,
				Required:   required,
			}
		}
		decls = append(decls, decl)
	}

	return []*genai.Tool{{FunctionDeclarations: decls}}
}
