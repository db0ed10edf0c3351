// Command textchat runs the concierge as a terminal conversation instead of
// a live call. Useful for exercising persona dispatch and the booking tools
// without an audio transport.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/torqlabs/voice-concierge/agent/contract"
	"github.com/torqlabs/voice-concierge/agent/dialogue"
	"github.com/torqlabs/voice-concierge/agent/dispatch"
	personax "github.com/torqlabs/voice-concierge/agent/persona"
	"github.com/torqlabs/voice-concierge/agent/tool"
	configx "github.com/torqlabs/voice-concierge/pkg/config"
	journalx "github.com/torqlabs/voice-concierge/pkg/journal"
	_ "github.com/torqlabs/voice-concierge/pkg/logger/autoload"
	sheetsx "github.com/torqlabs/voice-concierge/pkg/sheets"
)

// stdinRoom fabricates a single participant whose metadata carries the
// requested source, mirroring what a call transport would deliver.
type stdinRoom struct {
	source string
}

func (r stdinRoom) Name() string { return "textchat" }

func (r stdinRoom) AwaitParticipant(context.Context) (contractx.Participant, error) {
	metadata, err := json.Marshal(map[string]string{"source_website": r.source})
	if err != nil {
		return contractx.Participant{}, err
	}
	return contractx.Participant{
		Identity: "terminal-user",
		Metadata: string(metadata),
	}, nil
}

func main() {
	source := flag.String("source", personax.SourceHotelDemo, "caller source identifier to simulate")
	flag.Parse()

	ctx := context.Background()

	sheetsCfg := configx.MustNew[sheetsx.Config]("SHEETS")
	recorder := sheetsx.MustNew(*sheetsCfg)

	engineCfg := configx.MustNew[dialogue.Config]("OPENAI")
	engine, err := dialogue.NewEngine(*engineCfg, dialogue.WithOutput(func(_, text string) {
		fmt.Printf("agent> %s\n", text)
	}))
	if err != nil {
		log.Fatal().Err(err).Msg("starting dialogue engine failed")
	}

	callID := uuid.New().String()
	registry := personax.NewRegistry()
	buildTools := func(id string, p personax.Profile) ([]contractx.ToolSpec, contractx.ToolExecutor) {
		return tool.BuildForPersona(p, tool.Deps{
			Recorder: recorder,
			Journal:  journalx.Nop{},
			CallID:   id,
		})
	}

	dispatcher, err := dispatch.New(registry, buildTools, engine)
	if err != nil {
		log.Fatal().Err(err).Msg("building dispatcher failed")
	}

	bound, err := dispatcher.Run(ctx, callID, stdinRoom{source: *source})
	if err != nil {
		log.Fatal().Err(err).Msg("call setup failed")
	}
	defer bound.Terminate()

	chat, ok := bound.Session.(*dialogue.TextSession)
	if !ok {
		log.Fatal().Msg("session does not support text replies")
	}

	fmt.Println("(type 'exit' to hang up)")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" {
			break
		}
		if _, err := chat.Reply(ctx, line); err != nil {
			log.Error().Err(err).Msg("reply failed")
		}
	}
}
