package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	contractx "github.com/torqlabs/voice-concierge/agent/contract"
	"github.com/torqlabs/voice-concierge/agent/dispatch"
	personax "github.com/torqlabs/voice-concierge/agent/persona"
	"github.com/torqlabs/voice-concierge/agent/tool"
	configx "github.com/torqlabs/voice-concierge/pkg/config"
	journalx "github.com/torqlabs/voice-concierge/pkg/journal"
	_ "github.com/torqlabs/voice-concierge/pkg/logger/autoload"
	sheetsx "github.com/torqlabs/voice-concierge/pkg/sheets"
	voicex "github.com/torqlabs/voice-concierge/pkg/voice"
	"github.com/torqlabs/voice-concierge/server"
	"github.com/torqlabs/voice-concierge/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sheetsCfg := configx.MustNew[sheetsx.Config]("SHEETS")
	recorder := sheetsx.MustNew(*sheetsCfg)

	journalCfg := configx.MustNew[journalx.Config]("JOURNAL")
	var journal journalx.Journal = journalx.Nop{}
	if journalCfg.DSN != "" {
		pg, err := journalx.NewPostgres(*journalCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("opening booking journal failed")
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("preparing booking journal schema failed")
		}
		defer pg.Close()
		journal = pg
	}

	voiceCfg := configx.MustNew[voicex.Config]("GEMINI")
	engine, err := voicex.NewEngine(ctx, *voiceCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("starting voice engine failed")
	}

	registry := personax.NewRegistry()
	buildTools := func(callID string, p personax.Profile) ([]contractx.ToolSpec, contractx.ToolExecutor) {
		return tool.BuildForPersona(p, tool.Deps{
			Recorder: recorder,
			Journal:  journal,
			CallID:   callID,
		})
	}

	dispatcher, err := dispatch.New(registry, buildTools, engine)
	if err != nil {
		log.Fatal().Err(err).Msg("building dispatcher failed")
	}

	sessionCfg := configx.MustNew[session.Config]("SESSION")
	manager := session.NewManager(*sessionCfg)
	go manager.StartCleanupRoutine(ctx)

	serverCfg := configx.MustNew[server.Config]("SERVER")
	srv, err := server.New(*serverCfg, dispatcher, manager)
	if err != nil {
		log.Fatal().Err(err).Msg("building server failed")
	}

	if err := srv.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("shutdown complete")
}
