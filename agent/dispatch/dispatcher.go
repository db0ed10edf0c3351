// Package dispatch binds an inbound call to exactly one persona and starts
// its dialogue session.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/torqlabs/voice-concierge/agent/contract"
	personax "github.com/torqlabs/voice-concierge/agent/persona"
)

// State is the dispatcher's position in a call's lifecycle. Steps are
// strictly sequential within a call; concurrent calls never share state.
type State int

const (
	StateConnecting State = iota
	StateAwaitingParticipant
	StatePersonaBound
	StateSessionActive
	StateGreeted
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAwaitingParticipant:
		return "awaiting_participant"
	case StatePersonaBound:
		return "persona_bound"
	case StateSessionActive:
		return "session_active"
	case StateGreeted:
		return "greeted"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

const defaultParticipantTimeout = 15 * time.Second

// CatalogBuilder returns the tool subset and executor for a resolved
// persona. Kept as a func so the dispatcher stays ignorant of handler
// dependencies.
type CatalogBuilder func(callID string, p personax.Profile) ([]contractx.ToolSpec, contractx.ToolExecutor)

type Option func(*Dispatcher)

// WithParticipantTimeout bounds the wait for a caller to join.
func WithParticipantTimeout(d time.Duration) Option {
	return func(dp *Dispatcher) {
		if d > 0 {
			dp.participantTimeout = d
		}
	}
}

type Dispatcher struct {
	registry           *personax.Registry
	buildTools         CatalogBuilder
	engine             contractx.SessionEngine
	participantTimeout time.Duration
}

func New(registry *personax.Registry, buildTools CatalogBuilder, engine contractx.SessionEngine, opts ...Option) (*Dispatcher, error) {
	if registry == nil {
		return nil, errors.New("persona registry is required")
	}
	if buildTools == nil {
		return nil, errors.New("catalog builder is required")
	}
	if engine == nil {
		return nil, errors.New("session engine is required")
	}

	d := &Dispatcher{
		registry:           registry,
		buildTools:         buildTools,
		engine:             engine,
		participantTimeout: defaultParticipantTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d, nil
}

// BoundCall is the result of a successful dispatch: one persona, one
// running session, greeted exactly once.
type BoundCall struct {
	CallID  string
	Persona personax.Profile
	Tools   []contractx.ToolSpec
	Session contractx.SessionHandle

	state State
}

func (b *BoundCall) State() State { return b.state }

// Terminate releases the persona binding and closes the session.
func (b *BoundCall) Terminate() error {
	if b.state == StateTerminated {
		return nil
	}
	b.state = StateTerminated
	if b.Session != nil {
		return b.Session.Close()
	}
	return nil
}

// Run drives one call from transport join to the spoken greeting.
//
// The participant's metadata is read exactly once; a malformed or absent
// source falls back to the default persona and never fails the call. Not
// seeing a participant inside the timeout is a hard failure: no persona can
// run without one.
func (d *Dispatcher) Run(ctx context.Context, callID string, room contractx.Room) (*BoundCall, error) {
	state := StateConnecting
	log.Debug().Str("call_id", callID).Str("room", room.Name()).Stringer("state", state).Msg("dispatch started")

	state = StateAwaitingParticipant
	waitCtx, cancel := context.WithTimeout(ctx, d.participantTimeout)
	defer cancel()

	participant, err := room.AwaitParticipant(waitCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: room=%s: %v", contractx.ErrNoParticipant, room.Name(), err)
	}
	log.Info().Str("call_id", callID).Str("identity", participant.Identity).Msg("participant joined")

	source := personax.ParseSource(participant.Metadata)
	if !source.OK {
		log.Warn().Str("call_id", callID).Msg("could not parse participant metadata, using default persona")
	}
	profile := d.registry.Resolve(source.Source)
	state = StatePersonaBound
	log.Info().
		Str("call_id", callID).
		Str("persona", string(profile.ID)).
		Int("capabilities", len(profile.Capabilities)).
		Msg("persona bound")

	specs, execute := d.buildTools(callID, profile)
	session, err := d.engine.StartSession(ctx, contractx.SessionConfig{
		CallID:       callID,
		Instructions: profile.Instructions,
		Tools:        specs,
		Execute:      execute,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrEngineStart, err)
	}
	state = StateSessionActive

	// One opening utterance per call, never interrupted.
	if err := session.Say(ctx, profile.Greeting, false); err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("say greeting: %w", err)
	}
	state = StateGreeted

	return &BoundCall{
		CallID:  callID,
		Persona: profile,
		Tools:   specs,
		Session: session,
		state:   state,
	}, nil
}
