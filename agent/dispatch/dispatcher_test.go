package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	contractx "github.com/torqlabs/voice-concierge/agent/contract"
	personax "github.com/torqlabs/voice-concierge/agent/persona"
)

type fakeRoom struct {
	name        string
	participant contractx.Participant
	err         error
	block       bool
}

func (r *fakeRoom) Name() string { return r.name }

func (r *fakeRoom) AwaitParticipant(ctx context.Context) (contractx.Participant, error) {
	if r.block {
		<-ctx.Done()
		return contractx.Participant{}, ctx.Err()
	}
	if r.err != nil {
		return contractx.Participant{}, r.err
	}
	return r.participant, nil
}

type fakeSession struct {
	said   []string
	sayErr error
	closed bool
}

func (s *fakeSession) Say(_ context.Context, text string, _ bool) error {
	if s.sayErr != nil {
		return s.sayErr
	}
	s.said = append(s.said, text)
	return nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

type fakeEngine struct {
	session  *fakeSession
	startErr error
	lastCfg  contractx.SessionConfig
}

func (e *fakeEngine) StartSession(_ context.Context, cfg contractx.SessionConfig) (contractx.SessionHandle, error) {
	e.lastCfg = cfg
	if e.startErr != nil {
		return nil, e.startErr
	}
	return e.session, nil
}

func catalogBuilder(callID string, p personax.Profile) ([]contractx.ToolSpec, contractx.ToolExecutor) {
	var specs []contractx.ToolSpec
	for _, name := range p.Capabilities {
		specs = append(specs, contractx.ToolSpec{Name: name})
	}
	execute := func(_ context.Context, tool string, _ map[string]any) (contractx.ToolResult, error) {
		return contractx.ToolResult{Tool: tool}, nil
	}
	return specs, execute
}

func newTestDispatcher(t *testing.T, engine contractx.SessionEngine, opts ...Option) *Dispatcher {
	t.Helper()
	d, err := New(personax.NewRegistry(), catalogBuilder, engine, opts...)
	if err != nil {
		t.Fatalf("building dispatcher: %v", err)
	}
	return d
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{session: &fakeSession{}}
	if _, err := New(nil, catalogBuilder, engine); err == nil {
		t.Fatal("expected error for nil registry")
	}
	if _, err := New(personax.NewRegistry(), nil, engine); err == nil {
		t.Fatal("expected error for nil catalog builder")
	}
	if _, err := New(personax.NewRegistry(), catalogBuilder, nil); err == nil {
		t.Fatal("expected error for nil engine")
	}
}

func TestRunBindsHotelPersona(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{session: &fakeSession{}}
	d := newTestDispatcher(t, engine)

	room := &fakeRoom{
		name: "room-1",
		participant: contractx.Participant{
			Identity: "caller-1",
			Metadata: `{"source_website":"hotel_demo"}`,
		},
	}

	bound, err := d.Run(context.Background(), "call-1", room)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bound.Persona.ID != contractx.PersonaHotel {
		t.Fatalf("unexpected persona: %s", bound.Persona.ID)
	}
	if len(bound.Tools) != 2 {
		t.Fatalf("expected 2 tools, got %d", len(bound.Tools))
	}
	if bound.State() != StateGreeted {
		t.Fatalf("unexpected state: %s", bound.State())
	}
	if len(engine.session.said) != 1 || engine.session.said[0] != bound.Persona.Greeting {
		t.Fatalf("expected exactly the greeting, got %v", engine.session.said)
	}
	if engine.lastCfg.Instructions != bound.Persona.Instructions {
		t.Fatal("session must receive the persona instructions")
	}
	if engine.lastCfg.CallID != "call-1" {
		t.Fatalf("unexpected call id: %s", engine.lastCfg.CallID)
	}
}

func TestRunFallsBackOnMalformedMetadata(t *testing.T) {
	t.Parallel()

	for _, metadata := range []string{"", "not json", `{"source_website":"unknown_site"}`} {
		engine := &fakeEngine{session: &fakeSession{}}
		d := newTestDispatcher(t, engine)

		room := &fakeRoom{
			name:        "room-1",
			participant: contractx.Participant{Identity: "caller-2", Metadata: metadata},
		}

		bound, err := d.Run(context.Background(), "call-2", room)
		if err != nil {
			t.Fatalf("metadata %q: unexpected error: %v", metadata, err)
		}
		if bound.Persona.ID != contractx.PersonaTorq {
			t.Fatalf("metadata %q: unexpected persona %s", metadata, bound.Persona.ID)
		}
		if len(bound.Tools) != 0 {
			t.Fatalf("metadata %q: fallback persona must receive no tools", metadata)
		}
		if len(engine.session.said) != 1 || engine.session.said[0] != bound.Persona.Greeting {
			t.Fatalf("metadata %q: expected the fallback greeting, got %v", metadata, engine.session.said)
		}
	}
}

func TestRunParticipantTimeout(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{session: &fakeSession{}}
	d := newTestDispatcher(t, engine, WithParticipantTimeout(20*time.Millisecond))

	_, err := d.Run(context.Background(), "call-3", &fakeRoom{name: "room-1", block: true})
	if !errors.Is(err, contractx.ErrNoParticipant) {
		t.Fatalf("expected ErrNoParticipant, got %v", err)
	}
}

func TestRunEngineStartFailure(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{startErr: errors.New("upstream down")}
	d := newTestDispatcher(t, engine)

	room := &fakeRoom{
		name:        "room-1",
		participant: contractx.Participant{Metadata: `{"source_website":"hotel_demo"}`},
	}

	_, err := d.Run(context.Background(), "call-4", room)
	if !errors.Is(err, contractx.ErrEngineStart) {
		t.Fatalf("expected ErrEngineStart, got %v", err)
	}
}

func TestRunGreetingFailureClosesSession(t *testing.T) {
	t.Parallel()

	session := &fakeSession{sayErr: errors.New("stream closed")}
	engine := &fakeEngine{session: session}
	d := newTestDispatcher(t, engine)

	room := &fakeRoom{
		name:        "room-1",
		participant: contractx.Participant{Metadata: `{"source_website":"hotel_demo"}`},
	}

	_, err := d.Run(context.Background(), "call-5", room)
	if err == nil {
		t.Fatal("expected greeting failure to surface")
	}
	if !session.closed {
		t.Fatal("session must be closed when the greeting fails")
	}
}

func TestTerminateIsIdempotent(t *testing.T) {
	t.Parallel()

	session := &fakeSession{}
	engine := &fakeEngine{session: session}
	d := newTestDispatcher(t, engine)

	room := &fakeRoom{
		name:        "room-1",
		participant: contractx.Participant{Metadata: `{"source_website":"hotel_demo"}`},
	}

	bound, err := d.Run(context.Background(), "call-6", room)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := bound.Terminate(); err != nil {
		t.Fatalf("first terminate: %v", err)
	}
	if err := bound.Terminate(); err != nil {
		t.Fatalf("second terminate: %v", err)
	}
	if bound.State() != StateTerminated {
		t.Fatalf("unexpected state: %s", bound.State())
	}
	if !session.closed {
		t.Fatal("terminate must close the session")
	}
}
