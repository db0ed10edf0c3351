package contract

import "context"

// Room is the slice of the call transport the dispatcher needs: the ability
// to observe the remote caller joining. Everything else about the transport
// (audio, teardown) stays with its owner.
type Room interface {
	Name() string
	AwaitParticipant(ctx context.Context) (Participant, error)
}

// SessionEngine starts a dialogue session bound to one persona. The engine
// owns the LLM loop (turn taking, extraction, tool-call plumbing); this core
// only hands it instructions, the tool subset, and an executor.
type SessionEngine interface {
	StartSession(ctx context.Context, cfg SessionConfig) (SessionHandle, error)
}

// SessionHandle is a running dialogue session.
type SessionHandle interface {
	// Say speaks one utterance to the caller. With allowInterruptions false
	// the utterance must complete before free-form dialogue resumes.
	Say(ctx context.Context, text string, allowInterruptions bool) error
	Close() error
}

// AudioSession is implemented by engines that carry caller audio themselves.
// Transports bridge raw frames through it; text-mode engines skip it.
type AudioSession interface {
	SessionHandle
	SendAudio(data []byte) error
	SetAudioSink(fn func(data []byte))
}

// Recorder submits a finalized booking to the external record keeper.
// A single attempt, at most once; the error is non-nil only for
// RecordFailed.
type Recorder interface {
	Record(ctx context.Context, rec BookingRecord) (RecordOutcome, error)
}
