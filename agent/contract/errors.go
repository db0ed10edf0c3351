package contract

import "errors"

var (
	ErrNoParticipant = errors.New("no participant joined the call")
	ErrEngineStart   = errors.New("dialogue session start failed")
	ErrModelInvoke   = errors.New("model invoke failed")
	ErrValidation    = errors.New("validation failed")
)
