package tool

import (
	"context"
	"fmt"

	contractx "github.com/torqlabs/voice-concierge/agent/contract"
	personax "github.com/torqlabs/voice-concierge/agent/persona"
	journalx "github.com/torqlabs/voice-concierge/pkg/journal"
)

// Executor runs one named tool for a session. Alias of the contract type so
// session engines can accept it without importing this package.
type Executor = contractx.ToolExecutor

// Deps carries the collaborators the side-effecting handlers need.
type Deps struct {
	Recorder contractx.Recorder
	Journal  journalx.Journal
	CallID   string
}

// BuildForPersona returns the tool subset a persona may invoke together with
// an executor wired to it. The default persona gets no specs and an executor
// that refuses everything.
func BuildForPersona(p personax.Profile, deps Deps) ([]contractx.ToolSpec, Executor) {
	return specsForPersona(p), NewExecutor(p, deps)
}

// NewExecutor dispatches tool invocations to their handlers. Tools outside
// the persona's capability set fall through to the unavailable response even
// if a collaborator asks for them by name.
func NewExecutor(p personax.Profile, deps Deps) Executor {
	fallback := DefaultExecutor(p)
	return func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error) {
		if !p.Can(tool) {
			return fallback(ctx, tool, args)
		}
		switch tool {
		case contractx.ToolCheckAvailability:
			return executeAvailability(tool, args)
		case contractx.ToolBookRoom:
			return executeBooking(ctx, tool, args, deps)
		default:
			return fallback(ctx, tool, args)
		}
	}
}

// DefaultExecutor answers every invocation with an unavailable message.
func DefaultExecutor(p personax.Profile) Executor {
	return func(ctx context.Context, tool string, _ map[string]any) (contractx.ToolResult, error) {
		return contractx.ToolResult{
			Tool:  tool,
			Error: fmt.Sprintf("tool=%s is unavailable for persona=%s", tool, p.ID),
		}, nil
	}
}

func specsForPersona(p personax.Profile) []contractx.ToolSpec {
	catalog := []contractx.ToolSpec{
		availabilitySpec(),
		bookingSpec(),
	}

	var specs []contractx.ToolSpec
	for _, spec := range catalog {
		if p.Can(spec.Name) {
			specs = append(specs, spec)
		}
	}
	return specs
}

func availabilitySpec() contractx.ToolSpec {
	return contractx.ToolSpec{
		Name:        contractx.ToolCheckAvailability,
		Description: "Check room availability for a date range.",
		Parameters: map[string]contractx.ToolParam{
			"check_in":  {Type: "string", Description: "Check-in date, YYYY-MM-DD", Required: true},
			"check_out": {Type: "string", Description: "Check-out date, YYYY-MM-DD", Required: true},
		},
	}
}

func bookingSpec() contractx.ToolSpec {
	return contractx.ToolSpec{
		Name:        contractx.ToolBookRoom,
		Description: "Finalize the room booking. REQUIRES: Name, Phone, Check-in, Check-out.",
		Parameters: map[string]contractx.ToolParam{
			"guest_name":        {Type: "string", Description: "Guest full name", Required: true},
			"phone":             {Type: "string", Description: "Guest phone number", Required: true},
			"check_in":          {Type: "string", Description: "Check-in date, YYYY-MM-DD", Required: true},
			"check_out":         {Type: "string", Description: "Check-out date, YYYY-MM-DD", Required: true},
			"bed_configuration": {Type: "string", Description: "Requested bed configuration", Required: false},
		},
	}
}

// stringArg extracts a required string argument; the error message is meant
// for the dialogue collaborator, not the guest.
func stringArg(args map[string]any, name string) (string, string) {
	raw, ok := args[name]
	if !ok {
		return "", name + " is required"
	}
	value, ok := raw.(string)
	if !ok {
		return "", name + " must be a string"
	}
	return value, ""
}
