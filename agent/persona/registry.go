package persona

import (
	contractx "github.com/torqlabs/voice-concierge/agent/contract"
	promptx "github.com/torqlabs/voice-concierge/agent/prompt"
)

// Profile is the immutable persona descriptor a call gets bound to: the
// instruction script, the opening utterance, and the subset of the action
// catalog it may invoke. Built once at process start, never mutated.
type Profile struct {
	ID           contractx.PersonaID
	Instructions string
	Greeting     string
	Capabilities []string
}

// Can reports whether the profile's capability set contains the tool.
func (p Profile) Can(tool string) bool {
	for _, name := range p.Capabilities {
		if name == tool {
			return true
		}
	}
	return false
}

// Registry maps a caller-supplied source identifier to a persona profile.
// Pure lookup, deterministic, safe for concurrent use.
type Registry struct {
	profiles map[string]Profile
	fallback Profile
}

// NewRegistry builds the static persona table. The Torq profile is the
// fallback and deliberately carries no capabilities: an unrecognized or
// malformed source must never be granted booking actions.
func NewRegistry() *Registry {
	prompts := promptx.LoadPromptSet()

	torq := Profile{
		ID:           contractx.PersonaTorq,
		Instructions: prompts.Torq,
		Greeting:     "Welcome to Torq Agents. How can I help you automate your business?",
	}
	hotel := Profile{
		ID:           contractx.PersonaHotel,
		Instructions: prompts.Hotel,
		Greeting:     "Welcome to Demo Hotel. How can I assist with your reservation today?",
		Capabilities: []string{
			contractx.ToolCheckAvailability,
			contractx.ToolBookRoom,
		},
	}

	return &Registry{
		profiles: map[string]Profile{
			SourceHotelDemo: hotel,
		},
		fallback: torq,
	}
}

// Resolve returns the profile for a source identifier. Every value that is
// not a recognized token resolves to the fallback profile.
func (r *Registry) Resolve(source string) Profile {
	if p, ok := r.profiles[source]; ok {
		return p
	}
	return r.fallback
}

// ResolveParticipant parses the participant's metadata and resolves the
// persona in one step.
func (r *Registry) ResolveParticipant(p contractx.Participant) Profile {
	return r.Resolve(SourceFor(p))
}
