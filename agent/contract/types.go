package contract

import "context"

// PersonaID identifies one of the statically defined conversational personas.
type PersonaID string

const (
	PersonaTorq  PersonaID = "torq"
	PersonaHotel PersonaID = "hotel"
)

// Wire names of the callable actions. The catalog is fixed per deployment;
// a persona exposes a subset of it.
const (
	ToolCheckAvailability = "check_availability"
	ToolBookRoom          = "book_room"
)

// Participant is the remote caller as reported by the transport when it
// joins a room. Metadata is an opaque blob attached by the originating site;
// it is parsed defensively and never trusted.
type Participant struct {
	Identity string `json:"identity"`
	Metadata string `json:"metadata,omitempty"`
}

// ToolParam describes one named parameter of a tool.
type ToolParam struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// ToolSpec is the schema advertised to the dialogue collaborator for one
// callable action. The collaborator extracts arguments from spoken language;
// this core only ever sees them as structured values.
type ToolSpec struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Parameters  map[string]ToolParam `json:"parameters,omitempty"`
}

type ToolRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ToolExecutor runs one named tool with structured arguments. Handler-level
// problems (bad arguments, remote failures already translated into guest
// messages) travel in ToolResult.Error; a Go error means the executor itself
// broke.
type ToolExecutor func(ctx context.Context, tool string, args map[string]any) (ToolResult, error)

// BookingRequest carries the LLM-extracted arguments of one book_room call.
// It exists only for the duration of that call and is never persisted here.
type BookingRequest struct {
	GuestName        string `json:"guest_name"`
	Phone            string `json:"phone"`
	CheckIn          string `json:"check_in"`
	CheckOut         string `json:"check_out"`
	BedConfiguration string `json:"bed_configuration"`
}

// BookingRecord is the flat payload submitted to the external record keeper.
// Field names match the remote endpoint's contract.
type BookingRecord struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	CheckIn  string `json:"checkIn"`
	CheckOut string `json:"checkOut"`
	Beds     string `json:"beds"`
	Total    int64  `json:"total"`
}

// RecordOutcome classifies a booking submission.
type RecordOutcome int

const (
	// RecordConfirmed means the endpoint acknowledged with a success status.
	RecordConfirmed RecordOutcome = iota
	// RecordDegraded means the endpoint was reachable but answered with an
	// unexpected status. The booking is treated as provisionally accepted
	// and must be surfaced to operators for reconciliation.
	RecordDegraded
	// RecordFailed means the submission never got an answer (connection or
	// timeout error). The booking must not be reported as successful.
	RecordFailed
)

func (o RecordOutcome) String() string {
	switch o {
	case RecordConfirmed:
		return "confirmed"
	case RecordDegraded:
		return "degraded"
	case RecordFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SessionConfig binds a dialogue session to one persona: its instructions,
// the tool subset it may invoke, and the executor that runs them.
type SessionConfig struct {
	CallID       string
	Instructions string
	Tools        []ToolSpec
	Execute      ToolExecutor
}
