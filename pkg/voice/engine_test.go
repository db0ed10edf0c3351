package voice

import (
	"testing"

	"google.golang.org/genai"

	contractx "github.com/torqlabs/voice-concierge/agent/contract"
)

func TestToGenAITools(t *testing.T) {
	t.Parallel()

	tools := toGenAITools([]contractx.ToolSpec{
		{
			Name:        "check_availability",
			Description: "Check room availability for a date range.",
			Parameters: map[string]contractx.ToolParam{
				"check_in":  {Type: "string", Description: "Check-in date", Required: true},
				"check_out": {Type: "string", Description: "Check-out date", Required: true},
			},
		},
		{
			Name:        "book_room",
			Description: "Finalize the room booking.",
			Parameters: map[string]contractx.ToolParam{
				"guest_name": {Type: "string", Required: true},
				"beds":       {Type: "string"},
			},
		},
	})
	if len(tools) != 1 {
		t.Fatalf("expected 1 tool group, got %d", len(tools))
	}

	decls := tools[0].FunctionDeclarations
	if len(decls) != 2 {
		t.Fatalf("expected 2 declarations, got %d", len(decls))
	}

	avail := decls[0]
	if avail.Name != "check_availability" {
		t.Fatalf("unexpected name: %s", avail.Name)
	}
	if avail.Parameters == nil || avail.Parameters.Type != genai.TypeObject {
		t.Fatal("expected an object parameter schema")
	}
	if len(avail.Parameters.Properties) != 2 {
		t.Fatalf("expected 2 properties, got %d", len(avail.Parameters.Properties))
	}
	if got := avail.Parameters.Required; len(got) != 2 || got[0] != "check_in" || got[1] != "check_out" {
		t.Fatalf("unexpected required list: %v", got)
	}

	book := decls[1]
	if got := book.Parameters.Required; len(got) != 1 || got[0] != "guest_name" {
		t.Fatalf("unexpected required list: %v", got)
	}
}

func TestToGenAIToolsEmpty(t *testing.T) {
	t.Parallel()

	if tools := toGenAITools(nil); tools != nil {
		t.Fatalf("expected nil tools, got %v", tools)
	}
}

func TestToGenAIToolsNoParameters(t *testing.T) {
	t.Parallel()

	tools := toGenAITools([]contractx.ToolSpec{{Name: "hang_up", Description: "End the call."}})
	decl := tools[0].FunctionDeclarations[0]
	if decl.Parameters != nil {
		t.Fatal("expected no parameter schema for a parameterless tool")
	}
}
