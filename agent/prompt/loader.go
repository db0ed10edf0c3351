package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/torq.txt
	torqRaw string

	//go:embed template/hotel.txt
	hotelRaw string
)

// PromptSet holds the persona instruction scripts.
type PromptSet struct {
	Torq  string
	Hotel string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
// Safe to call concurrently; the embed is compile-time and trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Torq:  strings.TrimSpace(torqRaw),
		Hotel: strings.TrimSpace(hotelRaw),
	}
}
