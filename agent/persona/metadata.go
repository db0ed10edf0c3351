package persona

import (
	"encoding/json"
	"strings"

	contractx "github.com/torqlabs/voice-concierge/agent/contract"
)

// Source tokens carried in participant metadata.
const (
	SourceHotelDemo   = "hotel_demo"
	SourceTorqWebsite = "torq_website"
)

// SourceResult is the outcome of parsing participant metadata. OK is false
// when the metadata was absent or malformed; the caller takes the fallback
// branch instead of failing the call.
type SourceResult struct {
	Source string
	OK     bool
}

type participantMetadata struct {
	SourceWebsite string `json:"source_website"`
}

// ParseSource extracts the source identifier from a participant's metadata
// blob. Absent or unparsable metadata never fails: it yields OK=false so the
// fallback to the default persona stays a visible branch.
func ParseSource(metadata string) SourceResult {
	raw := strings.TrimSpace(metadata)
	if raw == "" {
		return SourceResult{}
	}

	var meta participantMetadata
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return SourceResult{}
	}

	source := strings.TrimSpace(meta.SourceWebsite)
	if source == "" {
		source = SourceTorqWebsite
	}
	return SourceResult{Source: source, OK: true}
}

// SourceFor resolves the participant's metadata straight to a source token,
// defaulting to the Torq website on any parse failure.
func SourceFor(p contractx.Participant) string {
	res := ParseSource(p.Metadata)
	if !res.OK {
		return SourceTorqWebsite
	}
	return res.Source
}
