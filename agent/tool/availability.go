package tool

import (
	"fmt"

	contractx "github.com/torqlabs/voice-concierge/agent/contract"
	pricingx "github.com/torqlabs/voice-concierge/agent/pricing"
)

// AvailabilityOutput is the availability check result. The deployment
// assumes unconstrained inventory, so the answer is always yes.
type AvailabilityOutput struct {
	CheckIn     string `json:"check_in"`
	CheckOut    string `json:"check_out"`
	NightlyRate int    `json:"nightly_rate"`
	Message     string `json:"message"`
}

func executeAvailability(tool string, args map[string]any) (contractx.ToolResult, error) {
	checkIn, errMsg := stringArg(args, "check_in")
	if errMsg != "" {
		return contractx.ToolResult{Tool: tool, Error: errMsg}, nil
	}
	checkOut, errMsg := stringArg(args, "check_out")
	if errMsg != "" {
		return contractx.ToolResult{Tool: tool, Error: errMsg}, nil
	}

	return contractx.ToolResult{
		Tool: tool,
		Result: AvailabilityOutput{
			CheckIn:     checkIn,
			CheckOut:    checkOut,
			NightlyRate: pricingx.NightlyRate,
			Message: fmt.Sprintf(
				"Yes, we have rooms available from %s to %s at %d INR per night.",
				checkIn, checkOut, pricingx.NightlyRate,
			),
		},
	}, nil
}
