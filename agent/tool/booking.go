package tool

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/torqlabs/voice-concierge/agent/contract"
	pricingx "github.com/torqlabs/voice-concierge/agent/pricing"
	journalx "github.com/torqlabs/voice-concierge/pkg/journal"
)

// DefaultBedConfiguration is used when the collaborator does not extract a
// bed preference from the guest.
const DefaultBedConfiguration = "1 Double Bed"

// BookingOutput is the booking attempt result handed back to the dialogue
// collaborator. Message is what the guest should hear.
type BookingOutput struct {
	GuestName string `json:"guest_name"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
	Beds      string `json:"beds"`
	Nights    int    `json:"nights"`
	Total     int64  `json:"total"`
	Outcome   string `json:"outcome"`
	Message   string `json:"message"`
}

func executeBooking(ctx context.Context, tool string, args map[string]any, deps Deps) (contractx.ToolResult, error) {
	if deps.Recorder == nil {
		return contractx.ToolResult{Tool: tool, Error: "booking recorder is not configured"}, nil
	}

	req, errMsg := bookingRequest(args)
	if errMsg != "" {
		return contractx.ToolResult{Tool: tool, Error: errMsg}, nil
	}

	quote := pricingx.ForStay(req.CheckIn, req.CheckOut)
	record := contractx.BookingRecord{
		Name:     req.GuestName,
		Phone:    req.Phone,
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
		Beds:     req.BedConfiguration,
		Total:    quote.Total,
	}

	outcome, err := deps.Recorder.Record(ctx, record)
	switch outcome {
	case contractx.RecordDegraded:
		log.Warn().
			Str("call_id", deps.CallID).
			Str("guest", record.Name).
			Int64("total", record.Total).
			Msg("booking accepted on degraded path, needs reconciliation")
	case contractx.RecordFailed:
		log.Error().
			Err(err).
			Str("call_id", deps.CallID).
			Str("guest", record.Name).
			Msg("booking submission failed")
	}

	appendOutcome(ctx, deps, record, quote.Nights, outcome)

	return contractx.ToolResult{
		Tool: tool,
		Result: BookingOutput{
			GuestName: record.Name,
			CheckIn:   record.CheckIn,
			CheckOut:  record.CheckOut,
			Beds:      record.Beds,
			Nights:    quote.Nights,
			Total:     quote.Total,
			Outcome:   outcome.String(),
			Message:   guestMessage(record, outcome),
		},
	}, nil
}

func bookingRequest(args map[string]any) (contractx.BookingRequest, string) {
	var req contractx.BookingRequest
	var errMsg string

	if req.GuestName, errMsg = stringArg(args, "guest_name"); errMsg != "" {
		return req, errMsg
	}
	if req.Phone, errMsg = stringArg(args, "phone"); errMsg != "" {
		return req, errMsg
	}
	if req.CheckIn, errMsg = stringArg(args, "check_in"); errMsg != "" {
		return req, errMsg
	}
	if req.CheckOut, errMsg = stringArg(args, "check_out"); errMsg != "" {
		return req, errMsg
	}

	if raw, ok := args["bed_configuration"]; ok {
		if beds, isString := raw.(string); isString && strings.TrimSpace(beds) != "" {
			req.BedConfiguration = strings.TrimSpace(beds)
		}
	}
	if req.BedConfiguration == "" {
		req.BedConfiguration = DefaultBedConfiguration
	}
	return req, ""
}

// guestMessage translates the submission outcome into what the persona
// tells the guest. Only the confirmed and degraded paths may sound like a
// booked room; the failed path never claims success.
func guestMessage(rec contractx.BookingRecord, outcome contractx.RecordOutcome) string {
	switch outcome {
	case contractx.RecordConfirmed:
		return fmt.Sprintf(
			"Reservation confirmed for %s. Total cost is %d INR. You will receive a confirmation shortly.",
			rec.Name, rec.Total,
		)
	case contractx.RecordDegraded:
		return "I have confirmed the details, but our system is slow. Please consider it booked."
	default:
		return "I am sorry, I could not reach our booking system, so the reservation is not confirmed yet. Please try again in a moment."
	}
}

func appendOutcome(ctx context.Context, deps Deps, rec contractx.BookingRecord, nights int, outcome contractx.RecordOutcome) {
	if deps.Journal == nil {
		return
	}
	entry := journalx.Entry{
		CallID:    deps.CallID,
		GuestName: rec.Name,
		Phone:     rec.Phone,
		CheckIn:   rec.CheckIn,
		CheckOut:  rec.CheckOut,
		Beds:      rec.Beds,
		Nights:    nights,
		Total:     rec.Total,
		Outcome:   outcome.String(),
		CreatedAt: time.Now().UTC(),
	}
	if err := deps.Journal.Append(ctx, entry); err != nil {
		log.Warn().Err(err).Str("call_id", deps.CallID).Msg("outcome journal append failed")
	}
}
