// Package scoring ranks leads for follow-up priority.
package scoring

import (
	"strings"
	"time"

	"github.com/scottvalleyhvac/voice-agent/internal/ghl"
)

// CallInfo carries optional call metadata into the scorer.
type CallInfo struct {
	Outcome  string
	CallTime time.Time
}

// LeadQuality scores a lead from 0 to 100 across five factors: contact
// completeness (20), service urgency (25), lead source quality (20),
// response time (15) and call outcome (20). Missing data falls back to
// mid-range defaults rather than zero so sparse leads are not buried.
func LeadQuality(contact *ghl.Contact, call *CallInfo) int {
	if contact == nil {
		return 0
	}
	score := completenessScore(contact) +
		urgencyScore(contact.Fields) +
		sourceScore(contact) +
		responseScore(contact, call) +
		outcomeScore(contact.Fields, call)
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func completenessScore(c *ghl.Contact) int {
	score := 0
	if c.FirstName != "" && c.LastName != "" {
		score += 5
	}
	if c.Phone != "" {
		score += 5
	}
	if c.Email != "" {
		score += 5
	}
	if c.Address1 != "" {
		score += 5
	}
	return score
}

func urgencyScore(fields ghl.FieldMap) int {
	switch strings.ToLower(fields.Get("urgency")) {
	case "emergency":
		return 25
	case "urgent":
		return 18
	case "standard":
		return 10
	case "low":
		return 5
	}
	callType := strings.ToLower(fields.Get("call_type"))
	switch {
	case strings.Contains(callType, "emergency"), strings.Contains(callType, "urgent"):
		return 20
	case strings.Contains(callType, "maintenance"):
		return 8
	default:
		return 12
	}
}

func sourceScore(c *ghl.Contact) int {
	source := strings.ToLower(c.Fields.Get("lead_source"))
	if source == "" {
		for _, tag := range c.Tags {
			lower := strings.ToLower(tag)
			if strings.Contains(lower, "referral") {
				source = "referral"
				break
			}
			if strings.Contains(lower, "form") {
				source = "form"
				break
			}
		}
	}
	switch {
	case strings.Contains(source, "referral"):
		return 20
	case strings.Contains(source, "form"), strings.Contains(source, "website"):
		return 15
	case strings.Contains(source, "google"), strings.Contains(source, "meta"),
		strings.Contains(source, "facebook"), strings.Contains(source, "ad"):
		return 12
	case strings.Contains(source, "chat"):
		return 8
	default:
		return 10
	}
}

func responseScore(c *ghl.Contact, call *CallInfo) int {
	if call == nil || call.CallTime.IsZero() || c.DateAdded == "" {
		return 5
	}
	added, err := time.Parse(time.RFC3339, c.DateAdded)
	if err != nil {
		return 5
	}
	switch minutes := call.CallTime.Sub(added).Minutes(); {
	case minutes < 5:
		return 15
	case minutes < 15:
		return 12
	case minutes < 60:
		return 8
	case minutes < 240:
		return 5
	default:
		return 2
	}
}

func outcomeScore(fields ghl.FieldMap, call *CallInfo) int {
	if call != nil && call.Outcome != "" {
		outcome := strings.ToLower(call.Outcome)
		switch {
		case strings.Contains(outcome, "booked"), strings.Contains(outcome, "appointment"):
			return 20
		case strings.Contains(outcome, "interested"), strings.Contains(outcome, "callback"):
			return 15
		case strings.Contains(outcome, "transferred"):
			return 12
		case strings.Contains(outcome, "no_answer"), strings.Contains(outcome, "voicemail"):
			return 5
		case strings.Contains(outcome, "declined"), strings.Contains(outcome, "not_interested"):
			return 2
		default:
			return 8
		}
	}
	if fields.Bool("vapi_called") {
		return 8
	}
	return 5
}
