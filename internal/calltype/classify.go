// Package calltype classifies call transcripts into service categories by
// keyword matching.
package calltype

import (
	"fmt"
	"strings"
)

// CallType is the classified intent of a call.
type CallType string

const (
	ServiceRepair     CallType = "service_repair"
	InstallEstimate   CallType = "install_estimate"
	Maintenance       CallType = "maintenance"
	AppointmentChange CallType = "appointment_change"
	Other             CallType = "other"
)

var keywordSets = []struct {
	callType CallType
	keywords []string
}{
	{ServiceRepair, []string{
		"broken", "not working", "repair", "fix", "broken down",
		"not cooling", "not heating", "leak", "emergency", "urgent",
		"stopped working", "malfunction", "issue", "problem",
	}},
	{InstallEstimate, []string{
		"install", "installation", "new system", "replace", "upgrade",
		"estimate", "quote", "pricing", "cost", "price", "how much",
		"new unit", "new equipment",
	}},
	{Maintenance, []string{
		"maintenance", "tune-up", "service", "check-up", "inspection",
		"preventive", "annual", "regular service", "maintenance plan",
	}},
	{AppointmentChange, []string{
		"reschedule", "cancel", "change", "move", "postpone",
		"different time", "different date", "appointment",
	}},
}

// Result is a classification with its confidence and rationale.
type Result struct {
	CallType   CallType `json:"callType"`
	Confidence float64  `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
}

// Classify scores the transcript and optional summary against each keyword
// set. Confidence starts at 0.5 and grows 0.1 per matched keyword, capped at
// 0.95. No matches at all yields Other at 0.5.
func Classify(transcript, summary string) Result {
	combined := strings.ToLower(transcript) + " " + strings.ToLower(summary)

	best := Other
	bestCount := 0
	for _, set := range keywordSets {
		count := 0
		for _, kw := range set.keywords {
			if strings.Contains(combined, kw) {
				count++
			}
		}
		if count > bestCount {
			best, bestCount = set.callType, count
		}
	}

	confidence := 0.5
	if bestCount > 0 {
		confidence = 0.5 + float64(bestCount)*0.1
		if confidence > 0.95 {
			confidence = 0.95
		}
	}
	return Result{
		CallType:   best,
		Confidence: confidence,
		Reasoning:  fmt.Sprintf("Detected %d matching keywords for %s", bestCount, best),
	}
}
