// Package contacts manages the contact lifecycle. There is no owned
// persistence: the lifecycle state is inferred from CRM custom fields, so the
// CRM record is the single source of truth.
package contacts

import "github.com/scottvalleyhvac/voice-agent/internal/ghl"

// State is a contact's position in the call lifecycle.
type State string

const (
	// StateNew means no outbound call has been attempted.
	StateNew State = "new"
	// StateCallInitiated means an outbound call was placed.
	StateCallInitiated State = "call_initiated"
	// StateFallbackSent is terminal: the SMS fallback went out.
	StateFallbackSent State = "sms_fallback_sent"
)

// Custom-field keys carrying lifecycle state on the CRM contact.
const (
	FieldVapiCalled        = "vapi_called"
	FieldVapiCallID        = "vapi_call_id"
	FieldSMSConsent        = "sms_consent"
	FieldSMSFallbackSent   = "sms_fallback_sent"
	FieldSMSFallbackDate   = "sms_fallback_date"
	FieldSMSFallbackReason = "sms_fallback_reason"
	FieldLeadSource        = "lead_source"
	FieldLeadQualityScore  = "lead_quality_score"
)

// StateOf derives the lifecycle state from a contact's custom fields.
func StateOf(fields ghl.FieldMap) State {
	switch {
	case fields.Bool(FieldSMSFallbackSent):
		return StateFallbackSent
	case fields.Bool(FieldVapiCalled):
		return StateCallInitiated
	default:
		return StateNew
	}
}

// CanInitiateCall reports whether an outbound call may be placed. A contact
// that was already called is never called again by the intake flow.
func CanInitiateCall(fields ghl.FieldMap) bool {
	return !fields.Bool(FieldVapiCalled)
}

// CanSendFallback reports whether the SMS fallback may fire. Consent must be
// explicitly recorded as true; absence is a hard stop. A fallback is sent at
// most once per contact.
func CanSendFallback(fields ghl.FieldMap) bool {
	return fields.Bool(FieldSMSConsent) && !fields.Bool(FieldSMSFallbackSent)
}
