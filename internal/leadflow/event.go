package leadflow

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Event is the normalized form of an inbound CRM webhook. The upstream
// payload shape varies by trigger source, so parsing tolerates several field
// spellings and nestings.
type Event struct {
	Type          string
	LocationID    string
	ContactID     string
	AssistantID   string
	PhoneNumberID string
	LeadSource    string
}

// Event types that trigger the lead intake flow.
const (
	EventContactCreated   = "contact.created"
	EventContactUpdated   = "contact.updated"
	EventFormSubmitted    = "form.submitted"
	EventAppointmentMade  = "appointment.created"
	EventConversation     = "conversation.created"
	EventChatConverted    = "chat.converted"
	EventWebchatConverted = "webchat.converted"
	EventLeadCreated      = "lead.created"
	EventAdSubmission     = "ad.submission"
	EventGoogleLead       = "google.lead"
	EventMetaLead         = "meta.lead"
	EventFacebookLead     = "facebook.lead"
)

func isChatEvent(t string) bool {
	switch t {
	case EventConversation, EventChatConverted, EventWebchatConverted:
		return true
	}
	return false
}

func isAdEvent(t string) bool {
	switch t {
	case EventLeadCreated, EventAdSubmission, EventGoogleLead, EventMetaLead, EventFacebookLead:
		return true
	}
	return false
}

// ParseEvent normalizes a raw webhook body. The event type may arrive under
// "type" or "event"; contact and location ids may sit at the top level or
// inside "data" and its nested objects.
func ParseEvent(raw []byte) (*Event, error) {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("leadflow: parse webhook body: %w", err)
	}

	eventType := stringField(body, "type")
	if eventType == "" {
		eventType = stringField(body, "event")
	}
	eventType = strings.TrimSpace(eventType)

	data, _ := body["data"].(map[string]any)

	locationID := stringField(body, "locationId")
	if locationID == "" {
		locationID = stringField(data, "locationId")
	}

	ev := &Event{
		Type:          eventType,
		LocationID:    locationID,
		ContactID:     extractContactID(body, data),
		AssistantID:   firstString(data, body, "assistantId"),
		PhoneNumberID: firstString(data, body, "phoneNumberId"),
	}

	if isAdEvent(eventType) {
		ev.LeadSource = extractLeadSource(data)
	} else {
		ev.LeadSource = firstString(data, body, "leadSource")
	}
	return ev, nil
}

// extractContactID walks the id locations the CRM uses across trigger
// sources: top-level, nested contact object, and the per-source containers
// (form, conversation, chat, lead, ad).
func extractContactID(body, data map[string]any) string {
	if id := stringField(body, "contactId"); id != "" {
		return id
	}
	if id := nestedString(body, "contact", "id"); id != "" {
		return id
	}
	if id := stringField(data, "contactId"); id != "" {
		return id
	}
	if id := nestedString(data, "contact", "id"); id != "" {
		return id
	}
	for _, container := range []string{"form", "conversation", "chat", "lead", "ad"} {
		if id := nestedString(data, container, "contactId"); id != "" {
			return id
		}
	}
	return ""
}

func extractLeadSource(data map[string]any) string {
	if src := stringField(data, "source"); src != "" {
		return src
	}
	if src := stringField(data, "leadSource"); src != "" {
		return src
	}
	if src := nestedString(data, "ad", "platform"); src != "" {
		return src
	}
	return "unknown"
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

func nestedString(m map[string]any, container, key string) string {
	if m == nil {
		return ""
	}
	inner, _ := m[container].(map[string]any)
	return stringField(inner, key)
}

func firstString(data, body map[string]any, key string) string {
	if s := stringField(data, key); s != "" {
		return s
	}
	return stringField(body, key)
}
