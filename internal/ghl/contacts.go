package ghl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Contact is the canonical contact record after normalization. Phone is the
// first value found among the CRM's several phone field variants.
type Contact struct {
	ID         string
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Address1   string
	PostalCode string
	Tags       []string
	DateAdded  string
	Fields     FieldMap
}

// ContactRequest is the write shape for creates and updates. Fields holds
// canonical (unprefixed) custom-field keys; the client prefixes them.
type ContactRequest struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Address1   string
	PostalCode string
	Fields     map[string]string
}

func (r ContactRequest) payload(locationID string) map[string]any {
	body := map[string]any{
		"firstName":    r.FirstName,
		"lastName":     r.LastName,
		"phone":        r.Phone,
		"address1":     r.Address1,
		"postalCode":   r.PostalCode,
		"customFields": BuildCustomFields(r.Fields),
	}
	// GHL rejects empty-string emails; omit instead.
	if r.Email != "" {
		body["email"] = r.Email
	}
	if locationID != "" {
		body["locationId"] = locationID
	}
	return body
}

// rawContact mirrors the loose upstream shape before normalization.
type rawContact struct {
	ID           string          `json:"id"`
	FirstName    string          `json:"firstName"`
	LastName     string          `json:"lastName"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	PhoneNumber  string          `json:"phoneNumber"`
	PhoneNumbers []struct {
		Number string `json:"number"`
	} `json:"phoneNumbers"`
	Address1     string          `json:"address1"`
	PostalCode   string          `json:"postalCode"`
	Tags         []string        `json:"tags"`
	DateAdded    string          `json:"dateAdded"`
	CreatedAt    string          `json:"createdAt"`
	CustomFields json.RawMessage `json:"customFields"`
}

func (r rawContact) normalize() *Contact {
	phone := r.Phone
	if phone == "" {
		phone = r.PhoneNumber
	}
	if phone == "" && len(r.PhoneNumbers) > 0 {
		phone = r.PhoneNumbers[0].Number
	}
	added := r.DateAdded
	if added == "" {
		added = r.CreatedAt
	}
	return &Contact{
		ID:         r.ID,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Email:      r.Email,
		Phone:      phone,
		Address1:   r.Address1,
		PostalCode: r.PostalCode,
		Tags:       r.Tags,
		DateAdded:  added,
		Fields:     ParseCustomFields(r.CustomFields),
	}
}

// decodeContact handles both envelope styles: {"contact": {...}} and a flat
// contact object.
func decodeContact(data []byte) (*Contact, error) {
	var wrapper struct {
		Contact json.RawMessage `json:"contact"`
	}
	body := data
	if err := json.Unmarshal(data, &wrapper); err == nil && len(wrapper.Contact) > 0 {
		body = wrapper.Contact
	}
	var raw rawContact
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("ghl: decode contact: %w", err)
	}
	return raw.normalize(), nil
}

// ErrContactNotFound is returned when a contact lookup yields nothing.
var ErrContactNotFound = errors.New("ghl: contact not found")

// CreateContact creates a new contact. Duplicate-contact rejections come
// back as *APIError; see ResolveDuplicateContactID.
func (c *Client) CreateContact(ctx context.Context, req ContactRequest) (*Contact, error) {
	data, err := c.invoke(ctx, http.MethodPost, "contacts/", nil, req.payload(c.locationID))
	if err != nil {
		return nil, err
	}
	return decodeContact(data)
}

// GetContact fetches a contact by id.
func (c *Client) GetContact(ctx context.Context, contactID string) (*Contact, error) {
	if strings.TrimSpace(contactID) == "" {
		return nil, errors.New("ghl: contact id required")
	}
	data, err := c.invoke(ctx, http.MethodGet, "contacts/"+contactID, c.locationQuery(), nil)
	if err != nil {
		if status, ok := statusOf(err); ok && status == http.StatusNotFound {
			return nil, ErrContactNotFound
		}
		return nil, err
	}
	return decodeContact(data)
}

// SearchContact looks a contact up by phone and/or email. The search query
// string is capped at 75 characters by the API. Results are filtered for an
// exact match before falling back to the first hit; no hits returns
// ErrContactNotFound.
func (c *Client) SearchContact(ctx context.Context, phone, email string) (*Contact, error) {
	if phone == "" && email == "" {
		return nil, errors.New("ghl: phone or email required for search")
	}
	var parts []string
	if phone != "" {
		parts = append(parts, "phone:"+cleanPhone(phone))
	}
	if email != "" {
		parts = append(parts, "email:"+strings.ToLower(email))
	}
	query := strings.Join(parts, " ")
	if len(query) > 75 {
		query = parts[0]
		if len(query) > 75 {
			query = query[:75]
		}
	}

	payload := map[string]any{
		"locationId": c.locationID,
		"pageLimit":  10,
		"query":      query,
	}
	data, err := c.invoke(ctx, http.MethodPost, "contacts/search", nil, payload)
	if err != nil {
		return nil, err
	}

	raws, err := decodeContactList(data)
	if err != nil {
		return nil, err
	}
	if len(raws) == 0 {
		return nil, ErrContactNotFound
	}
	for _, raw := range raws {
		candidate := raw.normalize()
		if phone != "" && cleanPhone(candidate.Phone) == cleanPhone(phone) {
			return candidate, nil
		}
		if email != "" && strings.EqualFold(candidate.Email, email) {
			return candidate, nil
		}
	}
	return raws[0].normalize(), nil
}

func decodeContactList(data []byte) ([]rawContact, error) {
	var asList []rawContact
	if err := json.Unmarshal(data, &asList); err == nil {
		return asList, nil
	}
	var wrapper struct {
		Contacts []rawContact `json:"contacts"`
		Data     []rawContact `json:"data"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("ghl: decode contact search: %w", err)
	}
	if len(wrapper.Contacts) > 0 {
		return wrapper.Contacts, nil
	}
	return wrapper.Data, nil
}

func cleanPhone(phone string) string {
	replacer := strings.NewReplacer("+", "", "-", "", " ", "", "(", "", ")", "")
	return replacer.Replace(phone)
}

// UpdateContact updates an existing contact in place.
func (c *Client) UpdateContact(ctx context.Context, contactID string, req ContactRequest) error {
	if strings.TrimSpace(contactID) == "" {
		return errors.New("ghl: contact id required for update")
	}
	_, err := c.invoke(ctx, http.MethodPut, "contacts/"+contactID, c.locationQuery(), req.payload(""))
	return err
}

// UpdateContactFields writes only custom fields, as a single update. Callers
// rely on this being one request: either every field lands or none do.
func (c *Client) UpdateContactFields(ctx context.Context, contactID string, fields map[string]string) error {
	if strings.TrimSpace(contactID) == "" {
		return errors.New("ghl: contact id required for field update")
	}
	payload := map[string]any{
		"customFields": BuildCustomFields(fields),
	}
	_, err := c.invoke(ctx, http.MethodPut, "contacts/"+contactID, c.locationQuery(), payload)
	return err
}

// AddTimelineNote appends a note to the contact's activity timeline.
func (c *Client) AddTimelineNote(ctx context.Context, contactID, note string) error {
	if strings.TrimSpace(contactID) == "" {
		return errors.New("ghl: contact id required for note")
	}
	payload := map[string]any{
		"locationId": c.locationID,
		"body":       note,
	}
	_, err := c.invoke(ctx, http.MethodPost, "contacts/"+contactID+"/notes", nil, payload)
	return err
}
