package ghl

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
)

// The CRM rejects creates that collide with an existing contact, and the
// rejection body carries the existing contact's id. Extraction is an ordered
// list of strategies: the structured meta field first, then regex patterns
// over the raw text. If none recover an id the original error stands.

var contactIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`"contactId"\s*:\s*"([^"]+)"`),
	regexp.MustCompile(`contactId["']?\s*[:=]\s*["']?([^"'\s,}]+)`),
	regexp.MustCompile(`contactId["']?\s*:\s*["']?([a-zA-Z0-9]+)`),
}

var duplicateIndicators = []string{
	"duplicated contacts",
	"does not allow duplicated",
	"duplicate contact",
	"duplicate",
}

// IsDuplicateError reports whether err is a create rejection caused by a
// duplicate contact.
func IsDuplicateError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	text := strings.ToLower(apiErr.Body)
	for _, indicator := range duplicateIndicators {
		if strings.Contains(text, indicator) {
			return true
		}
	}
	// 400s mentioning the contact are duplicates in practice even when the
	// wording drifts.
	return apiErr.StatusCode == http.StatusBadRequest && strings.Contains(text, "contact")
}

// ResolveDuplicateContactID extracts the conflicting contact's id from a
// duplicate-create error. The bool result is false when no id could be
// recovered, in which case the caller must re-raise the original error.
func ResolveDuplicateContactID(err error) (string, bool) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return "", false
	}

	var structured struct {
		ContactID string `json:"contactId"`
		Meta      struct {
			ContactID string `json:"contactId"`
		} `json:"meta"`
	}
	if jsonErr := json.Unmarshal([]byte(apiErr.Body), &structured); jsonErr == nil {
		if structured.Meta.ContactID != "" {
			return structured.Meta.ContactID, true
		}
		if structured.ContactID != "" {
			return structured.ContactID, true
		}
	}

	for _, pattern := range contactIDPatterns {
		if match := pattern.FindStringSubmatch(apiErr.Body); len(match) == 2 && match[1] != "" {
			return match[1], true
		}
	}
	return "", false
}
