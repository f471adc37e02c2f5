package ghl

import (
	"encoding/json"
	"strings"
)

// fieldPrefix is prepended by GHL to contact custom-field keys. The API is
// inconsistent about whether reads come back prefixed, so the adapter strips
// it on the way in and restores it on the way out.
const fieldPrefix = "contact."

// FieldMap is the canonical view of a contact's custom fields: unprefixed
// keys, string values. It is the only persisted state this system owns.
type FieldMap map[string]string

// Get looks a field up by its canonical key.
func (m FieldMap) Get(key string) string {
	if v, ok := m[strings.TrimPrefix(key, fieldPrefix)]; ok {
		return v
	}
	return ""
}

// Bool interprets the CRM's bool-as-string convention.
func (m FieldMap) Bool(key string) bool {
	return strings.EqualFold(strings.TrimSpace(m.Get(key)), "true")
}

// CustomField is the wire shape GHL expects when writing contact fields.
type CustomField struct {
	Key        string `json:"key"`
	FieldValue string `json:"field_value"`
}

// NormalizeFieldKey restores the prefixed form GHL generates for contact
// custom fields.
func NormalizeFieldKey(key string) string {
	if strings.HasPrefix(key, fieldPrefix) {
		return key
	}
	return fieldPrefix + key
}

// BuildCustomFields converts a canonical field map into the prefixed array
// format GHL expects on contact writes. Iteration order is not significant
// to the API.
func BuildCustomFields(fields map[string]string) []CustomField {
	out := make([]CustomField, 0, len(fields))
	for key, value := range fields {
		out = append(out, CustomField{Key: NormalizeFieldKey(key), FieldValue: value})
	}
	return out
}

// ParseCustomFields accepts every customFields shape GHL returns: an array
// of objects keyed by "key" or "name"/"id" with the value under "value" or
// "field_value", or a plain object map. Keys are canonicalized by stripping
// the contact prefix.
func ParseCustomFields(raw json.RawMessage) FieldMap {
	fields := FieldMap{}
	if len(raw) == 0 {
		return fields
	}

	var asList []map[string]any
	if err := json.Unmarshal(raw, &asList); err == nil {
		for _, entry := range asList {
			key := stringValue(entry["key"])
			if key == "" {
				key = stringValue(entry["name"])
			}
			if key == "" {
				key = stringValue(entry["id"])
			}
			if key == "" {
				continue
			}
			value := stringValue(entry["value"])
			if value == "" {
				value = stringValue(entry["field_value"])
			}
			fields[strings.TrimPrefix(key, fieldPrefix)] = value
		}
		return fields
	}

	var asMap map[string]any
	if err := json.Unmarshal(raw, &asMap); err == nil {
		for key, value := range asMap {
			fields[strings.TrimPrefix(key, fieldPrefix)] = stringValue(value)
		}
	}
	return fields
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return trimFloat(t)
	default:
		return ""
	}
}

func trimFloat(f float64) string {
	b, _ := json.Marshal(f)
	return string(b)
}
