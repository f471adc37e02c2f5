package ghl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// FieldDefinition describes a custom-field definition at the location level.
type FieldDefinition struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FieldKey string `json:"fieldKey"`
	DataType string `json:"dataType"`
}

// fieldTypeMapping translates our field types to GHL dataType enum values.
var fieldTypeMapping = map[string]string{
	"text":     "TEXT",
	"textarea": "LARGE_TEXT",
	"url":      "TEXT",
	"number":   "NUMERICAL",
	"checkbox": "CHECKBOX",
	"dropdown": "SINGLE_OPTIONS",
	"date":     "DATE",
	"email":    "EMAIL",
	"phone":    "PHONE",
}

// ListFieldDefinitions returns the location's custom-field definitions. A
// 404 means none exist yet and yields an empty list.
func (c *Client) ListFieldDefinitions(ctx context.Context) ([]FieldDefinition, error) {
	data, err := c.invoke(ctx, http.MethodGet, "locations/"+c.locationID+"/customFields", nil, nil)
	if err != nil {
		if status, ok := statusOf(err); ok && status == http.StatusNotFound {
			return []FieldDefinition{}, nil
		}
		return nil, err
	}

	var asList []FieldDefinition
	if err := json.Unmarshal(data, &asList); err == nil {
		return asList, nil
	}
	var wrapper struct {
		CustomFields []FieldDefinition `json:"customFields"`
		Fields       []FieldDefinition `json:"fields"`
		Data         []FieldDefinition `json:"data"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("ghl: decode field definitions: %w", err)
	}
	if len(wrapper.CustomFields) > 0 {
		return wrapper.CustomFields, nil
	}
	if len(wrapper.Fields) > 0 {
		return wrapper.Fields, nil
	}
	return wrapper.Data, nil
}

// CreateFieldDefinition creates a custom-field definition, tolerating the
// already-exists rejection by resolving the existing definition instead. GHL
// derives the field key from the display name, so the name must be chosen to
// produce the desired key.
func (c *Client) CreateFieldDefinition(ctx context.Context, name, key, fieldType string, options []string) (*FieldDefinition, error) {
	dataType, ok := fieldTypeMapping[strings.ToLower(fieldType)]
	if !ok {
		dataType = "TEXT"
	}
	payload := map[string]any{
		"name":     name,
		"dataType": dataType,
	}
	switch dataType {
	case "CHECKBOX":
		payload["options"] = []string{"Yes", "No"}
	case "SINGLE_OPTIONS", "MULTIPLE_OPTIONS":
		if len(options) > 0 {
			payload["options"] = options
		}
	}

	data, err := c.invoke(ctx, http.MethodPost, "locations/"+c.locationID+"/customFields", nil, payload)
	if err != nil {
		if existing := c.findExistingDefinition(ctx, err, name, key); existing != nil {
			return existing, nil
		}
		return nil, err
	}

	var wrapper struct {
		CustomField *FieldDefinition `json:"customField"`
	}
	if jsonErr := json.Unmarshal(data, &wrapper); jsonErr == nil && wrapper.CustomField != nil {
		return wrapper.CustomField, nil
	}
	var def FieldDefinition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("ghl: decode field definition: %w", err)
	}
	expected := NormalizeFieldKey(key)
	if def.FieldKey != "" && def.FieldKey != expected {
		c.logger.Warn("field key mismatch", "expected", expected, "got", def.FieldKey)
	}
	return &def, nil
}

func (c *Client) findExistingDefinition(ctx context.Context, createErr error, name, key string) *FieldDefinition {
	status, ok := statusOf(createErr)
	if !ok || (status != http.StatusBadRequest && status != http.StatusConflict) {
		return nil
	}
	text := strings.ToLower(createErr.Error())
	if !strings.Contains(text, "already exists") && !strings.Contains(text, "duplicate") {
		return nil
	}
	defs, err := c.ListFieldDefinitions(ctx)
	if err != nil {
		return nil
	}
	expected := NormalizeFieldKey(key)
	for i := range defs {
		def := defs[i]
		if def.FieldKey == expected || def.FieldKey == key || strings.EqualFold(def.Name, name) {
			return &def
		}
	}
	// The field exists upstream but cannot be retrieved; report what we know.
	return &FieldDefinition{Name: name, FieldKey: expected}
}
