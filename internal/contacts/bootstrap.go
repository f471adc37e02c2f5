package contacts

import (
	"context"
	"fmt"
	"strings"

	"github.com/scottvalleyhvac/voice-agent/internal/ghl"
	"github.com/scottvalleyhvac/voice-agent/pkg/logging"
)

// FieldDirectory manages custom-field definitions at the CRM location.
type FieldDirectory interface {
	ListFieldDefinitions(ctx context.Context) ([]ghl.FieldDefinition, error)
	CreateFieldDefinition(ctx context.Context, name, key, fieldType string, options []string) (*ghl.FieldDefinition, error)
}

// lifecycleFields are the custom-field definitions the call lifecycle writes.
// The display name must hash to the expected field key upstream.
var lifecycleFields = []struct {
	name      string
	key       string
	fieldType string
}{
	{"Vapi Called", FieldVapiCalled, "checkbox"},
	{"Vapi Call ID", FieldVapiCallID, "text"},
	{"SMS Consent", FieldSMSConsent, "checkbox"},
	{"SMS Fallback Sent", FieldSMSFallbackSent, "checkbox"},
	{"SMS Fallback Date", FieldSMSFallbackDate, "text"},
	{"SMS Fallback Reason", FieldSMSFallbackReason, "text"},
	{"Lead Source", FieldLeadSource, "text"},
	{"Lead Quality Score", FieldLeadQualityScore, "number"},
}

// EnsureFieldDefinitions creates any missing lifecycle field definitions.
// It runs at startup, best effort: a partially bootstrapped location still
// serves traffic, the missing fields just won't persist until created.
func EnsureFieldDefinitions(ctx context.Context, crm FieldDirectory, logger *logging.Logger) error {
	if logger == nil {
		logger = logging.Default()
	}
	existing, err := crm.ListFieldDefinitions(ctx)
	if err != nil {
		return fmt.Errorf("contacts: list field definitions: %w", err)
	}
	have := make(map[string]struct{}, len(existing))
	for _, def := range existing {
		have[ghl.NormalizeFieldKey(def.FieldKey)] = struct{}{}
	}

	var missing []string
	for _, field := range lifecycleFields {
		if _, ok := have[ghl.NormalizeFieldKey(field.key)]; ok {
			continue
		}
		if _, err := crm.CreateFieldDefinition(ctx, field.name, field.key, field.fieldType, nil); err != nil {
			missing = append(missing, field.key)
			logger.Warn("field definition create failed", "key", field.key, "error", err)
			continue
		}
		logger.Info("field definition created", "key", field.key)
	}
	if len(missing) > 0 {
		return fmt.Errorf("contacts: field bootstrap incomplete: %s", strings.Join(missing, ", "))
	}
	return nil
}
