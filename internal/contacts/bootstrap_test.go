package contacts

import (
	"context"
	"errors"
	"testing"

	"github.com/scottvalleyhvac/voice-agent/internal/ghl"
)

type fakeFieldDirectory struct {
	existing  []ghl.FieldDefinition
	listErr   error
	createErr error
	created   []string
}

func (f *fakeFieldDirectory) ListFieldDefinitions(context.Context) ([]ghl.FieldDefinition, error) {
	return f.existing, f.listErr
}

func (f *fakeFieldDirectory) CreateFieldDefinition(_ context.Context, name, key, fieldType string, _ []string) (*ghl.FieldDefinition, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, key)
	return &ghl.FieldDefinition{Name: name, FieldKey: ghl.NormalizeFieldKey(key)}, nil
}

func TestEnsureFieldDefinitionsCreatesMissing(t *testing.T) {
	crm := &fakeFieldDirectory{}
	if err := EnsureFieldDefinitions(context.Background(), crm, nil); err != nil {
		t.Fatalf("EnsureFieldDefinitions: %v", err)
	}
	if len(crm.created) != len(lifecycleFields) {
		t.Errorf("created %d fields, want %d", len(crm.created), len(lifecycleFields))
	}
}

func TestEnsureFieldDefinitionsSkipsExisting(t *testing.T) {
	crm := &fakeFieldDirectory{existing: []ghl.FieldDefinition{
		{FieldKey: "contact.vapi_called"},
		{FieldKey: "sms_consent"},
	}}
	if err := EnsureFieldDefinitions(context.Background(), crm, nil); err != nil {
		t.Fatalf("EnsureFieldDefinitions: %v", err)
	}
	for _, key := range crm.created {
		if key == FieldVapiCalled || key == FieldSMSConsent {
			t.Errorf("existing field %s recreated", key)
		}
	}
	if len(crm.created) != len(lifecycleFields)-2 {
		t.Errorf("created %d fields, want %d", len(crm.created), len(lifecycleFields)-2)
	}
}

func TestEnsureFieldDefinitionsReportsFailures(t *testing.T) {
	crm := &fakeFieldDirectory{createErr: errors.New("api down")}
	if err := EnsureFieldDefinitions(context.Background(), crm, nil); err == nil {
		t.Fatal("create failures should be reported")
	}

	crm = &fakeFieldDirectory{listErr: errors.New("api down")}
	if err := EnsureFieldDefinitions(context.Background(), crm, nil); err == nil {
		t.Fatal("list failure should be reported")
	}
}
