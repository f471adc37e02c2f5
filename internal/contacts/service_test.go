package contacts

import (
	"context"
	"errors"
	"testing"

	"github.com/scottvalleyhvac/voice-agent/internal/ghl"
)

type fakeCRM struct {
	searchResult *ghl.Contact
	searchErr    error
	createResult *ghl.Contact
	createErr    error
	updateErr    error

	createdReq  *ghl.ContactRequest
	updatedID   string
	updatedReq  *ghl.ContactRequest
	searchPhone string
	searchEmail string
}

func (f *fakeCRM) CreateContact(_ context.Context, req ghl.ContactRequest) (*ghl.Contact, error) {
	f.createdReq = &req
	return f.createResult, f.createErr
}

func (f *fakeCRM) GetContact(context.Context, string) (*ghl.Contact, error) {
	return nil, ghl.ErrContactNotFound
}

func (f *fakeCRM) SearchContact(_ context.Context, phone, email string) (*ghl.Contact, error) {
	f.searchPhone, f.searchEmail = phone, email
	return f.searchResult, f.searchErr
}

func (f *fakeCRM) UpdateContact(_ context.Context, id string, req ghl.ContactRequest) error {
	f.updatedID, f.updatedReq = id, &req
	return f.updateErr
}

func TestCreateOrUpdateCreatesWhenMissing(t *testing.T) {
	crm := &fakeCRM{
		searchErr:    ghl.ErrContactNotFound,
		createResult: &ghl.Contact{ID: "C1"},
	}
	svc := NewService(crm, nil)

	res, err := svc.CreateOrUpdate(context.Background(), Input{
		FirstName: "Pat",
		Phone:     "(503) 555-0100",
		Email:     "pat@example.com",
	})
	if err != nil {
		t.Fatalf("CreateOrUpdate: %v", err)
	}
	if res.ContactID != "C1" || !res.IsNew {
		t.Errorf("unexpected result %+v", res)
	}
	if crm.searchPhone != "+15035550100" {
		t.Errorf("search used un-normalized phone %q", crm.searchPhone)
	}
	if crm.createdReq.Phone != "+15035550100" {
		t.Errorf("create used un-normalized phone %q", crm.createdReq.Phone)
	}
}

func TestCreateOrUpdateUpdatesExisting(t *testing.T) {
	crm := &fakeCRM{searchResult: &ghl.Contact{ID: "C2"}}
	svc := NewService(crm, nil)

	res, err := svc.CreateOrUpdate(context.Background(), Input{Phone: "5035550100"})
	if err != nil {
		t.Fatalf("CreateOrUpdate: %v", err)
	}
	if res.ContactID != "C2" || res.IsNew {
		t.Errorf("unexpected result %+v", res)
	}
	if crm.updatedID != "C2" {
		t.Errorf("updated wrong contact %q", crm.updatedID)
	}
	if crm.createdReq != nil {
		t.Error("must not create when a match exists")
	}
}

func TestCreateOrUpdateResolvesDuplicateRejection(t *testing.T) {
	crm := &fakeCRM{
		searchErr: ghl.ErrContactNotFound,
		createErr: &ghl.APIError{
			StatusCode: 400,
			Body:       `{"message": "duplicated contacts", "meta": {"contactId": "C3"}}`,
		},
	}
	svc := NewService(crm, nil)

	res, err := svc.CreateOrUpdate(context.Background(), Input{Phone: "5035550100"})
	if err != nil {
		t.Fatalf("CreateOrUpdate: %v", err)
	}
	if res.ContactID != "C3" || res.IsNew {
		t.Errorf("duplicate should resolve to existing contact, got %+v", res)
	}
	if crm.updatedID != "C3" {
		t.Errorf("expected update of resolved duplicate, got %q", crm.updatedID)
	}
}

func TestCreateOrUpdateDoesNotResolveNonDuplicateFailure(t *testing.T) {
	// A 500 whose body mentions a contact id is still a 500, not a
	// duplicate rejection; it must propagate instead of becoming an update.
	createErr := &ghl.APIError{
		StatusCode: 500,
		Body:       `{"message": "internal failure while indexing", "contactId": "C9"}`,
	}
	crm := &fakeCRM{searchErr: ghl.ErrContactNotFound, createErr: createErr}
	svc := NewService(crm, nil)

	_, err := svc.CreateOrUpdate(context.Background(), Input{Phone: "5035550100"})
	var apiErr *ghl.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 500 {
		t.Fatalf("expected original error to propagate, got %v", err)
	}
	if crm.updatedID != "" {
		t.Errorf("must not update contact %q recovered from a non-duplicate error", crm.updatedID)
	}
}

func TestCreateOrUpdateReRaisesUnresolvableCreateError(t *testing.T) {
	createErr := &ghl.APIError{StatusCode: 500, Body: "internal"}
	crm := &fakeCRM{searchErr: ghl.ErrContactNotFound, createErr: createErr}
	svc := NewService(crm, nil)

	_, err := svc.CreateOrUpdate(context.Background(), Input{Phone: "5035550100"})
	var apiErr *ghl.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 500 {
		t.Fatalf("expected original error to propagate, got %v", err)
	}
}

func TestCreateOrUpdateRejectsBadInput(t *testing.T) {
	svc := NewService(&fakeCRM{}, nil)

	if _, err := svc.CreateOrUpdate(context.Background(), Input{Phone: "nope"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("bad phone should fail validation, got %v", err)
	}
	if _, err := svc.CreateOrUpdate(context.Background(), Input{Phone: "5035550100", Email: "bad"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("bad email should fail validation, got %v", err)
	}
	if _, err := svc.CreateOrUpdate(context.Background(), Input{Phone: "5035550100", PostalCode: "12"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("bad zip should fail validation, got %v", err)
	}
}

func TestCreateOrUpdateSearchErrorPropagates(t *testing.T) {
	crm := &fakeCRM{searchErr: &ghl.APIError{StatusCode: 503, Body: "down"}}
	svc := NewService(crm, nil)

	if _, err := svc.CreateOrUpdate(context.Background(), Input{Phone: "5035550100"}); err == nil {
		t.Fatal("transport failure must not be swallowed")
	}
}
