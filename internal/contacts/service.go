package contacts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/scottvalleyhvac/voice-agent/internal/ghl"
	"github.com/scottvalleyhvac/voice-agent/pkg/logging"
)

// CRM is the contact surface of the CRM client the service depends on.
type CRM interface {
	CreateContact(ctx context.Context, req ghl.ContactRequest) (*ghl.Contact, error)
	GetContact(ctx context.Context, contactID string) (*ghl.Contact, error)
	SearchContact(ctx context.Context, phone, email string) (*ghl.Contact, error)
	UpdateContact(ctx context.Context, contactID string, req ghl.ContactRequest) error
}

// Service creates or updates CRM contacts with normalized input.
type Service struct {
	crm    CRM
	logger *logging.Logger
}

// NewService wires the contact service.
func NewService(crm CRM, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{crm: crm, logger: logger.Component("contacts")}
}

// Input is the caller-supplied contact data, pre-normalization.
type Input struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Address1   string
	PostalCode string
	Fields     map[string]string
}

// Result identifies the contact and whether it was newly created.
type Result struct {
	ContactID string `json:"contactId"`
	IsNew     bool   `json:"isNew"`
}

// ErrInvalidInput wraps validation failures of caller-supplied data.
var ErrInvalidInput = errors.New("contacts: invalid input")

func (s *Service) validate(in Input) (Input, error) {
	phone, err := NormalizePhone(in.Phone)
	if err != nil {
		return in, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	in.Phone = phone
	in.Email = strings.TrimSpace(in.Email)
	if in.Email != "" && !ValidEmail(in.Email) {
		return in, fmt.Errorf("%w: email %q", ErrInvalidInput, in.Email)
	}
	in.PostalCode = strings.TrimSpace(in.PostalCode)
	if in.PostalCode != "" && !ValidZip(in.PostalCode) {
		return in, fmt.Errorf("%w: postal code %q", ErrInvalidInput, in.PostalCode)
	}
	if strings.TrimSpace(in.FirstName) == "" {
		in.FirstName = "Unknown"
	}
	return in, nil
}

// CreateOrUpdate finds an existing contact by phone, then email, and updates
// it; otherwise it creates one. A duplicate rejection on create is resolved
// to the existing contact and converted into an update.
func (s *Service) CreateOrUpdate(ctx context.Context, in Input) (*Result, error) {
	in, err := s.validate(in)
	if err != nil {
		return nil, err
	}

	req := ghl.ContactRequest{
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Email:      in.Email,
		Phone:      in.Phone,
		Address1:   in.Address1,
		PostalCode: in.PostalCode,
		Fields:     in.Fields,
	}

	existing, err := s.crm.SearchContact(ctx, in.Phone, in.Email)
	switch {
	case err == nil:
		if err := s.crm.UpdateContact(ctx, existing.ID, req); err != nil {
			return nil, fmt.Errorf("contacts: update %s: %w", existing.ID, err)
		}
		s.logger.Info("contact updated", "contact_id", existing.ID)
		return &Result{ContactID: existing.ID, IsNew: false}, nil
	case errors.Is(err, ghl.ErrContactNotFound):
		// Fall through to create.
	default:
		return nil, fmt.Errorf("contacts: search: %w", err)
	}

	created, err := s.crm.CreateContact(ctx, req)
	if err == nil {
		s.logger.Info("contact created", "contact_id", created.ID)
		return &Result{ContactID: created.ID, IsNew: true}, nil
	}

	// Only duplicate rejections are recoverable; any other create failure
	// stands even when its body happens to mention a contact id.
	if ghl.IsDuplicateError(err) {
		if dupID, ok := ghl.ResolveDuplicateContactID(err); ok {
			s.logger.Info("duplicate contact resolved", "contact_id", dupID)
			if err := s.crm.UpdateContact(ctx, dupID, req); err != nil {
				return nil, fmt.Errorf("contacts: update duplicate %s: %w", dupID, err)
			}
			return &Result{ContactID: dupID, IsNew: false}, nil
		}
	}
	return nil, fmt.Errorf("contacts: create: %w", err)
}
