// Package contacts records submissions from the public site forms. The
// offer and presentation forms fold their structured fields into the stored
// message so all three kinds share one table.
package contacts

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/domunity/backend/internal/errors"

	"github.com/domunity/backend/internal/app/domain/contact"
	"github.com/domunity/backend/internal/app/storage"
	"github.com/domunity/backend/pkg/logger"
)

// OfferRequest carries the fields of the price-offer form.
type OfferRequest struct {
	Phone          string
	Email          string
	City           string
	NumProperties  int
	Address        string
	AdditionalInfo string
}

// PresentationRequest carries the fields of the presentation-booking form.
type PresentationRequest struct {
	Date           string
	BuildingType   string
	Phone          string
	Email          string
	Address        string
	AdditionalInfo string
}

// Service implements the public contact use cases.
type Service struct {
	store storage.ContactStore
	log   *logger.Logger
}

// New creates a configured contacts service.
func New(store storage.ContactStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("contacts")
	}
	return &Service{store: store, log: log}
}

// SubmitForm records a general contact-form submission.
func (s *Service) SubmitForm(ctx context.Context, name, phone, email, message string) (contact.Request, error) {
	if strings.TrimSpace(email) == "" && strings.TrimSpace(phone) == "" {
		return contact.Request{}, apperrors.Validation("email or phone is required")
	}
	if strings.TrimSpace(message) == "" {
		return contact.Request{}, apperrors.Validation("message is required")
	}

	return s.create(ctx, contact.Request{
		Name:    strings.TrimSpace(name),
		Phone:   strings.TrimSpace(phone),
		Email:   strings.TrimSpace(email),
		Message: strings.TrimSpace(message),
		Type:    contact.TypeContact,
	})
}

// RequestOffer records a price-offer request.
func (s *Service) RequestOffer(ctx context.Context, req OfferRequest) (contact.Request, error) {
	if strings.TrimSpace(req.Email) == "" && strings.TrimSpace(req.Phone) == "" {
		return contact.Request{}, apperrors.Validation("email or phone is required")
	}

	message := fmt.Sprintf("City: %s, Properties: %d, Address: %s",
		strings.TrimSpace(req.City), req.NumProperties, strings.TrimSpace(req.Address))
	if info := strings.TrimSpace(req.AdditionalInfo); info != "" {
		message += ". " + info
	}

	return s.create(ctx, contact.Request{
		Phone:   strings.TrimSpace(req.Phone),
		Email:   strings.TrimSpace(req.Email),
		Message: message,
		Type:    contact.TypeOffer,
	})
}

// RequestPresentation records a presentation-booking request.
func (s *Service) RequestPresentation(ctx context.Context, req PresentationRequest) (contact.Request, error) {
	if strings.TrimSpace(req.Email) == "" && strings.TrimSpace(req.Phone) == "" {
		return contact.Request{}, apperrors.Validation("email or phone is required")
	}

	message := fmt.Sprintf("Date: %s, Type: %s, Address: %s",
		strings.TrimSpace(req.Date), strings.TrimSpace(req.BuildingType), strings.TrimSpace(req.Address))
	if info := strings.TrimSpace(req.AdditionalInfo); info != "" {
		message += ". " + info
	}

	return s.create(ctx, contact.Request{
		Phone:   strings.TrimSpace(req.Phone),
		Email:   strings.TrimSpace(req.Email),
		Message: message,
		Type:    contact.TypePresentation,
	})
}

func (s *Service) create(ctx context.Context, req contact.Request) (contact.Request, error) {
	created, err := s.store.CreateContactRequest(ctx, req)
	if err != nil {
		return contact.Request{}, apperrors.Store(err)
	}
	s.log.WithField("type", string(req.Type)).Info("contact request received")
	return created, nil
}
