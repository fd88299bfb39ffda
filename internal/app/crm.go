package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/okian/scorecard/internal/domain/model"
)

// CreateLead stores a new lead. Missing id, status and creation time are
// filled in.
func (s *Service) CreateLead(ctx context.Context, l model.Lead) (model.Lead, error) { //nolint:gocritic // hugeParam
	store, err := s.backend()
	if err != nil {
		return model.Lead{}, err
	}
	if l.Email == "" {
		return model.Lead{}, invalidInput("email is required")
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Status == "" {
		l.Status = model.LeadNew
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = s.now().UTC()
	}
	if err := store.CreateLead(ctx, l); err != nil {
		return model.Lead{}, err
	}
	return l, nil
}

// GetLead returns a lead by id.
func (s *Service) GetLead(ctx context.Context, id string) (model.Lead, error) {
	store, err := s.backend()
	if err != nil {
		return model.Lead{}, err
	}
	return store.GetLead(ctx, id)
}

// CreateContact stores a new contact.
func (s *Service) CreateContact(ctx context.Context, c model.Contact) (model.Contact, error) { //nolint:gocritic // hugeParam
	store, err := s.backend()
	if err != nil {
		return model.Contact{}, err
	}
	if c.Email == "" {
		return model.Contact{}, invalidInput("email is required")
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = model.ContactNew
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now().UTC()
	}
	if err := store.CreateContact(ctx, c); err != nil {
		return model.Contact{}, err
	}
	return c, nil
}

// GetContact returns a contact with its deal values and interaction count.
func (s *Service) GetContact(ctx context.Context, id string) (model.ContactSnapshot, error) {
	store, err := s.backend()
	if err != nil {
		return model.ContactSnapshot{}, err
	}
	return store.ContactSnapshot(ctx, id)
}

// AddInteraction logs an interaction with a contact.
func (s *Service) AddInteraction(ctx context.Context, in model.Interaction) (model.Interaction, error) { //nolint:gocritic // hugeParam
	store, err := s.backend()
	if err != nil {
		return model.Interaction{}, err
	}
	if in.ContactID == "" || in.Type == "" {
		return model.Interaction{}, invalidInput("contactId and type are required")
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = s.now().UTC()
	}
	if err := store.AddInteraction(ctx, in); err != nil {
		return model.Interaction{}, err
	}
	return in, nil
}

// CreateDeal stores a new deal. Deals start OPEN unless a status is given.
func (s *Service) CreateDeal(ctx context.Context, d model.Deal) (model.Deal, error) { //nolint:gocritic // hugeParam
	store, err := s.backend()
	if err != nil {
		return model.Deal{}, err
	}
	if d.Title == "" {
		return model.Deal{}, invalidInput("title is required")
	}
	if d.Value < 0 || d.Probability < 0 || d.Probability > 100 {
		return model.Deal{}, invalidInput("value must be >= 0 and probability within [0,100]")
	}
	switch d.Status {
	case "":
		d.Status = model.DealOpen
	case model.DealOpen, model.DealWon, model.DealLost:
	default:
		return model.Deal{}, invalidInput("unknown deal status %q", d.Status)
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = s.now().UTC()
	}
	if d.Status != model.DealOpen && d.ActualCloseDate == nil {
		closed := d.CreatedAt
		d.ActualCloseDate = &closed
	}
	if err := store.CreateDeal(ctx, d); err != nil {
		return model.Deal{}, err
	}
	return d, nil
}

// GetDeal returns a deal by id.
func (s *Service) GetDeal(ctx context.Context, id string) (model.Deal, error) {
	store, err := s.backend()
	if err != nil {
		return model.Deal{}, err
	}
	return store.GetDeal(ctx, id)
}
