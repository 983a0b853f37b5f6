package lead

import (
	"context"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/simp-lee/genbot/internal/domain"
)

const (
	maxNameLength     = 100
	maxEmailLength    = 255
	maxPhoneLength    = 20
	maxSenderIDLength = 255
)

// leadService implements domain.LeadService.
type leadService struct {
	repo domain.LeadRepository
	bots domain.BotRepository
}

// NewLeadService creates a new LeadService. bots is used to check that a
// lead is left with an existing bot.
func NewLeadService(repo domain.LeadRepository, bots domain.BotRepository) domain.LeadService {
	return &leadService{repo: repo, bots: bots}
}

// UpsertLead stores the contact details a sender left with a bot. A second
// submission from the same sender updates the fields it carries and keeps
// the rest.
func (s *leadService) UpsertLead(ctx context.Context, in domain.CreateLeadInput) (*domain.Lead, error) {
	senderID := strings.TrimSpace(in.SenderID)
	if senderID == "" {
		return nil, domain.NewAppError(domain.CodeValidation, "senderId is required", nil)
	}
	if err := checkLength("senderId", senderID, maxSenderIDLength); err != nil {
		return nil, err
	}
	if _, err := s.bots.GetByID(ctx, in.BotID); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByBotAndSender(ctx, in.BotID, senderID)
	switch {
	case err == nil:
		merge(existing, domain.UpdateLeadInput{Name: in.Name, Email: in.Email, Phone: in.Phone, Metadata: in.Metadata})
		if err := validate(existing); err != nil {
			return nil, err
		}
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	case !domain.IsNotFound(err):
		return nil, err
	}

	lead := &domain.Lead{BotID: in.BotID, SenderID: senderID}
	merge(lead, domain.UpdateLeadInput{Name: in.Name, Email: in.Email, Phone: in.Phone, Metadata: in.Metadata})
	if err := validate(lead); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

func (s *leadService) GetLead(ctx context.Context, id string) (*domain.Lead, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *leadService) ListLeads(ctx context.Context, q domain.ListQuery, botID string) (*domain.ListResult[domain.Lead], error) {
	return s.repo.List(ctx, q, botID)
}

func (s *leadService) UpdateLead(ctx context.Context, id string, in domain.UpdateLeadInput) (*domain.Lead, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	merge(lead, in)
	if err := validate(lead); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

func (s *leadService) DeleteLead(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *leadService) BulkDeleteLeads(ctx context.Context, ids []string) (*domain.BulkDeleteResult, error) {
	n, err := s.repo.DeleteMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &domain.BulkDeleteResult{Deleted: n}, nil
}

// merge copies the non-nil fields of in onto lead. A field given as blank
// clears the stored value.
func merge(lead *domain.Lead, in domain.UpdateLeadInput) {
	if in.Name != nil {
		lead.Name = normalize(*in.Name)
	}
	if in.Email != nil {
		lead.Email = normalize(*in.Email)
	}
	if in.Phone != nil {
		lead.Phone = normalize(*in.Phone)
	}
	if in.Metadata != nil {
		lead.Metadata = in.Metadata
	}
}

func normalize(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func validate(lead *domain.Lead) error {
	if lead.Name != nil {
		if err := checkLength("name", *lead.Name, maxNameLength); err != nil {
			return err
		}
	}
	if lead.Phone != nil {
		if err := checkLength("phone", *lead.Phone, maxPhoneLength); err != nil {
			return err
		}
	}
	if lead.Email != nil {
		if err := checkLength("email", *lead.Email, maxEmailLength); err != nil {
			return err
		}
		addr, err := mail.ParseAddress(*lead.Email)
		if err != nil || addr.Name != "" || addr.Address != *lead.Email {
			return domain.NewAppError(domain.CodeValidation, "email must be a valid email address", nil)
		}
	}
	return nil
}

func checkLength(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return domain.NewAppError(domain.CodeValidation, field+" is too long", nil)
	}
	return nil
}
