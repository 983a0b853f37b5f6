package document

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/simp-lee/genbot/internal/domain"
)

const (
	maxTitleLength   = 200
	maxContentLength = 50000
)

// documentService implements domain.DocumentService.
type documentService struct {
	repo domain.DocumentRepository
	bots domain.BotRepository
}

// NewDocumentService creates a new DocumentService. bots is used to check
// that a new document belongs to an existing bot.
func NewDocumentService(repo domain.DocumentRepository, bots domain.BotRepository) domain.DocumentService {
	return &documentService{repo: repo, bots: bots}
}

func (s *documentService) CreateDocument(ctx context.Context, in domain.CreateDocumentInput) (*domain.Document, error) {
	doc := &domain.Document{
		BotID:   in.BotID,
		Title:   strings.TrimSpace(in.Title),
		Content: in.Content,
	}
	if err := validate(doc); err != nil {
		return nil, err
	}
	if _, err := s.bots.GetByID(ctx, in.BotID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *documentService) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *documentService) ListDocuments(ctx context.Context, q domain.ListQuery, botID string) (*domain.ListResult[domain.Document], error) {
	return s.repo.List(ctx, q, botID)
}

func (s *documentService) UpdateDocument(ctx context.Context, id string, in domain.UpdateDocumentInput) (*domain.Document, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		doc.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		doc.Content = *in.Content
	}

	if err := validate(doc); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *documentService) DeleteDocument(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *documentService) BulkDeleteDocuments(ctx context.Context, ids []string) (*domain.BulkDeleteResult, error) {
	n, err := s.repo.DeleteMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &domain.BulkDeleteResult{Deleted: n}, nil
}

func validate(doc *domain.Document) error {
	switch n := utf8.RuneCountInString(doc.Title); {
	case n == 0:
		return domain.NewAppError(domain.CodeValidation, "title is required", nil)
	case n > maxTitleLength:
		return domain.NewAppError(domain.CodeValidation, "title must not exceed 200 characters", nil)
	}
	switch n := utf8.RuneCountInString(doc.Content); {
	case strings.TrimSpace(doc.Content) == "":
		return domain.NewAppError(domain.CodeValidation, "content is required", nil)
	case n > maxContentLength:
		return domain.NewAppError(domain.CodeValidation, "content must not exceed 50000 characters", nil)
	}
	return nil
}
