package audit

import (
	"context"
	"strings"
)

// Service es el lado de lectura del historial; la escritura pasa por el coordinador.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetHistory(ctx context.Context, caseID string) ([]Entry, error) {
	caseID = strings.TrimSpace(caseID)
	if caseID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByCase(ctx, caseID)
}

func (s *Service) Latest(ctx context.Context, caseID string) (Entry, error) {
	caseID = strings.TrimSpace(caseID)
	if caseID == "" {
		return Entry{}, ErrInvalidInput
	}
	return s.repo.Latest(ctx, caseID)
}
