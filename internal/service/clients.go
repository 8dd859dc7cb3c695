package service

import (
	"context"

	"github.com/jesses-code-adventures/practice/internal/models"
)

func (s *Service) Clients(ctx context.Context) ([]*models.Client, error) {
	return s.db.ListClients(ctx)
}

func (s *Service) Firms(ctx context.Context) ([]*models.Firm, error) {
	return s.db.ListFirms(ctx)
}
