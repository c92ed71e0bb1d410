package service

import (
	"context"

	"sergioimports/backend/internal/dashboard"
	"sergioimports/backend/internal/domain"
)

func (s *Service) Dashboard(ctx context.Context) (domain.DashboardSummary, error) {
	return s.dashboard.Summary(ctx, s.now(), s.loadDashboardInputs)
}

func (s *Service) loadDashboardInputs(ctx context.Context) (dashboard.Inputs, error) {
	products, err := s.repo.Products().GetAll(ctx)
	if err != nil {
		return dashboard.Inputs{}, err
	}
	clients, err := s.repo.Clients().GetAll(ctx)
	if err != nil {
		return dashboard.Inputs{}, err
	}
	sales, err := s.repo.Sales().GetAll(ctx)
	if err != nil {
		return dashboard.Inputs{}, err
	}
	return dashboard.Inputs{Products: products, Clients: clients, Sales: sales}, nil
}
