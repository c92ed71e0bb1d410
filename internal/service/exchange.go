package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"sergioimports/backend/internal/domain"
	"sergioimports/backend/internal/store"
)

var exchangeReasons = map[string]struct{}{
	domain.ExchangeReasonDefect:    {},
	domain.ExchangeReasonWrongSize: {},
	domain.ExchangeReasonNotLiked:  {},
	domain.ExchangeReasonOther:     {},
}

// exchangeTransitions lists the allowed status changes. Every status can
// move to every other, including back to pending.
var exchangeTransitions = map[string][]string{
	domain.ExchangeStatusPending:   {domain.ExchangeStatusPending, domain.ExchangeStatusCompleted, domain.ExchangeStatusCancelled},
	domain.ExchangeStatusCompleted: {domain.ExchangeStatusPending, domain.ExchangeStatusCompleted, domain.ExchangeStatusCancelled},
	domain.ExchangeStatusCancelled: {domain.ExchangeStatusPending, domain.ExchangeStatusCompleted, domain.ExchangeStatusCancelled},
}

func (s *Service) CreateExchange(ctx context.Context, req domain.ExchangeCreateRequest) (domain.Exchange, error) {
	reason := strings.TrimSpace(req.Reason)
	if _, ok := exchangeReasons[reason]; !ok {
		return domain.Exchange{}, fmt.Errorf("%w: unknown exchange reason %q", ErrInvalidInput, req.Reason)
	}
	if req.SaleID < 1 {
		return domain.Exchange{}, fmt.Errorf("%w: sale_id is required", ErrInvalidInput)
	}

	if s.opts.StrictExchangeSaleRef {
		if _, err := s.repo.Sales().Get(ctx, req.SaleID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.Exchange{}, fmt.Errorf("%w: sale %d", ErrUnknownSale, req.SaleID)
			}
			return domain.Exchange{}, err
		}
	}

	exchange := domain.Exchange{
		SaleID:      req.SaleID,
		Reason:      reason,
		Description: strings.TrimSpace(req.Description),
		Date:        s.now().UTC(),
		Status:      domain.ExchangeStatusPending,
	}

	id, err := s.repo.Exchanges().Add(ctx, exchange)
	if err != nil {
		return domain.Exchange{}, err
	}
	exchange.ID = id

	s.logger.Info("exchange created",
		zap.Int64("exchange_id", id),
		zap.Int64("sale_id", exchange.SaleID),
		zap.String("reason", exchange.Reason),
		zap.String("operator", actorName(ctx)),
	)
	return exchange, nil
}

// SetExchangeStatus changes only the status of a stored exchange.
func (s *Service) SetExchangeStatus(ctx context.Context, id int64, status string) (domain.Exchange, error) {
	status = strings.TrimSpace(status)
	if _, ok := exchangeTransitions[status]; !ok {
		return domain.Exchange{}, fmt.Errorf("%w: unknown exchange status %q", ErrInvalidInput, status)
	}

	existing, err := s.repo.Exchanges().Get(ctx, id)
	if err != nil {
		return domain.Exchange{}, err
	}
	if !canTransition(existing.Status, status) {
		return domain.Exchange{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, existing.Status, status)
	}

	updated := *existing
	updated.Status = status
	if err := s.repo.Exchanges().Put(ctx, updated); err != nil {
		return domain.Exchange{}, err
	}

	s.logger.Info("exchange status changed",
		zap.Int64("exchange_id", id),
		zap.String("from", existing.Status),
		zap.String("to", status),
		zap.String("operator", actorName(ctx)),
	)
	return updated, nil
}

// ListExchanges returns all exchanges, or only those in status when set.
func (s *Service) ListExchanges(ctx context.Context, status string) ([]domain.Exchange, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return s.repo.Exchanges().GetAll(ctx)
	}
	if _, ok := exchangeTransitions[status]; !ok {
		return nil, fmt.Errorf("%w: unknown exchange status %q", ErrInvalidInput, status)
	}
	return s.repo.Exchanges().Search(ctx, store.IndexStatus, status)
}

func (s *Service) ExchangesForSale(ctx context.Context, saleID int64) ([]domain.Exchange, error) {
	return s.repo.Exchanges().Search(ctx, store.IndexSaleID, strconv.FormatInt(saleID, 10))
}

func canTransition(from string, to string) bool {
	for _, allowed := range exchangeTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
