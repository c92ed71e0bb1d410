package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"sergioimports/backend/internal/domain"
	"sergioimports/backend/internal/payment"
	"sergioimports/backend/internal/pricing"
	"sergioimports/backend/internal/store"
	"sergioimports/backend/internal/xid"
)

type stockDecrement struct {
	productID int64
	qty       int
}

// Checkout commits the current cart as a sale: resolve the client, persist
// the sale, decrement stock, clear the cart. A failure after the sale is
// written is compensated so the caller sees no partial change and the cart
// is kept for a retry.
func (s *Service) Checkout(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutResult, error) {
	if !s.commit.TryLock() {
		return domain.CheckoutResult{}, ErrCommitInProgress
	}
	defer s.commit.Unlock()

	lines := s.cart.Lines()
	if len(lines) == 0 {
		return domain.CheckoutResult{}, ErrEmptyCart
	}

	totals, err := pricing.Compute(lines, req.DiscountPercent)
	if err != nil {
		return domain.CheckoutResult{}, err
	}
	totals = totals.Rounded()

	detail, err := payment.Resolve(payment.FromRequest(req.Payment, totals.Total))
	if err != nil {
		return domain.CheckoutResult{}, err
	}

	client, err := s.resolveClient(ctx, req.Payment.ClientID)
	if err != nil {
		return domain.CheckoutResult{}, err
	}

	sale := buildSale(lines, totals, detail, client)
	sale.Date = s.now().UTC()

	logger := s.logger.With(
		zap.String("commit_ref", xid.New("commit")),
		zap.String("operator", actorName(ctx)),
	)

	saleID, err := s.repo.Sales().Add(ctx, sale)
	if err != nil {
		logger.Error("persist sale failed", zap.Error(err))
		return domain.CheckoutResult{}, fmt.Errorf("%w: %w", ErrSaleProcessing, err)
	}
	sale.ID = saleID

	skipped, decremented, err := s.decrementStock(ctx, lines)
	if err != nil {
		return domain.CheckoutResult{}, s.compensate(ctx, logger, saleID, decremented, err)
	}

	s.cart.Clear()
	s.setLastSale(sale)
	s.invalidateDashboard(ctx)

	if len(skipped) > 0 {
		logger.Warn("stock not adjusted for missing products",
			zap.Int64("sale_id", saleID),
			zap.Int64s("product_ids", skipped),
		)
	}
	logger.Info("sale committed",
		zap.Int64("sale_id", saleID),
		zap.String("total", sale.Total.StringFixed(2)),
		zap.String("payment_method", sale.PaymentMethod),
		zap.Int("lines", len(sale.Items)),
	)

	return domain.CheckoutResult{Sale: sale, SkippedProducts: skipped}, nil
}

// LastSale returns the most recent sale committed in this session.
func (s *Service) LastSale() (domain.Sale, bool) {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()

	if s.lastSale == nil {
		return domain.Sale{}, false
	}
	return *s.lastSale, true
}

func (s *Service) setLastSale(sale domain.Sale) {
	s.lastMu.Lock()
	defer s.lastMu.Unlock()
	s.lastSale = &sale
}

// resolveClient returns the client snapshot for the sale. A missing client
// is not an error: the sale is recorded without one.
func (s *Service) resolveClient(ctx context.Context, clientID *int64) (*domain.ClientRef, error) {
	if clientID == nil {
		return nil, nil
	}

	client, err := s.repo.Clients().Get(ctx, *clientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Debug("sale client not found, continuing without client", zap.Int64("client_id", *clientID))
			return nil, nil
		}
		return nil, err
	}
	return &domain.ClientRef{ID: client.ID, Name: client.Name}, nil
}

func buildSale(lines []domain.CartItem, totals pricing.Totals, detail domain.PaymentDetail, client *domain.ClientRef) domain.Sale {
	items := make([]domain.SaleLine, 0, len(lines))
	for _, line := range lines {
		items = append(items, domain.SaleLine{
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			Price:     line.Price,
			Total:     line.LineTotal(),
		})
	}

	return domain.Sale{
		Items:           items,
		Subtotal:        totals.Subtotal,
		DiscountPercent: totals.DiscountPercent,
		Discount:        totals.Discount,
		Total:           totals.Total,
		PaymentMethod:   detail.Method,
		Payment:         detail,
		Client:          client,
	}
}

// decrementStock subtracts each line quantity from its product. Products
// that no longer exist are skipped and reported.
func (s *Service) decrementStock(ctx context.Context, lines []domain.CartItem) ([]int64, []stockDecrement, error) {
	var skipped []int64
	done := make([]stockDecrement, 0, len(lines))

	for _, line := range lines {
		product, err := s.repo.Products().Get(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				skipped = append(skipped, line.ProductID)
				continue
			}
			return skipped, done, fmt.Errorf("load product %d: %w", line.ProductID, err)
		}

		product.Stock -= line.Quantity
		if err := s.repo.Products().Put(ctx, *product); err != nil {
			return skipped, done, fmt.Errorf("update stock of product %d: %w", line.ProductID, err)
		}
		done = append(done, stockDecrement{productID: line.ProductID, qty: line.Quantity})
	}
	return skipped, done, nil
}

// compensate restores decremented stock and removes the sale. It runs even
// when the request context is already cancelled.
func (s *Service) compensate(ctx context.Context, logger *zap.Logger, saleID int64, decremented []stockDecrement, cause error) error {
	ctx = context.WithoutCancel(ctx)

	var rollbackErrs []error
	for i := len(decremented) - 1; i >= 0; i-- {
		step := decremented[i]
		product, err := s.repo.Products().Get(ctx, step.productID)
		if err != nil {
			rollbackErrs = append(rollbackErrs, fmt.Errorf("reload product %d: %w", step.productID, err))
			continue
		}
		product.Stock += step.qty
		if err := s.repo.Products().Put(ctx, *product); err != nil {
			rollbackErrs = append(rollbackErrs, fmt.Errorf("restore stock of product %d: %w", step.productID, err))
		}
	}
	if err := s.repo.Sales().Delete(ctx, saleID); err != nil {
		rollbackErrs = append(rollbackErrs, fmt.Errorf("delete sale %d: %w", saleID, err))
	}

	if len(rollbackErrs) > 0 {
		rollbackErr := errors.Join(rollbackErrs...)
		logger.Error("sale rollback incomplete",
			zap.Int64("sale_id", saleID),
			zap.NamedError("cause", cause),
			zap.Error(rollbackErr),
		)
		return fmt.Errorf("%w: %w: %w", ErrSaleProcessing, ErrReconciliationRequired, errors.Join(cause, rollbackErr))
	}

	logger.Warn("sale rolled back", zap.Int64("sale_id", saleID), zap.Error(cause))
	return fmt.Errorf("%w: %w", ErrSaleProcessing, cause)
}
