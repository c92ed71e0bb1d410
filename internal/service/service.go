package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sergioimports/backend/internal/cart"
	"sergioimports/backend/internal/dashboard"
	"sergioimports/backend/internal/domain"
	"sergioimports/backend/internal/pricing"
	"sergioimports/backend/internal/store"
)

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrEmptyCart              = errors.New("cart is empty")
	ErrCommitInProgress       = errors.New("a sale is already being committed")
	ErrSaleProcessing         = errors.New("sale could not be processed")
	ErrReconciliationRequired = errors.New("sale rollback incomplete, manual reconciliation required")
	ErrUnknownSale            = errors.New("referenced sale does not exist")
	ErrInvalidTransition      = errors.New("exchange status transition not allowed")
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Options struct {
	// StrictExchangeSaleRef rejects exchanges whose sale id is not stored.
	StrictExchangeSaleRef bool
	Now                   func() time.Time
}

// Service holds the single terminal session: one cart, the last completed
// sale, and the commit guard.
type Service struct {
	repo      store.Repository
	dashboard *dashboard.Engine
	logger    *zap.Logger
	opts      Options

	cart *cart.Cart

	// commit is write-locked for the whole of a checkout. Cart mutations
	// take the read side so they are rejected while a sale is committing.
	commit sync.RWMutex

	lastMu   sync.RWMutex
	lastSale *domain.Sale
}

func New(repo store.Repository, dashboardEngine *dashboard.Engine, logger *zap.Logger, opts Options) *Service {
	if dashboardEngine == nil {
		dashboardEngine = dashboard.NewEngine(nil, 0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{
		repo:      repo,
		dashboard: dashboardEngine,
		logger:    logger.Named("service"),
		opts:      opts,
		cart:      cart.New(),
	}
}

func (s *Service) Cart() domain.CartResponse {
	return cartResponse(s.cart)
}

func (s *Service) AddToCart(ctx context.Context, req domain.CartAddRequest) (domain.CartResponse, error) {
	if req.ProductID < 1 {
		return domain.CartResponse{}, fmt.Errorf("%w: product_id is required", ErrInvalidInput)
	}

	product, err := s.repo.Products().Get(ctx, req.ProductID)
	if err != nil {
		return domain.CartResponse{}, err
	}
	return s.applyCart(cart.AddItem{Product: *product, Quantity: req.Quantity})
}

func (s *Service) SetCartQuantity(productID int64, qty int) (domain.CartResponse, error) {
	return s.applyCart(cart.SetQuantity{ProductID: productID, Quantity: qty})
}

func (s *Service) RemoveFromCart(productID int64) (domain.CartResponse, error) {
	return s.applyCart(cart.RemoveItem{ProductID: productID})
}

func (s *Service) ClearCart() (domain.CartResponse, error) {
	return s.applyCart(cart.Clear{})
}

// CartTotals prices the current cart with the rounding used for persisted sales.
func (s *Service) CartTotals(discountPercent decimal.Decimal) (domain.TotalsResponse, error) {
	totals, err := pricing.Compute(s.cart.Lines(), discountPercent)
	if err != nil {
		return domain.TotalsResponse{}, err
	}
	return totals.Rounded().Response(), nil
}

func (s *Service) applyCart(cmd cart.Command) (domain.CartResponse, error) {
	if !s.commit.TryRLock() {
		return domain.CartResponse{}, ErrCommitInProgress
	}
	defer s.commit.RUnlock()

	if err := s.cart.Apply(cmd); err != nil {
		return domain.CartResponse{}, err
	}
	return cartResponse(s.cart), nil
}

func cartResponse(c *cart.Cart) domain.CartResponse {
	return domain.CartResponse{
		Items:    c.Lines(),
		Subtotal: c.Subtotal(),
	}
}

func (s *Service) now() time.Time {
	return s.opts.Now()
}

func (s *Service) invalidateDashboard(ctx context.Context) {
	if err := s.dashboard.Invalidate(ctx); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func actorName(ctx context.Context) string {
	if actor, ok := ActorFromContext(ctx); ok && actor.Username != "" {
		return actor.Username
	}
	return "system"
}
