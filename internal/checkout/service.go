package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arkanlabs/shopgate/internal/cart"
	"github.com/arkanlabs/shopgate/internal/orders"
	"github.com/arkanlabs/shopgate/internal/products"
	"github.com/arkanlabs/shopgate/internal/users"
	"github.com/arkanlabs/shopgate/pkg/logger"
	"github.com/arkanlabs/shopgate/pkg/metrics"
	"github.com/arkanlabs/shopgate/pkg/rpc"
)

const (
	defaultDeadline = 30 * time.Second
	eventTimeout    = 5 * time.Second
)

// CartReader drains and clears a user's cart.
type CartReader interface {
	Lines(ctx context.Context, userID string) ([]cart.CartLine, error)
	Clear(ctx context.Context, userID string)
}

// AddressResolver resolves the user's current shipping address.
type AddressResolver interface {
	ShippingAddress(ctx context.Context, userID string) (*users.AddressSnapshot, error)
}

// ProductFinder fetches catalog quotes.
type ProductFinder interface {
	FindByID(ctx context.Context, productID string) (*products.ProductQuote, error)
}

// OrderCreator commits order drafts.
type OrderCreator interface {
	Create(ctx context.Context, draft *orders.OrderDraft) (*orders.Order, error)
}

// EventPublisher announces committed orders. Optional; failures never
// affect a committed checkout.
type EventPublisher interface {
	OrderCreated(ctx context.Context, orderID, userID string, total decimal.Decimal, lineCount int) error
}

// Config bounds one checkout run.
type Config struct {
	Deadline         time.Duration
	PriceConcurrency int
}

// Service sequences one checkout: cart read, address gate, price
// enrichment, shipping, and the single order-commit call. All state is
// request-local; concurrent checkouts share nothing.
type Service struct {
	carts    CartReader
	users    AddressResolver
	products ProductFinder
	orders   OrderCreator
	events   EventPublisher
	logg     *logger.Logger
	metrics  *metrics.CheckoutMetrics
	cfg      Config
}

func NewService(
	carts CartReader,
	usersvc AddressResolver,
	productsvc ProductFinder,
	ordersvc OrderCreator,
	events EventPublisher,
	logg *logger.Logger,
	m *metrics.CheckoutMetrics,
	cfg Config,
) (*Service, error) {
	if carts == nil {
		return nil, errors.New("checkout: cart reader is required")
	}
	if usersvc == nil {
		return nil, errors.New("checkout: address resolver is required")
	}
	if productsvc == nil {
		return nil, errors.New("checkout: product finder is required")
	}
	if ordersvc == nil {
		return nil, errors.New("checkout: order creator is required")
	}
	if cfg.Deadline <= 0 {
		cfg.Deadline = defaultDeadline
	}
	return &Service{
		carts:    carts,
		users:    usersvc,
		products: productsvc,
		orders:   ordersvc,
		events:   events,
		logg:     logg,
		metrics:  m,
		cfg:      cfg,
	}, nil
}

// Execute runs the checkout pipeline for one user. Every remote call
// shares the deadline set here, so a slow late call cannot outlive the
// request budget.
func (s *Service) Execute(ctx context.Context, userID string, req Request) (*orders.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Deadline)
	defer cancel()

	start := time.Now()
	order, err := s.run(ctx, userID, req)
	if err != nil {
		s.observeAbort(err, time.Since(start))
		return nil, err
	}
	s.observeCommit(time.Since(start))
	return order, nil
}

func (s *Service) run(ctx context.Context, userID string, req Request) (*orders.Order, error) {
	lines, err := s.carts.Lines(ctx, userID)
	if err != nil {
		return nil, rpc.ToDomain(err)
	}
	if len(lines) == 0 {
		return nil, abort(ReasonCartEmpty, "cart is empty", nil)
	}

	address, err := s.users.ShippingAddress(ctx, userID)
	if err != nil {
		return nil, rpc.ToDomain(err)
	}
	if address == nil {
		return nil, abort(ReasonInvalidShippingAddress, "no shipping address on file", nil)
	}

	enriched, cartTotal, err := enrich(ctx, s.products, lines, s.cfg.PriceConcurrency)
	if err != nil {
		return nil, err
	}

	shippingCost := ShippingCost(req.ServiceType)
	draft := &orders.OrderDraft{
		UserID: userID,
		OrderData: orders.OrderData{
			ShippingAddressID: req.ShippingAddressID,
			ServiceType:       req.ServiceType,
			Courier:           req.Courier,
			PaymentMethod:     req.PaymentMethod,
			Notes:             req.Notes,
		},
		CartItems:       enriched,
		TotalAmount:     cartTotal.Add(shippingCost),
		ShippingCost:    shippingCost,
		ShippingAddress: address,
	}

	order, err := s.orders.Create(ctx, draft)
	if err != nil {
		// Nothing upstream was mutated; the cart stays intact and the
		// checkout is safe to re-issue.
		return nil, rpc.ToDomain(err)
	}

	// The order is committed. Cart clearing and the event are
	// best-effort from here on; neither can fail the checkout.
	s.carts.Clear(ctx, userID)
	s.publishOrderCreated(ctx, order, len(enriched))

	return order, nil
}

func (s *Service) publishOrderCreated(ctx context.Context, order *orders.Order, lineCount int) {
	if s.events == nil {
		return
	}
	detached := context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(detached, eventTimeout)
		defer cancel()
		if err := s.events.OrderCreated(ctx, order.ID, order.UserID, order.TotalAmount, lineCount); err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "orderId", order.ID), "order created event dropped")
		}
	}()
}

func (s *Service) observeCommit(elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveDuration("committed", elapsed)
	s.metrics.IncCommitted()
}

func (s *Service) observeAbort(err error, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	reason := AbortReason(err)
	if reason == "" {
		reason = "REMOTE"
	}
	s.metrics.ObserveDuration("aborted", elapsed)
	s.metrics.IncAborted(reason)
}
