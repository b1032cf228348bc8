package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arkanlabs/shopgate/api/middleware"
	"github.com/arkanlabs/shopgate/api/responses"
	"github.com/arkanlabs/shopgate/api/validators"
	checkoutsvc "github.com/arkanlabs/shopgate/internal/checkout"
	"github.com/arkanlabs/shopgate/internal/orders"
	pkgerrors "github.com/arkanlabs/shopgate/pkg/errors"
	"github.com/arkanlabs/shopgate/pkg/logger"
)

// CheckoutService is the slice of the checkout coordinator the HTTP
// layer consumes.
type CheckoutService interface {
	Execute(ctx context.Context, userID string, req checkoutsvc.Request) (*orders.Order, error)
}

// Checkout submits the authenticated user's cart as an order.
func Checkout(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		var payload checkoutsvc.Request
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Execute(r.Context(), userID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(order))
	}
}

type orderResponse struct {
	OrderID     string          `json:"order_id"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
}

func newOrderResponse(order *orders.Order) orderResponse {
	if order == nil {
		return orderResponse{}
	}
	return orderResponse{
		OrderID:     order.ID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		CreatedAt:   order.CreatedAt,
	}
}
