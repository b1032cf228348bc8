package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/arkanlabs/shopgate/api/middleware"
	checkoutsvc "github.com/arkanlabs/shopgate/internal/checkout"
	"github.com/arkanlabs/shopgate/internal/orders"
	pkgerrors "github.com/arkanlabs/shopgate/pkg/errors"
)

type stubCheckoutService struct {
	order  *orders.Order
	err    error
	userID string
	req    checkoutsvc.Request
	calls  int
}

func (s *stubCheckoutService) Execute(_ context.Context, userID string, req checkoutsvc.Request) (*orders.Order, error) {
	s.calls++
	s.userID = userID
	s.req = req
	return s.order, s.err
}

const validBody = `{"shippingAddressId":"addr-1","serviceType":"STANDARD","courier":"jne","paymentMethod":"bank_transfer"}`

func authedRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(middleware.WithUserID(req.Context(), "user-1"))
}

func TestCheckoutSuccess(t *testing.T) {
	svc := &stubCheckoutService{order: &orders.Order{
		ID:          "ord-1",
		UserID:      "user-1",
		Status:      "PENDING",
		TotalAmount: decimal.NewFromInt(15200),
	}}
	handler := Checkout(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(validBody))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if svc.userID != "user-1" {
		t.Fatalf("expected user from token, got %q", svc.userID)
	}
	if svc.req.ServiceType != "STANDARD" {
		t.Fatalf("unexpected decoded request %+v", svc.req)
	}

	var envelope struct {
		Data struct {
			OrderID     string `json:"order_id"`
			TotalAmount string `json:"total_amount"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if envelope.Data.OrderID != "ord-1" {
		t.Fatalf("unexpected order id %q", envelope.Data.OrderID)
	}
	if envelope.Data.TotalAmount != "15200" {
		t.Fatalf("unexpected total %q", envelope.Data.TotalAmount)
	}
}

func TestCheckoutRequiresAuthenticatedUser(t *testing.T) {
	svc := &stubCheckoutService{}
	handler := Checkout(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(validBody))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	if svc.calls != 0 {
		t.Fatal("service must not run without a user")
	}
}

func TestCheckoutRejectsInvalidBody(t *testing.T) {
	svc := &stubCheckoutService{}
	handler := Checkout(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(`{"serviceType":"STANDARD"}`))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.calls != 0 {
		t.Fatal("service must not run for an invalid body")
	}
}

func TestCheckoutMapsBusinessAbort(t *testing.T) {
	svc := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeValidation, "cart is empty").
		WithDetails(map[string]any{"reason": "CART_EMPTY"})}
	handler := Checkout(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(validBody))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Message string         `json:"message"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if envelope.Error.Message != "cart is empty" {
		t.Fatalf("unexpected message %q", envelope.Error.Message)
	}
	if envelope.Error.Details["reason"] != "CART_EMPTY" {
		t.Fatalf("expected abort reason in details, got %v", envelope.Error.Details)
	}
}

func TestCheckoutMapsDependencyFailure(t *testing.T) {
	svc := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeDependency, "cart service timed out")}
	handler := Checkout(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(validBody))

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}
