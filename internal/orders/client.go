package orders

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arkanlabs/shopgate/internal/users"
)

// OrderLine is one priced cart line as the orders service receives it.
// UnitPrice is the price in effect at enrichment time, never a cached
// cart-time price.
type OrderLine struct {
	ProductID    string          `json:"productId"`
	ProductName  string          `json:"productName"`
	VariantID    string          `json:"variantId,omitempty"`
	VariantSKU   string          `json:"variantSku,omitempty"`
	ProductImage string          `json:"productImage,omitempty"`
	Quantity     int             `json:"quantity"`
	BasePrice    decimal.Decimal `json:"basePrice"`
	VariantPrice decimal.Decimal `json:"variantPrice"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	SubTotal     decimal.Decimal `json:"subTotal"`
}

// OrderData is the checkout request subset forwarded on the draft.
type OrderData struct {
	ShippingAddressID string `json:"shippingAddressId"`
	ServiceType       string `json:"serviceType"`
	Courier           string `json:"courier"`
	PaymentMethod     string `json:"paymentMethod"`
	Notes             string `json:"notes,omitempty"`
}

// OrderDraft is built in memory, sent once, then discarded.
type OrderDraft struct {
	UserID          string                 `json:"userId"`
	OrderData       OrderData              `json:"orderData"`
	CartItems       []OrderLine            `json:"cartItems"`
	TotalAmount     decimal.Decimal        `json:"totalAmount"`
	ShippingCost    decimal.Decimal        `json:"shippingCost"`
	ShippingAddress *users.AddressSnapshot `json:"shippingAddress"`
}

// Order is the committed order as the orders service reports it back.
type Order struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type commandClient interface {
	Call(ctx context.Context, command string, payload any, out any) error
}

// Client submits order drafts to the orders service.
type Client struct {
	rpc commandClient
}

func NewClient(rpc commandClient) (*Client, error) {
	if rpc == nil {
		return nil, errors.New("orders: rpc client is required")
	}
	return &Client{rpc: rpc}, nil
}

// Create performs the single authoritative call that commits the order.
func (c *Client) Create(ctx context.Context, draft *OrderDraft) (*Order, error) {
	if draft == nil {
		return nil, errors.New("orders: draft is required")
	}
	var out struct {
		Data *Order `json:"data"`
	}
	if err := c.rpc.Call(ctx, "create_order", draft, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return nil, errors.New("orders: create_order returned no order")
	}
	return out.Data, nil
}
