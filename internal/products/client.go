package products

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/arkanlabs/shopgate/pkg/types"
)

// Variant is one sellable variation of a product.
type Variant struct {
	ID    string          `json:"id"`
	SKU   string          `json:"sku"`
	Price decimal.Decimal `json:"price"`
	Stock types.WireInt   `json:"stock"`
}

// ProductQuote is a read-only catalog snapshot fetched per checkout.
// It is never cached across requests; price authority stays with the
// products service at call time.
type ProductQuote struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	BasePrice decimal.Decimal `json:"basePrice"`
	Variants  []Variant       `json:"variants"`
}

// Variant finds a variant by exact id match. Returns nil when absent.
func (q *ProductQuote) Variant(variantID string) *Variant {
	if q == nil || variantID == "" {
		return nil
	}
	for i := range q.Variants {
		if q.Variants[i].ID == variantID {
			return &q.Variants[i]
		}
	}
	return nil
}

type commandClient interface {
	Call(ctx context.Context, command string, payload any, out any) error
}

// Client fetches catalog snapshots from the products service.
type Client struct {
	rpc commandClient
}

func NewClient(rpc commandClient) (*Client, error) {
	if rpc == nil {
		return nil, errors.New("products: rpc client is required")
	}
	return &Client{rpc: rpc}, nil
}

// FindByID returns the quote for the product, or nil when the catalog
// does not know the id.
func (c *Client) FindByID(ctx context.Context, productID string) (*ProductQuote, error) {
	var out struct {
		Data *ProductQuote `json:"data"`
	}
	if err := c.rpc.Call(ctx, "find_product_by_id", map[string]any{"productId": productID}, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}
