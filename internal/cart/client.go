package cart

import (
	"context"
	"errors"

	"github.com/arkanlabs/shopgate/pkg/types"
)

// pageLimit is the page size used when draining a cart at checkout.
const pageLimit = 100

// CartLine is one product(+variant) and quantity entry in a user's cart.
type CartLine struct {
	ProductID string
	VariantID string
	Quantity  int
}

type commandClient interface {
	Call(ctx context.Context, command string, payload any, out any) error
	Notify(ctx context.Context, command string, payload any)
}

// Client reads and clears carts held by the cart service.
type Client struct {
	rpc      commandClient
	pageSize int
}

func NewClient(rpc commandClient, pageSize int) (*Client, error) {
	if rpc == nil {
		return nil, errors.New("cart: rpc client is required")
	}
	if pageSize <= 0 {
		pageSize = pageLimit
	}
	return &Client{rpc: rpc, pageSize: pageSize}, nil
}

type wireLine struct {
	ProductID string        `json:"productId"`
	VariantID *string       `json:"variantId"`
	Quantity  types.WireInt `json:"quantity"`
	Product   *wireLineRef  `json:"product,omitempty"`
}

type wireLineRef struct {
	ID string `json:"id"`
}

type cartPage struct {
	Data []wireLine `json:"data"`
	Meta struct {
		Total types.WireInt `json:"total"`
		Page  types.WireInt `json:"page"`
		Limit types.WireInt `json:"limit"`
	} `json:"meta"`
}

// Lines returns every line in the user's cart, in cart order. Pages are
// fetched until the total the service reports is drained, so carts
// larger than one page still check out whole.
func (c *Client) Lines(ctx context.Context, userID string) ([]CartLine, error) {
	var lines []CartLine
	for page := 1; ; page++ {
		var out cartPage
		err := c.rpc.Call(ctx, "get_cart", map[string]any{
			"userId": userID,
			"page":   page,
			"limit":  c.pageSize,
		}, &out)
		if err != nil {
			return nil, err
		}

		for _, wl := range out.Data {
			line := CartLine{
				ProductID: wl.ProductID,
				Quantity:  wl.Quantity.Int(),
			}
			// Prefer the embedded product reference when the service
			// expands it; the raw field can lag behind a merge.
			if wl.Product != nil && wl.Product.ID != "" {
				line.ProductID = wl.Product.ID
			}
			if wl.VariantID != nil {
				line.VariantID = *wl.VariantID
			}
			lines = append(lines, line)
		}

		if len(out.Data) == 0 {
			break
		}
		if total := out.Meta.Total.Int(); total > 0 && len(lines) >= total {
			break
		}
		if len(out.Data) < c.pageSize {
			break
		}
	}
	return lines, nil
}

// Clear asks the cart service to drop the user's cart. Fire-and-forget:
// the outcome does not reach the caller.
func (c *Client) Clear(ctx context.Context, userID string) {
	c.rpc.Notify(ctx, "delete_cart", map[string]any{"userId": userID})
}
