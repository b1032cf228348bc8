package users

import (
	"context"
	"errors"
)

// AddressSnapshot is an immutable copy of the user's shipping address
// taken at checkout time. Orders keep this copy so later address edits
// never rewrite a shipped order's destination.
type AddressSnapshot struct {
	Recipient  string `json:"recipient"`
	Phone      string `json:"phone"`
	Province   string `json:"province"`
	City       string `json:"city"`
	District   string `json:"district"`
	PostalCode string `json:"postalCode"`
	Address    string `json:"address"`
	Landmark   string `json:"landmark,omitempty"`
}

type commandClient interface {
	Call(ctx context.Context, command string, payload any, out any) error
}

// Client resolves user data held by the users service.
type Client struct {
	rpc commandClient
}

func NewClient(rpc commandClient) (*Client, error) {
	if rpc == nil {
		return nil, errors.New("users: rpc client is required")
	}
	return &Client{rpc: rpc}, nil
}

// ShippingAddress returns the address currently marked as the user's
// shipping target, or nil when none resolves. A nil snapshot is not an
// error here; checkout turns it into its own business failure.
func (c *Client) ShippingAddress(ctx context.Context, userID string) (*AddressSnapshot, error) {
	var out struct {
		Data *AddressSnapshot `json:"data"`
	}
	if err := c.rpc.Call(ctx, "get_user_address_detail", map[string]any{"userId": userID}, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}
