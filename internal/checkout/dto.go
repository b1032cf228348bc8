package checkout

// Request is the validated checkout input. The user id comes from the
// access token, never from the body.
type Request struct {
	ShippingAddressID string `json:"shippingAddressId" validate:"required"`
	ServiceType       string `json:"serviceType" validate:"required"`
	Courier           string `json:"courier" validate:"required"`
	PaymentMethod     string `json:"paymentMethod" validate:"required"`
	Notes             string `json:"notes,omitempty" validate:"omitempty,max=500"`
}
