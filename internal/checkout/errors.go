package checkout

import (
	pkgerrors "github.com/arkanlabs/shopgate/pkg/errors"
)

// Business abort reasons. Each one terminates the pipeline before any
// order is created.
const (
	ReasonCartEmpty              = "CART_EMPTY"
	ReasonInvalidShippingAddress = "INVALID_SHIPPING_ADDRESS"
	ReasonProductNotFound        = "PRODUCT_NOT_FOUND"
	ReasonVariantNotFound        = "VARIANT_NOT_FOUND"
)

func abort(reason, message string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	details["reason"] = reason
	return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(details)
}

// AbortReason extracts the business reason from a checkout failure, or
// "" when the failure was not a business abort.
func AbortReason(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return ""
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		return ""
	}
	reason, _ := details["reason"].(string)
	return reason
}
