package checkout

import "github.com/shopspring/decimal"

// Service types accepted on a checkout request.
const (
	ServiceSameDay  = "SAME_DAY"
	ServiceNextDay  = "NEXT_DAY"
	ServiceStandard = "STANDARD"
)

var shippingRates = map[string]int64{
	ServiceSameDay:  50000,
	ServiceNextDay:  25000,
	ServiceStandard: 15000,
}

// ShippingCost maps a service type to its flat rate. Unknown service
// types degrade to the standard rate rather than failing checkout.
func ShippingCost(serviceType string) decimal.Decimal {
	rate, ok := shippingRates[serviceType]
	if !ok {
		rate = shippingRates[ServiceStandard]
	}
	return decimal.NewFromInt(rate)
}
