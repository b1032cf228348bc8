package checkout

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/arkanlabs/shopgate/internal/cart"
	"github.com/arkanlabs/shopgate/internal/orders"
	"github.com/arkanlabs/shopgate/internal/products"
	"github.com/arkanlabs/shopgate/pkg/rpc"
)

const defaultPriceConcurrency = 4

// enrich resolves authoritative catalog pricing for every cart line.
// Distinct product ids fan out concurrently; enriched lines are built
// afterwards in cart order. One missing product or variant fails the
// whole cart — there is no partial checkout.
func enrich(ctx context.Context, finder ProductFinder, lines []cart.CartLine, concurrency int) ([]orders.OrderLine, decimal.Decimal, error) {
	if concurrency <= 0 {
		concurrency = defaultPriceConcurrency
	}

	distinct := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		distinct = append(distinct, line.ProductID)
	}

	var mu sync.Mutex
	quotes := make(map[string]*products.ProductQuote, len(distinct))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, productID := range distinct {
		g.Go(func() error {
			quote, err := finder.FindByID(gctx, productID)
			if err != nil {
				return err
			}
			mu.Lock()
			quotes[productID] = quote
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, decimal.Zero, rpc.ToDomain(err)
	}

	enriched := make([]orders.OrderLine, 0, len(lines))
	total := decimal.Zero
	for _, line := range lines {
		quote := quotes[line.ProductID]
		if quote == nil {
			return nil, decimal.Zero, abort(ReasonProductNotFound, "product not found",
				map[string]any{"productId": line.ProductID})
		}

		out := orders.OrderLine{
			ProductID:    quote.ID,
			ProductName:  quote.Name,
			ProductImage: quote.Image,
			Quantity:     line.Quantity,
			BasePrice:    quote.BasePrice,
			UnitPrice:    quote.BasePrice,
		}

		if line.VariantID != "" {
			variant := quote.Variant(line.VariantID)
			if variant == nil {
				return nil, decimal.Zero, abort(ReasonVariantNotFound, "product variant not found",
					map[string]any{"productId": line.ProductID, "variantId": line.VariantID})
			}
			out.VariantID = variant.ID
			out.VariantSKU = variant.SKU
			out.VariantPrice = variant.Price
			out.UnitPrice = variant.Price
		}

		out.SubTotal = out.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(out.SubTotal)
		enriched = append(enriched, out)
	}

	return enriched, total, nil
}
