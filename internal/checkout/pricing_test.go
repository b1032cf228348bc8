package checkout

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arkanlabs/shopgate/internal/cart"
	"github.com/arkanlabs/shopgate/internal/products"
	pkgerrors "github.com/arkanlabs/shopgate/pkg/errors"
	"github.com/arkanlabs/shopgate/pkg/rpc"
)

type slowFinder struct {
	mu       sync.Mutex
	inFlight int32
	maxSeen  int32
	quotes   map[string]*products.ProductQuote
	err      error
}

func (s *slowFinder) FindByID(_ context.Context, productID string) (*products.ProductQuote, error) {
	cur := atomic.AddInt32(&s.inFlight, 1)
	defer atomic.AddInt32(&s.inFlight, -1)
	s.mu.Lock()
	if cur > s.maxSeen {
		s.maxSeen = cur
	}
	s.mu.Unlock()

	time.Sleep(10 * time.Millisecond)
	if s.err != nil {
		return nil, s.err
	}
	return s.quotes[productID], nil
}

func manyLines(n int) []cart.CartLine {
	lines := make([]cart.CartLine, 0, n)
	for i := 0; i < n; i++ {
		lines = append(lines, cart.CartLine{ProductID: string(rune('a' + i)), Quantity: 1})
	}
	return lines
}

func TestEnrichBoundsConcurrency(t *testing.T) {
	quotes := map[string]*products.ProductQuote{}
	lines := manyLines(8)
	for _, l := range lines {
		quotes[l.ProductID] = &products.ProductQuote{ID: l.ProductID, BasePrice: decimal.NewFromInt(10)}
	}
	finder := &slowFinder{quotes: quotes}

	enriched, total, err := enrich(context.Background(), finder, lines, 2)
	if err != nil {
		t.Fatalf("enrich returned error: %v", err)
	}
	if len(enriched) != 8 {
		t.Fatalf("expected 8 lines, got %d", len(enriched))
	}
	if !total.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("expected total 80, got %s", total)
	}
	if finder.maxSeen > 2 {
		t.Fatalf("expected at most 2 concurrent lookups, saw %d", finder.maxSeen)
	}
}

func TestEnrichFailsWholeBatchOnRemoteError(t *testing.T) {
	finder := &slowFinder{err: &rpc.Error{Service: "products", Command: "find_product_by_id", Kind: rpc.KindUnavailable}}

	_, _, err := enrich(context.Background(), finder, manyLines(4), 2)
	if err == nil {
		t.Fatal("expected batch failure")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency classification, got %v", err)
	}
}

func TestEnrichZeroQuantityLineContributesNothing(t *testing.T) {
	finder := &slowFinder{quotes: map[string]*products.ProductQuote{
		"p1": {ID: "p1", BasePrice: decimal.NewFromInt(100)},
	}}

	enriched, total, err := enrich(context.Background(), finder, []cart.CartLine{{ProductID: "p1", Quantity: 0}}, 2)
	if err != nil {
		t.Fatalf("enrich returned error: %v", err)
	}
	if !total.Equal(decimal.Zero) {
		t.Fatalf("expected zero total, got %s", total)
	}
	if !enriched[0].SubTotal.Equal(decimal.Zero) {
		t.Fatalf("expected zero subtotal, got %s", enriched[0].SubTotal)
	}
}
