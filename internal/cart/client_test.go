package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
)

type stubRPC struct {
	pages    []string
	calls    []map[string]any
	notified []string
	err      error
}

func (s *stubRPC) Call(_ context.Context, command string, payload any, out any) error {
	if s.err != nil {
		return s.err
	}
	raw, _ := json.Marshal(payload)
	var decoded map[string]any
	_ = json.Unmarshal(raw, &decoded)
	decoded["command"] = command
	s.calls = append(s.calls, decoded)

	idx := len(s.calls) - 1
	if idx >= len(s.pages) {
		return fmt.Errorf("unexpected call %d", idx)
	}
	return json.Unmarshal([]byte(s.pages[idx]), out)
}

func (s *stubRPC) Notify(_ context.Context, command string, payload any) {
	s.notified = append(s.notified, command)
}

func TestLinesSinglePage(t *testing.T) {
	rpc := &stubRPC{pages: []string{
		`{"data":[{"productId":"p1","quantity":2},{"productId":"p2","variantId":"v1","quantity":"3"}],"meta":{"total":2}}`,
	}}
	client, err := NewClient(rpc, 100)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	lines, err := client.Lines(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Lines returned error: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].ProductID != "p1" || lines[0].Quantity != 2 {
		t.Fatalf("unexpected first line %+v", lines[0])
	}
	if lines[1].VariantID != "v1" || lines[1].Quantity != 3 {
		t.Fatalf("quoted quantity not coerced: %+v", lines[1])
	}
	if len(rpc.calls) != 1 {
		t.Fatalf("expected one page fetch, got %d", len(rpc.calls))
	}
}

func TestLinesDrainsAllPages(t *testing.T) {
	rpc := &stubRPC{pages: []string{
		`{"data":[{"productId":"p1","quantity":1},{"productId":"p2","quantity":1}],"meta":{"total":3}}`,
		`{"data":[{"productId":"p3","quantity":1}],"meta":{"total":3}}`,
	}}
	client, err := NewClient(rpc, 2)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	lines, err := client.Lines(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Lines returned error: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines across pages, got %d", len(lines))
	}
	if len(rpc.calls) != 2 {
		t.Fatalf("expected 2 page fetches, got %d", len(rpc.calls))
	}
	if got := rpc.calls[1]["page"]; got != float64(2) {
		t.Fatalf("expected second fetch for page 2, got %v", got)
	}
}

func TestLinesEmptyCart(t *testing.T) {
	rpc := &stubRPC{pages: []string{`{"data":[],"meta":{"total":0}}`}}
	client, _ := NewClient(rpc, 100)

	lines, err := client.Lines(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Lines returned error: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected no lines, got %d", len(lines))
	}
}

func TestLinesPrefersEmbeddedProductRef(t *testing.T) {
	rpc := &stubRPC{pages: []string{
		`{"data":[{"productId":"stale","product":{"id":"p1"},"quantity":1}],"meta":{"total":1}}`,
	}}
	client, _ := NewClient(rpc, 100)

	lines, err := client.Lines(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Lines returned error: %v", err)
	}
	if lines[0].ProductID != "p1" {
		t.Fatalf("expected embedded product id, got %q", lines[0].ProductID)
	}
}

func TestClearNotifies(t *testing.T) {
	rpc := &stubRPC{}
	client, _ := NewClient(rpc, 100)

	client.Clear(context.Background(), "user-1")

	if len(rpc.notified) != 1 || rpc.notified[0] != "delete_cart" {
		t.Fatalf("expected delete_cart notification, got %v", rpc.notified)
	}
}

func TestNewClientRequiresRPC(t *testing.T) {
	if _, err := NewClient(nil, 100); err == nil {
		t.Fatal("expected error for nil rpc client")
	}
}
