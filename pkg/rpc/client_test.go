package rpc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgerrors "github.com/arkanlabs/shopgate/pkg/errors"
)

func newTestClient(t *testing.T, baseURL string, timeout time.Duration) *Client {
	t.Helper()
	client, err := NewClient("products", baseURL, timeout, nil, nil)
	if err != nil {
		t.Fatalf("build client: %v", err)
	}
	return client
}

func TestCallDecodesSuccessBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rpc/find_product_by_id" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("unexpected content type: %s", ct)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"p1","name":"Kopi Gayo"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, time.Second)

	var out struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := client.Call(context.Background(), "find_product_by_id", map[string]string{"id": "p1"}, &out); err != nil {
		t.Fatalf("call: %v", err)
	}
	if out.ID != "p1" || out.Name != "Kopi Gayo" {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestCallClassifiesRemoteRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"statusCode":400,"message":"product not found"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, time.Second)

	err := client.Call(context.Background(), "find_product_by_id", nil, nil)
	typed := AsError(err)
	if typed == nil {
		t.Fatalf("expected classified error, got %v", err)
	}
	if typed.Kind != KindRejected {
		t.Fatalf("expected rejected, got %s", typed.Kind)
	}
	if typed.StatusCode != 400 {
		t.Fatalf("unexpected status: %d", typed.StatusCode)
	}
	if typed.Message != "product not found" {
		t.Fatalf("unexpected message: %s", typed.Message)
	}
}

func TestCallClassifiesUndecodableErrorBodyAsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html>upstream exploded</html>`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, time.Second)

	err := client.Call(context.Background(), "get_cart", nil, nil)
	typed := AsError(err)
	if typed == nil || typed.Kind != KindUnavailable {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestCallClassifiesTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 50*time.Millisecond)

	err := client.Call(context.Background(), "get_cart", nil, nil)
	typed := AsError(err)
	if typed == nil || typed.Kind != KindTimeout {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestCallClassifiesConnectionRefusedAsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestClient(t, server.URL, time.Second)

	err := client.Call(context.Background(), "get_cart", nil, nil)
	typed := AsError(err)
	if typed == nil || typed.Kind != KindUnavailable {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestCallHonorsCallerDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	// Client timeout is generous; the caller's deadline must win.
	client := newTestClient(t, server.URL, 10*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := client.Call(ctx, "get_cart", nil, nil)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("call did not honor caller deadline, took %s", elapsed)
	}
	typed := AsError(err)
	if typed == nil || typed.Kind != KindTimeout {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestNotifyDoesNotBlockOrFail(t *testing.T) {
	delivered := make(chan struct{}, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		delivered <- struct{}{}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, time.Second)
	client.Notify(context.Background(), "delete_cart", map[string]string{"userId": "u1"})

	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("notify never reached the server")
	}
}

func TestToDomainMapsKindsOntoTaxonomy(t *testing.T) {
	cases := []struct {
		name string
		err  *Error
		code pkgerrors.Code
	}{
		{name: "timeout", err: &Error{Service: "cart", Kind: KindTimeout}, code: pkgerrors.CodeDependency},
		{name: "unavailable", err: &Error{Service: "cart", Kind: KindUnavailable}, code: pkgerrors.CodeDependency},
		{name: "rejected 4xx", err: &Error{Service: "orders", Kind: KindRejected, StatusCode: 422, Message: "bad draft"}, code: pkgerrors.CodeValidation},
		{name: "rejected 5xx", err: &Error{Service: "orders", Kind: KindRejected, StatusCode: 500}, code: pkgerrors.CodeDependency},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mapped := ToDomain(tc.err)
			typed := pkgerrors.As(mapped)
			if typed == nil {
				t.Fatalf("expected domain error, got %v", mapped)
			}
			if typed.Code() != tc.code {
				t.Fatalf("expected %s, got %s", tc.code, typed.Code())
			}
		})
	}
}

func TestToDomainKeepsRejectionMessage(t *testing.T) {
	mapped := ToDomain(&Error{Service: "orders", Kind: KindRejected, StatusCode: 400, Message: "quantity below minimum"})
	typed := pkgerrors.As(mapped)
	if typed == nil || typed.Message() != "quantity below minimum" {
		t.Fatalf("remote message should survive mapping, got %v", mapped)
	}
}
