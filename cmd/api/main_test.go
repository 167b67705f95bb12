package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"jobtracker-backend/internal/shared/telemetry"
)

func TestServeReturnsListenError(t *testing.T) {
	defer telemetry.SetOutput(io.Discard)()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	srv := &http.Server{Addr: ln.Addr().String(), Handler: http.NotFoundHandler()}
	done := make(chan error, 1)
	go func() { done <- serve(context.Background(), srv) }()

	select {
	case err := <-done:
		if err == nil {
			t.Fatalf("expected error for an address in use")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("serve did not return on listen failure")
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	defer telemetry.SetOutput(io.Discard)()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	if err := serve(ctx, srv); err != nil {
		t.Fatalf("expected clean shutdown, got %v", err)
	}
}
