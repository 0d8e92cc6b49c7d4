package client

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/watt-toolkit/ringhttp/internal/testreactor"
)

func TestConnectionRoundTripWithBody(t *testing.T) {
	reactor := testreactor.NewReactor()
	conn, err := NewConnection(DefaultConfig(), reactor)
	if err != nil {
		t.Fatalf("NewConnection: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := conn.Connect(ctx, "pipe", "test"); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	serverFD, _, err := reactor.Accept(ctx, testreactor.ListenFD)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}

	go func() {
		reactor.RecvWithTimeout(ctx, serverFD, make([]byte, 64), time.Second) // drain the request
		resp := "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhello"
		reactor.SendWithTimeout(ctx, serverFD, []byte(resp), time.Second)
	}()

	if err := conn.SendFull(ctx, []byte("GET / HTTP/1.1\r\nHost: x\r\n\r\n")); err != nil {
		t.Fatalf("SendFull: %v", err)
	}

	resp, err := conn.RecvResponseHeader(ctx)
	if err != nil {
		t.Fatalf("RecvResponseHeader: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body []byte
	for !conn.FullyReadResponseContent() {
		frag, _, err := conn.RecvResponseContentFragment(ctx)
		if err != nil {
			t.Fatalf("RecvResponseContentFragment: %v", err)
		}
		body = append(body, frag...)
	}
	if !bytes.Equal(body, []byte("hello")) {
		t.Fatalf("body = %q, want %q", body, "hello")
	}

	conn.FinishResponse()
	if conn.RequestCount() != 1 {
		t.Fatalf("RequestCount = %d, want 1", conn.RequestCount())
	}
}

func TestConnectionResponseWithoutContentLengthCompletesAfterHeaders(t *testing.T) {
	reactor := testreactor.NewReactor()
	conn, err := NewConnection(DefaultConfig(), reactor)
	if err != nil {
		t.Fatalf("NewConnection: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := conn.Connect(ctx, "pipe", "test"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	serverFD, _, err := reactor.Accept(ctx, testreactor.ListenFD)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}

	go func() {
		reactor.RecvWithTimeout(ctx, serverFD, make([]byte, 64), time.Second) // drain the request
		resp := "HTTP/1.1 204 No Content\r\n\r\n"
		reactor.SendWithTimeout(ctx, serverFD, []byte(resp), time.Second)
	}()

	conn.SendFull(ctx, []byte("GET / HTTP/1.1\r\nHost: x\r\n\r\n"))
	resp, err := conn.RecvResponseHeader(ctx)
	if err != nil {
		t.Fatalf("RecvResponseHeader: %v", err)
	}
	if resp.StatusCode != 204 {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}
	if !conn.FullyReadResponseContent() {
		t.Fatalf("expected FullyReadResponseContent() true with no Content-Length")
	}
}

func TestConnectionHeaderOverflow(t *testing.T) {
	reactor := testreactor.NewReactor()
	cfg := DefaultConfig()
	cfg.ResponseHeaderBufIniLen = 32
	cfg.ResponseHeaderBufMaxLen = 32
	conn, err := NewConnection(cfg, reactor)
	if err != nil {
		t.Fatalf("NewConnection: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := conn.Connect(ctx, "pipe", "test"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	serverFD, _, err := reactor.Accept(ctx, testreactor.ListenFD)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}

	go func() {
		reactor.RecvWithTimeout(ctx, serverFD, make([]byte, 64), time.Second) // drain the request
		resp := "HTTP/1.1 200 OK\r\nX-Long-Header: aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa\r\n\r\n"
		reactor.SendWithTimeout(ctx, serverFD, []byte(resp), time.Second)
	}()

	conn.SendFull(ctx, []byte("GET / HTTP/1.1\r\nHost: x\r\n\r\n"))
	if _, err := conn.RecvResponseHeader(ctx); err == nil {
		t.Fatalf("expected ErrHeaderFieldsTooLong, got nil")
	}
}
