package server

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/watt-toolkit/ringhttp/internal/testreactor"
	"github.com/watt-toolkit/ringhttp/pkg/ringhttp/http1"
	"github.com/watt-toolkit/ringhttp/pkg/ringhttp/ioring"
)

func echoHandler() Handler {
	return NewHandlerFunc(func(req RequestHeaders, body []byte) Result {
		return Result{
			StatusCode: http1.StatusOK,
			Headers:    []ResponseHeader{{Name: "X-Echo-Len", Value: itoa(len(body))}},
			Body:       body,
		}
	})
}

func TestConnectionServesSingleRequestThenKeepsAlive(t *testing.T) {
	reactor := testreactor.NewReactor()
	cfg := DefaultConfig()
	cfg.Handler = echoHandler()
	srv, err := New(cfg, reactor)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Run(ctx, testreactor.ListenFD)

	clientFD := reactor.Dial()
	time.Sleep(10 * time.Millisecond) // let the accept loop pick up the peer

	req := "POST /echo HTTP/1.1\r\nHost: x\r\nContent-Length: 5\r\n\r\nhello"
	if res := reactor.SendWithTimeout(ctx, clientFD, []byte(req), time.Second); res.Err != nil {
		t.Fatalf("send: %v", res.Err)
	}

	got := readResponse(t, ctx, reactor, clientFD)
	if !bytes.Contains(got, []byte("200 OK")) {
		t.Fatalf("response missing 200 OK: %q", got)
	}
	if !bytes.Contains(got, []byte("hello")) {
		t.Fatalf("response missing echoed body: %q", got)
	}

	// Same connection should still be alive (HTTP/1.1 default keep-alive):
	// send a second request and expect a second response.
	req2 := "GET /ping HTTP/1.1\r\nHost: x\r\n\r\n"
	if res := reactor.SendWithTimeout(ctx, clientFD, []byte(req2), time.Second); res.Err != nil {
		t.Fatalf("send2: %v", res.Err)
	}
	got2 := readResponse(t, ctx, reactor, clientFD)
	if !bytes.Contains(got2, []byte("200 OK")) {
		t.Fatalf("second response missing 200 OK: %q", got2)
	}
}

func TestConnectionConnectionCloseHeaderClosesAfterResponse(t *testing.T) {
	reactor := testreactor.NewReactor()
	cfg := DefaultConfig()
	cfg.Handler = echoHandler()
	srv, err := New(cfg, reactor)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Run(ctx, testreactor.ListenFD)

	clientFD := reactor.Dial()
	time.Sleep(10 * time.Millisecond)

	req := "GET /x HTTP/1.1\r\nHost: x\r\nConnection: close\r\n\r\n"
	reactor.SendWithTimeout(ctx, clientFD, []byte(req), time.Second)
	got := readResponse(t, ctx, reactor, clientFD)
	if !bytes.Contains(got, []byte("200 OK")) {
		t.Fatalf("response missing 200 OK: %q", got)
	}

	// The server should now have closed its end; a further recv should
	// report EOF (N==0, no error) rather than block forever.
	buf := make([]byte, 16)
	res := reactor.RecvWithTimeout(ctx, clientFD, buf, time.Second)
	if res.Err != nil || res.N != 0 {
		t.Fatalf("expected EOF after Connection: close, got n=%d err=%v", res.N, res.Err)
	}
}

func TestConnectionHeaderTooLongCloses(t *testing.T) {
	reactor := testreactor.NewReactor()
	cfg := DefaultConfig()
	cfg.ClientHeaderBufferSize = 64
	cfg.LargeClientHeaderBufferSize = 128
	cfg.LargeClientHeaderBufferMaxCount = 1
	cfg.Handler = echoHandler()
	srv, err := New(cfg, reactor)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Run(ctx, testreactor.ListenFD)

	clientFD := reactor.Dial()
	time.Sleep(10 * time.Millisecond)

	huge := strings.Repeat("a", 2000)
	req := "GET /x HTTP/1.1\r\nHost: x\r\nX-Big: " + huge + "\r\n\r\n"
	reactor.SendWithTimeout(ctx, clientFD, []byte(req), time.Second)

	got := readResponse(t, ctx, reactor, clientFD)
	if !bytes.Contains(got, []byte("400")) {
		t.Fatalf("expected 400 response, got %q", got)
	}
}

// TestShutdownWaitsForInFlightRequest exercises spec section 8's shutdown
// quiescence property: a connection mid-request when RequestShutdown is
// called still gets its response before Done closes, and the connection
// then closes rather than re-entering keep-alive.
func TestShutdownWaitsForInFlightRequest(t *testing.T) {
	reactor := testreactor.NewReactor()
	cfg := DefaultConfig()
	started := make(chan struct{})
	cfg.Handler = NewHandlerFunc(func(req RequestHeaders, body []byte) Result {
		close(started)
		time.Sleep(50 * time.Millisecond)
		return Result{StatusCode: http1.StatusOK, Body: []byte("done")}
	})
	srv, err := New(cfg, reactor)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Run(ctx, testreactor.ListenFD)

	clientFD := reactor.Dial()
	time.Sleep(10 * time.Millisecond)

	req := "GET /slow HTTP/1.1\r\nHost: x\r\n\r\n"
	if res := reactor.SendWithTimeout(ctx, clientFD, []byte(req), time.Second); res.Err != nil {
		t.Fatalf("send: %v", res.Err)
	}
	<-started

	done := make(chan error, 1)
	go func() { done <- srv.Shutdown(context.Background()) }()

	got := readResponse(t, ctx, reactor, clientFD)
	if !bytes.Contains(got, []byte("200 OK")) {
		t.Fatalf("in-flight request did not get a response before shutdown: %q", got)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Shutdown: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown did not return after its in-flight connection finished")
	}

	select {
	case <-srv.Done():
	default:
		t.Fatal("Done channel not closed after Shutdown returned")
	}
}

// TestShutdownClosesIdleConnection exercises the other half of section
// 4.6: a connection sitting idle between requests is closed proactively
// by RequestShutdown rather than waiting out its idle timeout.
func TestShutdownClosesIdleConnection(t *testing.T) {
	reactor := testreactor.NewReactor()
	cfg := DefaultConfig()
	cfg.Handler = echoHandler()
	cfg.IdleTimeout = 10 * time.Second
	srv, err := New(cfg, reactor)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Run(ctx, testreactor.ListenFD)

	clientFD := reactor.Dial()
	time.Sleep(10 * time.Millisecond)

	req := "GET /x HTTP/1.1\r\nHost: x\r\n\r\n"
	reactor.SendWithTimeout(ctx, clientFD, []byte(req), time.Second)
	readResponse(t, ctx, reactor, clientFD)

	time.Sleep(10 * time.Millisecond) // let the connection settle into Idle

	shutdownErr := make(chan error, 1)
	go func() { shutdownErr <- srv.Shutdown(context.Background()) }()

	select {
	case err := <-shutdownErr:
		if err != nil {
			t.Fatalf("Shutdown: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown did not close an idle connection promptly")
	}
}

// readResponse reads from fd until the header block's terminating blank
// line is seen, then gives any already-in-flight body bytes a brief
// chance to arrive before returning everything read.
func readResponse(t *testing.T, ctx context.Context, r *testreactor.Reactor, fd ioring.FD) []byte {
	t.Helper()
	var buf []byte
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		chunk := make([]byte, 256)
		res := r.RecvWithTimeout(ctx, fd, chunk, 200*time.Millisecond)
		if res.Err != nil {
			break
		}
		if res.N == 0 {
			break
		}
		buf = append(buf, chunk[:res.N]...)
		if bytes.Contains(buf, []byte("\r\n\r\n")) {
			time.Sleep(20 * time.Millisecond)
			more := make([]byte, 256)
			res2 := r.RecvWithTimeout(ctx, fd, more, 50*time.Millisecond)
			if res2.Err == nil && res2.N > 0 {
				buf = append(buf, more[:res2.N]...)
			}
			break
		}
	}
	return buf
}
