package transport

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kizaaku/climonitor/protocol"
)

func TestUnixTransportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	socketPath := filepath.Join(dir, "climonitor.sock")

	listener, err := Listen(Config{Kind: "unix", SocketPath: socketPath}, nil, nil)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer listener.Close()

	accepted := make(chan protocol.Event, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		ev, err := protocol.ReadEvent(conn)
		if err != nil {
			return
		}
		accepted <- ev
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	client, err := Dial(ctx, Config{Kind: "unix", SocketPath: socketPath})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	want := protocol.NewDisconnect("launcher-1", time.Unix(0, 0).UTC())
	if err := client.Send(ctx, want); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case got := <-accepted:
		if got.Kind != want.Kind || got.LauncherID != want.LauncherID {
			t.Fatalf("got %+v, want %+v", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for server to receive event")
	}
}

func TestNetworkListenerAcceptsAllowedPeer(t *testing.T) {
	allowlist, err := NewAllowlist([]string{"127.0.0.1"})
	if err != nil {
		t.Fatalf("NewAllowlist: %v", err)
	}
	// With only the literal 127.0.0.1 allowed, a loopback TCP connection
	// from the test (also 127.0.0.1) must be accepted; this exercises the
	// accept-path wiring of the filtering listener.
	listener, err := Listen(Config{Kind: "network", Addr: "127.0.0.1:0"}, allowlist, nil)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer listener.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	client, err := Dial(ctx, Config{Kind: "network", Addr: listener.Addr().String()})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	conn, err := listener.Accept()
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	conn.Close()
}
