package transport

import (
	"net"
	"testing"
)

func TestAllowlistCIDR(t *testing.T) {
	a, err := NewAllowlist([]string{"10.0.0.0/8"})
	if err != nil {
		t.Fatalf("NewAllowlist: %v", err)
	}
	if !a.Allowed(net.ParseIP("10.1.2.3")) {
		t.Fatalf("expected 10.1.2.3 to be allowed by 10.0.0.0/8")
	}
	if a.Allowed(net.ParseIP("192.168.1.1")) {
		t.Fatalf("expected 192.168.1.1 to be rejected")
	}
}

func TestAllowlistLiteral(t *testing.T) {
	a, err := NewAllowlist([]string{"203.0.113.5"})
	if err != nil {
		t.Fatalf("NewAllowlist: %v", err)
	}
	if !a.Allowed(net.ParseIP("203.0.113.5")) {
		t.Fatalf("expected literal match to be allowed")
	}
	if a.Allowed(net.ParseIP("203.0.113.6")) {
		t.Fatalf("expected non-matching literal to be rejected")
	}
}

func TestAllowlistLocalhostExpandsToLoopback(t *testing.T) {
	a, err := NewAllowlist([]string{"localhost"})
	if err != nil {
		t.Fatalf("NewAllowlist: %v", err)
	}
	if !a.Allowed(net.ParseIP("127.0.0.1")) {
		t.Fatalf("expected localhost to allow 127.0.0.1")
	}
}

func TestAllowlistAnyDisablesCheck(t *testing.T) {
	a, err := NewAllowlist([]string{"any"})
	if err != nil {
		t.Fatalf("NewAllowlist: %v", err)
	}
	if !a.Allowed(net.ParseIP("8.8.8.8")) {
		t.Fatalf("expected any to allow arbitrary address")
	}
}

func TestAllowlistEmptyRejectsEverything(t *testing.T) {
	a, err := NewAllowlist(nil)
	if err != nil {
		t.Fatalf("NewAllowlist: %v", err)
	}
	if a.Allowed(net.ParseIP("127.0.0.1")) {
		t.Fatalf("expected empty allowlist to reject everything")
	}
}

func TestAllowlistRejectsInvalidCIDR(t *testing.T) {
	if _, err := NewAllowlist([]string{"not-a-cidr/99"}); err == nil {
		t.Fatalf("expected error for invalid CIDR")
	}
}
