package testutil

import (
	"net"
	"testing"
)

// FreeTCPAddr returns a loopback address with a port that was free a moment ago.
func FreeTCPAddr(t testing.TB) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserving port: %v", err)
	}
	addr := l.Addr().String()
	if err := l.Close(); err != nil {
		t.Fatalf("releasing port: %v", err)
	}
	return addr
}
