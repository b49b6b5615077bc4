package testutil

import (
	"context"
	"fmt"
	"net"
	"time"
)

// WaitForTCPReady polls addr until something accepts connections.
//
//	go monitor.Run(ctx, addr, hub)
//	if err := testutil.WaitForTCPReady(addr, 2*time.Second); err != nil {
//	    t.Fatal(err)
//	}
func WaitForTCPReady(addr string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for server at %s: %w", addr, ctx.Err())
		case <-ticker.C:
			conn, err := net.DialTimeout("tcp", addr, 50*time.Millisecond)
			if err == nil {
				_ = conn.Close()
				return nil
			}
		}
	}
}
