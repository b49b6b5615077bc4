package testutil

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// PostgresImage is the image used for repository tests.
const PostgresImage = "postgres:16-alpine"

// StartPostgres runs a throwaway PostgreSQL container and returns its DSN.
// The schema is empty; callers apply migrations themselves.
// Skipped in -short mode.
func StartPostgres(tb testing.TB) string {
	tb.Helper()
	if testing.Short() {
		tb.Skip("skipping PostgreSQL tests in short mode")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx, PostgresImage,
		postgres.WithDatabase("pathgen_test"),
		postgres.WithUsername("pathgen"),
		postgres.WithPassword("pathgen"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		tb.Fatalf("starting postgres container: %v", err)
	}
	tb.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			tb.Logf("terminating postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		tb.Fatalf("getting connection string: %v", err)
	}
	return dsn
}
