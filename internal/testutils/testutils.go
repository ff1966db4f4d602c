//go:build integration

// Package testutils provides shared test infrastructure for integration tests.
package testutils

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresEnv contains connection information for a Postgres test environment.
type PostgresEnv struct {
	Container testcontainers.Container
	URL       string
}

// Close terminates the Postgres container.
func (e *PostgresEnv) Close(ctx context.Context) error {
	if e.Container != nil {
		return e.Container.Terminate(ctx)
	}
	return nil
}

// StartPostgresContainer starts a Postgres container with an empty
// database and returns its connection URL.
func StartPostgresContainer(t *testing.T, ctx context.Context) *PostgresEnv {
	t.Helper()

	const (
		user     = "civic"
		password = "civic"
		dbName   = "civic"
	)

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     user,
			"POSTGRES_PASSWORD": password,
			"POSTGRES_DB":       dbName,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("get container port: %v", err)
	}

	url := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		user, password, host, port.Port(), dbName)

	return &PostgresEnv{
		Container: container,
		URL:       url,
	}
}
