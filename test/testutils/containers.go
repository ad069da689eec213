package testutils

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestPostgres is a disposable PostgreSQL container
type TestPostgres struct {
	Container testcontainers.Container
	Pool      *pgxpool.Pool
	DSN       string
	Database  string
}

// SetupTestPostgres starts a PostgreSQL container and returns its DSN.
// The container is terminated when the test ends.
func SetupTestPostgres(t *testing.T) *TestPostgres {
	t.Helper()
	ctx := context.Background()

	const (
		database = "blendcalc_test"
		username = "test_user"
		password = "test_password"
		port     = "5432"
	)

	dsnFor := func(host string, p nat.Port) string {
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", username, password, host, p.Port(), database)
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{port + "/tcp"},
			Env: map[string]string{
				"POSTGRES_DB":       database,
				"POSTGRES_USER":     username,
				"POSTGRES_PASSWORD": password,
			},
			WaitingFor: wait.ForAll(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
				wait.ForSQL(nat.Port(port+"/tcp"), "pgx", dsnFor),
			),
		},
		Started: true,
	})
	require.NoError(t, err, "Failed to start postgres container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mapped, err := container.MappedPort(ctx, nat.Port(port+"/tcp"))
	require.NoError(t, err)

	dsn := dsnFor(host, mapped)
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err, "Failed to create pgx pool")
	t.Cleanup(pool.Close)

	return &TestPostgres{Container: container, Pool: pool, DSN: dsn, Database: database}
}

// SetupTestRedis starts a Redis container and returns a connected client.
// The container is terminated when the test ends.
func SetupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "Failed to start redis container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	require.NoError(t, client.Ping(ctx).Err(), "Failed to ping redis")
	t.Cleanup(func() { _ = client.Close() })

	return client
}
