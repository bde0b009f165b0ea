package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Redis starts a disposable Redis container and returns its URL.
func Redis(t *testing.T) string {
	t.Helper()

	ctx := context.Background()

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7",
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
			ExposedPorts: []string{"6379/tcp"},
		},
		Started: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = redisContainer.Terminate(ctx)
	})

	exposedPort, err := nat.NewPort("tcp", "6379")
	require.NoError(t, err)

	mappedPort, err := redisContainer.MappedPort(ctx, exposedPort)
	require.NoError(t, err)

	return fmt.Sprintf("redis://127.0.0.1:%d/0", mappedPort.Int())
}
