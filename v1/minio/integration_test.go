package minio

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/Aleph-Alpha/vectordb-api/v1/observability"
)

const (
	testAccessKey = "minio_admin"
	testSecretKey = "minio_admin"
)

// createMinIOContainer sets up and starts a MinIO Docker container for testing
func createMinIOContainer(ctx context.Context) (testcontainers.Container, string, error) {
	port, err := getFreePort()
	if err != nil {
		return nil, "", fmt.Errorf("could not get free port: %w", err)
	}

	portStr := fmt.Sprintf("%d", port)
	portBindings := nat.PortMap{
		"9000/tcp": []nat.PortBinding{{HostPort: portStr}},
	}

	req := testcontainers.ContainerRequest{
		Image: "minio/minio:RELEASE.2024-01-16T16-07-38Z",
		Cmd:   []string{"server", "/data"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     testAccessKey,
			"MINIO_ROOT_PASSWORD": testSecretKey,
		},
		ExposedPorts: []string{"9000/tcp"},
		HostConfigModifier: func(cfg *container.HostConfig) {
			cfg.PortBindings = portBindings
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("9000/tcp").WithStartupTimeout(30*time.Second),
			wait.ForHTTP("/minio/health/ready").WithPort("9000/tcp").WithStartupTimeout(30*time.Second),
		),
	}

	containerInstance, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to start MinIO container: %w", err)
	}

	host, err := containerInstance.Host(ctx)
	if err != nil {
		_ = containerInstance.Terminate(ctx)
		return nil, "", fmt.Errorf("failed to get host: %w", err)
	}

	return containerInstance, net.JoinHostPort(host, portStr), nil
}

// getFreePort gets a free port from the OS
func getFreePort() (int, error) {
	addr, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	defer addr.Close()

	return addr.Addr().(*net.TCPAddr).Port, nil
}

func testConfig(endpoint string) Config {
	return Config{
		Connection: ConnectionConfig{
			Endpoint:             endpoint,
			AccessKeyID:          testAccessKey,
			SecretAccessKey:      testSecretKey,
			BucketName:           "vectordb-snapshots",
			AccessBucketCreation: true,
		},
		Snapshot: SnapshotConfig{ObjectKey: "test/db.sqlite"},
	}
}

func TestMinioSnapshotIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	containerInstance, endpoint, err := createMinIOContainer(ctx)
	require.NoError(t, err)
	defer func() {
		if err := containerInstance.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}()

	t.Run("MissingBucketWithoutCreation", func(t *testing.T) {
		cfg := testConfig(endpoint)
		cfg.Connection.BucketName = "not-there"
		cfg.Connection.AccessBucketCreation = false

		_, err := NewClient(cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrBucketNotFound)
	})

	var ops []observability.OperationContext
	client, err := NewClient(testConfig(endpoint))
	require.NoError(t, err)
	client = client.WithObserver(observability.ObserverFunc(func(oc observability.OperationContext) {
		ops = append(ops, oc)
	}))
	defer client.GracefulShutdown()

	dir := t.TempDir()

	t.Run("RestoreWithoutSnapshot", func(t *testing.T) {
		found, err := client.Restore(ctx, filepath.Join(dir, "restored.sqlite"))
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("PersistAndRestore", func(t *testing.T) {
		src := filepath.Join(dir, "db.sqlite")
		require.NoError(t, os.WriteFile(src, []byte("SQLite format 3\x00payload"), 0o644))
		require.NoError(t, client.Persist(ctx, src))

		dst := filepath.Join(dir, "nested", "restored.sqlite")
		found, err := client.Restore(ctx, dst)
		require.NoError(t, err)
		assert.True(t, found)

		data, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "SQLite format 3\x00payload", string(data))
	})

	t.Run("ObserverNotified", func(t *testing.T) {
		require.Len(t, ops, 3)
		assert.Equal(t, "minio", ops[1].Component)
		assert.Equal(t, "snapshot_persist", ops[1].Operation)
		assert.Equal(t, filepath.Join(dir, "db.sqlite"), ops[1].Metadata["local_path"])
		assert.Equal(t, false, ops[0].Metadata["found"])
		assert.Equal(t, true, ops[2].Metadata["found"])
		assert.Equal(t, "vectordb-snapshots", ops[1].Resource)
		assert.Equal(t, "test/db.sqlite", ops[1].SubResource)
		assert.Equal(t, int64(len("SQLite format 3\x00payload")), ops[1].Size)
	})
}

func TestMinioFXModuleIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	containerInstance, endpoint, err := createMinIOContainer(ctx)
	require.NoError(t, err)
	defer func() { _ = containerInstance.Terminate(ctx) }()

	var client Client
	app := fxtest.New(t,
		FXModule,
		fx.Provide(func() Config { return testConfig(endpoint) }),
		fx.Populate(&client),
	)
	app.RequireStart()

	found, err := client.Restore(ctx, filepath.Join(t.TempDir(), "db.sqlite"))
	require.NoError(t, err)
	assert.False(t, found)

	app.RequireStop()
}
