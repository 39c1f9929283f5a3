//go:build integration

package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"chapterpress/internal/auth"
	"chapterpress/internal/content"
	"chapterpress/internal/content/contenttest"
	"chapterpress/internal/database"
	"chapterpress/internal/store"
)

// startPostgres runs a throwaway PostgreSQL and returns its connection URI.
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "press",
				"POSTGRES_PASSWORD": "press",
				"POSTGRES_DB":       "chapterpress",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithDeadline(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("skipping: cannot start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	return fmt.Sprintf("postgres://press:press@%s:%s/chapterpress?sslmode=disable", host, port.Port())
}

func TestPostgres_RepositoryContract(t *testing.T) {
	ctx := context.Background()
	client := database.NewClient(startPostgres(t), "")
	t.Cleanup(func() { _ = client.Close(context.Background()) })

	h, err := client.Connect(ctx)
	require.NoError(t, err)
	require.NoError(t, database.Prepare(ctx, h))

	contenttest.RunRepositoryContract(t, store.Repositories(h.SQL))
}

func TestPostgres_SeedThroughService(t *testing.T) {
	ctx := context.Background()
	client := database.NewClient(startPostgres(t), "")
	t.Cleanup(func() { _ = client.Close(context.Background()) })

	h, err := client.Connect(ctx)
	require.NoError(t, err)
	require.NoError(t, database.Prepare(ctx, h))

	svc := content.NewService(store.Repositories(h.SQL))
	require.NoError(t, database.Seed(ctx, svc))
	require.NoError(t, database.Seed(ctx, svc))

	ch, err := svc.GetChapter(ctx, auth.Anonymous, "what-is-ip")
	require.NoError(t, err)
	require.NotNil(t, ch.Series)
	require.Equal(t, "Overview", ch.Series.Name)
}
