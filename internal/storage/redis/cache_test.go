//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis integration tests in short mode")
	}

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client := NewClient(url)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx))
	return client
}

func TestJSONRoundTripAndMiss(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	type payload struct {
		Registrar string `json:"registrar"`
	}

	require.NoError(t, client.SetJSON(ctx, "whois:lookup:example.com", payload{Registrar: "R"}, time.Minute))

	var got payload
	require.NoError(t, client.GetJSON(ctx, "whois:lookup:example.com", &got))
	assert.Equal(t, "R", got.Registrar)

	err := client.GetJSON(ctx, "whois:lookup:missing.com", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
}
