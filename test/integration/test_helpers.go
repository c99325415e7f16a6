//go:build integration

package integration

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cloud-disk/internal/api"
	"cloud-disk/internal/config"
	"cloud-disk/internal/server"
)

func newDiskServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		ServerPort:         "8080",
		ServerReadTimeout:  15 * time.Second,
		ServerWriteTimeout: 30 * time.Second,
		ServerIdleTimeout:  120 * time.Second,
		RequestTimeout:     30 * time.Second,
		JWTSecret:          "test-secret",
		JWTAccessTTL:       15 * time.Minute,
		JWTRefreshTTL:      24 * time.Hour,
		CORSOrigins:        []string{"*"},
		RateLimitRPM:       10000,
		AuthRateLimitRPM:   10000,
		UsersFile:          filepath.Join(t.TempDir(), "users.json"),
		MaxUploadSize:      10 * 1024 * 1024,
		ThumbnailSize:      64,
	}

	handler, err := server.Build(cfg)
	require.NoError(t, err)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

// newLoggedInClient boots a fresh disk server and returns a client already
// authenticated as the seeded admin user.
func newLoggedInClient(t *testing.T) *api.Client {
	t.Helper()

	srv := newDiskServer(t)
	client := api.NewClient(api.Config{BaseURL: srv.URL, Timeout: 30 * time.Second})

	_, err := client.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)

	return client
}
