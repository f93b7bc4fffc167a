package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetUserRoleCachesResult(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		require.Equal(t, "/v1/users/user_123", r.URL.Path)
		require.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"publicMetadata":{"role":"educator"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", "secret", time.Minute, nil)
	ctx := context.Background()

	role, err := client.GetUserRole(ctx, "user_123")
	require.NoError(t, err)
	require.Equal(t, "educator", role)

	role, err = client.GetUserRole(ctx, "user_123")
	require.NoError(t, err)
	require.Equal(t, "educator", role)

	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetUserRoleProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", "secret", time.Minute, nil)

	_, err := client.GetUserRole(context.Background(), "user_123")
	require.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestSetUserRoleInvalidatesCache(t *testing.T) {
	role := `{"publicMetadata":{"role":"student"}}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(role))
		case http.MethodPatch:
			require.Equal(t, "/v1/users/user_123/metadata", r.URL.Path)
			role = `{"publicMetadata":{"role":"educator"}}`
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", "secret", time.Minute, nil)
	ctx := context.Background()

	got, err := client.GetUserRole(ctx, "user_123")
	require.NoError(t, err)
	require.Equal(t, "student", got)

	require.NoError(t, client.SetUserRole(ctx, "user_123", "educator"))

	got, err = client.GetUserRole(ctx, "user_123")
	require.NoError(t, err)
	require.Equal(t, "educator", got)
}
