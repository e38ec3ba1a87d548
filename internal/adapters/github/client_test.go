package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Run("should default to public API", func(t *testing.T) {
		client, err := NewClient("", "test-token")
		require.NoError(t, err)
		assert.Equal(t, "https://api.github.com", client.baseURL)
		assert.Equal(t, "test-token", client.token)
	})

	t.Run("should accept custom base URL without trailing slash", func(t *testing.T) {
		client, err := NewClient("https://github.example.com/api/v3", "")
		require.NoError(t, err)
		assert.Equal(t, "https://github.example.com/api/v3/", client.client.BaseURL.String())
	})
}

func TestClient_TestConnection(t *testing.T) {
	t.Run("should test connection successfully", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/user", r.URL.Path)
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"login": "testuser"}`))
		}))
		defer server.Close()

		client, err := NewClient(server.URL+"/", "test-token")
		require.NoError(t, err)

		assert.NoError(t, client.TestConnection(context.Background()))
	})

	t.Run("should fail on invalid token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message": "Bad credentials"}`))
		}))
		defer server.Close()

		client, err := NewClient(server.URL, "invalid-token")
		require.NoError(t, err)

		err = client.TestConnection(context.Background())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "authenticate")
	})

	t.Run("should check rate limit without token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/rate_limit", r.URL.Path)
			assert.Empty(t, r.Header.Get("Authorization"))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"resources": {"core": {"limit": 60, "remaining": 59}}}`))
		}))
		defer server.Close()

		client, err := NewClient(server.URL, "")
		require.NoError(t, err)

		assert.NoError(t, client.TestConnection(context.Background()))
	})
}

func TestClient_GetFileContent(t *testing.T) {
	csv := "Distance,Altitude\n0,100\n1200,150\n"

	t.Run("should fetch and decode file at branch", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/repos/owner/repo/contents/tracks/ride.csv", r.URL.Path)
			assert.Equal(t, "main", r.URL.Query().Get("ref"))

			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"type": "file", "name": "ride.csv", "path": "tracks/ride.csv", "encoding": "base64", "content": %q}`,
				base64.StdEncoding.EncodeToString([]byte(csv)))
		}))
		defer server.Close()

		client, err := NewClient(server.URL, "test-token")
		require.NoError(t, err)

		content, err := client.GetFileContent(context.Background(), "owner", "repo", "tracks/ride.csv", "main")
		require.NoError(t, err)
		assert.Equal(t, csv, string(content))
	})

	t.Run("should reject directories", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[{"type": "file", "name": "ride.csv", "path": "tracks/ride.csv"}]`))
		}))
		defer server.Close()

		client, err := NewClient(server.URL, "test-token")
		require.NoError(t, err)

		_, err = client.GetFileContent(context.Background(), "owner", "repo", "tracks", "")
		assert.ErrorContains(t, err, "directory")
	})

	t.Run("should handle file not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message": "Not Found"}`))
		}))
		defer server.Close()

		client, err := NewClient(server.URL, "test-token")
		require.NoError(t, err)

		_, err = client.GetFileContent(context.Background(), "owner", "repo", "missing.csv", "")
		assert.ErrorContains(t, err, "failed to fetch file missing.csv")
	})
}
