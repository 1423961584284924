package dam_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shin2080/asset-selector-http-api/internal/dam"
	"github.com/shin2080/asset-selector-http-api/internal/transport"
)

func TestClientListAssets(t *testing.T) {
	var gotPath, gotAuth, gotAPIKey string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotAPIKey = r.Header.Get("X-Api-Key")
		_, _ = w.Write([]byte(`{"children":[{"name":"a.jpg","id":"1"}]}`))
	}))
	defer upstream.Close()

	client := dam.NewClient(upstream.URL, "demo-key", time.Second, zap.NewNop())
	list, err := client.ListAssets(context.Background(), "token-abc", "travel")
	require.NoError(t, err)

	require.Equal(t, "/api/assets/travel.json", gotPath)
	require.Equal(t, "Bearer token-abc", gotAuth)
	require.Equal(t, "demo-key", gotAPIKey)
	require.Len(t, list.Assets, 1)
	require.Equal(t, "/content/dam/a.jpg", list.Assets[0].Path)
}

func TestClientAssetMetadata(t *testing.T) {
	var gotPath string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"dc:title":"Foo","jcr:primaryType":"dam:Asset"}`))
	}))
	defer upstream.Close()

	client := dam.NewClient(upstream.URL, "", time.Second, zap.NewNop())
	schema, err := client.AssetMetadata(context.Background(), "token-abc", "travel/beach.jpg")
	require.NoError(t, err)

	require.Equal(t, "/content/dam/travel/beach.jpg/jcr:content/metadata.json", gotPath)
	require.Equal(t, "Foo", schema.Namespaces["dc"]["dc:title"])
}

func TestClientUpdateMetadata(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]interface{}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	client := dam.NewClient(upstream.URL, "", time.Second, zap.NewNop())
	err := client.UpdateMetadata(context.Background(), "token-abc", "travel/beach.jpg", map[string]interface{}{
		"dc:title": "New title",
	})
	require.NoError(t, err)

	require.Equal(t, http.MethodPut, gotMethod)
	require.Equal(t, "/api/assets/travel/beach.jpg", gotPath)
	require.Equal(t, "asset", gotBody["class"])
	props := gotBody["properties"].(map[string]interface{})
	require.Equal(t, "New title", props["dc:title"])
}

func TestClientUnauthorized(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"expired token"}`))
	}))
	defer upstream.Close()

	client := dam.NewClient(upstream.URL, "", time.Second, zap.NewNop())
	_, err := client.ListAssets(context.Background(), "stale", "travel")

	var requestErr *dam.RequestError
	require.ErrorAs(t, err, &requestErr)
	require.Equal(t, http.StatusUnauthorized, requestErr.Status)
}

func TestClientTimeout(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer upstream.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := dam.NewClient(upstream.URL, "", time.Minute, zap.NewNop())
	_, err := client.ListAssets(ctx, "token", "travel")
	require.ErrorIs(t, err, transport.ErrTimeout)
}
