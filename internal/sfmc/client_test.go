package sfmc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"template-migrator/internal/common/errors"
	"template-migrator/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helpers
// ==========================

var testCreds = Credentials{
	ClientID:     "client-id",
	ClientSecret: "client-secret",
	Subdomain:    "mc-test",
}

// newSFMCServer serves the token endpoint plus the given REST handlers from
// a single httptest server.
func newSFMCServer(t *testing.T, handlers map[string]http.HandlerFunc) (*httptest.Server, *int) {
	t.Helper()

	tokenRequests := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/token", func(w http.ResponseWriter, r *http.Request) {
		tokenRequests++

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "client_credentials", payload["grant_type"])
		assert.Equal(t, testCreds.ClientID, payload["client_id"])
		assert.Equal(t, testCreds.ClientSecret, payload["client_secret"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"test-access-token","token_type":"Bearer","expires_in":3600}`))
	})
	for path, handler := range handlers {
		mux.HandleFunc(path, handler)
	}

	return httptest.NewServer(mux), &tokenRequests
}

func newTestClient(server *httptest.Server) *Client {
	return NewClientWithBaseURLs(testCreds, server.URL, server.URL, logger.NewNoOpLogger())
}

// ==========================
// Authentication Tests
// ==========================

func TestAuthenticate_TokenCachedUntilExpiry(t *testing.T) {
	server, tokenRequests := newSFMCServer(t, nil)
	defer server.Close()

	client := newTestClient(server)

	require.NoError(t, client.Authenticate(context.Background()))
	require.NoError(t, client.Authenticate(context.Background()))

	assert.Equal(t, 1, *tokenRequests, "unexpired token must be reused")
}

func TestAuthenticate_FailureSurfacesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_client"}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURLs(testCreds, server.URL, server.URL, logger.NewNoOpLogger())
	err := client.Authenticate(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_client")
}

// ==========================
// Folder Resolution Tests
// ==========================

func TestResolveFolder_ReusesExistingTarget(t *testing.T) {
	server, _ := newSFMCServer(t, map[string]http.HandlerFunc{
		"/asset/v1/content/categories": func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodGet, r.Method, "no create call expected")
			json.NewEncoder(w).Encode(folderListResponse{
				Count: 3,
				Items: []Folder{
					{ID: 1, Name: "Content Builder", ParentID: 0},
					{ID: 42, Name: "HubSpot Templates", ParentID: 1},
					{ID: 43, Name: "HubSpot Templates", ParentID: 99},
				},
			})
		},
	})
	defer server.Close()

	client := newTestClient(server)
	folderID, err := client.ResolveFolder(context.Background(), "Content Builder", "HubSpot Templates")

	require.NoError(t, err)
	assert.Equal(t, 42, folderID, "only the child under the named root counts")
}

func TestResolveFolder_CreatesMissingTarget(t *testing.T) {
	var created map[string]interface{}
	server, _ := newSFMCServer(t, map[string]http.HandlerFunc{
		"/asset/v1/content/categories": func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				json.NewEncoder(w).Encode(folderListResponse{
					Count: 1,
					Items: []Folder{{ID: 7, Name: "Content Builder", ParentID: 0}},
				})
				return
			}

			require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(Folder{ID: 88, Name: "HubSpot Templates", ParentID: 7})
		},
	})
	defer server.Close()

	client := newTestClient(server)
	folderID, err := client.ResolveFolder(context.Background(), "Content Builder", "HubSpot Templates")

	require.NoError(t, err)
	assert.Equal(t, 88, folderID)
	assert.Equal(t, "HubSpot Templates", created["name"])
	assert.Equal(t, float64(7), created["parentId"])
}

func TestResolveFolder_CaseSensitiveMatching(t *testing.T) {
	server, _ := newSFMCServer(t, map[string]http.HandlerFunc{
		"/asset/v1/content/categories": func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(folderListResponse{
				Count: 1,
				Items: []Folder{{ID: 1, Name: "content builder", ParentID: 0}},
			})
		},
	})
	defer server.Close()

	client := newTestClient(server)
	_, err := client.ResolveFolder(context.Background(), "Content Builder", "HubSpot Templates")

	require.Error(t, err)
	stdErr := errors.AsStandardError(err)
	assert.Equal(t, errors.ErrCodeFolderNotFound, stdErr.Code)
}

// ==========================
// Asset Creation Tests
// ==========================

func TestCreateAsset_SingleAttempt(t *testing.T) {
	var calls int
	var payload map[string]interface{}
	server, _ := newSFMCServer(t, map[string]http.HandlerFunc{
		"/asset/v1/content/assets": func(w http.ResponseWriter, r *http.Request) {
			calls++
			require.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "Bearer test-access-token", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))

			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(Asset{ID: 5001, CustomerKey: "abc-def", Name: "Welcome"})
		},
	})
	defer server.Close()

	client := newTestClient(server)
	asset, err := client.CreateAsset(context.Background(), AssetRequest{
		Name:     "Welcome",
		Content:  "<html></html>",
		FolderID: 42,
		Channels: map[string]bool{"email": true, "web": false},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 5001, asset.ID)
	assert.Equal(t, "abc-def", asset.CustomerKey)

	assetType := payload["assetType"].(map[string]interface{})
	assert.Equal(t, float64(4), assetType["id"])
	assert.Equal(t, "template", assetType["name"])
	category := payload["category"].(map[string]interface{})
	assert.Equal(t, float64(42), category["id"])
}

func TestCreateAsset_FailurePropagates(t *testing.T) {
	server, _ := newSFMCServer(t, map[string]http.HandlerFunc{
		"/asset/v1/content/assets": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message":"Asset names within a category and asset type must be unique"}`))
		},
	})
	defer server.Close()

	client := newTestClient(server)
	asset, err := client.CreateAsset(context.Background(), AssetRequest{
		Name:     "Dup",
		Content:  "<p/>",
		FolderID: 42,
	})

	require.Error(t, err)
	assert.Nil(t, asset)
	assert.Contains(t, err.Error(), "must be unique")
}
