package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pagemark/pkg/types"
)

func TestLocalModeBarePathNoAuth(t *testing.T) {
	var gotPath, gotAPIKey, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAPIKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, APIKey: "ignored"}, nil)
	require.NoError(t, err)
	assert.True(t, c.local)

	_, err = c.ListContentFlags(context.Background(), "news.example/a")
	require.NoError(t, err)
	assert.Equal(t, "/flagged_content", gotPath)
	assert.Empty(t, gotAPIKey)
	assert.Empty(t, gotAuth)
}

func TestHostedModePrefixAndHeaders(t *testing.T) {
	c, err := NewClient(Config{BaseURL: "https://proj.supabase.co", APIKey: "anon-key"}, nil)
	require.NoError(t, err)
	assert.False(t, c.local)
	assert.Equal(t,
		"https://proj.supabase.co/rest/v1/flagged_content?page_url=eq.news.example%2Fa&order=created_at.desc",
		c.tableURL(TableContentFlags, "page_url=eq.news.example%2Fa&order=created_at.desc"))
}

func TestIsLoopback(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"localhost", true},
		{"127.0.0.1", true},
		{"::1", true},
		{"proj.supabase.co", false},
		{"10.0.0.5", false},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.want, isLoopback(tt.host))
		})
	}
}

func TestCreateContentFlag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/flagged_content", r.URL.Path)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))

		var in types.FlagRecord
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "misinformation", in.FlagKind)

		in.ID = "42"
		in.CreatedAt = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		require.NoError(t, json.NewEncoder(w).Encode([]types.FlagRecord{in}))
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL}, nil)
	require.NoError(t, err)

	stored, err := c.CreateContentFlag(context.Background(), &types.FlagRecord{
		TargetURL:   "https://news.example/a",
		PageKey:     "news.example/a",
		Content:     "Breaking: moon made of cheese",
		ContentKind: types.ContentText,
		FlagKind:    "misinformation",
		Confidence:  80,
	})
	require.NoError(t, err)
	assert.Equal(t, types.RecordID("42"), stored.ID)
	assert.Equal(t, time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC), stored.CreatedAt)
}

func TestListContentFlagsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq.news.example/a", r.URL.Query().Get("page_url"))
		assert.Equal(t, "created_at.desc", r.URL.Query().Get("order"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":7,"flag_type":"scam","content":"x"}]`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL}, nil)
	require.NoError(t, err)

	rows, err := c.ListContentFlags(context.Background(), "news.example/a")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, types.RecordID("7"), rows[0].ID)
	assert.Equal(t, "scam", rows[0].FlagKind)
}

func TestDeleteContentFlag(t *testing.T) {
	var gotMethod, gotFilter string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotFilter = r.URL.Query().Get("id")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL}, nil)
	require.NoError(t, err)
	require.NoError(t, c.DeleteContentFlag(context.Background(), "42"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "eq.42", gotFilter)
}

func TestStoreErrorOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"permission denied"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL}, nil)
	require.NoError(t, err)

	_, err = c.ListContentFlags(context.Background(), "news.example/a")
	require.Error(t, err)
	var storeErr *Error
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, http.StatusUnauthorized, storeErr.Status)
	assert.Contains(t, storeErr.Body, "permission denied")
}

func TestLinkFlagsRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodPost:
			assert.Equal(t, "/flagged_links", r.URL.Path)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`[{"id":1,"url":"https://scam.example/offer","flag_type":"scam"}]`))
		case http.MethodGet:
			_, _ = w.Write([]byte(`[{"id":1,"url":"https://scam.example/offer","flag_type":"scam"}]`))
		}
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL}, nil)
	require.NoError(t, err)

	stored, err := c.CreateLinkFlag(context.Background(), &types.LinkFlagRecord{
		LinkURL:  "https://scam.example/offer",
		FlagKind: "scam",
	})
	require.NoError(t, err)
	assert.Equal(t, types.RecordID("1"), stored.ID)

	rows, err := c.ListLinkFlags(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Matches("https://scam.example/offer"))
}

func TestEmptyEndpointRejected(t *testing.T) {
	_, err := NewClient(Config{}, nil)
	assert.Error(t, err)
}
