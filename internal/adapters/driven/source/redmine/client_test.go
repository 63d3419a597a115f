package redmine

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wikidex/internal/core/domain"
)

const indexJSON = `{
	"wiki_pages": [
		{"title": "Wiki", "version": 3, "created_on": "2025-01-10T08:00:00Z", "updated_on": "2025-06-01T10:00:00Z"},
		{"title": "Setup", "version": 1, "created_on": "2025-02-01T08:00:00Z", "updated_on": "2025-06-02T11:30:00Z", "parent": {"title": "Wiki"}}
	]
}`

const pageJSON = `{
	"wiki_page": {
		"title": "Setup",
		"text": "h1. Setup\n\nInstall the tools.",
		"version": 1,
		"attachments": [
			{"id": 7, "filename": "notes.txt", "filesize": 120, "content_url": "%s/attachments/download/7/notes.txt"}
		]
	}
}`

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(Config{
		BaseURL:           server.URL,
		APIKey:            "secret-key",
		Project:           "infra",
		RequestsPerSecond: 1000, // keep tests fast
	})
	return client, server
}

func TestListPages(t *testing.T) {
	var gotPath, gotKey string
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Redmine-API-Key")
		w.Write([]byte(indexJSON))
	}))
	defer server.Close()

	pages, err := client.ListPages(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "/projects/infra/wiki/index.json", gotPath)
	assert.Equal(t, "secret-key", gotKey)

	require.Len(t, pages, 2)
	assert.Equal(t, "Wiki", pages[0].Title)
	assert.Nil(t, pages[0].ParentTitle)
	assert.Equal(t, "Setup", pages[1].Title)
	require.NotNil(t, pages[1].ParentTitle)
	assert.Equal(t, "Wiki", *pages[1].ParentTitle)
	assert.Equal(t, "2025-06-02T11:30:00Z", pages[1].UpdatedAt.Format("2006-01-02T15:04:05Z"))
}

func TestListPages_ServerError(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := client.ListPages(context.Background())

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSourceParse)
	assert.Contains(t, err.Error(), "502")
}

func TestListPages_MalformedJSON(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	_, err := client.ListPages(context.Background())

	assert.ErrorIs(t, err, domain.ErrSourceParse)
}

func TestFetchPage(t *testing.T) {
	var gotPath, gotQuery string
	mux := http.NewServeMux()
	var server *httptest.Server
	mux.HandleFunc("/projects/infra/wiki/", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(fmtPageJSON(server.URL)))
	})
	client, server := newTestClient(mux)
	defer server.Close()

	content, err := client.FetchPage(context.Background(), "Setup")

	require.NoError(t, err)
	assert.Equal(t, "/projects/infra/wiki/Setup.json", gotPath)
	assert.Equal(t, "include=attachments", gotQuery)
	assert.Equal(t, "h1. Setup\n\nInstall the tools.", content.Text)
	require.Len(t, content.Attachments, 1)
	assert.Equal(t, "notes.txt", content.Attachments[0].Filename)
	assert.Contains(t, content.Attachments[0].ContentURL, "/attachments/download/7/notes.txt")
}

func TestFetchPage_EscapesTitle(t *testing.T) {
	var gotURI string
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.RequestURI
		w.Write([]byte(`{"wiki_page": {"text": ""}}`))
	}))
	defer server.Close()

	_, err := client.FetchPage(context.Background(), "Install Guide")

	require.NoError(t, err)
	assert.Contains(t, gotURI, "Install%20Guide.json")
}

func TestFetchAttachment(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret-key", r.Header.Get("X-Redmine-API-Key"))
		w.Write([]byte("attachment body"))
	}))
	defer server.Close()

	data, err := client.FetchAttachment(context.Background(), server.URL+"/attachments/download/7/notes.txt")

	require.NoError(t, err)
	assert.Equal(t, "attachment body", string(data))
}

func TestValidate(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(indexJSON))
	}))
	defer server.Close()

	assert.NoError(t, client.Validate(context.Background()))
}

func fmtPageJSON(baseURL string) string {
	return fmt.Sprintf(pageJSON, baseURL)
}
