// Package redmine fetches wiki pages from a Redmine-compatible API.
package redmine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/wikidex/internal/core/domain"
	"github.com/custodia-labs/wikidex/internal/core/ports/driven"
)

const (
	// DefaultTimeout is the default HTTP request timeout. The sync run
	// must fail rather than hang on a stuck source.
	DefaultTimeout = 30 * time.Second

	// DefaultRequestsPerSecond is the proactive throttle rate.
	DefaultRequestsPerSecond = 4.0

	// apiKeyHeader carries the Redmine API key.
	apiKeyHeader = "X-Redmine-API-Key"
)

// Ensure Client implements the interface.
var _ driven.WikiSource = (*Client)(nil)

// Config holds the connection settings for a Redmine wiki.
type Config struct {
	// BaseURL is the Redmine root, e.g. "https://redmine.example.com".
	BaseURL string

	// APIKey authenticates every request.
	APIKey string

	// Project is the project identifier whose wiki is synchronised.
	Project string

	// Timeout bounds each HTTP request. Zero means DefaultTimeout.
	Timeout time.Duration

	// RequestsPerSecond throttles outgoing requests. Zero means
	// DefaultRequestsPerSecond.
	RequestsPerSecond float64
}

// Client is a Redmine wiki API client implementing driven.WikiSource.
type Client struct {
	baseURL    string
	apiKey     string
	project    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a Redmine client from config.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		project:    cfg.Project,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// wikiIndexResponse mirrors GET /projects/{project}/wiki/index.json.
type wikiIndexResponse struct {
	WikiPages []struct {
		Title     string    `json:"title"`
		UpdatedOn time.Time `json:"updated_on"`
		Parent    *struct {
			Title string `json:"title"`
		} `json:"parent"`
	} `json:"wiki_pages"`
}

// wikiPageResponse mirrors GET /projects/{project}/wiki/{title}.json.
type wikiPageResponse struct {
	WikiPage struct {
		Text        string `json:"text"`
		Attachments []struct {
			Filename   string `json:"filename"`
			ContentURL string `json:"content_url"`
		} `json:"attachments"`
	} `json:"wiki_page"`
}

// ListPages retrieves the full page index with parent links.
func (c *Client) ListPages(ctx context.Context) ([]domain.Page, error) {
	endpoint := fmt.Sprintf("%s/projects/%s/wiki/index.json", c.baseURL, url.PathEscape(c.project))

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var index wikiIndexResponse
	if err := json.Unmarshal(body, &index); err != nil {
		return nil, fmt.Errorf("%w: decode wiki index: %w", domain.ErrSourceParse, err)
	}

	pages := make([]domain.Page, 0, len(index.WikiPages))
	for _, entry := range index.WikiPages {
		page := domain.Page{
			Title:     entry.Title,
			UpdatedAt: entry.UpdatedOn,
		}
		if entry.Parent != nil && entry.Parent.Title != "" {
			parent := entry.Parent.Title
			page.ParentTitle = &parent
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// FetchPage retrieves a page's body and attachment listing.
func (c *Client) FetchPage(ctx context.Context, title string) (*domain.PageContent, error) {
	endpoint := fmt.Sprintf("%s/projects/%s/wiki/%s.json?include=attachments",
		c.baseURL, url.PathEscape(c.project), url.PathEscape(title))

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var page wikiPageResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("%w: decode wiki page %q: %w", domain.ErrSourceParse, title, err)
	}

	content := &domain.PageContent{Text: page.WikiPage.Text}
	for _, att := range page.WikiPage.Attachments {
		content.Attachments = append(content.Attachments, domain.Attachment{
			Filename:   att.Filename,
			ContentURL: att.ContentURL,
		})
	}
	return content, nil
}

// FetchAttachment downloads an attachment's raw content.
func (c *Client) FetchAttachment(ctx context.Context, contentURL string) ([]byte, error) {
	return c.get(ctx, contentURL)
}

// Validate checks that the wiki index is reachable with the configured
// credentials.
func (c *Client) Validate(ctx context.Context) error {
	_, err := c.ListPages(ctx)
	return err
}

// get performs a rate-limited GET and returns the response body.
func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("GET %s: unexpected status %d", endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}
