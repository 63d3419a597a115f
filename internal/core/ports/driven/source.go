package driven

import (
	"context"

	"github.com/custodia-labs/wikidex/internal/core/domain"
)

// WikiSource fetches pages and attachments from the remote wiki.
// The core performs no retries itself; retry and backoff, if desired,
// belong to the adapter. Adapters wrap decode failures in
// domain.ErrSourceParse so the sync service can apply its parse-error
// policy; every other failure is treated as a fetch error.
type WikiSource interface {
	// ListPages retrieves the full page index: titles, parent links
	// and modification times, without bodies.
	ListPages(ctx context.Context) ([]domain.Page, error)

	// FetchPage retrieves a page's body and attachment listing.
	FetchPage(ctx context.Context, title string) (*domain.PageContent, error)

	// FetchAttachment downloads an attachment's raw content.
	FetchAttachment(ctx context.Context, contentURL string) ([]byte, error)
}
