package crawler

import (
	"context"
	"io"
)

// Source is implemented once per site. ParsePage extracts listing cards from
// a search results page; FetchDetail enriches one card with the fields only
// visible on its detail page (or a follow-up API call).
type Source interface {
	// Name returns the source website identifier, e.g. "bina.az".
	Name() string
	// PageURL builds the search results URL for a 1-based page number.
	PageURL(page int) string
	// ParsePage extracts raw listing cards from a results page body.
	ParsePage(body io.Reader) ([]RawListing, error)
	// FetchDetail fills raw in place from the listing's detail page. A
	// detail failure leaves the card data intact.
	FetchDetail(ctx context.Context, fetcher HTMLFetcher, raw *RawListing) error
}
