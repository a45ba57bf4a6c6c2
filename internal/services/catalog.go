// Open Library catalog client with a Google Books page-count fallback.
//
// Open Library response shapes based on https://openlibrary.org/dev/docs/api/search
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"

	"github.com/AnouckGaloppin/BookMark/internal/models"
	"github.com/AnouckGaloppin/BookMark/internal/shared"
)

const (
	defaultOpenLibraryURL = "https://openlibrary.org"
	defaultGoogleBooksURL = "https://www.googleapis.com/books/v1"
	coverURLFormat        = "https://covers.openlibrary.org/b/id/%d-M.jpg"
	searchLimit           = 20
)

// CatalogClient implements [Catalog] against Open Library, falling back to
// Google Books for page counts the primary catalog is missing.
//
// Requests are rate limited so bulk lookups stay within the public API's
// courtesy limits.
type CatalogClient struct {
	openLibraryURL string
	googleBooksURL string
	googleAPIKey   string
	httpClient     *http.Client
	limiter        *rate.Limiter
}

// NewCatalogClient creates a CatalogClient. Empty URLs fall back to the public
// endpoints; ratePerSecond <= 0 falls back to 2 requests per second.
func NewCatalogClient(openLibraryURL, googleBooksURL, googleAPIKey string, ratePerSecond float64, client *http.Client) *CatalogClient {
	if openLibraryURL == "" {
		openLibraryURL = defaultOpenLibraryURL
	}
	if googleBooksURL == "" {
		googleBooksURL = defaultGoogleBooksURL
	}
	if ratePerSecond <= 0 {
		ratePerSecond = 2
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &CatalogClient{
		openLibraryURL: openLibraryURL,
		googleBooksURL: googleBooksURL,
		googleAPIKey:   googleAPIKey,
		httpClient:     client,
		limiter:        rate.NewLimiter(rate.Limit(ratePerSecond), 1),
	}
}

type searchDoc struct {
	Title           string   `json:"title"`
	AuthorName      []string `json:"author_name"`
	ISBN            []string `json:"isbn"`
	CoverID         int      `json:"cover_i"`
	MedianPageCount int      `json:"number_of_pages_median"`
}

// Search queries Open Library for a free-text query and maps each result
// document to a catalog candidate.
func (c *CatalogClient) Search(ctx context.Context, query string) ([]models.CatalogResult, error) {
	endpoint := fmt.Sprintf("%s/search.json?q=%s&limit=%d", c.openLibraryURL, url.QueryEscape(query), searchLimit)

	var response struct {
		Docs []searchDoc `json:"docs"`
	}
	if err := c.getJSON(ctx, endpoint, &response); err != nil {
		return nil, fmt.Errorf("catalog search failed: %w", err)
	}

	results := make([]models.CatalogResult, 0, len(response.Docs))
	for _, doc := range response.Docs {
		if doc.Title == "" {
			continue
		}

		result := models.CatalogResult{
			Title:      doc.Title,
			TotalPages: doc.MedianPageCount,
		}
		if len(doc.AuthorName) > 0 {
			result.Author = doc.AuthorName[0]
		}
		if len(doc.ISBN) > 0 {
			result.ISBN = doc.ISBN[0]
		}
		if doc.CoverID > 0 {
			result.Cover = fmt.Sprintf(coverURLFormat, doc.CoverID)
		}

		results = append(results, result)
	}

	return results, nil
}

// PageCount resolves the total pages for a catalog result.
//
// The search record's median count wins when present. Otherwise the edition
// record for the result's ISBN is consulted, then Google Books. A result with
// no resolvable count yields 0 without an error; the caller treats the total
// as unknown.
func (c *CatalogClient) PageCount(ctx context.Context, result models.CatalogResult) (int, error) {
	if result.TotalPages > 0 {
		return result.TotalPages, nil
	}
	if result.ISBN == "" {
		return 0, nil
	}

	pages, err := c.editionPageCount(ctx, result.ISBN)
	if err != nil {
		return 0, err
	}
	if pages > 0 {
		return pages, nil
	}

	return c.googleBooksPageCount(ctx, result.ISBN)
}

// editionPageCount reads number_of_pages from the Open Library edition record.
func (c *CatalogClient) editionPageCount(ctx context.Context, isbn string) (int, error) {
	endpoint := fmt.Sprintf("%s/isbn/%s.json", c.openLibraryURL, url.PathEscape(isbn))

	var edition struct {
		NumberOfPages int `json:"number_of_pages"`
	}
	if err := c.getJSON(ctx, endpoint, &edition); err != nil {
		// A missing edition record is not fatal; the next source may know.
		return 0, nil
	}

	return edition.NumberOfPages, nil
}

// googleBooksPageCount queries Google Books volumes by ISBN.
func (c *CatalogClient) googleBooksPageCount(ctx context.Context, isbn string) (int, error) {
	endpoint := fmt.Sprintf("%s/volumes?q=isbn:%s", c.googleBooksURL, url.QueryEscape(isbn))
	if c.googleAPIKey != "" {
		endpoint += "&key=" + url.QueryEscape(c.googleAPIKey)
	}

	var response struct {
		Items []struct {
			VolumeInfo struct {
				PageCount int `json:"pageCount"`
			} `json:"volumeInfo"`
		} `json:"items"`
	}
	if err := c.getJSON(ctx, endpoint, &response); err != nil {
		return 0, fmt.Errorf("page count lookup failed: %w", err)
	}

	for _, item := range response.Items {
		if item.VolumeInfo.PageCount > 0 {
			return item.VolumeInfo.PageCount, nil
		}
	}

	return 0, nil
}

func (c *CatalogClient) getJSON(ctx context.Context, endpoint string, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
