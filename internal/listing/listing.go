// Package listing aggregates paginated ListObjectsV2 responses for one
// prefix of an S3-compatible bucket.
package listing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Delimiter is the folder separator used for every listing request.
const Delimiter = "/"

// DefaultMaxKeys is the page size requested from the store.
const DefaultMaxKeys = 1000

var (
	// ErrMalformed is returned when a listing response cannot be decoded.
	ErrMalformed = errors.New("listing: malformed response")
	// ErrTruncatedWithoutToken is returned when the store reports more data
	// but gives no way to fetch it.
	ErrTruncatedWithoutToken = errors.New("listing: truncated page without continuation token")
	// ErrTooManyPages is returned when an aggregation exceeds Client.MaxPages.
	ErrTooManyPages = errors.New("listing: too many pages")
)

// Object is one entry of a page's Contents.
type Object struct {
	Key          string
	LastModified time.Time
	Size         int64
	ETag         string
	StorageClass string
}

// Page is one decoded ListObjectsV2 response.
type Page struct {
	Bucket                string
	Prefix                string
	Delimiter             string
	KeyCount              int
	MaxKeys               int
	IsTruncated           bool
	Contents              []Object
	CommonPrefixes        []string
	NextContinuationToken string
}

// Listing is every object and common prefix directly under one prefix.
// Contents and CommonPrefixes keep page arrival order.
type Listing struct {
	Bucket         string
	Prefix         string
	Contents       []Object
	CommonPrefixes []string
	Pages          int
}

// PageRequest describes a single page fetch.
type PageRequest struct {
	Prefix            string
	ContinuationToken string
	MaxKeys           int
}

// PageFetcher performs exactly one listing request.
type PageFetcher interface {
	FetchPage(ctx context.Context, req PageRequest) (*Page, error)
}

// Client lists prefixes to exhaustion through a PageFetcher.
type Client struct {
	fetcher PageFetcher
	log     zerolog.Logger

	// MaxKeys is sent with every request. Zero means DefaultMaxKeys.
	MaxKeys int
	// MaxPages bounds a single aggregation. Zero means unbounded.
	MaxPages int
}

// NewClient returns a Client backed by fetcher.
func NewClient(fetcher PageFetcher, log zerolog.Logger) *Client {
	return &Client{
		fetcher: fetcher,
		log:     log.With().Str("component", "listing").Logger(),
		MaxKeys: DefaultMaxKeys,
	}
}

// ListPrefix fetches every page of prefix in order and returns their
// union. Pages are requested strictly one after another since each request
// needs the previous page's continuation token. Any failure discards the
// pages already received.
func (c *Client) ListPrefix(ctx context.Context, prefix string) (*Listing, error) {
	maxKeys := c.MaxKeys
	if maxKeys <= 0 {
		maxKeys = DefaultMaxKeys
	}

	result := &Listing{Prefix: prefix}
	req := PageRequest{Prefix: prefix, MaxKeys: maxKeys}

	for {
		if c.MaxPages > 0 && result.Pages >= c.MaxPages {
			return nil, fmt.Errorf("%w: prefix %q exceeded %d pages", ErrTooManyPages, prefix, c.MaxPages)
		}

		page, err := c.fetcher.FetchPage(ctx, req)
		if err != nil {
			c.log.Debug().Err(err).Str("prefix", prefix).Int("page", result.Pages+1).Msg("page fetch failed")
			return nil, fmt.Errorf("failed to list %q (page %d): %w", prefix, result.Pages+1, err)
		}
		result.Pages++

		if result.Pages == 1 {
			result.Bucket = page.Bucket
		}
		for _, obj := range page.Contents {
			// The store may return the folder marker object for the prefix itself.
			if obj.Key == page.Prefix {
				continue
			}
			result.Contents = append(result.Contents, obj)
		}
		result.CommonPrefixes = append(result.CommonPrefixes, page.CommonPrefixes...)

		c.log.Debug().
			Str("prefix", prefix).
			Int("page", result.Pages).
			Bool("token", req.ContinuationToken != "").
			Int("contents", len(page.Contents)).
			Int("prefixes", len(page.CommonPrefixes)).
			Bool("truncated", page.IsTruncated).
			Msg("page fetched")

		if !page.IsTruncated {
			break
		}
		if page.NextContinuationToken == "" {
			return nil, fmt.Errorf("failed to list %q (page %d): %w", prefix, result.Pages, ErrTruncatedWithoutToken)
		}
		req.ContinuationToken = page.NextContinuationToken
	}

	c.log.Debug().
		Str("prefix", prefix).
		Int("pages", result.Pages).
		Int("contents", len(result.Contents)).
		Int("prefixes", len(result.CommonPrefixes)).
		Msg("listing complete")

	return result, nil
}
