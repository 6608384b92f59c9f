package listing

import (
	"context"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPError is a non-2xx answer from the listing endpoint.
type HTTPError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("listing endpoint returned %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("listing endpoint returned %d", e.StatusCode)
}

type listBucketResult struct {
	XMLName               xml.Name       `xml:"ListBucketResult"`
	Name                  string         `xml:"Name"`
	Prefix                string         `xml:"Prefix"`
	Delimiter             string         `xml:"Delimiter"`
	KeyCount              string         `xml:"KeyCount"`
	MaxKeys               string         `xml:"MaxKeys"`
	IsTruncated           string         `xml:"IsTruncated"`
	NextContinuationToken string         `xml:"NextContinuationToken"`
	Contents              []xmlContent   `xml:"Contents"`
	CommonPrefixes        []commonPrefix `xml:"CommonPrefixes"`
}

type xmlContent struct {
	Key          string `xml:"Key"`
	LastModified string `xml:"LastModified"`
	ETag         string `xml:"ETag"`
	Size         string `xml:"Size"`
	StorageClass string `xml:"StorageClass"`
}

type commonPrefix struct {
	Prefix string `xml:"Prefix"`
}

type errorResponse struct {
	XMLName xml.Name `xml:"Error"`
	Code    string   `xml:"Code"`
	Message string   `xml:"Message"`
}

// HTTPFetcher talks to the public ListObjectsV2 endpoint of a bucket
// without signing requests.
type HTTPFetcher struct {
	origin string
	rest   *resty.Client
}

// NewHTTPFetcher returns a fetcher for the bucket rooted at origin, for
// example "https://bucket.s3.amazonaws.com/".
func NewHTTPFetcher(origin string, timeout time.Duration) *HTTPFetcher {
	rest := resty.New()
	if timeout > 0 {
		rest.SetTimeout(timeout)
	}
	return &HTTPFetcher{origin: origin, rest: rest}
}

// FetchPage implements PageFetcher.
func (f *HTTPFetcher) FetchPage(ctx context.Context, req PageRequest) (*Page, error) {
	params := map[string]string{
		"list-type": "2",
		"delimiter": Delimiter,
		"prefix":    req.Prefix,
	}
	if req.MaxKeys > 0 {
		params["max-keys"] = strconv.Itoa(req.MaxKeys)
	}
	if req.ContinuationToken != "" {
		params["continuation-token"] = req.ContinuationToken
	}

	resp, err := f.rest.R().
		SetContext(ctx).
		SetHeader("Cache-Control", "no-cache").
		SetQueryParams(params).
		Get(f.origin)
	if err != nil {
		return nil, fmt.Errorf("failed to request listing: %w", err)
	}
	if resp.IsError() || resp.StatusCode() >= 300 {
		httpErr := &HTTPError{StatusCode: resp.StatusCode()}
		var body errorResponse
		if xml.Unmarshal(resp.Body(), &body) == nil {
			httpErr.Code = body.Code
			httpErr.Message = body.Message
		}
		return nil, httpErr
	}

	return ParsePage(resp.Body())
}

// ParsePage decodes a ListBucketResult document.
func ParsePage(data []byte) (*Page, error) {
	var doc listBucketResult
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	page := &Page{
		Bucket:      doc.Name,
		Prefix:      doc.Prefix,
		Delimiter:   doc.Delimiter,
		KeyCount:    atoiOrZero(doc.KeyCount),
		MaxKeys:     atoiOrZero(doc.MaxKeys),
		IsTruncated: strings.TrimSpace(doc.IsTruncated) == "true",
	}
	if page.IsTruncated {
		page.NextContinuationToken = doc.NextContinuationToken
	}

	for _, c := range doc.Contents {
		modified, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(c.LastModified))
		if err != nil {
			return nil, fmt.Errorf("%w: key %q: bad LastModified: %v", ErrMalformed, c.Key, err)
		}
		size, err := strconv.ParseInt(strings.TrimSpace(c.Size), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: key %q: bad Size: %v", ErrMalformed, c.Key, err)
		}
		page.Contents = append(page.Contents, Object{
			Key:          c.Key,
			LastModified: modified,
			Size:         size,
			ETag:         c.ETag,
			StorageClass: c.StorageClass,
		})
	}
	for _, p := range doc.CommonPrefixes {
		page.CommonPrefixes = append(page.CommonPrefixes, p.Prefix)
	}

	return page, nil
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
