package listing

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Name>bucket</Name>
  <Prefix>%s</Prefix>
  <KeyCount>2</KeyCount>
  <MaxKeys>1000</MaxKeys>
  <Delimiter>/</Delimiter>
  <IsTruncated>%s</IsTruncated>
  %s
  <Contents>
    <Key>%s</Key>
    <LastModified>2021-03-04T05:06:07.000Z</LastModified>
    <ETag>&quot;abc&quot;</ETag>
    <Size>1536</Size>
    <StorageClass>STANDARD</StorageClass>
  </Contents>
  <CommonPrefixes>
    <Prefix>%s</Prefix>
  </CommonPrefixes>
</ListBucketResult>`

func renderPage(prefix string, next string, key, sub string) string {
	truncated := "false"
	token := ""
	if next != "" {
		truncated = "true"
		token = "<NextContinuationToken>" + next + "</NextContinuationToken>"
	}
	return fmt.Sprintf(pageTemplate, prefix, truncated, token, key, sub)
}

type recordingServer struct {
	mu      sync.Mutex
	queries []url.Values
}

func (s *recordingServer) record(r *http.Request) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, r.URL.Query())
	return len(s.queries)
}

func TestHTTPFetcherPagination(t *testing.T) {
	rec := &recordingServer{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := rec.record(r)
		assert.Equal(t, "/", r.URL.Path)
		w.Header().Set("Content-Type", "application/xml")
		switch n {
		case 1:
			fmt.Fprint(w, renderPage("p/", "t1", "p/one.png", "p/a/"))
		case 2:
			fmt.Fprint(w, renderPage("p/", "t2", "p/two.mp4", "p/b/"))
		default:
			fmt.Fprint(w, renderPage("p/", "", "p/three.txt", "p/c/"))
		}
	}))
	defer srv.Close()

	c := NewClient(NewHTTPFetcher(srv.URL+"/", 5*time.Second), zerolog.Nop())
	l, err := c.ListPrefix(context.Background(), "p/")
	require.NoError(t, err)

	assert.Equal(t, "bucket", l.Bucket)
	assert.Equal(t, []string{"p/one.png", "p/two.mp4", "p/three.txt"}, keys(l.Contents))
	assert.Equal(t, []string{"p/a/", "p/b/", "p/c/"}, l.CommonPrefixes)

	require.Len(t, rec.queries, 3)
	for i, q := range rec.queries {
		assert.Equal(t, "2", q.Get("list-type"))
		assert.Equal(t, "/", q.Get("delimiter"))
		assert.Equal(t, "p/", q.Get("prefix"))
		assert.Equal(t, "1000", q.Get("max-keys"))
		switch i {
		case 0:
			assert.False(t, q.Has("continuation-token"))
		case 1:
			assert.Equal(t, "t1", q.Get("continuation-token"))
		case 2:
			assert.Equal(t, "t2", q.Get("continuation-token"))
		}
	}
}

func TestHTTPFetcherErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `<Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`)
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(srv.URL+"/", time.Second).FetchPage(context.Background(), PageRequest{})
	require.Error(t, err)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusForbidden, httpErr.StatusCode)
	assert.Equal(t, "AccessDenied", httpErr.Code)
	assert.Equal(t, "Access Denied", httpErr.Message)
}

func TestHTTPFetcherSecondPageFails(t *testing.T) {
	rec := &recordingServer{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rec.record(r) == 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, renderPage("", "t1", "a.txt", "a/"))
	}))
	defer srv.Close()

	c := NewClient(NewHTTPFetcher(srv.URL+"/", time.Second), zerolog.Nop())
	l, err := c.ListPrefix(context.Background(), "")
	assert.Nil(t, l)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
}

func TestParsePage(t *testing.T) {
	p, err := ParsePage([]byte(renderPage("p/", "next", "p/x.jpg", "p/sub/")))
	require.NoError(t, err)

	assert.Equal(t, "bucket", p.Bucket)
	assert.Equal(t, "p/", p.Prefix)
	assert.Equal(t, "/", p.Delimiter)
	assert.Equal(t, 2, p.KeyCount)
	assert.Equal(t, 1000, p.MaxKeys)
	assert.True(t, p.IsTruncated)
	assert.Equal(t, "next", p.NextContinuationToken)
	require.Len(t, p.Contents, 1)
	assert.Equal(t, Object{
		Key:          "p/x.jpg",
		LastModified: time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC),
		Size:         1536,
		ETag:         `"abc"`,
		StorageClass: "STANDARD",
	}, p.Contents[0])
	assert.Equal(t, []string{"p/sub/"}, p.CommonPrefixes)
}

func TestParsePageTruncatedIsLiteral(t *testing.T) {
	doc := `<ListBucketResult><IsTruncated>True</IsTruncated><NextContinuationToken>x</NextContinuationToken></ListBucketResult>`
	p, err := ParsePage([]byte(doc))
	require.NoError(t, err)
	assert.False(t, p.IsTruncated)
	assert.Empty(t, p.NextContinuationToken)
}

func TestParsePageMalformed(t *testing.T) {
	tests := map[string]string{
		"not xml":      "not xml at all",
		"wrong root":   "<Other></Other>",
		"bad size":     `<ListBucketResult><Contents><Key>a</Key><LastModified>2021-03-04T05:06:07Z</LastModified><Size>big</Size></Contents></ListBucketResult>`,
		"bad modified": `<ListBucketResult><Contents><Key>a</Key><LastModified>yesterday</LastModified><Size>1</Size></Contents></ListBucketResult>`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePage([]byte(doc))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}
