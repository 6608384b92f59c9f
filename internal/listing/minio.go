package listing

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioCore is the part of minio.Core used by MinioFetcher.
type MinioCore interface {
	ListObjectsV2(bucketName, objectPrefix, startAfter, continuationToken, delimiter string, maxkeys int) (minio.ListBucketV2Result, error)
}

// MinioFetcher lists a bucket through minio-go's low level API, which
// exposes continuation tokens unlike minio.Client.ListObjects.
type MinioFetcher struct {
	core   MinioCore
	bucket string
}

// NewMinioFetcher connects anonymously to endpoint (host[:port]).
func NewMinioFetcher(endpoint, region, bucket string, secure bool) (*MinioFetcher, error) {
	core, err := minio.NewCore(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4("", "", ""),
		Secure: secure,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return NewMinioFetcherWithCore(core, bucket), nil
}

// NewMinioFetcherWithCore wraps an existing MinioCore.
func NewMinioFetcherWithCore(core MinioCore, bucket string) *MinioFetcher {
	return &MinioFetcher{core: core, bucket: bucket}
}

// FetchPage implements PageFetcher. minio.Core does not take a context,
// so cancellation is only observed between pages.
func (f *MinioFetcher) FetchPage(ctx context.Context, req PageRequest) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := f.core.ListObjectsV2(f.bucket, req.Prefix, "", req.ContinuationToken, Delimiter, req.MaxKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}

	page := &Page{
		Bucket:      res.Name,
		Prefix:      res.Prefix,
		Delimiter:   res.Delimiter,
		KeyCount:    len(res.Contents) + len(res.CommonPrefixes),
		MaxKeys:     int(res.MaxKeys),
		IsTruncated: res.IsTruncated,
	}
	if page.IsTruncated {
		page.NextContinuationToken = res.NextContinuationToken
	}
	for _, obj := range res.Contents {
		page.Contents = append(page.Contents, Object{
			Key:          obj.Key,
			LastModified: obj.LastModified,
			Size:         obj.Size,
			ETag:         obj.ETag,
			StorageClass: obj.StorageClass,
		})
	}
	for _, p := range res.CommonPrefixes {
		page.CommonPrefixes = append(page.CommonPrefixes, p.Prefix)
	}

	return page, nil
}
