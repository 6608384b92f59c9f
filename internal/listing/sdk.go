package listing

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ListObjectsV2API is the part of the S3 client used by SDKFetcher.
type ListObjectsV2API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// SDKFetcher lists a bucket through the AWS SDK with anonymous credentials.
type SDKFetcher struct {
	api    ListObjectsV2API
	bucket string
}

// NewSDKFetcher builds an anonymous S3 client for endpoint and region.
func NewSDKFetcher(ctx context.Context, endpoint, region, bucket string) (*SDKFetcher, error) {
	awsConfig, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(aws.AnonymousCredentials{}),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = true // Required for MinIO and some S3-compatible services
	})

	return NewSDKFetcherWithAPI(client, bucket), nil
}

// NewSDKFetcherWithAPI wraps an existing ListObjectsV2API.
func NewSDKFetcherWithAPI(api ListObjectsV2API, bucket string) *SDKFetcher {
	return &SDKFetcher{api: api, bucket: bucket}
}

// FetchPage implements PageFetcher.
func (f *SDKFetcher) FetchPage(ctx context.Context, req PageRequest) (*Page, error) {
	input := &s3.ListObjectsV2Input{
		Bucket:    aws.String(f.bucket),
		Prefix:    aws.String(req.Prefix),
		Delimiter: aws.String(Delimiter),
	}
	if req.MaxKeys > 0 {
		input.MaxKeys = aws.Int32(int32(req.MaxKeys))
	}
	if req.ContinuationToken != "" {
		input.ContinuationToken = aws.String(req.ContinuationToken)
	}

	out, err := f.api.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}

	page := &Page{
		Bucket:      aws.ToString(out.Name),
		Prefix:      aws.ToString(out.Prefix),
		Delimiter:   aws.ToString(out.Delimiter),
		KeyCount:    int(aws.ToInt32(out.KeyCount)),
		MaxKeys:     int(aws.ToInt32(out.MaxKeys)),
		IsTruncated: aws.ToBool(out.IsTruncated),
	}
	if page.IsTruncated {
		page.NextContinuationToken = aws.ToString(out.NextContinuationToken)
	}
	for _, obj := range out.Contents {
		page.Contents = append(page.Contents, Object{
			Key:          aws.ToString(obj.Key),
			LastModified: aws.ToTime(obj.LastModified),
			Size:         aws.ToInt64(obj.Size),
			ETag:         aws.ToString(obj.ETag),
			StorageClass: string(obj.StorageClass),
		})
	}
	for _, p := range out.CommonPrefixes {
		page.CommonPrefixes = append(page.CommonPrefixes, aws.ToString(p.Prefix))
	}

	return page, nil
}
