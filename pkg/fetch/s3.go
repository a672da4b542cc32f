package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	errs "github.com/erebus-go/erebus/internal/errors"
)

// S3API is the subset of *s3.Client used to read objects.
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	client := fetch.New(fetch.WithS3(s3.NewFromConfig(cfg)))
//	resp, err := client.Get(ctx, "s3://site-bucket/fragments/home.html")
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// getS3 reads s3://bucket/key.
func (c *Client) getS3(ctx context.Context, target *url.URL, r request) (*Response, error) {
	if c.s3 == nil {
		return nil, errs.New(errs.CodeUnsupportedScheme).WithDetail("s3 (no client configured)")
	}

	bucket := target.Host
	key := strings.TrimPrefix(target.Path, "/")
	if bucket == "" || key == "" {
		return nil, errs.New(errs.CodeInvalidURL).WithDetail(target.String())
	}

	out, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errs.New(errs.CodeConnectionRefused).WithDetail(target.String()).Wrap(err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, c.maxBody))
	if err != nil {
		return nil, errs.New(errs.CodeConnectionRefused).WithDetail(target.String()).Wrap(err)
	}

	header := make(http.Header)
	if ct := aws.ToString(out.ContentType); ct != "" {
		header.Set("Content-Type", ct)
	}
	return c.finish(http.StatusOK, header, data, r)
}
