package app

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/erebus-go/erebus/internal/config"
	"github.com/erebus-go/erebus/pkg/fetch"
)

// fileBase resolves relative fragment URLs against the fragment directory.
const fileBase = "file:///"

// newFetcher builds the fragment client described by cfg.
func newFetcher(cfg *config.Config, opts Options, logger *slog.Logger) *fetch.Client {
	fo := []fetch.Option{
		fetch.WithLogger(logger),
		fetch.WithTimeout(cfg.FetchTimeout()),
		fetch.WithFileRoot(cfg.FragmentsPath()),
	}
	if opts.HTTPClient != nil {
		fo = append(fo, fetch.WithHTTPClient(opts.HTTPClient))
	}

	if cfg.Fragments.BaseURL != "" {
		fo = append(fo, fetch.WithBaseURL(cfg.Fragments.BaseURL))
	} else {
		fo = append(fo, fetch.WithBaseURL(fileBase))
	}
	for name, value := range cfg.Fragments.Headers {
		fo = append(fo, fetch.WithHeader(name, value))
	}

	switch {
	case opts.S3 != nil:
		fo = append(fo, fetch.WithS3(opts.S3))
	case cfg.Fragments.S3 != nil:
		fo = append(fo, fetch.WithS3(newS3Client(cfg.Fragments.S3)))
	}

	return fetch.New(fo...)
}

// newS3Client creates the client for s3:// fragments. Credentials come from
// the standard AWS environment variables; without them requests are
// anonymous, which is enough for public buckets.
func newS3Client(c *config.S3Config) *s3.Client {
	region := c.Region
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = "us-east-1"
	}

	o := s3.Options{
		Region:       region,
		UsePathStyle: c.PathStyle,
		Credentials:  envCredentials(),
	}
	if c.Endpoint != "" {
		o.BaseEndpoint = aws.String(c.Endpoint)
	}
	return s3.New(o)
}

func envCredentials() aws.CredentialsProvider {
	id := os.Getenv("AWS_ACCESS_KEY_ID")
	secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if id == "" || secret == "" {
		return aws.AnonymousCredentials{}
	}
	token := os.Getenv("AWS_SESSION_TOKEN")
	return aws.NewCredentialsCache(aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		return aws.Credentials{
			AccessKeyID:     id,
			SecretAccessKey: secret,
			SessionToken:    token,
			Source:          "EnvironmentVariables",
		}, nil
	}))
}
