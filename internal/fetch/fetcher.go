package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// maxDocumentBytes bounds how much of a source document is read into memory.
const maxDocumentBytes = 64 * 1024 * 1024

// Document is a fetched source document. ID is stable across repeated requests
// for the same source URL, so it can key the embedding cache.
type Document struct {
	ID   string
	URL  string
	Data []byte
}

// S3Config holds credentials for s3:// document sources.
type S3Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// Fetcher downloads source documents from http(s) URLs or s3:// URIs.
type Fetcher struct {
	httpClient *http.Client
	s3Client   *s3.Client
}

// NewFetcher creates a Fetcher for http(s) sources only.
func NewFetcher() *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// NewFetcherWithS3 creates a Fetcher that also resolves s3:// URIs.
func NewFetcherWithS3(ctx context.Context, cfg S3Config) (*Fetcher, error) {
	customResolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			if cfg.Endpoint != "" {
				return aws.Endpoint{
					URL:               cfg.Endpoint,
					HostnameImmutable: true,
				}, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		},
	)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
		awsconfig.WithEndpointResolverWithOptions(customResolver),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})

	f := NewFetcher()
	f.s3Client = client
	return f, nil
}

// Fetch downloads the document at the given URL. The returned Document carries
// the identity derived from the URL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Document, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid document URL: %w", err)
	}

	var data []byte
	switch parsed.Scheme {
	case "http", "https":
		data, err = f.fetchHTTP(ctx, rawURL)
	case "s3":
		data, err = f.fetchS3(ctx, parsed)
	default:
		return nil, fmt.Errorf("unsupported document URL scheme %q", parsed.Scheme)
	}
	if err != nil {
		return nil, err
	}

	return &Document{
		ID:   DocumentID(rawURL),
		URL:  rawURL,
		Data: data,
	}, nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build document request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("document download failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read document body: %w", err)
	}
	return data, nil
}

func (f *Fetcher) fetchS3(ctx context.Context, parsed *url.URL) ([]byte, error) {
	if f.s3Client == nil {
		return nil, fmt.Errorf("s3 document sources are not configured")
	}

	bucket := parsed.Host
	key := strings.TrimPrefix(parsed.Path, "/")
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("s3 URL must be of the form s3://bucket/key")
	}

	out, err := f.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get s3 object: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read s3 object body: %w", err)
	}
	return data, nil
}

// DocumentID derives the stable cache identity for a source URL.
func DocumentID(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:])
}
