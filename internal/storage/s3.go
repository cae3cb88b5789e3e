package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// maxLogoBytes caps downloaded logos
const maxLogoBytes = 2 << 20

// S3Uploader mirrors tool logos into an S3 bucket served from a CDN
type S3Uploader struct {
	client     objectStore
	httpClient *http.Client
	bucket     string
	region     string
	baseURL    string
}

// UploadResult contains the result of an S3 upload
type UploadResult struct {
	Key    string `json:"key"`
	URL    string `json:"url"`
	Bucket string `json:"bucket"`
	Region string `json:"region"`
	Size   int64  `json:"size"`
}

// NewS3Uploader creates a new S3 uploader. httpClient downloads source images.
func NewS3Uploader(ctx context.Context, region, bucket, baseURL string, httpClient *http.Client) (*S3Uploader, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &S3Uploader{
		client:     s3.NewFromConfig(cfg),
		httpClient: httpClient,
		bucket:     bucket,
		region:     region,
		baseURL:    baseURL,
	}, nil
}

// MirrorLogo downloads sourceURL and stores it under logos/{slug}/{id}{ext}
func (u *S3Uploader) MirrorLogo(ctx context.Context, toolSlug, sourceURL string) (*UploadResult, error) {
	data, contentType, err := u.download(ctx, sourceURL)
	if err != nil {
		return nil, err
	}

	ext := extensionFor(contentType, sourceURL)
	key := fmt.Sprintf("logos/%s/%s%s", toolSlug, uuid.New().String(), ext)

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(u.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(getContentTypeForImage(ext)),
		CacheControl: aws.String("max-age=86400"),
		Metadata: map[string]string{
			"tool-slug":  toolSlug,
			"source-url": sourceURL,
			"file-type":  "logo",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &UploadResult{
		Key:    key,
		URL:    fmt.Sprintf("%s/%s", strings.TrimSuffix(u.baseURL, "/"), key),
		Bucket: u.bucket,
		Region: u.region,
		Size:   int64(len(data)),
	}, nil
}

func (u *S3Uploader) download(ctx context.Context, sourceURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("invalid logo url: %w", err)
	}

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch logo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to fetch logo: status %d", resp.StatusCode)
	}

	contentType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", fmt.Errorf("logo is not an image: %q", contentType)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxLogoBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read logo: %w", err)
	}
	if len(data) > maxLogoBytes {
		return nil, "", fmt.Errorf("logo exceeds %d bytes", maxLogoBytes)
	}
	return data, contentType, nil
}

// CheckBucketAccess verifies that we can access the S3 bucket
func (u *S3Uploader) CheckBucketAccess(ctx context.Context) error {
	_, err := u.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(u.bucket),
	})
	if err != nil {
		return fmt.Errorf("cannot access S3 bucket %s: %w", u.bucket, err)
	}
	return nil
}

// extensionFor picks a file extension from the content type, then the URL path
func extensionFor(contentType, sourceURL string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	case "image/x-icon", "image/vnd.microsoft.icon":
		return ".ico"
	}

	path := sourceURL
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if ext := strings.ToLower(filepath.Ext(path)); getContentTypeForImage(ext) != "application/octet-stream" {
		return ext
	}
	return ".png"
}

// getContentTypeForImage returns the MIME type for image extensions
func getContentTypeForImage(extension string) string {
	switch strings.ToLower(extension) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	case ".ico":
		return "image/x-icon"
	default:
		return "application/octet-stream"
	}
}
