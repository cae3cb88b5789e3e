package storage

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// LogoMirror copies a remote logo into storage we control and returns its public URL
type LogoMirror interface {
	MirrorLogo(ctx context.Context, toolSlug, sourceURL string) (*UploadResult, error)
}

// objectStore is the subset of the S3 client the uploader uses
type objectStore interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// Ensure S3Uploader implements LogoMirror
var _ LogoMirror = (*S3Uploader)(nil)
