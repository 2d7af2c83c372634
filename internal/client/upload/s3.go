package upload

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adminkit/adminctl/internal/apperr"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Uploader stores documents directly in an S3 bucket. The returned
// identifier is an s3:// URL derived from the generated object key.
type S3Uploader struct {
	client *s3.Client
	bucket string
}

// NewS3Uploader builds an uploader for bucket using the default AWS
// credential chain.
func NewS3Uploader(ctx context.Context, bucket string) (*S3Uploader, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &S3Uploader{client: s3.NewFromConfig(cfg), bucket: bucket}, nil
}

// NewS3UploaderWithClient is the constructor used by tests.
func NewS3UploaderWithClient(client *s3.Client, bucket string) *S3Uploader {
	return &S3Uploader{client: client, bucket: bucket}
}

// Upload puts the file in one object. Progress is reported as the body is
// consumed by the SDK.
func (u *S3Uploader) Upload(ctx context.Context, path string, progress ProgressFunc) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeClientError, err.Error(), err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return "", apperr.Wrap(apperr.CodeClientError, err.Error(), err)
	}

	key := uuid.NewString() + filepath.Ext(path)
	size := fi.Size()

	body := &progressReader{r: f, total: size, progress: progress}
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &u.bucket,
		Key:           &key,
		Body:          body,
		ContentLength: &size,
	})
	if err != nil {
		return "", apperr.Wrap(apperr.CodeClientError, err.Error(), err)
	}

	return fmt.Sprintf("s3://%s/%s", u.bucket, key), nil
}

// progressReader reports bytes consumed from the underlying reader.
type progressReader struct {
	r        *os.File
	total    int64
	sent     int64
	progress ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		if p.progress != nil {
			p.progress(p.sent, p.total)
		}
	}
	return n, err
}
