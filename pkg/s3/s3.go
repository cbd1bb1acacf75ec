package s3

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
)

// Archiver copies local artifacts (uploaded videos, reports) to a bucket.
type Archiver struct {
	uploader s3manageriface.UploaderAPI
	bucket   string
}

func NewArchiver(region, bucket string) (*Archiver, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}
	return &Archiver{uploader: s3manager.NewUploader(sess), bucket: bucket}, nil
}

// UploadFile streams body to key and returns the object location.
func (a *Archiver) UploadFile(ctx context.Context, body io.Reader, key string) (string, error) {
	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	result, err := a.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s to s3: %w", key, err)
	}
	return result.Location, nil
}

func (a *Archiver) UploadPath(ctx context.Context, path, key string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return a.UploadFile(ctx, f, key)
}
