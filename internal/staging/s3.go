package staging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"jobpostings-etl/internal/config"
	"jobpostings-etl/internal/domain"
)

// objectPutter is the part of *minio.Client the writer needs.
type objectPutter interface {
	PutObject(ctx context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// S3Writer stores snapshots as objects <prefix>/job_<index>.json.
type S3Writer struct {
	client objectPutter
	bucket string
	prefix string
}

func NewS3Writer(cfg config.S3Config) (*S3Writer, error) {
	var creds *credentials.Credentials
	if cfg.AccessKey != "" || cfg.SecretKey != "" {
		creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	} else {
		creds = credentials.NewStatic("", "", "", credentials.SignatureAnonymous)
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  creds,
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("staging s3 client: %w", err)
	}
	return &S3Writer{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// ObjectName is the key written for index.
func (w *S3Writer) ObjectName(index int) string {
	p := strings.Trim(w.prefix, "/")
	if p == "" {
		return Name(index)
	}
	return path.Join(p, Name(index))
}

func (w *S3Writer) Write(ctx context.Context, index int, rec domain.Record) error {
	b, err := Encode(rec)
	if err != nil {
		return err
	}
	_, err = w.client.PutObject(ctx, w.bucket, w.ObjectName(index), bytes.NewReader(b), int64(len(b)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", w.bucket, w.ObjectName(index), err)
	}
	return nil
}
