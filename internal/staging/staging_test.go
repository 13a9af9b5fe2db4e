package staging

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"

	"jobpostings-etl/internal/config"
	"jobpostings-etl/internal/domain"
)

func sampleRecord(index int) domain.Record {
	return domain.Record{
		Index:   index,
		Job:     domain.Job{Title: "Data Engineer"},
		Company: domain.Company{Name: "Acme", Link: "acme.com"},
		Salary:  domain.Salary{Currency: "USD", MinValue: domain.NumberOf(90000)},
	}
}

func TestDirWriter_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "staging", "transformed")
	w := NewDirWriter(dir)

	if err := w.Write(context.Background(), 3, sampleRecord(3)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "job_3.json"))
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if !strings.Contains(string(b), "\n  \"job\": {\n    \"title\": \"Data Engineer\"") {
		t.Errorf("snapshot is not 2-space indented:\n%s", b)
	}

	var got map[string]map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("snapshot is not JSON: %v", err)
	}
	for _, key := range []string{"job", "company", "education", "experience", "salary", "location"} {
		if _, ok := got[key]; !ok {
			t.Errorf("snapshot missing %q section", key)
		}
	}
	if got["salary"]["max_value"] != nil {
		t.Errorf("absent max_value should be null, got %v", got["salary"]["max_value"])
	}
	if got["salary"]["min_value"] != float64(90000) {
		t.Errorf("min_value = %v", got["salary"]["min_value"])
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only the snapshot in %s, found %d entries", dir, len(entries))
	}
}

func TestDirWriter_Overwrites(t *testing.T) {
	dir := t.TempDir()
	w := NewDirWriter(dir)
	ctx := context.Background()

	first := sampleRecord(0)
	second := sampleRecord(0)
	second.Job.Title = "Analytics Engineer"

	if err := w.Write(ctx, 0, first); err != nil {
		t.Fatal(err)
	}
	if err := w.Write(ctx, 0, second); err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(filepath.Join(dir, Name(0)))
	if !strings.Contains(string(b), "Analytics Engineer") {
		t.Errorf("second write did not replace the first:\n%s", b)
	}
}

type fakePutter struct {
	bucket, object, contentType string
	body                        []byte
}

func (f *fakePutter) PutObject(_ context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	f.bucket, f.object, f.contentType = bucket, object, opts.ContentType
	f.body, _ = io.ReadAll(r)
	return minio.UploadInfo{Bucket: bucket, Key: object, Size: size}, nil
}

func TestS3Writer_Write(t *testing.T) {
	fp := &fakePutter{}
	w := &S3Writer{client: fp, bucket: "etl", prefix: "/staging/transformed/"}

	if err := w.Write(context.Background(), 12, sampleRecord(12)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if fp.bucket != "etl" || fp.object != "staging/transformed/job_12.json" {
		t.Errorf("put to %s/%s", fp.bucket, fp.object)
	}
	if fp.contentType != "application/json" {
		t.Errorf("content type = %q", fp.contentType)
	}
	if !json.Valid(fp.body) {
		t.Errorf("body is not JSON: %s", fp.body)
	}

	w.prefix = ""
	if got := w.ObjectName(1); got != "job_1.json" {
		t.Errorf("ObjectName without prefix = %q", got)
	}
}

func TestNew(t *testing.T) {
	cfg := config.Default()
	cfg.App.DataDir = t.TempDir()

	w, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	dw, ok := w.(*DirWriter)
	if !ok || dw.Dir != filepath.Join(cfg.App.DataDir, "staging", "transformed") {
		t.Errorf("dir backend = %#v", w)
	}

	cfg.Staging.Backend = config.StagingNone
	if w, _ := New(cfg); w != (Nop{}) {
		t.Errorf("none backend = %#v", w)
	}

	cfg.Staging.Backend = config.StagingS3
	cfg.Staging.S3 = config.S3Config{Endpoint: "localhost:9000", Bucket: "etl", AccessKey: "k", SecretKey: "s"}
	if w, err := New(cfg); err != nil {
		t.Errorf("s3 backend: %v", err)
	} else if _, ok := w.(*S3Writer); !ok {
		t.Errorf("s3 backend = %#v", w)
	}

	cfg.Staging.Backend = "tape"
	if _, err := New(cfg); err == nil {
		t.Error("expected error for unknown backend")
	}
}
