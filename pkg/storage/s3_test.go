package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/church-console/backend/internal/models"
)

// fakeS3 is the subset of the S3 REST API used by the media and report flows.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.TrimPrefix(req.URL.Path, "/")
	resp := &http.Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: io.NopCloser(bytes.NewReader(nil))}
	switch req.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		f.objects[key] = body
		resp.Header.Set("ETag", `"etag"`)
	case http.MethodDelete:
		delete(f.objects, key)
		resp.StatusCode = http.StatusNoContent
	case http.MethodHead:
		if _, ok := f.objects[key]; !ok {
			resp.StatusCode = http.StatusNotFound
		}
	default:
		resp.StatusCode = http.StatusNotImplemented
	}
	return resp, nil
}

func newFakeS3(t *testing.T) (*S3, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: make(map[string][]byte)}
	s, err := NewS3(context.Background(), S3Config{
		Region: "us-east-1", AccessKeyID: "AKIA", SecretAccessKey: "SECRET",
		MediaBucket: "media-bucket", ReportsBucket: "reports-bucket",
		Endpoint: "https://s3.test.local",
	}, nil, func(o *s3.Options) { o.HTTPClient = &http.Client{Transport: fake} })
	if err != nil {
		t.Fatalf("NewS3: %v", err)
	}
	return s, fake
}

func TestUploadAndDeleteMedia(t *testing.T) {
	ctx := context.Background()
	s, fake := newFakeS3(t)
	key := MediaKey("easter-2024", "sunrise.JPG")
	if !strings.HasPrefix(key, "media/easter-2024/") || !strings.HasSuffix(key, ".jpg") {
		t.Fatalf("MediaKey() = %q", key)
	}

	body := []byte("jpeg bytes")
	url, err := s.Upload(ctx, s.MediaBucket(), key, "image/jpeg", bytes.NewReader(body), int64(len(body)), true)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if url != "https://s3.test.local/media-bucket/"+key {
		t.Fatalf("Upload() url = %q", url)
	}
	if _, ok := fake.objects["media-bucket/"+key]; !ok {
		t.Fatalf("object not stored; have %v", fake.objects)
	}
	if _, err := s.HeadObject(ctx, s.MediaBucket(), key); err != nil {
		t.Fatalf("HeadObject: %v", err)
	}

	if err := s.DeleteMedia(ctx, key); err != nil {
		t.Fatalf("DeleteMedia: %v", err)
	}
	if len(fake.objects) != 0 {
		t.Fatalf("objects after delete = %v", fake.objects)
	}
}

func TestPresignedDownloadURL(t *testing.T) {
	s, _ := newFakeS3(t)
	url, err := s.GeneratePresignedDownloadURL(context.Background(), s.ReportsBucket(), ReportKey("exp-1", "summary.pdf"), s.PresignExpire())
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if !strings.Contains(url, "/reports-bucket/reports/exp-1/summary.pdf") || !strings.Contains(url, "X-Amz-Signature=") {
		t.Fatalf("presigned url = %q", url)
	}
}

func TestMediaTypeFor(t *testing.T) {
	tests := []struct {
		contentType, filename, want string
	}{
		{"image/png", "a.png", models.MediaImage},
		{"", "clip.MOV", models.MediaVideo},
		{"application/octet-stream", "talk.avi", models.MediaVideo},
		{"application/pdf", "bulletin.pdf", models.MediaDocument},
		{"text/html", "page.html", ""},
	}
	for _, tt := range tests {
		if got := MediaTypeFor(tt.contentType, tt.filename); got != tt.want {
			t.Errorf("MediaTypeFor(%q, %q) = %q, want %q", tt.contentType, tt.filename, got, tt.want)
		}
	}
	if ContentTypeForFilename("x.gif") != "image/gif" || ContentTypeForFilename("x.exe") != "application/octet-stream" {
		t.Fatal("ContentTypeForFilename mismatch")
	}
}
