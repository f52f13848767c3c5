package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mycloudbox/mycloudbox/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method      string
	path        string
	contentType string
}

type fakeS3 struct {
	mu       sync.Mutex
	requests []recordedRequest
	handle   func(w http.ResponseWriter, r *http.Request)
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		method:      r.Method,
		path:        r.URL.Path,
		contentType: r.Header.Get("Content-Type"),
	})
	f.mu.Unlock()

	if f.handle != nil {
		f.handle(w, r)
		return
	}

	switch r.Method {
	case http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	default:
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	}
}

func (f *fakeS3) recorded() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

func newTestS3Gateway(t *testing.T, fake *fakeS3, c S3Config) *S3Gateway {
	t.Helper()

	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client := s3.New(s3.Options{
		Region:           "us-east-1",
		BaseEndpoint:     aws.String(srv.URL),
		UsePathStyle:     true,
		Credentials:      credentials.NewStaticCredentialsProvider("key", "secret", ""),
		RetryMaxAttempts: 1,
	})

	c.Bucket = "files"
	c.Endpoint = srv.URL
	return NewS3GatewayWithClient(client, c)
}

const accessDenied = `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`

func TestS3Gateway_Upload(t *testing.T) {
	fake := &fakeS3{}
	gw := newTestS3Gateway(t, fake, S3Config{PublicURL: "https://cdn.example.com/"})

	obj, err := gw.Upload(context.Background(), pngBytes, "cat.png")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(obj.Ref, refPrefix))
	assert.Equal(t, "png", obj.Format)
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, int64(len(pngBytes)), obj.Size)
	assert.Equal(t, "https://cdn.example.com/image/"+obj.Ref, obj.URL)

	reqs := fake.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPut, reqs[0].method)
	assert.Equal(t, "/files/image/"+obj.Ref, reqs[0].path)
	assert.Equal(t, "image/png", reqs[0].contentType)
}

func TestS3Gateway_Upload_DefaultsURLToEndpointBucket(t *testing.T) {
	fake := &fakeS3{}
	gw := newTestS3Gateway(t, fake, S3Config{})

	obj, err := gw.Upload(context.Background(), pdfBytes, "a.pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(obj.URL, "/files/raw/"+obj.Ref))
}

func TestS3Gateway_Upload_Error(t *testing.T) {
	fake := &fakeS3{handle: func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(accessDenied))
	}}
	gw := newTestS3Gateway(t, fake, S3Config{})

	obj, err := gw.Upload(context.Background(), pngBytes, "cat.png")
	require.ErrorIs(t, err, ErrGateway)
	assert.Nil(t, obj)
}

func TestS3Gateway_Delete_UsesKindInKey(t *testing.T) {
	fake := &fakeS3{}
	gw := newTestS3Gateway(t, fake, S3Config{})

	require.NoError(t, gw.Delete(context.Background(), "mycloudbox/abc", model.ResourceVideo))

	reqs := fake.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodDelete, reqs[0].method)
	assert.Equal(t, "/files/video/mycloudbox/abc", reqs[0].path)
}

func TestS3Gateway_Delete_Error(t *testing.T) {
	fake := &fakeS3{handle: func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(accessDenied))
	}}
	gw := newTestS3Gateway(t, fake, S3Config{})

	err := gw.Delete(context.Background(), "mycloudbox/abc", model.ResourceRaw)
	require.ErrorIs(t, err, ErrGateway)
}

func TestS3Gateway_Delete_Timeout(t *testing.T) {
	fake := &fakeS3{handle: func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}}
	gw := newTestS3Gateway(t, fake, S3Config{DeleteTimeout: 50 * time.Millisecond})

	start := time.Now()
	err := gw.Delete(context.Background(), "mycloudbox/abc", model.ResourceImage)
	require.ErrorIs(t, err, ErrGateway)
	assert.Less(t, time.Since(start), time.Second)
}

func TestS3Gateway_Upload_Timeout(t *testing.T) {
	fake := &fakeS3{handle: func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}}
	gw := newTestS3Gateway(t, fake, S3Config{UploadTimeout: 50 * time.Millisecond})

	start := time.Now()
	obj, err := gw.Upload(context.Background(), pngBytes, "cat.png")
	require.ErrorIs(t, err, ErrGateway)
	assert.Nil(t, obj)
	assert.Less(t, time.Since(start), time.Second)
}

func TestS3Gateway_EnsureBucket_CreatesMissingBucket(t *testing.T) {
	fake := &fakeS3{handle: func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}}
	gw := newTestS3Gateway(t, fake, S3Config{})

	require.NoError(t, gw.ensureBucket(context.Background()))

	reqs := fake.recorded()
	require.Len(t, reqs, 2)
	assert.Equal(t, http.MethodHead, reqs[0].method)
	assert.Equal(t, http.MethodPut, reqs[1].method)
	assert.Equal(t, "/files", reqs[1].path)
}

func TestS3Gateway_PresignedURL(t *testing.T) {
	gw := newTestS3Gateway(t, &fakeS3{}, S3Config{})

	url, err := gw.PresignedURL(context.Background(), "mycloudbox/abc", model.ResourceRaw, 5*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "/files/raw/mycloudbox/abc")
	assert.Contains(t, url, "X-Amz-Expires=300")
	assert.Contains(t, url, "X-Amz-Signature=")
}
