package blob

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMinio struct {
	exists      bool
	existsErr   error
	made        int
	putKey      string
	putType     string
	putBody     string
	removed     []string
	presignErr  error
	presignedTo time.Duration
}

func (f *fakeMinio) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return f.exists, f.existsErr
}

func (f *fakeMinio) MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
	f.made++
	f.exists = true
	return nil
}

func (f *fakeMinio) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.putKey, f.putType, f.putBody = key, opts.ContentType, string(b)
	return minio.UploadInfo{Bucket: bucket, Key: key, Size: size}, nil
}

func (f *fakeMinio) RemoveObject(ctx context.Context, bucket, key string, opts minio.RemoveObjectOptions) error {
	f.removed = append(f.removed, key)
	return nil
}

func (f *fakeMinio) PresignedGetObject(ctx context.Context, bucket, key string, expiry time.Duration, params url.Values) (*url.URL, error) {
	if f.presignErr != nil {
		return nil, f.presignErr
	}
	f.presignedTo = expiry
	return &url.URL{Scheme: "http", Host: "minio:9000", Path: "/" + bucket + "/" + key}, nil
}

func TestMinioStore_PutCreatesBucketOnce(t *testing.T) {
	api := &fakeMinio{}
	s := &MinioStore{client: api, bucket: "prodhub", region: "us-east-1"}

	require.NoError(t, s.Put(context.Background(), "k1", strings.NewReader("a"), 1, ""))
	require.NoError(t, s.Put(context.Background(), "k2", strings.NewReader("bb"), 2, "audio/wav"))

	assert.Equal(t, 1, api.made)
	assert.Equal(t, "k2", api.putKey)
	assert.Equal(t, "audio/wav", api.putType)
	assert.Equal(t, "bb", api.putBody)
}

func TestMinioStore_PutDefaultsContentType(t *testing.T) {
	api := &fakeMinio{exists: true}
	s := &MinioStore{client: api, bucket: "b"}

	require.NoError(t, s.Put(context.Background(), "beat.flp", strings.NewReader("x"), 1, ""))
	assert.Equal(t, "application/octet-stream", api.putType)
	assert.Zero(t, api.made)
}

func TestMinioStore_BucketCheckFails(t *testing.T) {
	s := &MinioStore{client: &fakeMinio{existsErr: errors.New("unreachable")}, bucket: "b"}
	err := s.Put(context.Background(), "k", strings.NewReader(""), 0, "")
	assert.ErrorContains(t, err, "ensure bucket: unreachable")
}

func TestMinioStore_DeleteAndURL(t *testing.T) {
	api := &fakeMinio{}
	s := &MinioStore{client: api, bucket: "b", expiry: time.Hour}

	require.NoError(t, s.Delete(context.Background(), "k"))
	assert.Equal(t, []string{"k"}, api.removed)

	u, err := s.URL(context.Background(), "dir/k.wav")
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/b/dir/k.wav", u)
	assert.Equal(t, time.Hour, api.presignedTo)

	api.presignErr = errors.New("boom")
	_, err = s.URL(context.Background(), "k")
	assert.ErrorContains(t, err, "presign k")
}

func TestSplitEndpoint(t *testing.T) {
	tests := []struct {
		in         string
		wantHost   string
		wantSecure bool
		wantErr    bool
	}{
		{in: "http://127.0.0.1:9000/", wantHost: "127.0.0.1:9000"},
		{in: "https://s3.example.com", wantHost: "s3.example.com", wantSecure: true},
		{in: "minio:9000/", wantHost: "minio:9000"},
		{in: "", wantErr: true},
		{in: "http://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			host, secure, err := splitEndpoint(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, host)
			assert.Equal(t, tt.wantSecure, secure)
		})
	}
}

func TestNewMinioStore(t *testing.T) {
	s, err := NewMinioStore(S3Config{Endpoint: "http://127.0.0.1:9000/", AccessKey: "a", SecretKey: "s", Bucket: "b"})
	require.NoError(t, err)
	assert.Equal(t, "b", s.bucket)

	_, err = NewMinioStore(S3Config{Endpoint: "http://127.0.0.1:9000/"})
	assert.ErrorContains(t, err, "bucket is required")
}
