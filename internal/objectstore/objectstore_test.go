// File path: internal/objectstore/objectstore_test.go
package objectstore

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObject struct {
	body        []byte
	contentType string
}

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]fakeObject
	deleted []string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string]fakeObject{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = fakeObject{body: body, contentType: aws.ToString(in.ContentType)}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:        io.NopCloser(bytes.NewReader(obj.body)),
		ContentType: aws.String(obj.contentType),
	}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

type fakePresigner struct {
	gotKey string
}

func (p *fakePresigner) PresignPutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	p.gotKey = aws.ToString(in.Key)
	return &v4.PresignedHTTPRequest{
		URL:          "https://bucket.example/" + p.gotKey + "?X-Amz-Signature=abc",
		Method:       http.MethodPut,
		SignedHeader: http.Header{"Content-Type": []string{aws.ToString(in.ContentType)}},
	}, nil
}

func newTestStore(t *testing.T, api API, presigner Presigner) *Store {
	t.Helper()
	st, err := NewWithClient(api, presigner, Config{Bucket: "animalert-test", MaxObjectBytes: 64})
	require.NoError(t, err)
	st.newID = func() string { return "11111111-2222-3333-4444-555555555555" }
	st.now = func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) }
	return st
}

func TestUploadPDFUsesComplaintPrefix(t *testing.T) {
	api := newFakeS3()
	st := newTestStore(t, api, nil)

	key, err := st.UploadPDF(context.Background(), []byte("%PDF-1.7"), "07-003-042")
	require.NoError(t, err)
	assert.Equal(t, "complaints/11111111-2222-3333-4444-555555555555_07-003-042.pdf", key)

	obj, err := st.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", obj.ContentType)
	assert.Equal(t, []byte("%PDF-1.7"), obj.Body)

	require.NoError(t, st.Delete(context.Background(), key))
	_, err = st.Get(context.Background(), key)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetRefusesOversizedObjects(t *testing.T) {
	api := newFakeS3()
	api.objects["attachments/big.bin"] = fakeObject{body: bytes.Repeat([]byte("x"), 65)}
	st := newTestStore(t, api, nil)

	_, err := st.Get(context.Background(), "attachments/big.bin")
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestGetFallsBackToExtensionContentType(t *testing.T) {
	api := newFakeS3()
	api.objects["attachments/x_photo.JPG"] = fakeObject{body: []byte{1, 2, 3}}
	st := newTestStore(t, api, nil)

	obj, err := st.Get(context.Background(), "attachments/x_photo.JPG")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", obj.ContentType)
}

func TestPresignUploadSanitisesName(t *testing.T) {
	presigner := &fakePresigner{}
	st := newTestStore(t, newFakeS3(), presigner)

	upload, err := st.PresignUpload(context.Background(), "../../etc/urs brun.png", "")
	require.NoError(t, err)
	assert.Equal(t, "attachments/11111111-2222-3333-4444-555555555555_urs_brun.png", upload.Key)
	assert.Equal(t, upload.Key, presigner.gotKey)
	assert.Equal(t, http.MethodPut, upload.Method)
	assert.Equal(t, "image/png", upload.Headers.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(upload.URL, "https://bucket.example/attachments/"))
	assert.Equal(t, time.Date(2024, 3, 15, 10, 15, 0, 0, time.UTC), upload.ExpiresAt)

	_, err = st.PresignUpload(context.Background(), "  ", "")
	require.Error(t, err)
}

func TestNewWithClientRequiresBucket(t *testing.T) {
	_, err := NewWithClient(newFakeS3(), nil, Config{})
	require.Error(t, err)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("S3_CONFIG_FILE", "")
	t.Setenv("S3_BUCKET", "petitions")
	t.Setenv("S3_REGION", "")
	t.Setenv("S3_ENDPOINT", "http://minio:9000/")
	t.Setenv("S3_FORCE_PATH_STYLE", "true")
	t.Setenv("S3_PRESIGN_TTL", "5m")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "petitions", cfg.Bucket)
	assert.Equal(t, "http://minio:9000", cfg.Endpoint)
	assert.True(t, cfg.ForcePathStyle)
	assert.Equal(t, 5*time.Minute, cfg.PresignTTL)
	assert.Equal(t, "eu-central-1", cfg.Region)

	t.Setenv("S3_FORCE_PATH_STYLE", "sometimes")
	_, err = LoadConfig()
	require.Error(t, err)
}
