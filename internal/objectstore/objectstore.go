// File path: internal/objectstore/objectstore.go
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/animalert/animalert/internal/common"
	"github.com/animalert/animalert/internal/common/telemetry"
)

const (
	ComplaintPrefix  = "complaints/"
	AttachmentPrefix = "attachments/"
)

var (
	ErrNotFound = errors.New("objectstore: object not found")
	ErrTooLarge = errors.New("objectstore: object exceeds size limit")
)

// API is the subset of the S3 client the store uses.
type API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Object is a fetched object held in memory.
type Object struct {
	Key         string
	ContentType string
	Body        []byte
}

// Upload describes a presigned PUT the client performs itself.
type Upload struct {
	Key       string      `json:"key"`
	URL       string      `json:"url"`
	Method    string      `json:"method"`
	Headers   http.Header `json:"headers,omitempty"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// Store keeps generated documents and user attachments in one bucket.
type Store struct {
	api       API
	presigner Presigner
	cfg       Config
	newID     func() string
	now       func() time.Time
}

// New builds an S3-backed Store. Static credentials are used when both
// key parts are configured; otherwise the default AWS chain applies.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})
	return NewWithClient(client, s3.NewPresignClient(client), cfg)
}

// NewWithClient builds a Store over an existing client.
func NewWithClient(api API, presigner Presigner, cfg Config) (*Store, error) {
	if api == nil {
		return nil, errors.New("objectstore: s3 client required")
	}
	cfg = DefaultConfig().Merge(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Store{
		api:       api,
		presigner: presigner,
		cfg:       cfg,
		newID:     func() string { return uuid.New().String() },
		now:       time.Now,
	}, nil
}

// UploadPDF stores a rendered complaint and returns its key.
func (s *Store) UploadPDF(ctx context.Context, data []byte, publicID string) (string, error) {
	key := ComplaintPrefix + s.objectName(publicID+".pdf")
	if err := s.put(ctx, key, data, "application/pdf"); err != nil {
		return "", err
	}
	telemetry.RecordUpload(len(data))
	common.Component("objectstore").Info("objectstore: uploaded", "key", key, "bytes", len(data))
	return key, nil
}

func (s *Store) put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

// Get reads an object fully into memory, refusing objects larger than
// MaxObjectBytes.
func (s *Store) Get(ctx context.Context, key string) (Object, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return Object{}, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return Object{}, fmt.Errorf("get object %s: %w", key, err)
	}
	defer out.Body.Close()

	limit := s.cfg.MaxObjectBytes
	body, err := io.ReadAll(io.LimitReader(out.Body, limit+1))
	if err != nil {
		return Object{}, fmt.Errorf("read object %s: %w", key, err)
	}
	if int64(len(body)) > limit {
		return Object{}, fmt.Errorf("%s: %w", key, ErrTooLarge)
	}
	contentType := aws.ToString(out.ContentType)
	if contentType == "" || contentType == "binary/octet-stream" {
		contentType = DetectContentType(key)
	}
	return Object{Key: key, ContentType: contentType, Body: body}, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// PresignUpload issues a presigned PUT for a user attachment under
// AttachmentPrefix.
func (s *Store) PresignUpload(ctx context.Context, fileName, contentType string) (Upload, error) {
	if s.presigner == nil {
		return Upload{}, errors.New("objectstore: presigning not configured")
	}
	if strings.TrimSpace(fileName) == "" {
		return Upload{}, errors.New("objectstore: file name required")
	}
	if strings.TrimSpace(contentType) == "" {
		contentType = DetectContentType(fileName)
	}
	key := AttachmentPrefix + s.objectName(fileName)
	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.cfg.PresignTTL))
	if err != nil {
		return Upload{}, fmt.Errorf("presign %s: %w", key, err)
	}
	return Upload{
		Key:       key,
		URL:       req.URL,
		Method:    req.Method,
		Headers:   req.SignedHeader,
		ExpiresAt: s.now().Add(s.cfg.PresignTTL).UTC(),
	}, nil
}

// objectName prefixes a sanitised file name with a random id so uploads
// never overwrite each other.
func (s *Store) objectName(fileName string) string {
	return s.newID() + "_" + sanitizeName(fileName)
}

func sanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "file"
	}
	return out
}

// DetectContentType guesses a MIME type from the file extension.
func DetectContentType(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
