package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/HugoSiliveri/StageConnect-sub000/internal/config"
)

// ErrObjectNotFound is returned when a stored document does not exist.
// Callers treat absence as a regular outcome, not a fault.
var ErrObjectNotFound = fmt.Errorf("storage: object not found")

// ObjectStore is the file-store contract the services depend on. Documents
// are keyed by owner id + display file name; re-uploading under the same key
// overwrites silently.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// ObjectKey builds the store key for a document owned by a user.
func ObjectKey(ownerID uuid.UUID, fileName string) string {
	return fmt.Sprintf("%s/%s", ownerID, fileName)
}

const maxDocumentSize = 20 * 1024 * 1024 // 20MB

var allowedDocumentTypes = []string{".pdf"}

// ValidateDocument checks size and extension constraints for uploaded
// agreement / CV documents.
func ValidateDocument(fileName string, size int64) error {
	if size > maxDocumentSize {
		return fmt.Errorf("file size %d bytes exceeds maximum allowed size %d bytes", size, maxDocumentSize)
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	for _, allowed := range allowedDocumentTypes {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("file type %s is not allowed", ext)
}

// StorageService stores documents in S3, or in process memory when no AWS
// credentials are configured (local development).
type StorageService struct {
	s3Client *s3.S3
	config   *config.Config

	mu    sync.RWMutex
	local map[string][]byte
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	if cfg.AWS.AccessKeyID == "" {
		logrus.Warn("AWS credentials not configured, using in-memory document store")
		return &StorageService{config: cfg, local: make(map[string][]byte)}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		config:   cfg,
	}, nil
}

func (s *StorageService) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if s.s3Client == nil {
		s.mu.Lock()
		s.local[key] = append([]byte(nil), data...)
		s.mu.Unlock()
		return nil
	}

	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.config.AWS.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}

	return nil
}

func (s *StorageService) Get(ctx context.Context, key string) ([]byte, error) {
	if s.s3Client == nil {
		s.mu.RLock()
		data, ok := s.local[key]
		s.mu.RUnlock()
		if !ok {
			return nil, ErrObjectNotFound
		}
		return append([]byte(nil), data...), nil
	}

	out, err := s.s3Client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.AWS.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == s3.ErrCodeNoSuchKey {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to download from S3: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read S3 object body: %w", err)
	}

	return data, nil
}

func (s *StorageService) Delete(ctx context.Context, key string) error {
	if s.s3Client == nil {
		s.mu.Lock()
		delete(s.local, key)
		s.mu.Unlock()
		return nil
	}

	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.AWS.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}

	return nil
}
