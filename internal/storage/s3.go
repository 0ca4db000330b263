package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
)

// s3Store implements ReceiptStore backed by an S3 bucket.
type s3Store struct {
	client *s3.Client
	bucket string
	prefix string
	logger zerolog.Logger
}

// NewS3Store creates a new S3-backed receipt store.
func NewS3Store(ctx context.Context, bucket, region, prefix string, logger zerolog.Logger) (ReceiptStore, error) {
	logger = logger.With().Str("component", "s3-receipt-store").Logger()

	// Load AWS configuration
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := s3.NewFromConfig(cfg)

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Str("prefix", prefix).
		Msg("S3 receipt store initialised")

	return &s3Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger,
	}, nil
}

func (s *s3Store) key(filename string) string {
	return s.prefix + filename
}

// Save uploads the receipt content to the bucket.
func (s *s3Store) Save(ctx context.Context, filename, contentType string, content io.Reader) error {
	name, err := SanitizeFilename(filename)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(name)),
		Body:        content,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("key", s.key(name)).
			Msg("failed to put receipt object")
		return fmt.Errorf("failed to put receipt object (bucket=%s, key=%s): %w", s.bucket, s.key(name), err)
	}

	s.logger.Debug().Str("key", s.key(name)).Msg("receipt uploaded to S3")
	return nil
}

// Open streams a stored receipt from the bucket.
func (s *s3Store) Open(ctx context.Context, filename string) (io.ReadCloser, string, error) {
	name, err := SanitizeFilename(filename)
	if err != nil {
		return nil, "", ErrNotFound
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, "", ErrNotFound
		}
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("key", s.key(name)).
			Msg("failed to get receipt object")
		return nil, "", fmt.Errorf("failed to get receipt object (bucket=%s, key=%s): %w", s.bucket, s.key(name), err)
	}

	contentType := aws.ToString(result.ContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return result.Body, contentType, nil
}

// Delete removes a stored receipt from the bucket. S3 deletes are
// idempotent, so an absent key is not an error.
func (s *s3Store) Delete(ctx context.Context, filename string) error {
	name, err := SanitizeFilename(filename)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("key", s.key(name)).
			Msg("failed to delete receipt object")
		return fmt.Errorf("failed to delete receipt object: %w", err)
	}

	return nil
}

// fallbackStore prefers S3 and falls back to the local file system when an
// S3 operation fails.
type fallbackStore struct {
	s3Store    ReceiptStore
	localStore ReceiptStore
	logger     zerolog.Logger
}

// NewFallbackStore creates a store that tries S3 first, then falls back to
// the local file system. If s3Store is nil, only the local store is used.
func NewFallbackStore(s3Store, localStore ReceiptStore, logger zerolog.Logger) ReceiptStore {
	return &fallbackStore{
		s3Store:    s3Store,
		localStore: localStore,
		logger:     logger.With().Str("component", "fallback-receipt-store").Logger(),
	}
}

// Save attempts to write to S3 first, then falls back to disk.
func (s *fallbackStore) Save(ctx context.Context, filename, contentType string, content io.Reader) error {
	if s.s3Store != nil {
		err := s.s3Store.Save(ctx, filename, contentType, content)
		if err == nil {
			return nil
		}
		s.logger.Warn().
			Err(err).
			Str("filename", filename).
			Msg("failed to save receipt to S3, falling back to local file system")

		// The failed upload may have consumed part of the reader.
		if seeker, ok := content.(io.Seeker); ok {
			if _, seekErr := seeker.Seek(0, io.SeekStart); seekErr != nil {
				return fmt.Errorf("failed to rewind receipt content: %w", seekErr)
			}
		}
	}
	return s.localStore.Save(ctx, filename, contentType, content)
}

// Open attempts S3 first, falling back to disk when the object is absent
// or S3 errors out.
func (s *fallbackStore) Open(ctx context.Context, filename string) (io.ReadCloser, string, error) {
	if s.s3Store != nil {
		rc, contentType, err := s.s3Store.Open(ctx, filename)
		if err == nil {
			return rc, contentType, nil
		}
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn().
				Err(err).
				Str("filename", filename).
				Msg("failed to open receipt from S3, falling back to local file system")
		}
	}
	return s.localStore.Open(ctx, filename)
}

// Delete removes the receipt from both stores, best-effort on S3.
func (s *fallbackStore) Delete(ctx context.Context, filename string) error {
	if s.s3Store != nil {
		if err := s.s3Store.Delete(ctx, filename); err != nil {
			s.logger.Warn().
				Err(err).
				Str("filename", filename).
				Msg("failed to delete receipt from S3")
		}
	}
	return s.localStore.Delete(ctx, filename)
}
