package store

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3 stores manifests in an AWS S3 bucket. References are object keys.
type S3 struct {
	s3     *s3.Client
	bucket string
}

// NewS3 creates a new instance of S3.
func NewS3(cfg aws.Config, bucket string) *S3 {
	return &S3{
		s3:     s3.NewFromConfig(cfg),
		bucket: bucket,
	}
}

// Fetch downloads a manifest object.
func (s *S3) Fetch(ctx context.Context, ref string) ([]byte, error) {
	output, err := s.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref),
	})
	if err != nil {
		return nil, fmt.Errorf("can't send S3 GET request for %s: %w", ref, err)
	}

	defer output.Body.Close()

	data, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, fmt.Errorf("can't read S3 object %s: %w", ref, err)
	}

	return data, nil
}

// Write uploads a manifest object. S3 object writes are atomic on their own:
// a partially uploaded object is never visible.
func (s *S3) Write(ctx context.Context, ref string, data []byte) error {
	size := int64(len(data))

	_, err := s.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(ref),
		ACL:           types.ObjectCannedACLPrivate,
		Body:          bytes.NewReader(data),
		ContentLength: &size,
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("can't send S3 PUT request for %s: %w", ref, err)
	}

	return nil
}

// URL returns the absolute path to the s3 object in the form s3://bucket/ref.
func (s *S3) URL(ref string) string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, ref)
}
