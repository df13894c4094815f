package compress

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/acm19/yasuo/internal/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// s3API is the subset of the S3 client used for exporting
type s3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// s3Exporter implements the Exporter interface on an S3 bucket
type s3Exporter struct {
	client s3API
	bucket string
	prefix string
}

// NewS3Exporter creates an Exporter uploading to bucket under prefix, using the
// default AWS credential chain
func NewS3Exporter(ctx context.Context, bucket, prefix string) (Exporter, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return newS3Exporter(s3.NewFromConfig(cfg), bucket, prefix), nil
}

func newS3Exporter(client s3API, bucket, prefix string) *s3Exporter {
	return &s3Exporter{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// Export uploads c unless an object with the same key and MD5 already exists
func (e *s3Exporter) Export(ctx context.Context, fileName string, c *Compressed) (string, error) {
	key := e.objectKey(fileName)
	location := fmt.Sprintf("s3://%s/%s", e.bucket, key)

	sum := md5.Sum(c.Data)
	localHash := hex.EncodeToString(sum[:])

	headOutput, err := e.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(e.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		remoteETag := strings.Trim(aws.ToString(headOutput.ETag), `"`)
		if remoteETag == localHash {
			logger.Info("Object already exists in S3 with matching hash, skipping", "key", key, "hash", localHash)
			return location, nil
		}
		logger.Warn("Replacing S3 object with different content", "key", key, "local", localHash, "remote", remoteETag)
	} else if !isNotFoundError(err) {
		return "", fmt.Errorf("failed to check S3 object existence: %w", err)
	}

	logger.Debug("Uploading to S3", "bucket", e.bucket, "key", key, "bytes", c.Size)
	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(e.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(c.Data),
		ContentLength: aws.Int64(c.Size),
		ContentType:   aws.String(c.MimeType()),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return location, nil
}

func (e *s3Exporter) objectKey(fileName string) string {
	if e.prefix == "" {
		return fileName
	}
	return path.Join(e.prefix, fileName)
}

// isNotFoundError checks if the error is a NotFound error
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}

	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		if code == "NotFound" || code == "NoSuchKey" {
			return true
		}
	}

	errMsg := err.Error()
	return strings.Contains(errMsg, "NotFound") || strings.Contains(errMsg, "StatusCode: 404")
}
