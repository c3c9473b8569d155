package minio

import (
	"context"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// UploadInfo represents information about an uploaded object
type UploadInfo struct {
	Bucket string
	Key    string
	ETag   string
	Size   int64
}

// FPutObject uploads a local file into the configured bucket
func (c *Client) FPutObject(ctx context.Context, objectName, filePath, contentType string) (UploadInfo, error) {
	if err := c.checkClosed(); err != nil {
		return UploadInfo{}, err
	}

	bucket := c.config.Bucket
	if objectName == "" {
		return UploadInfo{}, WrapError("FPutObject", ErrInvalidObjectName, bucket, objectName)
	}
	if filePath == "" {
		return UploadInfo{}, WrapErrorWithMessage("FPutObject", ErrInvalidArgument, "file path is required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	info, err := c.client.FPutObject(ctx, bucket, objectName, filePath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return UploadInfo{}, WrapError("FPutObject", err, bucket, objectName)
	}

	if c.logger != nil {
		c.logger.Info("file uploaded successfully",
			zap.String("bucket", bucket),
			zap.String("object", objectName),
			zap.Int64("size", info.Size),
		)
	}

	return UploadInfo{
		Bucket: info.Bucket,
		Key:    info.Key,
		ETag:   info.ETag,
		Size:   info.Size,
	}, nil
}

// RemoveObject removes an object from the configured bucket
func (c *Client) RemoveObject(ctx context.Context, objectName string) error {
	if err := c.checkClosed(); err != nil {
		return err
	}

	bucket := c.config.Bucket
	if objectName == "" {
		return WrapError("RemoveObject", ErrInvalidObjectName, bucket, objectName)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	if err := c.client.RemoveObject(ctx, bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return WrapError("RemoveObject", err, bucket, objectName)
	}

	if c.logger != nil {
		c.logger.Info("object removed successfully",
			zap.String("bucket", bucket),
			zap.String("object", objectName),
		)
	}
	return nil
}
