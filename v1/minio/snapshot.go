package minio

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/minio/minio-go/v7"
)

// Restore downloads the snapshot object to localPath.
//
// A missing object is not an error: the engine starts from an empty database and
// the first mutation writes the snapshot.
func (m *MinioClient) Restore(ctx context.Context, localPath string) (bool, error) {
	start := time.Now()
	bucket, key := m.cfg.Connection.BucketName, m.cfg.Snapshot.ObjectKey

	c := m.client.Load()
	if c == nil {
		return false, ErrConnectionFailed
	}

	err := c.FGetObject(ctx, bucket, key, localPath, minio.GetObjectOptions{})
	if isNotFound(err) {
		m.observeSnapshot("restore", localPath, start, nil, 0, map[string]interface{}{"found": false})
		m.logInfo(ctx, "No snapshot found, starting with an empty database", map[string]interface{}{
			"bucket": bucket,
			"key":    key,
		})
		return false, nil
	}
	if err != nil {
		err = fmt.Errorf("failed to download snapshot '%s/%s': %w", bucket, key, err)
		m.observeSnapshot("restore", localPath, start, err, 0, nil)
		return false, err
	}

	var size int64
	if info, statErr := os.Stat(localPath); statErr == nil {
		size = info.Size()
	}
	m.observeSnapshot("restore", localPath, start, nil, size, map[string]interface{}{"found": true})
	return true, nil
}

// Persist uploads the file at localPath as the snapshot object.
func (m *MinioClient) Persist(ctx context.Context, localPath string) error {
	start := time.Now()
	bucket, key := m.cfg.Connection.BucketName, m.cfg.Snapshot.ObjectKey

	c := m.client.Load()
	if c == nil {
		return ErrConnectionFailed
	}

	info, err := c.FPutObject(ctx, bucket, key, localPath, minio.PutObjectOptions{
		ContentType: snapshotContentType,
	})
	if err != nil {
		err = fmt.Errorf("failed to upload snapshot '%s/%s': %w", bucket, key, err)
	}
	m.observeSnapshot("persist", localPath, start, err, info.Size, nil)
	return err
}
