package minio

import "context"

// Client stores database snapshots in a MinIO / S3-compatible bucket.
//
// It satisfies the sqlite package's Snapshotter interface.
//
// This interface is implemented by the concrete *MinioClient type.
type Client interface {
	// Restore downloads the snapshot to localPath. It returns false without
	// error when no snapshot has been written yet.
	Restore(ctx context.Context, localPath string) (bool, error)

	// Persist uploads the file at localPath as the snapshot, replacing the previous one.
	Persist(ctx context.Context, localPath string) error

	// GracefulShutdown stops the connection monitor.
	GracefulShutdown()
}
