package minio

import (
	"time"

	"github.com/Aleph-Alpha/vectordb-api/v1/observability"
)

// observeSnapshot reports a snapshot transfer to the observer.
//
// Notes:
//   - resource: snapshot bucket
//   - subResource: snapshot object key
//   - size: bytes transferred
//   - metadata: local database file, plus "found" for restores
func (m *MinioClient) observeSnapshot(operation, localPath string, start time.Time, err error, size int64, metadata map[string]interface{}) {
	if m == nil || m.observer == nil {
		return
	}

	if metadata == nil {
		metadata = make(map[string]interface{}, 1)
	}
	metadata["local_path"] = localPath

	m.observer.ObserveOperation(observability.OperationContext{
		Component:   "minio",
		Operation:   "snapshot_" + operation,
		Resource:    m.cfg.Connection.BucketName,
		SubResource: m.cfg.Snapshot.ObjectKey,
		Duration:    time.Since(start),
		Error:       err,
		Size:        size,
		Metadata:    metadata,
	})
}
