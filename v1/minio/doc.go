// Package minio stores SQLite database snapshots in a MinIO or S3-compatible bucket.
//
// MinioClient implements the sqlite package's Snapshotter: Restore downloads the
// snapshot object with FGetObject and Persist uploads a new one with FPutObject.
// A missing object on Restore means no snapshot has been written yet.
//
// Credentials are static V4 keys taken from the storage account name and key.
// The bucket is checked at start and created when AccessBucketCreation is set.
// A background monitor validates the connection and swaps in a fresh client when
// validation fails.
//
// # Usage
//
//	store, err := minio.NewClient(minio.Config{
//		Connection: minio.ConnectionConfig{
//			Endpoint:        "s3.example.com",
//			AccessKeyID:     accountName,
//			SecretAccessKey: accountKey,
//			UseSSL:          true,
//			BucketName:      "vectordb",
//		},
//		Snapshot: minio.SnapshotConfig{ObjectKey: "prod/vectordb.sqlite"},
//	})
//	if err != nil {
//		return err
//	}
//	defer store.GracefulShutdown()
//
//	engine, err := sqlite.NewEngine(ctx, sqlite.Config{Path: "/var/lib/vectordb/db.sqlite"}, store)
//
// # Observability
//
// Restore and Persist are reported to the optional observer with component
// "minio", the bucket as resource and the object key as sub-resource.
package minio
