package minio

import (
	"errors"
	"net/http"

	"github.com/minio/minio-go/v7"
)

var (
	// ErrConnectionFailed is returned when the client is not connected
	ErrConnectionFailed = errors.New("minio connection failed")

	// ErrBucketNotFound is returned when the bucket does not exist and may not be created
	ErrBucketNotFound = errors.New("bucket does not exist")

	// ErrInvalidConfig is returned for incomplete configurations
	ErrInvalidConfig = errors.New("invalid minio configuration")
)

// isNotFound reports whether err is a missing object or bucket response.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchObject":
		return true
	}
	return resp.StatusCode == http.StatusNotFound && resp.Code != "NoSuchBucket"
}
