// Package blob stores produced workbooks outside the process: on a local or shared
// filesystem, or in an S3 compatible bucket.
package blob

import (
	"context"
	"errors"
	"io"
	"time"
)

// Driver identifies a blob backend
type Driver string

const (
	DriverNone       Driver = "none"
	DriverFilesystem Driver = "fs"
	DriverS3         Driver = "s3"
)

// ErrNotFound is returned when a key does not exist
var ErrNotFound = errors.New("blob not found")

// Info describes a stored artifact
type Info struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
	// Location is a driver specific address of the object (a path or an s3:// URL)
	Location string
}

// Store is the interface for artifact backends
type Store interface {
	Driver() Driver
	Put(ctx context.Context, key string, r io.Reader, contentType string) (Info, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}
