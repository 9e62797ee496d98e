package blob

import (
	"context"
	"fmt"
)

// Options selects and configures a driver
type Options struct {
	Driver Driver
	Dir    string
	S3     S3Config
}

// Open returns the configured store, or nil for DriverNone
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", DriverNone:
		return nil, nil
	case DriverFilesystem:
		return NewFilesystem(opts.Dir)
	case DriverS3:
		return NewS3(ctx, opts.S3)
	default:
		return nil, fmt.Errorf("unknown blob driver %q", opts.Driver)
	}
}
