package objectstore

import (
	"context"
	"fmt"
)

// Open returns the Store for driver: "s3" or "memory".
func Open(ctx context.Context, driver string, cfg S3Config) (Store, error) {
	switch driver {
	case "s3":
		return NewS3Store(ctx, cfg)
	case "memory":
		return NewMemoryStore(cfg.Bucket), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}
}
