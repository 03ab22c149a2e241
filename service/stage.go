package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// Blob is a staged upload opened for random access.
type Blob interface {
	io.ReaderAt
	io.Closer
}

// Staged is an upload held by a Stager until it is removed.
type Staged interface {
	Key() string
	Size() int64
	Open(ctx context.Context) (Blob, error)
	Remove(ctx context.Context) error
}

// Stager holds uploads while they are converted.
type Stager interface {
	Stage(ctx context.Context, name string, r io.Reader, size int64) (Staged, error)
}

// objectLocator is implemented by stagers whose objects are addressable by URL.
type objectLocator interface {
	ObjectURL(key string) string
}

// objectKey names a staged upload: offertes/2026/10/19/<uuid>.pdf. Uploads are
// sniffed as PDF before staging, so the client file name plays no part.
func objectKey(now time.Time) string {
	return fmt.Sprintf("offertes/%s/%s.pdf", now.Format("2006/01/02"), uuid.New().String())
}
