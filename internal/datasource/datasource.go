// Package datasource defines where raw listing exports come from.
package datasource

import (
	"context"
	"io"
)

// Source yields the raw bytes of one export. Callers own the returned
// ReadCloser and must close it.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
