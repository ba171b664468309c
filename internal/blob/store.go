// Package blob abstracts the object store holding article attachments.
package blob

import "context"

// Store is the contract the lifecycle engine consumes for PDF/document
// attachments. Put returns a stable delivery URL; Delete reports
// domain.ErrNotFound when the object is already gone.
type Store interface {
	Put(ctx context.Context, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}
