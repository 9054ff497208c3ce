package port

import (
	"context"
	"io"
)

// StoredDocument describes an object written to the document store
type StoredDocument struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// DocumentStore keeps binary documents and returns opaque URLs for them
type DocumentStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (*StoredDocument, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}
