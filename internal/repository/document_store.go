package repository

import "context"

// DocumentStore persists JSON documents by key. Implementations exist for
// flat files, Redis and PostgreSQL.
type DocumentStore interface {
	// Read unmarshals the document stored under key into v. It returns
	// ErrDocumentNotFound when the key has never been written.
	Read(ctx context.Context, key string, v any) error
	// Write marshals v and stores it under key, replacing any prior document.
	Write(ctx context.Context, key string, v any) error
}
