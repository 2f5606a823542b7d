package repository

import "errors"

var (
	// ErrSessionUnavailable means the session provider could not produce any
	// cookies. Fatal: no availability fetch can succeed without a session.
	ErrSessionUnavailable = errors.New("session provider returned no usable cookies")

	// ErrPaginationAborted means catalog pagination halted before reaching the
	// last page. Non-fatal: whatever was accumulated is still usable.
	ErrPaginationAborted = errors.New("catalog pagination aborted before completion")

	// ErrTransport covers network-level failures (connect, timeout, reset).
	ErrTransport = errors.New("transport failure")

	// ErrBadStatus means the upstream answered with a non-200 status.
	ErrBadStatus = errors.New("unexpected response status")

	// ErrMalformedResponse means the upstream body was not parseable JSON.
	ErrMalformedResponse = errors.New("malformed upstream response")

	// ErrDocumentNotFound is returned by document stores for unknown keys.
	ErrDocumentNotFound = errors.New("document not found")
)
