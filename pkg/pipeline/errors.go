package pipeline

import "errors"

// Stage errors. Each stage fails fast with one of these named errors when
// its core contract cannot be satisfied; the orchestrator sequencing the
// stages decides whether to halt, retry, or dead-letter the run. A missing
// record on the status path is a valid negative result, not an error.
var (
	// ErrMalformedTrigger is returned when neither accepted trigger shape
	// yields both a bucket name and an object key.
	ErrMalformedTrigger = errors.New("malformed trigger payload")

	// ErrUnsupportedFormat is returned when the object key's extension is
	// not in the supported set.
	ErrUnsupportedFormat = errors.New("unsupported image type")

	// ErrImageDecodeFailed is returned when the source bytes cannot be
	// decoded as an image at all.
	ErrImageDecodeFailed = errors.New("image decode failed")

	// ErrThumbnailEncodingFailed is returned when a thumbnail cannot be
	// resized or encoded for a target box.
	ErrThumbnailEncodingFailed = errors.New("thumbnail encoding failed")

	// ErrObjectStoreWriteFailed is returned when a derived thumbnail
	// cannot be uploaded to the object store.
	ErrObjectStoreWriteFailed = errors.New("object store write failed")

	// ErrMissingIdentity is returned when a stage requires the decoded
	// source object key and it is absent from the state.
	ErrMissingIdentity = errors.New("missing image identity")

	// ErrPersistenceWriteFailed is returned when the accumulated record
	// cannot be written to the record store.
	ErrPersistenceWriteFailed = errors.New("record write failed")

	// ErrStoreUnavailable is returned on record store transport or service
	// errors, as distinct from a record simply not being found.
	ErrStoreUnavailable = errors.New("record store unavailable")
)
