package errs

import "errors"

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDeleteFailed   = errors.New("record was not deleted")

	// validation
	ErrNoImages         = errors.New("no images provided")
	ErrTooManyImages    = errors.New("too many images")
	ErrPayloadTooLarge  = errors.New("total file size exceeds limit")
	ErrInvalidUserInfo  = errors.New("invalid user info")
	ErrInvalidFolder    = errors.New("invalid folder path")
	ErrUnknownEventType = errors.New("unknown event type")
	ErrInvalidEvent     = errors.New("malformed event")

	// upstream
	ErrUpstream = errors.New("media host rejected the request")

	// metadata store
	ErrStoreAuth       = errors.New("metadata store authentication failed")
	ErrStoreTLS        = errors.New("metadata store TLS handshake failed")
	ErrStoreConnection = errors.New("metadata store connection failed")
)
