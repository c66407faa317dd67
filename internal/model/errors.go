package model

import "errors"

var (
	// ErrTransport marks a fetch that produced no usable payload: the request
	// failed, the backend answered non-2xx, or the body could not be decoded.
	ErrTransport = errors.New("transport failure")

	// ErrMalformed marks a single record that decoded but lacks required fields.
	ErrMalformed = errors.New("malformed payload")
)
