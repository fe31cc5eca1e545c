package domain

import "errors"

var (
	// ErrMissingUserID indicates the page URL has no userId=<digits> pair.
	ErrMissingUserID = errors.New("page URL has no userId query parameter")

	// ErrInvalidPageURL indicates the page URL is not an absolute http(s) URL.
	ErrInvalidPageURL = errors.New("invalid page URL")

	// ErrMalformedPublication indicates a payload that does not decode into a Publication.
	ErrMalformedPublication = errors.New("malformed publication")

	// ErrInvalidUTF8 indicates a stream message that is not valid UTF-8 text.
	ErrInvalidUTF8 = errors.New("stream message is not valid UTF-8")

	// ErrStreamClosed indicates the server closed the live stream.
	ErrStreamClosed = errors.New("stream closed")
)
