package contracts

import "errors"

var (
	// ErrDataUnavailable means the listing could not be obtained; fatal for the run
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrInsufficientHistory means fewer sessions than the scoring window
	ErrInsufficientHistory = errors.New("insufficient price history")

	// ErrMalformedHistory means a non-positive or non-finite close at a scoring offset
	ErrMalformedHistory = errors.New("malformed price history")

	// ErrPublishFailed wraps any blog publishing failure
	ErrPublishFailed = errors.New("publish failed")
)
