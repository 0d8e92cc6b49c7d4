package ioring

import "errors"

// ErrCanceled is returned by a Submitter method whose linked timeout or
// context fired before the submission resolved.
var ErrCanceled = errors.New("ioring: canceled")
