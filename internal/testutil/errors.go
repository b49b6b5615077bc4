package testutil

import "errors"

// ErrSimulated is returned by fake repositories and sources in tests.
var ErrSimulated = errors.New("simulated error for testing")
