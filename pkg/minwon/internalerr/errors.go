package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidInput          = errors.New("invalid input")
	ErrInvalidConfig         = errors.New("invalid configuration")
	ErrStoreUnavailable      = errors.New("store unavailable")
	ErrTokenizer             = errors.New("tokenizer failure")
	ErrClassifierUnavailable = errors.New("classifier unavailable")
)
