package highload

import (
	"github.com/iov-one/hlwallet/errors"
)

// Highload wallet rejections. None of them modifies the ledger state.
var (
	ErrWalletMismatch   = errors.Register(1000, "wallet id mismatch")
	ErrInvalidSignature = errors.Register(1001, "invalid signature")
	ErrExpiredQuery     = errors.Register(1002, "query expired")
	ErrDuplicateQuery   = errors.Register(1003, "query already processed")
	ErrMalformedBatch   = errors.Register(1004, "malformed batch")
)
