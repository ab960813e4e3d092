package types

import (
	"errors"
)

var (
	ErrUnknownTarget = errors.New("unknown transaction target")

	ErrUnknownKind = errors.New("unknown transaction kind")

	ErrAmountOverflow = errors.New("amount does not fit a signed delta")
)
