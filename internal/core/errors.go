package core

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrAccountRequired = errors.New("account id is required")
	ErrUnknownPeriod   = errors.New("unknown budget period")
)
