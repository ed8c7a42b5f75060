package token

import "errors"

var (
	ErrInvalidAmount         = errors.New("token: amount must be positive")
	ErrInsufficientBalance   = errors.New("token: insufficient balance")
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")
	ErrNotMintAuthority      = errors.New("token: mint authority required")
	ErrStoreUnavailable      = errors.New("token: storage unavailable")
)
