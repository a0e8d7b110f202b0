package token

import "github.com/iov-one/treasury/errors"

// token takes 1050-1051
var (
	ErrInsufficientAllowance = errors.Register(1050, "insufficient allowance")
	ErrInsufficientBalance   = errors.Register(1051, "insufficient balance")
)
