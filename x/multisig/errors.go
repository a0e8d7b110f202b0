package multisig

import "github.com/iov-one/treasury/errors"

// multisig takes 1030-1038
var (
	ErrInvalidPrincipal   = errors.Register(1030, "invalid principal")
	ErrAlreadyExecuted    = errors.Register(1031, "already executed")
	ErrAlreadyApproved    = errors.Register(1032, "already approved")
	ErrNotApproved        = errors.Register(1033, "not approved")
	ErrNoReadyTransaction = errors.Register(1034, "no transaction ready to execute")
	ErrInsufficientFunds  = errors.Register(1035, "insufficient funds")
	ErrExternalTransfer   = errors.Register(1036, "external transfer failed")
	ErrAlreadyInitialized = errors.Register(1037, "already initialized")
	ErrNotInitialized     = errors.Register(1038, "not initialized")
)
