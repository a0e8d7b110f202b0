/*
Package cash keeps the native currency balances.

There is no logic in the currency, except that the balance of a wallet may not
go below zero and may not overflow. Thus, this implementation is referred to as
cash. Simple and safe.

The multisig engine uses it to move the funds attached to an execution from the
executor to the target of a native currency proposal.
*/
package cash
