/*
Package token implements a fungible asset ledger with spend allowances.

Every principal holds a balance and may allow other principals to spend part
of it. The multisig engine is such a spender: the funding principal allows
the engine address to move tokens, and the engine calls TransferFrom when a
token proposal is executed.

Only the configured minter may create new tokens after genesis.
*/
package token
