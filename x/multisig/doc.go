/*
Package multisig implements a quorum gated custodial transfer engine.

A fixed set of owners controls the funds. Any owner may submit a proposal to
move an amount of the native currency or of the fungible token to a target
principal. Every owner may approve a proposal once, and may revoke the
approval while the proposal is not executed. Once the number of distinct
approvals reaches the threshold, the proposal enters the ready index, a first
in, first out queue. Executing takes proposals from the head of that queue.

Every operation is atomic. It runs on a cache wrap of the engine store which
is written only when the operation succeeds, together with any change made by
the token ledger or the native bank. Signals are delivered to the event sink
after the write.

The engine does not authenticate callers. The caller principal passed to every
operation must be authenticated by the hosting environment.
*/
package multisig
